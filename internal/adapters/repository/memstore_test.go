package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/aether/internal/domain/account"
)

func reward(id string, fex, su float64, skill string) account.Transaction {
	return account.Transaction{AccountID: id, Type: account.TypePoccReward, FexReward: fex, SUReward: su, Skill: skill}
}

func TestMemoryStore_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	acc, found := store.GetAccount(ctx, "ghost")
	if found {
		t.Fatal("expected unknown account to be reported as not found")
	}
	if acc.Fex != 0 || acc.SU != 0 || acc.Staked != 0 || len(acc.SkillTree) != 0 {
		t.Errorf("expected empty record, got %+v", acc)
	}
	if count := store.Count(ctx); count != 0 {
		t.Errorf("reading must not create accounts, count=%d", count)
	}
}

func TestMemoryStore_RewardScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	res, err := store.ApplyTransaction(ctx, reward("u1", 5, 2, "knowledge"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Applied || !res.Created {
		t.Errorf("expected applied and created, got %+v", res)
	}

	acc, found := store.GetAccount(ctx, "u1")
	if !found {
		t.Fatal("expected account u1")
	}
	if acc.Fex != 5 || acc.SU != 2 || acc.Staked != 0 {
		t.Errorf("unexpected balances: %+v", acc)
	}
	if len(acc.SkillTree) != 1 || acc.SkillTree["knowledge"] != 1 {
		t.Errorf("unexpected skill tree: %v", acc.SkillTree)
	}
}

func TestMemoryStore_RepeatedSkill(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const n = 10
	for i := 0; i < n; i++ {
		if _, err := store.ApplyTransaction(ctx, reward("u1", 1, 1, "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	acc, _ := store.GetAccount(ctx, "u1")
	if acc.SkillTree[account.DefaultSkill] != n {
		t.Errorf("expected awareness=%d, got %d", n, acc.SkillTree[account.DefaultSkill])
	}
	if acc.Fex != n || acc.SU != n {
		t.Errorf("expected balances %d, got %+v", n, acc)
	}
}

func TestMemoryStore_UnrecognizedType(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	res, err := store.ApplyTransaction(ctx, account.Transaction{AccountID: "u2", Type: "Transfer", FexReward: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Applied {
		t.Error("unrecognized type must not apply")
	}
	if !res.Created {
		t.Error("unrecognized type must still materialize the account")
	}

	acc, found := store.GetAccount(ctx, "u2")
	if !found {
		t.Fatal("expected account u2 to exist")
	}
	if acc.Fex != 0 || len(acc.SkillTree) != 0 {
		t.Errorf("expected zero account, got %+v", acc)
	}
}

func TestMemoryStore_Validation(t *testing.T) {
	ctx := context.Background()

	strict := NewMemoryStore()
	if _, err := strict.ApplyTransaction(ctx, reward("", 1, 1, "")); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("expected ErrInvalidTransaction for empty id, got %v", err)
	}
	if _, err := strict.ApplyTransaction(ctx, reward("u1", -1, 0, "")); !errors.Is(err, account.ErrInvalidReward) {
		t.Errorf("expected ErrInvalidReward for negative reward, got %v", err)
	}
	if strict.Count(ctx) != 0 {
		t.Error("rejected transactions must not materialize accounts")
	}

	lenient := NewMemoryStore(WithAllowNegativeRewards(true))
	res, err := lenient.ApplyTransaction(ctx, reward("u1", -1.5, 0, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Account.Fex != -1.5 {
		t.Errorf("expected fex -1.5, got %v", res.Account.Fex)
	}
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	res, _ := store.ApplyTransaction(ctx, reward("u1", 1, 1, "art"))
	res.Account.SkillTree["art"] = 42

	acc, _ := store.GetAccount(ctx, "u1")
	if acc.SkillTree["art"] != 1 {
		t.Errorf("store state leaked through snapshot: %v", acc.SkillTree)
	}
}

func TestMemoryStore_ConcurrentSameAccount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const goroutines = 50
	const perGoroutine = 40
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, err := store.ApplyTransaction(ctx, reward("hot", 1, 0.5, "focus")); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	acc, _ := store.GetAccount(ctx, "hot")
	total := goroutines * perGoroutine
	if acc.SkillTree["focus"] != total {
		t.Errorf("expected focus=%d, got %d", total, acc.SkillTree["focus"])
	}
	if acc.Fex != float64(total) || acc.SU != float64(total)/2 {
		t.Errorf("lost updates: %+v", acc)
	}
}

func TestMemoryStore_ConcurrentDistinctAccounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const accounts = 100
	var wg sync.WaitGroup
	for i := 0; i < accounts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.ApplyTransaction(ctx, reward(fmt.Sprintf("acct-%03d", i), 1, 1, ""))
			_, _ = store.GetAccount(ctx, fmt.Sprintf("acct-%03d", i))
		}(i)
	}
	wg.Wait()

	if count := store.Count(ctx); count != accounts {
		t.Errorf("expected %d accounts, got %d", accounts, count)
	}
	ids := store.IDs(ctx)
	if len(ids) != accounts || ids[0] != "acct-000" || ids[accounts-1] != "acct-099" {
		t.Errorf("unexpected ids ordering: first=%s last=%s", ids[0], ids[len(ids)-1])
	}
}
