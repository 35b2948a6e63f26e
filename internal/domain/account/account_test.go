package account_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/aether/internal/domain/account"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStateApply(t *testing.T) {
	Convey("Given a fresh account state", t, func() {
		s := account.NewState()

		Convey("When a PoccReward with a skill is applied", func() {
			changed, err := s.Apply(account.Transaction{
				AccountID: "u1",
				Type:      account.TypePoccReward,
				FexReward: 5,
				SUReward:  2,
				Skill:     "knowledge",
			})

			Convey("Then balances and the skill move by exactly the reward", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)
				snap := s.Snapshot()
				So(snap.Fex, ShouldEqual, 5)
				So(snap.SU, ShouldEqual, 2)
				So(snap.Staked, ShouldEqual, 0)
				So(snap.SkillTree, ShouldResemble, account.SkillTree{"knowledge": 1})
			})
		})

		Convey("When a PoccReward without a skill is applied", func() {
			_, _ = s.Apply(account.Transaction{AccountID: "u1", Type: account.TypePoccReward, FexReward: 1})

			Convey("Then awareness is credited", func() {
				So(s.SkillTree.Level(account.DefaultSkill), ShouldEqual, 1)
			})
		})

		Convey("When N rewards with the same skill are applied", func() {
			const n = 25
			for i := 0; i < n; i++ {
				_, _ = s.Apply(account.Transaction{AccountID: "u1", Type: account.TypePoccReward, FexReward: 0.1, SUReward: 0.2, Skill: "art"})
			}

			Convey("Then the level is N and decimal sums do not drift", func() {
				So(s.SkillTree.Level("art"), ShouldEqual, n)
				So(s.Snapshot().Fex, ShouldEqual, 2.5)
				So(s.Snapshot().SU, ShouldEqual, 5)
			})
		})

		Convey("When an unrecognized type is applied", func() {
			changed, err := s.Apply(account.Transaction{AccountID: "u1", Type: "Stake", FexReward: 9, SUReward: 9})

			Convey("Then nothing changes", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
				So(s.Snapshot().Fex, ShouldEqual, 0)
				So(s.SkillTree, ShouldBeEmpty)
			})
		})

		Convey("When a reward would overflow the balance", func() {
			_, err := s.Apply(account.Transaction{AccountID: "u1", Type: account.TypePoccReward, FexReward: 1e308, SUReward: 1})
			So(err, ShouldBeNil)
			changed, err := s.Apply(account.Transaction{AccountID: "u1", Type: account.TypePoccReward, FexReward: 1e308, SUReward: 1})

			Convey("Then it is rejected and the state is untouched", func() {
				So(errors.Is(err, account.ErrInvalidReward), ShouldBeTrue)
				So(changed, ShouldBeFalse)
				snap := s.Snapshot()
				So(snap.Fex, ShouldEqual, 1e308)
				So(snap.SU, ShouldEqual, 1)
				So(snap.SkillTree.Level(account.DefaultSkill), ShouldEqual, 1)
			})
		})

		Convey("When a reward names a whitespace skill", func() {
			_, _ = s.Apply(account.Transaction{AccountID: "u1", Type: account.TypePoccReward, Skill: " "})

			Convey("Then that skill is credited as given", func() {
				So(s.SkillTree.Level(" "), ShouldEqual, 1)
				So(s.SkillTree.Level(account.DefaultSkill), ShouldEqual, 0)
			})
		})
	})
}

func TestSnapshotIsolation(t *testing.T) {
	Convey("Given a state with a skill", t, func() {
		s := account.NewState()
		_, _ = s.Apply(account.Transaction{AccountID: "u1", Type: account.TypePoccReward, Skill: "compassion"})

		Convey("When the snapshot's skill tree is mutated", func() {
			snap := s.Snapshot()
			snap.SkillTree["compassion"] = 99

			Convey("Then the state is unaffected", func() {
				So(s.SkillTree.Level("compassion"), ShouldEqual, 1)
			})
		})
	})
}

func TestTransactionValidate(t *testing.T) {
	Convey("Given transactions to validate", t, func() {
		Convey("A missing account id is rejected", func() {
			err := account.Transaction{Type: account.TypePoccReward}.Validate(false)
			So(errors.Is(err, account.ErrMissingAccountID), ShouldBeTrue)
		})

		Convey("A negative reward is rejected unless allowed", func() {
			tx := account.Transaction{AccountID: "u1", Type: account.TypePoccReward, FexReward: -1}
			So(errors.Is(tx.Validate(false), account.ErrInvalidReward), ShouldBeTrue)
			So(tx.Validate(true), ShouldBeNil)
		})

		Convey("A non-finite reward is always rejected", func() {
			tx := account.Transaction{AccountID: "u1", SUReward: math.Inf(1)}
			So(errors.Is(tx.Validate(true), account.ErrInvalidReward), ShouldBeTrue)
		})

		Convey("Missing reward fields are zero and valid", func() {
			So(account.Transaction{AccountID: "u1", Type: account.TypePoccReward}.Validate(false), ShouldBeNil)
		})
	})
}

func TestAccountJSON(t *testing.T) {
	Convey("Given the account wire shape", t, func() {
		Convey("A zero account renders an empty skill tree object", func() {
			b, err := json.Marshal(account.Account{})
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"fex":0,"su":0,"staked":0,"skill_tree":{}}`)
		})

		Convey("A transaction decodes from the ledger request body", func() {
			var tx account.Transaction
			err := json.Unmarshal([]byte(`{"accountId":"u1","type":"PoccReward","fex_reward":5,"su_reward":2,"skill":"knowledge"}`), &tx)
			So(err, ShouldBeNil)
			So(tx.AccountID, ShouldEqual, "u1")
			So(tx.FexReward, ShouldEqual, 5)
			So(tx.SkillOrDefault(), ShouldEqual, "knowledge")
		})

		Convey("StateFrom copies a genesis snapshot", func() {
			s := account.StateFrom(account.Account{Fex: 1000, SU: 50, Staked: 100, SkillTree: account.SkillTree{"awareness": 3}})
			So(s.Snapshot().Staked, ShouldEqual, 100)
			So(s.SkillTree.Total(), ShouldEqual, 3)
		})
	})
}
