// Package account contains the ledger's account model and the rule for
// applying a transaction to an account.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction types understood by the ledger.
const (
	TypePoccReward = "PoccReward"
)

// DefaultSkill is credited when a reward names no skill.
const DefaultSkill = "awareness"

// Validation errors.
var (
	ErrMissingAccountID = errors.New("missing accountId")
	ErrInvalidReward    = errors.New("invalid reward")
)

// SkillTree maps a skill name to its level. Reading an absent skill yields
// level 0; incrementing an absent skill stores level 1.
type SkillTree map[string]int

// Level returns the level of skill, 0 when absent.
func (t SkillTree) Level(skill string) int {
	return t[skill]
}

// Increment raises skill by one level and returns the new level.
func (t SkillTree) Increment(skill string) int {
	t[skill]++
	return t[skill]
}

// Total returns the sum of all skill levels.
func (t SkillTree) Total() int {
	total := 0
	for _, lvl := range t {
		total += lvl
	}
	return total
}

// Clone returns an independent copy.
func (t SkillTree) Clone() SkillTree {
	out := make(SkillTree, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Account is the read shape of a ledger account.
type Account struct {
	Fex       float64   `json:"fex"`
	SU        float64   `json:"su"`
	Staked    float64   `json:"staked"`
	SkillTree SkillTree `json:"skill_tree"`
}

// Transaction is a single input record for the ledger.
type Transaction struct {
	TxID      string  `json:"tx_id,omitempty"`
	AccountID string  `json:"accountId"`
	Type      string  `json:"type"`
	FexReward float64 `json:"fex_reward"`
	SUReward  float64 `json:"su_reward"`
	Skill     string  `json:"skill,omitempty"`
}

// SkillOrDefault returns the credited skill name. Only an absent or empty
// skill falls back to the default; other names are used verbatim.
func (tx Transaction) SkillOrDefault() string {
	if tx.Skill == "" {
		return DefaultSkill
	}
	return tx.Skill
}

// Recognized reports whether the type tag changes balances.
func (tx Transaction) Recognized() bool {
	return tx.Type == TypePoccReward
}

// Validate checks the transaction. Negative rewards are only rejected when
// allowNegative is false; NaN and infinities are always rejected.
func (tx Transaction) Validate(allowNegative bool) error {
	if strings.TrimSpace(tx.AccountID) == "" {
		return ErrMissingAccountID
	}
	for name, v := range map[string]float64{"fex_reward": tx.FexReward, "su_reward": tx.SUReward} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidReward, name)
		}
		if v < 0 && !allowNegative {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidReward, name)
		}
	}
	return nil
}

// State is the mutable form of an account held by the store. Balances are
// decimals so that repeated rewards do not accumulate binary float error.
type State struct {
	Fex       decimal.Decimal
	SU        decimal.Decimal
	Staked    decimal.Decimal
	SkillTree SkillTree
}

// NewState returns a zero-balance account with an empty skill tree.
func NewState() *State {
	return &State{
		Fex:       decimal.Zero,
		SU:        decimal.Zero,
		Staked:    decimal.Zero,
		SkillTree: make(SkillTree),
	}
}

// StateFrom builds a State from a snapshot, e.g. a genesis entry.
func StateFrom(a Account) *State {
	s := NewState()
	s.Fex = decimal.NewFromFloat(a.Fex)
	s.SU = decimal.NewFromFloat(a.SU)
	s.Staked = decimal.NewFromFloat(a.Staked)
	if a.SkillTree != nil {
		s.SkillTree = a.SkillTree.Clone()
	}
	return s
}

// Apply mutates s according to tx and reports whether balances changed.
// Unrecognized types are a no-op. A reward whose resulting balance cannot be
// read back as a finite float64 returns ErrInvalidReward and leaves s
// unchanged.
func (s *State) Apply(tx Transaction) (bool, error) {
	if !tx.Recognized() {
		return false, nil
	}
	fex := s.Fex.Add(decimal.NewFromFloat(tx.FexReward))
	su := s.SU.Add(decimal.NewFromFloat(tx.SUReward))
	if !finite(fex) || !finite(su) {
		return false, fmt.Errorf("%w: balance overflow", ErrInvalidReward)
	}
	s.Fex, s.SU = fex, su
	s.SkillTree.Increment(tx.SkillOrDefault())
	return true, nil
}

func finite(d decimal.Decimal) bool {
	f := d.InexactFloat64()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Snapshot returns a deep copy in read shape.
func (s *State) Snapshot() Account {
	return Account{
		Fex:       s.Fex.InexactFloat64(),
		SU:        s.SU.InexactFloat64(),
		Staked:    s.Staked.InexactFloat64(),
		SkillTree: s.SkillTree.Clone(),
	}
}

// MarshalJSON renders an absent skill tree as {} rather than null.
func (a Account) MarshalJSON() ([]byte, error) {
	type plain Account
	if a.SkillTree == nil {
		a.SkillTree = SkillTree{}
	}
	return json.Marshal(plain(a))
}
