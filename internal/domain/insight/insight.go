// Package insight turns a free-form insight text into a skill, a reward and
// a guidance message.
package insight

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"github.com/okian/aether/internal/domain/account"
)

// Skills credited by the scorer.
const (
	SkillAwareness  = account.DefaultSkill
	SkillKnowledge  = "knowledge"
	SkillCreativity = "creativity"
)

// Guidance messages returned to the author of an insight.
const (
	GuidanceResonant = "High coherence insight detected. The network resonates with this."
	GuidanceAnchored = "Insight anchored. What is the feeling behind this thought?"
)

const (
	fexDivisor = 10
	suDivisor  = 20
	minReward  = 1
)

// Sentiment scores the emotional polarity of a text in [-1, 1].
type Sentiment interface {
	Compound(text string) float64
}

// VaderSentiment is a Sentiment backed by the VADER lexicon.
type VaderSentiment struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderSentiment loads the VADER lexicon.
func NewVaderSentiment() *VaderSentiment {
	return &VaderSentiment{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound implements Sentiment.
func (v *VaderSentiment) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// FixedSentiment always returns its own value.
type FixedSentiment float64

// Compound implements Sentiment.
func (f FixedSentiment) Compound(string) float64 { return float64(f) }

// Result is the outcome of scoring one insight.
type Result struct {
	Skill     string
	Fex       float64
	SU        float64
	Sentiment float64
	Guidance  string
}

// Transaction builds the ledger reward for accountID from r.
func (r Result) Transaction(txID, accountID string) account.Transaction {
	return account.Transaction{
		TxID:      txID,
		AccountID: accountID,
		Type:      account.TypePoccReward,
		FexReward: r.Fex,
		SUReward:  r.SU,
		Skill:     r.Skill,
	}
}

// Scorer computes the reward for an insight.
type Scorer interface {
	// Score analyzes text, honoring ctx for cancellation.
	Score(ctx context.Context, text string) (Result, error)
}

// Option configures a RuleScorer.
type Option func(*RuleScorer)

// WithSentiment replaces the sentiment model.
func WithSentiment(s Sentiment) Option {
	return func(r *RuleScorer) {
		if s != nil {
			r.sentiment = s
		}
	}
}

// RuleScorer implements Scorer with keyword rules and a sentiment model.
type RuleScorer struct {
	sentiment Sentiment
}

var _ Scorer = (*RuleScorer)(nil)

// NewRuleScorer creates a scorer. Without WithSentiment it uses VADER.
func NewRuleScorer(opts ...Option) *RuleScorer {
	r := &RuleScorer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.sentiment == nil {
		r.sentiment = NewVaderSentiment()
	}
	return r
}

// Score implements Scorer.
func (r *RuleScorer) Score(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	compound := r.sentiment.Compound(text)
	fex, su := Reward(text, compound)
	return Result{
		Skill:     Skill(text),
		Fex:       fex,
		SU:        su,
		Sentiment: compound,
		Guidance:  Guidance(text),
	}, nil
}

// Skill picks the skill an insight trains. Art and beauty win over learning.
func Skill(text string) string {
	lower := strings.ToLower(text)
	skill := SkillAwareness
	if strings.Contains(lower, "learn") {
		skill = SkillKnowledge
	}
	if strings.Contains(lower, "art") || strings.Contains(lower, "beauty") {
		skill = SkillCreativity
	}
	return skill
}

// Reward returns the fex and su earned by text with the given sentiment.
func Reward(text string, compound float64) (fex, su float64) {
	n := float64(utf8.RuneCountInString(text))
	mult := 1 + compound
	fex = math.Max(minReward, n/fexDivisor) * mult
	su = math.Max(minReward, math.Floor(n/suDivisor)) * mult
	return fex, su
}

// Guidance returns the message shown back to the author.
func Guidance(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "love") || strings.Contains(lower, "grateful") {
		return GuidanceResonant
	}
	return GuidanceAnchored
}
