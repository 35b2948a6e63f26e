package insight_test

import (
	"context"
	"strings"
	"testing"

	"github.com/okian/aether/internal/domain/account"
	"github.com/okian/aether/internal/domain/insight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkill(t *testing.T) {
	Convey("Given insight texts", t, func() {
		Convey("Plain text trains awareness", func() {
			So(insight.Skill("I noticed my breath"), ShouldEqual, insight.SkillAwareness)
		})
		Convey("Learning trains knowledge", func() {
			So(insight.Skill("Today I LEARNED something"), ShouldEqual, insight.SkillKnowledge)
		})
		Convey("Art or beauty trains creativity and wins over learning", func() {
			So(insight.Skill("the beauty of dusk"), ShouldEqual, insight.SkillCreativity)
			So(insight.Skill("I learn to paint art"), ShouldEqual, insight.SkillCreativity)
		})
	})
}

func TestReward(t *testing.T) {
	Convey("Given texts of various lengths", t, func() {
		Convey("Short neutral text earns the minimum", func() {
			fex, su := insight.Reward("hi", 0)
			So(fex, ShouldEqual, 1)
			So(su, ShouldEqual, 1)
		})

		Convey("Long text scales with length", func() {
			fex, su := insight.Reward(strings.Repeat("a", 45), 0)
			So(fex, ShouldEqual, 4.5)
			So(su, ShouldEqual, 2)
		})

		Convey("Sentiment multiplies both rewards", func() {
			fex, su := insight.Reward(strings.Repeat("a", 40), 0.5)
			So(fex, ShouldEqual, 6)
			So(su, ShouldEqual, 3)
		})

		Convey("Length counts characters, not bytes", func() {
			fex, _ := insight.Reward(strings.Repeat("é", 20), 0)
			So(fex, ShouldEqual, 2)
		})
	})
}

func TestGuidance(t *testing.T) {
	Convey("Given insight texts", t, func() {
		So(insight.Guidance("I am Grateful today"), ShouldEqual, insight.GuidanceResonant)
		So(insight.Guidance("love is all"), ShouldEqual, insight.GuidanceResonant)
		So(insight.Guidance("the sky is grey"), ShouldEqual, insight.GuidanceAnchored)
	})
}

func TestRuleScorer(t *testing.T) {
	Convey("Given a scorer with a fixed sentiment", t, func() {
		s := insight.NewRuleScorer(insight.WithSentiment(insight.FixedSentiment(1)))

		Convey("When a text is scored", func() {
			res, err := s.Score(context.Background(), "I love to learn")

			Convey("Then every part of the result is filled", func() {
				So(err, ShouldBeNil)
				So(res.Skill, ShouldEqual, insight.SkillKnowledge)
				So(res.Fex, ShouldEqual, 3)
				So(res.SU, ShouldEqual, 2)
				So(res.Sentiment, ShouldEqual, 1)
				So(res.Guidance, ShouldEqual, insight.GuidanceResonant)
			})

			Convey("Then it converts to a ledger reward", func() {
				tx := res.Transaction("tx-1", "u1")
				So(tx.Type, ShouldEqual, account.TypePoccReward)
				So(tx.AccountID, ShouldEqual, "u1")
				So(tx.TxID, ShouldEqual, "tx-1")
				So(tx.Skill, ShouldEqual, insight.SkillKnowledge)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Score(ctx, "anything")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given the VADER sentiment model", t, func() {
		v := insight.NewVaderSentiment()

		Convey("Positive text scores above negative text", func() {
			So(v.Compound("I love this wonderful day"), ShouldBeGreaterThan, 0)
			So(v.Compound("this is terrible and awful"), ShouldBeLessThan, 0)
		})
	})
}
