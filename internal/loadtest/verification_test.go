package loadtest

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return doc
}

func TestSumPath(t *testing.T) {
	Convey("Given a ledger account document", t, func() {
		doc := decode(t, `{"fex":12.5,"su":3,"staked":0,"skill_tree":{"awareness":3,"knowledge":2}}`)

		Convey("The wildcard sums every skill level", func() {
			n, err := sumPath(doc, "$.skill_tree.*")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 5)
		})

		Convey("A bracketed key selects a single skill", func() {
			n, err := sumPath(doc, `$.skill_tree["knowledge"]`)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})

		Convey("A missing skill sums to zero", func() {
			n, err := sumPath(doc, `$.skill_tree["creativity"]`)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})

	Convey("Given an unknown account rendered as an empty object", t, func() {
		n, err := sumPath(decode(t, `{}`), "$.skill_tree.*")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 0)
	})

	Convey("Given a skill tree holding a non-number", t, func() {
		_, err := sumPath(decode(t, `{"skill_tree":{"awareness":"three"}}`), "$.skill_tree.*")
		So(err, ShouldNotBeNil)
	})
}

func TestGenerateInsights(t *testing.T) {
	Convey("Given a request for 4 accounts with 3 insights each", t, func() {
		insights, ids := generateInsights(4, 3)

		Convey("Then every account gets exactly its share", func() {
			So(len(ids), ShouldEqual, 4)
			So(len(insights), ShouldEqual, 12)

			counts := map[string]int{}
			for _, in := range insights {
				counts[in.AccountID]++
				So(in.Text, ShouldNotBeEmpty)
			}
			for _, id := range ids {
				So(counts[id], ShouldEqual, 3)
			}
		})
	})
}
