package ratelimiter

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKeyLimiter(t *testing.T) {
	Convey("Given a limiter of 1 rps with burst 2", t, func() {
		l := New(1, 2, time.Minute)
		now := time.Unix(1_700_000_000, 0)

		Convey("The burst is allowed then the key is throttled", func() {
			So(l.Allow("u1", now), ShouldBeTrue)
			So(l.Allow("u1", now), ShouldBeTrue)
			So(l.Allow("u1", now), ShouldBeFalse)
		})

		Convey("Tokens refill over time", func() {
			l.Allow("u1", now)
			l.Allow("u1", now)
			So(l.Allow("u1", now.Add(time.Second)), ShouldBeTrue)
		})

		Convey("Keys are independent", func() {
			l.Allow("u1", now)
			l.Allow("u1", now)
			So(l.Allow("u2", now), ShouldBeTrue)
		})

		Convey("Blank keys are never limited", func() {
			for i := 0; i < 10; i++ {
				So(l.Allow("  ", now), ShouldBeTrue)
			}
			So(l.Len(), ShouldEqual, 0)
		})

		Convey("Idle keys are swept", func() {
			for i := 0; i < sweepEvery-1; i++ {
				l.Allow(fmt.Sprintf("old-%d", i), now)
			}
			So(l.Len(), ShouldEqual, sweepEvery-1)
			l.Allow("fresh", now.Add(2*time.Minute))
			So(l.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given a disabled limiter", t, func() {
		l := New(0, 10, 0)

		Convey("It is nil and allows everything", func() {
			So(l, ShouldBeNil)
			So(l.Allow("u1", time.Now()), ShouldBeTrue)
			So(l.Len(), ShouldEqual, 0)
		})
	})
}
