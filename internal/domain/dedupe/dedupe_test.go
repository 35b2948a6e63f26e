package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/aether/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When recording a new transaction id", func() {
			d := dedupe.NewInMemoryDeduper()
			seen := d.SeenAndRecord(ctx, "tx-1")

			Convey("Then it should report unseen and record it", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "tx-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording ids", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "tx-1")
			d.Unrecord(ctx, "tx-1")
			d.Unrecord(ctx, "missing")

			Convey("Then the id can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
			})
		})

		Convey("When the bounded set is full", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, id := range []string{"tx-1", "tx-2", "tx-3", "tx-4"} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest id is evicted and the newest are kept", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "tx-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "tx-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "tx-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
			})
		})

		Convey("When an evicted slot is freed by Unrecord", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, "tx-1")
			d.SeenAndRecord(ctx, "tx-2")
			d.Unrecord(ctx, "tx-1")
			d.SeenAndRecord(ctx, "tx-3")

			Convey("Then no further eviction happens", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "tx-2"), ShouldBeTrue)
			})
		})

		Convey("When the set is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("tx-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				So(d.SeenAndRecord(ctx, "tx-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same id", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const goroutines = 32

		var wg sync.WaitGroup
		var fresh atomic.Int32
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(context.Background(), "tx-shared") {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one of them records it", func() {
			So(fresh.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
