package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the aether namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "aether")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics should carry the custom names and labels", func() {
				manager.transactionsApplied.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_unit_ledger_transactions_applied_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "aether")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ledger metrics", func() {
			before := testutil.ToFloat64(globalManager.transactionsApplied)
			RecordTransactionApplied()
			RecordTransactionIgnored()
			RecordTransactionDuplicate()
			RecordTransactionRejected("invalid_reward")
			UpdateAccountsTotal(7)
			RecordApplyLatency(1.5)
			RecordQueryLatency(0.2)
			UpdateGenesisAccounts(1)

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(globalManager.transactionsApplied), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.accountsTotal), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.transactionsRejected.WithLabelValues("invalid_reward")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording oracle and weaver metrics", func() {
			So(func() {
				RecordAnalysis("awareness", "ok")
				RecordDownstreamError("ledger", "timeout")
				RecordDownstreamLatency("ledger", 12)
				RecordReward(3.2)
				RecordSentiment(0.4)
				RecordRateLimited()
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(2)
				RecordTuning()
				RecordWorkerLatency(0.1)
			}, ShouldNotPanic)

			Convey("Then gauges should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
			})
		})

		Convey("When recording HTTP, error and system metrics", func() {
			So(func() {
				RecordHTTPRequest("transaction", "POST", "200")
				RecordHTTPRequestDuration("transaction", "POST", "200", 4)
				RecordErrorByComponent("repository", "invalid_transaction")
				RecordErrorByEndpoint("transaction", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("When fetching the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
