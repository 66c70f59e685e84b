package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

// isolated swaps in a manager backed by a fresh registry for the test body.
func isolated(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	prev := globalManager.Load()
	m := NewManager(append([]Option{WithPrometheusRegistry(prometheus.NewRegistry())}, opts...)...)
	if err := Use(m); err != nil {
		t.Fatalf("use manager: %v", err)
	}
	t.Cleanup(func() { globalManager.Store(prev) })
	return m
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it uses the jitsu namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "jitsu")
				So(manager.subsystem, ShouldEqual, "academy")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("dojo"),
				WithSubsystem("mat"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"academy": "north"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "dojo")
				So(manager.subsystem, ShouldEqual, "mat")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(manager.constLabels["academy"], ShouldEqual, "north")
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "jitsu")
				So(manager.subsystem, ShouldEqual, "academy")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})

		Convey("When swapping in a nil manager", func() {
			Convey("Then it is refused", func() {
				So(Use(nil), ShouldEqual, ErrNilManager)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given an isolated metrics manager", t, func() {
		m := isolated(t)

		Convey("When recording check-ins", func() {
			RecordCheckInProcessed()
			RecordCheckInProcessed()
			RecordCheckInDuplicate()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(m.checkinsProcessed), ShouldEqual, 2)
				So(testutil.ToFloat64(m.checkinsDuplicate), ShouldEqual, 1)
			})
		})

		Convey("When recording promotions", func() {
			RecordPromotionApplied("blue")
			RecordPromotionApplied("blue")
			RecordPromotionRejected("not_higher")

			Convey("Then they are labelled", func() {
				So(testutil.ToFloat64(m.promotionsApplied.WithLabelValues("blue")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.promotionsRejected.WithLabelValues("not_higher")), ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateRosterMembers(12)
			UpdateMembersByRank("purple", 3)
			UpdateQueueSize(4)
			UpdateQueueCapacity(100)
			UpdateWorkerCount(2)

			Convey("Then the last value wins", func() {
				So(testutil.ToFloat64(m.rosterMembers), ShouldEqual, 12)
				So(testutil.ToFloat64(m.membersByRank.WithLabelValues("purple")), ShouldEqual, 3)
				So(testutil.ToFloat64(m.queueSize), ShouldEqual, 4)
				So(testutil.ToFloat64(m.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(m.workerCount), ShouldEqual, 2)
			})
		})

		Convey("When scheduling zero sessions", func() {
			RecordSessionsScheduled(0)
			RecordSessionsScheduled(3)

			Convey("Then only positive counts are added", func() {
				So(testutil.ToFloat64(m.sessionsScheduled), ShouldEqual, 3)
			})
		})

		Convey("When recording HTTP and error metrics", func() {
			So(func() {
				RecordHTTPRequest("/roster", "GET", "200")
				RecordHTTPRequestDuration("/roster", "GET", "200", 3.5)
				RecordRateLimited("/checkins")
				RecordErrorByComponent("worker", "invalid_rank")
				RecordErrorByEndpoint("/promotions", "POST", "validation")
				RecordCatalogLatency("teams", 300)
				RecordStoreUpdateLatency(0.2)
				RecordStoreQueryLatency(0.1)
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordRankComparisonError()
				CollectRuntime()
			}, ShouldNotPanic)

			Convey("Then the labelled counters are populated", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/roster", "GET", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.httpRateLimited.WithLabelValues("/checkins")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		m := isolated(t, WithMetricsEnabled(false))

		Convey("When recording", func() {
			RecordCheckInProcessed()
			UpdateRosterMembers(10)

			Convey("Then nothing is observed", func() {
				So(testutil.ToFloat64(m.checkinsProcessed), ShouldEqual, 0)
				So(testutil.ToFloat64(m.rosterMembers), ShouldEqual, 0)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the process registry", t, func() {
		reg := GetRegistry()

		Convey("Then it gathers the jitsu metrics", func() {
			So(reg, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() == "jitsu_academy_queue_capacity" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
