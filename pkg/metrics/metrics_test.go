package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// value returns the first sample of the named family on the global registry
// whose labels include every pair in labels.
func value(name string, labels ...string) float64 {
	families, err := customRegistry.Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for i := 0; i+1 < len(labels); i += 2 {
				var ok bool
				for _, lp := range m.GetLabel() {
					if lp.GetName() == labels[i] && lp.GetValue() == labels[i+1] {
						ok = true
					}
				}
				if !ok {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sheet"),
				WithMetricPrefix("pre"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.recordsDeleted.Inc()

			Convey("Then names and labels follow the options", func() {
				So(manager.refreshInterval, ShouldEqual, time.Second)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_sheet_pre_records_deleted_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults stay", func() {
				So(manager.namespace, ShouldEqual, "polo")
				So(manager.subsystem, ShouldEqual, "scorer")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		SetEnabled(true)

		Convey("When scoresheet activity is recorded", func() {
			before := value("polo_scorer_records_added_total", "kind", "GOAL")
			RecordAdded("GOAL")
			RecordDeleted()
			RecordNumberCorrected()
			RecordReset()
			RecordValidationError("clock")
			RecordDuplicate()
			RecordDeriveLatency(0.2)
			UpdateMatchState(7, 2, 3, 2)
			UpdateExcludedPlayers("blue", 1)
			RecordExport("en", "ok")
			RecordSnapshotSave(1.5)
			RecordSnapshotFailure("save")
			UpdateLiveConnections(2)
			RecordBroadcast()
			RecordLiveDropped()
			RecordHTTPRequest("/records", "POST", "201")
			RecordHTTPRequestDuration("/records", "POST", "201", 3)
			RecordErrorByComponent("app", "validation")
			RecordErrorByEndpoint("/records", "POST", "validation_error")
			UpdateSystemMetrics()

			Convey("Then the gauges and counters reflect it", func() {
				So(value("polo_scorer_records_added_total", "kind", "GOAL"), ShouldEqual, before+1)
				So(value("polo_scorer_current_period"), ShouldEqual, 2)
				So(value("polo_scorer_score", "team", "white"), ShouldEqual, 3)
				So(value("polo_scorer_score", "team", "blue"), ShouldEqual, 2)
				So(value("polo_scorer_live_connections"), ShouldEqual, 2)
				So(value("polo_scorer_system_goroutine_count"), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			before := value("polo_scorer_records_deleted_total")
			RecordDeleted()
			after := value("polo_scorer_records_deleted_total")
			SetEnabled(true)

			Convey("Then nothing changes", func() {
				So(after, ShouldEqual, before)
				So(Enabled(), ShouldBeTrue)
			})
		})
	})
}

func TestRunSystemCollector(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then the collector samples once and returns", func() {
			done := make(chan struct{})
			go func() {
				RunSystemCollector(ctx)
				close(done)
			}()
			So(func() { <-done }, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordHTTPRequest("/scoreboard", "GET", "200")
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		Convey("Then polo metrics are exposed", func() {
			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "polo_scorer_http_requests_total")
		})
	})
}
