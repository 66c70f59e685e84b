package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/okian/jitsu/internal/adapters/http/api"
	"github.com/okian/jitsu/internal/adapters/repository"
	service "github.com/okian/jitsu/internal/app"
	"github.com/okian/jitsu/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAPIIntegration(t *testing.T) {
	Convey("Given the API over a running service", t, func() {
		now := time.Date(2026, 10, 19, 19, 30, 0, 0, time.UTC)
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithCatalogLatency(0),
			service.WithClock(func() time.Time { return now }),
			service.WithLogger(logger.Discard()),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		server := api.NewServer(svc, svc, api.WithLogger(logger.Discard()))
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When reading the roster", func() {
			w := do(mux, http.MethodGet, "/roster?limit=3", "")

			Convey("Then the red-black belt leads", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []repository.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries[0].Member.Name, ShouldEqual, "Rickson Gracie")
			})
		})

		Convey("When a check-in round trip is made", func() {
			w := do(mux, http.MethodPost, "/checkins", `{"event_id":"it-1","member_id":"u22","session_id":"gb1-2026-10-19"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)

			Convey("Then the sheet eventually shows the member present", func() {
				var present int
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					r := do(mux, http.MethodGet, "/sessions/gb1-2026-10-19/attendance?status=PRESENT", "")
					var view service.AttendanceView
					_ = json.Unmarshal(r.Body.Bytes(), &view)
					if present = len(view.Rows); present == 3 {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}
				So(present, ShouldEqual, 3)
			})
		})

		Convey("When promoting to a lower grade", func() {
			w := do(mux, http.MethodPost, "/promotions", `{"member_id":"u27","rank":"BLACK","stripes":4}`)

			Convey("Then 409 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When checking into an unknown member", func() {
			w := do(mux, http.MethodPost, "/checkins", `{"member_id":"ghost","session_id":"gb1-2026-10-19"}`)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
