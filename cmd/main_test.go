package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/polo/internal/adapters/live"
	"github.com/okian/polo/internal/config"
	"github.com/okian/polo/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("POLO_ADDR", ":8088")
			_ = os.Setenv("POLO_EXPORT_LOCALE", "ja")
			defer func() {
				_ = os.Unsetenv("POLO_ADDR")
				_ = os.Unsetenv("POLO_EXPORT_LOCALE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8088")
				convey.So(cfg.ExportLocale, convey.ShouldEqual, "ja")
			})
		})

		convey.Convey("When wiring the service from configuration", func() {
			cfg := config.New(ctx)
			cfg.SnapshotPath = filepath.Join(t.TempDir(), "snap.json")
			hub := live.NewHub()
			svc, err := newService(cfg, hub, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop(ctx)

			convey.Convey("Then the route table serves the API and docs", func() {
				srv := httptest.NewServer(newHandler(ctx, cfg, svc, hub))
				defer srv.Close()

				for _, path := range []string{"/healthz", "/scoreboard", "/records", "/api-docs", "/openapi.yaml"} {
					resp, err := http.Get(srv.URL + path)
					convey.So(err, convey.ShouldBeNil)
					resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				}

				resp, err := http.Post(srv.URL+"/records", "application/json",
					strings.NewReader(`{"clockTime":"7:00","playerNumber":"5","teamColor":"white","eventKind":"GOAL"}`))
				convey.So(err, convey.ShouldBeNil)
				resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

				_, statErr := os.Stat(cfg.SnapshotPath)
				convey.So(statErr, convey.ShouldBeNil)
			})

			convey.Convey("And CORS preflight is answered", func() {
				srv := httptest.NewServer(newHandler(ctx, cfg, svc, hub))
				defer srv.Close()

				req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/records", nil)
				req.Header.Set("Origin", "http://scorer.local")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				resp, err := http.DefaultClient.Do(req)
				convey.So(err, convey.ShouldBeNil)
				resp.Body.Close()
				convey.So(resp.Header.Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
			})
		})

		convey.Convey("When an unknown locale is configured", func() {
			cfg := config.New(ctx)
			cfg.ExportLocale = "fr"
			_, err := newService(cfg, live.NewHub(), logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestOriginChecker(t *testing.T) {
	convey.Convey("Given an origin allow list", t, func() {
		check := originChecker([]string{"http://a.local"})
		req := httptest.NewRequest(http.MethodGet, "/ws/scoreboard", http.NoBody)

		convey.Convey("Then same-origin requests without Origin pass", func() {
			convey.So(check(req), convey.ShouldBeTrue)
		})

		convey.Convey("And listed origins pass while others fail", func() {
			req.Header.Set("Origin", "http://a.local")
			convey.So(check(req), convey.ShouldBeTrue)
			req.Header.Set("Origin", "http://b.local")
			convey.So(check(req), convey.ShouldBeFalse)
		})

		convey.Convey("And a wildcard allows everything", func() {
			req.Header.Set("Origin", "http://b.local")
			convey.So(originChecker([]string{"*"})(req), convey.ShouldBeTrue)
		})
	})
}
