package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobmarket/internal/config"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/logger"
)

func init() {
	logger.Discard()
}

func TestNewService(t *testing.T) {
	convey.Convey("Given configuration loaded from the environment", t, func() {
		_ = os.Setenv("JOBMARKET_DEFAULT_MIN_SALARY", "100000")
		_ = os.Setenv("JOBMARKET_DEFAULT_MAX_SALARY", "140000")
		_ = os.Setenv("JOBMARKET_DEFAULT_POSITIONS", "devops,qa")
		_ = os.Setenv("JOBMARKET_REGIONAL_SEED", "5")
		defer func() {
			_ = os.Unsetenv("JOBMARKET_DEFAULT_MIN_SALARY")
			_ = os.Unsetenv("JOBMARKET_DEFAULT_MAX_SALARY")
			_ = os.Unsetenv("JOBMARKET_DEFAULT_POSITIONS")
			_ = os.Unsetenv("JOBMARKET_REGIONAL_SEED")
		}()

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the service is built and started", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			svc := newService(cfg, logger.Get())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the configured filter is active", func() {
				st := svc.Filter()
				convey.So(st.MinSalary, convey.ShouldEqual, 100000)
				convey.So(st.MaxSalary, convey.ShouldEqual, 140000)
				convey.So(len(st.Selected), convey.ShouldEqual, 2)
				convey.So(svc.Defaults().MinSalary, convey.ShouldEqual, 100000)
			})
		})
	})
}

func TestNewServer(t *testing.T) {
	convey.Convey("Given a fully wired server", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(newServer(ctx, cfg, svc).Handler)
		defer ts.Close()

		get := func(path string) int {
			resp, err := http.Get(ts.URL + path)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			return resp.StatusCode
		}

		convey.Convey("Then every surface is served", func() {
			convey.So(get("/healthz"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/static/app.js"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api/positions"), convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the startup snapshot is available", func() {
			resp, err := http.Get(ts.URL + "/api/snapshot")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			var b model.Bundle
			convey.So(json.NewDecoder(resp.Body).Decode(&b), convey.ShouldBeNil)
			convey.So(b.Cycle, convey.ShouldEqual, 1)
			convey.So(b.Reason, convey.ShouldEqual, model.ReasonStartup)
		})

		convey.Convey("Then the service reports it is started", func() {
			convey.So(svc.GetStats()["started"], convey.ShouldEqual, true)
		})
	})
}

func TestNewServer_ShutdownWithOpenStream(t *testing.T) {
	convey.Convey("Given a serving server with a dashboard stream open", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newServer(ctx, cfg, svc)
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		served := make(chan error, 1)
		go func() { served <- srv.Serve(ln) }()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+ln.Addr().String()+"/api/stream", http.NoBody)
		convey.So(err, convey.ShouldBeNil)
		resp, err := http.DefaultClient.Do(req)
		convey.So(err, convey.ShouldBeNil)
		defer resp.Body.Close()
		line, err := bufio.NewReader(resp.Body).ReadString('\n')
		convey.So(err, convey.ShouldBeNil)
		convey.So(line, convey.ShouldStartWith, ": connected")

		convey.Convey("When the server shuts down", func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			started := time.Now()
			err := srv.Shutdown(shutdownCtx)

			convey.Convey("Then it finishes promptly without waiting out the stream", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(time.Since(started), convey.ShouldBeLessThan, 3*time.Second)
				convey.So(errors.Is(<-served, http.ErrServerClosed), convey.ShouldBeTrue)
			})
		})
	})
}
