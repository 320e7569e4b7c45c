// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package status exposes a read-only HTTP endpoint reporting every
// device's wipe progress as JSON, built on gin the way
// cmd/game-server/main.go wires its table-status routes.
package status

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/report"
)

// Options configures the optional status server, including the
// run-wide metadata (spec.md §6) served in the status body's info
// block alongside the per-device progress array.
type Options struct {
	Enabled  bool
	Addr     string // e.g. ":8080"
	AuthUser string
	AuthPass string

	EntropyLabel string
	PRNGLabel    string
	MethodLabel  string
	VerifyLabel  string
	Rounds       int
	Enumerated   int
}

// Server serves GET /status with a JSON snapshot of every tracked
// device, protected by HTTP basic auth when AuthUser is set.
type Server struct {
	opts    Options
	devices []*device.Context
	srv     *http.Server
}

// New builds a Server for the given devices; call Run to start it.
func New(opts Options, devices []*device.Context) *Server {
	return &Server{opts: opts, devices: devices}
}

// Handler builds the gin router serving GET /status, independent of
// whether the server is actually started, so tests can exercise the
// route directly with httptest.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	group := router.Group("/")
	if s.opts.AuthUser != "" {
		group.Use(gin.BasicAuth(gin.Accounts{s.opts.AuthUser: s.opts.AuthPass}))
	}

	group.GET("/status", func(c *gin.Context) {
		progress := make([]device.Progress, len(s.devices))
		for i, d := range s.devices {
			progress[i] = d.Snapshot()
		}

		info := report.GlobalInfo{
			EntropyLabel: s.opts.EntropyLabel,
			PRNGLabel:    s.opts.PRNGLabel,
			MethodLabel:  s.opts.MethodLabel,
			VerifyLabel:  s.opts.VerifyLabel,
			Rounds:       s.opts.Rounds,
			Enumerated:   s.opts.Enumerated,
			Selected:     len(s.devices),
		}

		body, err := report.MarshalStatus(info, progress)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Data(http.StatusOK, "application/json", body)
	})

	return router
}

// Run starts the HTTP server and blocks until it stops or errors. It
// is a no-op returning nil immediately if status reporting is
// disabled.
func (s *Server) Run() error {
	if !s.opts.Enabled {
		return nil
	}

	s.srv = &http.Server{Addr: s.opts.Addr, Handler: s.Handler()}
	return s.srv.ListenAndServe()
}

// Shutdown stops the server, if it was started, closing its listener
// and any open connections immediately.
func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}
