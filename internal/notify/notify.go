// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package notify fires optional lifecycle webhooks (start/success/
// fail), a Go port of dwipe_notify_curl's fire-and-forget GET request
// with response body discarded and TLS verification disabled to match
// self-signed notification endpoints.
//
// curl is not part of the Go ecosystem the way it is linked directly
// into the C tool; net/http's client already speaks plain HTTP(S) GET,
// so this stays on the standard library rather than wiring an
// HTTP-client dependency for a single unauthenticated GET.
package notify

import (
	"crypto/tls"
	"io"
	"net/http"

	"github.com/dwipe-project/dwipe/internal/logger"
)

// Options carries the three lifecycle URLs; an empty URL disables
// that notification.
type Options struct {
	StartURL   string
	SuccessURL string
	FailURL    string
}

var client = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	},
}

// Start fires the start-of-wipe webhook, if configured.
func (o Options) Start() { fire(o.StartURL) }

// Success fires the wipe-succeeded webhook, if configured.
func (o Options) Success() { fire(o.SuccessURL) }

// Fail fires the wipe-failed webhook, if configured.
func (o Options) Fail() { fire(o.FailURL) }

func fire(url string) {
	if url == "" {
		return
	}

	resp, err := client.Get(url)
	if err != nil {
		logger.Errorf("failed to notify %s: %v", url, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	logger.Infof("notified %s", url)
}
