// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package notify

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFireHitsConfiguredURL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := Options{StartURL: srv.URL}
	o.Start()

	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestFireSkipsUnconfiguredURLs(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	o := Options{}
	o.Success()
	o.Fail()

	require.EqualValues(t, 0, atomic.LoadInt32(&hits))
}

func TestFireToleratesUnreachableURL(t *testing.T) {
	o := Options{FailURL: "http://127.0.0.1:1"}
	require.NotPanics(t, func() { o.Fail() })
}
