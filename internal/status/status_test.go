// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/prng"
)

func TestStatusEndpointReturnsJSON(t *testing.T) {
	dev := device.New("/dev/sda", 0, 1024, 512, 512, prng.Twister)
	s := New(Options{
		Enabled:      true,
		Addr:         ":0",
		EntropyLabel: "/dev/urandom",
		PRNGLabel:    "Mersenne Twister",
		MethodLabel:  "Zero fill (quick erase)",
		VerifyLabel:  "all",
		Rounds:       2,
		Enumerated:   3,
	}, []*device.Context{dev})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Info struct {
			Entropy    string `json:"entropy"`
			PRNG       string `json:"prng"`
			Method     string `json:"method"`
			Verify     string `json:"verify"`
			Rounds     int    `json:"rounds"`
			Enumerated int    `json:"enumerated"`
			Selected   int    `json:"selected"`
		} `json:"info"`
		Devices []map[string]interface{} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	require.Equal(t, "/dev/urandom", out.Info.Entropy)
	require.Equal(t, "Mersenne Twister", out.Info.PRNG)
	require.Equal(t, "Zero fill (quick erase)", out.Info.Method)
	require.Equal(t, "all", out.Info.Verify)
	require.Equal(t, 2, out.Info.Rounds)
	require.Equal(t, 3, out.Info.Enumerated)
	require.Equal(t, 1, out.Info.Selected)

	require.Len(t, out.Devices, 1)
	require.Equal(t, "/dev/sda", out.Devices[0]["name"])
}

func TestStatusEndpointRequiresBasicAuthWhenConfigured(t *testing.T) {
	s := New(Options{Enabled: true, Addr: ":0", AuthUser: "admin", AuthPass: "secret"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/status", nil)
	req2.SetBasicAuth("admin", "secret")
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)
}

func TestRunNoopWhenDisabled(t *testing.T) {
	s := New(Options{Enabled: false}, nil)
	require.NoError(t, s.Run())
	require.NoError(t, s.Shutdown())
}
