// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package report

import (
	"encoding/json"

	"github.com/dwipe-project/dwipe/internal/device"
)

// DeviceSnapshot is the JSON-serializable view of one device's
// progress, consumed by internal/status's HTTP endpoint.
type DeviceSnapshot struct {
	Name         string  `json:"name"`
	Round        int     `json:"round"`
	RoundTotal   int     `json:"round_total"`
	Pass         int     `json:"pass"`
	PassTotal    int     `json:"pass_total"`
	PassType     string  `json:"pass_type"`
	PassSize     uint64  `json:"pass_size"`
	PassDone     uint64  `json:"pass_done"`
	RoundSize    uint64  `json:"round_size"`
	RoundDone    uint64  `json:"round_done"`
	RoundPercent float64 `json:"round_percent"`
	Size         uint64  `json:"size"`
	ThroughputBs uint64  `json:"throughput_bytes_per_sec"`
	ETASeconds   float64 `json:"eta_seconds"`
	PassErrors   uint64  `json:"pass_errors"`
	VerifyErrors uint64  `json:"verify_errors"`
	SyncPending  bool    `json:"sync_pending"`
	Done         bool    `json:"done"`
	Success      bool    `json:"success,omitempty"`
}

// Snapshot converts a device.Progress reading into its JSON shape.
func Snapshot(p device.Progress) DeviceSnapshot {
	s := DeviceSnapshot{
		Name:         p.Name,
		Round:        p.Round,
		RoundTotal:   p.RoundTotal,
		Pass:         p.Pass,
		PassTotal:    p.PassTotal,
		PassType:     p.PassType.String(),
		PassSize:     p.PassSize,
		PassDone:     p.PassDone,
		RoundSize:    p.RoundSize,
		RoundDone:    p.RoundDone,
		RoundPercent: p.RoundPercent,
		Size:         p.Size,
		ThroughputBs: p.Throughput,
		ETASeconds:   p.ETA.Seconds(),
		PassErrors:   p.PassErrors,
		VerifyErrors: p.VerifyErrors,
		SyncPending:  p.SyncPending,
	}

	if p.Result != nil {
		s.Done = true
		s.Success = p.Result.Success
	}

	return s
}

// MarshalAll encodes a batch of device snapshots as a JSON array.
func MarshalAll(progress []device.Progress) ([]byte, error) {
	snaps := make([]DeviceSnapshot, len(progress))
	for i, p := range progress {
		snaps[i] = Snapshot(p)
	}
	return json.Marshal(snaps)
}

// GlobalInfo is the run-wide metadata block reported alongside the
// per-device array: which entropy source, PRNG and method are in use,
// the verify policy and round count, how many devices were enumerated
// versus selected for wiping, and totals aggregated across every
// device's snapshot (spec.md §6's status endpoint requirements).
type GlobalInfo struct {
	EntropyLabel string `json:"entropy"`
	PRNGLabel    string `json:"prng"`
	MethodLabel  string `json:"method"`
	VerifyLabel  string `json:"verify"`
	Rounds       int    `json:"rounds"`
	Enumerated   int    `json:"enumerated"`
	Selected     int    `json:"selected"`
	ThroughputBs uint64 `json:"throughput_bytes_per_sec"`
	PassErrors   uint64 `json:"pass_errors"`
	VerifyErrors uint64 `json:"verify_errors"`
}

// StatusSnapshot is the full JSON body served by GET /status: the
// global info block plus every tracked device's progress.
type StatusSnapshot struct {
	Info    GlobalInfo       `json:"info"`
	Devices []DeviceSnapshot `json:"devices"`
}

// MarshalStatus builds and encodes the full status body, filling in
// info's aggregate throughput and error totals from progress.
func MarshalStatus(info GlobalInfo, progress []device.Progress) ([]byte, error) {
	snaps := make([]DeviceSnapshot, len(progress))
	for i, p := range progress {
		snaps[i] = Snapshot(p)
		info.ThroughputBs += p.Throughput
		info.PassErrors += p.PassErrors
		info.VerifyErrors += p.VerifyErrors
	}

	return json.Marshal(StatusSnapshot{Info: info, Devices: snaps})
}
