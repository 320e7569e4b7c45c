// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwipe-project/dwipe/internal/device"
)

func TestSnapshotMarshalsDoneAndSuccess(t *testing.T) {
	p := device.Progress{
		Name:   "/dev/sda",
		Size:   1024,
		Result: &device.Result{Success: true},
	}

	s := Snapshot(p)
	require.True(t, s.Done)
	require.True(t, s.Success)
}

func TestSnapshotNotDoneWithoutResult(t *testing.T) {
	s := Snapshot(device.Progress{Name: "/dev/sdb"})
	require.False(t, s.Done)
}

func TestMarshalAllProducesJSONArray(t *testing.T) {
	body, err := MarshalAll([]device.Progress{
		{Name: "/dev/sda"},
		{Name: "/dev/sdb"},
	})
	require.NoError(t, err)

	var out []DeviceSnapshot
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out, 2)
}
