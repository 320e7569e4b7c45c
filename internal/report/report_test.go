// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwipe-project/dwipe/internal/engine"
	"github.com/dwipe-project/dwipe/internal/pattern"
)

func TestWriteResultFilePass(t *testing.T) {
	dir := t.TempDir()
	devicePath := filepath.Join(dir, "sda")

	method, err := pattern.Lookup("zero")
	require.NoError(t, err)

	result := engine.Result{Name: devicePath, Outcome: engine.OutcomePass}
	require.NoError(t, WriteResultFile(devicePath, devicePath, method, 1, "off", result))

	body, err := os.ReadFile(devicePath + ".result")
	require.NoError(t, err)

	text := string(body)
	require.Contains(t, text, "DWIPE_LABEL=")
	require.Contains(t, text, "DWIPE_METHOD='Zero fill (quick erase)'")
	require.Contains(t, text, "DWIPE_ROUNDS='1'")
	require.Contains(t, text, "DWIPE_VERIFY='off'")
	require.Contains(t, text, "DWIPE_RESULT='pass'")
}

func TestWriteResultFileFail(t *testing.T) {
	dir := t.TempDir()
	devicePath := filepath.Join(dir, "sdb")

	method, err := pattern.Lookup("random")
	require.NoError(t, err)

	result := engine.Result{Name: devicePath, Outcome: engine.OutcomeIncomplete}
	require.NoError(t, WriteResultFile(devicePath, devicePath, method, 3, "all", result))

	body, err := os.ReadFile(devicePath + ".result")
	require.NoError(t, err)
	require.Contains(t, string(body), "DWIPE_RESULT='fail'")
}
