// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetLogFileMirrorsOutput(t *testing.T) {
	defer SetLogFile(nil)
	defer SetLevel(Info)

	var buf bytes.Buffer
	SetLogFile(&buf)

	Infof("hello %s", "world")

	require.Contains(t, buf.String(), "INFO: hello world")
}

func TestSetLogFileNilDisablesSink(t *testing.T) {
	var buf bytes.Buffer
	SetLogFile(&buf)
	SetLogFile(nil)

	Infof("should not appear in buf")
	require.Empty(t, buf.String())
}

func TestLevelStrings(t *testing.T) {
	for _, tc := range []struct {
		level Level
		want  string
	}{
		{Error, "ERROR"},
		{Warn, "WARN"},
		{Info, "INFO"},
		{Debug, "DEBUG"},
		{Trace, "TRACE"},
	} {
		require.Equal(t, tc.want, tc.level.String())
	}
}

func TestUnknownLevelString(t *testing.T) {
	require.True(t, strings.Contains(Level(99).String(), "UNKNOWN"))
}
