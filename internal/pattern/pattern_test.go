// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwipe-project/dwipe/internal/device"
)

func TestLookupKnownMethodsAndAliases(t *testing.T) {
	cases := map[string]string{
		"zero":       "zero",
		"quick":      "zero",
		"random":     "random",
		"prng":       "random",
		"stream":     "random",
		"dodshort":   "dodshort",
		"dod3pass":   "dodshort",
		"dod522022m": "dod522022m",
		"dod":        "dod522022m",
		"gutmann":    "gutmann",
		"ops2":       "ops2",
	}

	for alias, canonical := range cases {
		m, err := Lookup(alias)
		require.NoError(t, err, alias)
		require.Equal(t, canonical, m.Name, alias)
	}
}

func TestLookupUnknownMethod(t *testing.T) {
	_, err := Lookup("does-not-exist")
	require.Error(t, err)
}

func TestPatternsExecuteInDeclaredOrderNeverPermuted(t *testing.T) {
	m, err := Lookup("dod522022m")
	require.NoError(t, err)
	require.Len(t, m.Patterns, 7)

	require.Equal(t, []byte{0x00}, m.Patterns[0].Bytes)
	require.Equal(t, []byte{0xff}, m.Patterns[1].Bytes)
	require.True(t, m.Patterns[2].IsRandom())
	require.Equal(t, []byte{0x00}, m.Patterns[3].Bytes)
	require.Equal(t, []byte{0xff}, m.Patterns[4].Bytes)
	require.True(t, m.Patterns[5].IsRandom())
	require.Equal(t, []byte{0x00}, m.Patterns[6].Bytes)
}

func TestGutmannHas35Passes(t *testing.T) {
	m, err := Lookup("gutmann")
	require.NoError(t, err)
	require.Len(t, m.Patterns, 35)

	for i := 0; i < 4; i++ {
		require.True(t, m.Patterns[i].IsRandom())
	}
	for i := 31; i < 35; i++ {
		require.True(t, m.Patterns[i].IsRandom())
	}
	require.False(t, m.Patterns[4].IsRandom())
}

func TestRandomPatternSentinel(t *testing.T) {
	m, err := Lookup("random")
	require.NoError(t, err)
	require.Len(t, m.Patterns, 1)
	require.Equal(t, Random, m.Patterns[0].Length)
}

func TestRoundSizeIsPatternCountTimesDeviceSize(t *testing.T) {
	m, err := Lookup("dod522022m")
	require.NoError(t, err)
	require.EqualValues(t, 7*4096, m.RoundSize(4096, 512))
}

func TestTerminalPassTypePerMethod(t *testing.T) {
	dod, err := Lookup("dod522022m")
	require.NoError(t, err)
	require.Equal(t, device.PassFinalBlank, dod.Terminal)

	ops2, err := Lookup("ops2")
	require.NoError(t, err)
	require.Equal(t, device.PassFinalOps2, ops2.Terminal)

	zero, err := Lookup("zero")
	require.NoError(t, err)
	require.Equal(t, device.PassNone, zero.Terminal)
}
