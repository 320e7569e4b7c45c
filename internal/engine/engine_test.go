// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package engine

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/entropy"
	"github.com/dwipe-project/dwipe/internal/pass"
	"github.com/dwipe-project/dwipe/internal/pattern"
	"github.com/dwipe-project/dwipe/internal/prng"
)

func loopback(t *testing.T, size int64) *device.Context {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "dwipe-engine-loopback-")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))

	fd, err := device.Open(f.Name(), os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { fd.Close() })

	return device.New(f.Name(), fd, uint64(size), 512, 512, prng.Twister)
}

func entropySource() *entropy.Source {
	// An all-zero stream is sufficient entropy for deterministic tests:
	// it still reseeds the PRNG (with an all-zero key) identically on
	// every call, which is all the write/verify pairing requires.
	return entropy.FromReader(zeroReader{})
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestWipeZeroMethodAllZero(t *testing.T) {
	dev := loopback(t, 64*1024)
	method, err := pattern.Lookup("zero")
	require.NoError(t, err)

	results := Wipe(context.Background(), []*device.Context{dev}, entropySource(), Options{
		Method: method,
		Rounds: 1,
		Verify: pass.VerifyAll,
	})

	require.Len(t, results, 1)
	require.Equal(t, OutcomePass, results[0].Outcome)
	require.EqualValues(t, 0, results[0].VerifyErrors)

	data, err := os.ReadFile(dev.Name)
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, make([]byte, len(data))))
}

func TestWipeDodShortVerifyLastOnlyChecksFinalPattern(t *testing.T) {
	dev := loopback(t, 16*1024)
	method, err := pattern.Lookup("dodshort")
	require.NoError(t, err)
	require.Len(t, method.Patterns, 3)

	results := Wipe(context.Background(), []*device.Context{dev}, entropySource(), Options{
		Method: method,
		Rounds: 1,
		Verify: pass.VerifyLast,
	})

	require.Equal(t, OutcomePass, results[0].Outcome)
}

func TestWipeRoundsMultipliesTotalBytesWritten(t *testing.T) {
	dev := loopback(t, 8*1024)
	method, err := pattern.Lookup("dod522022m")
	require.NoError(t, err)
	require.Len(t, method.Patterns, 7)

	results := Wipe(context.Background(), []*device.Context{dev}, entropySource(), Options{
		Method: method,
		Rounds: 2,
		Verify: pass.VerifyNone,
	})

	require.Equal(t, OutcomePass, results[0].Outcome)

	// spec.md testable scenario 5: round_size = rounds × passes × device_size,
	// and total bytes written equals round_size.
	snap := dev.Snapshot()
	require.EqualValues(t, 2*7*8*1024, snap.RoundSize)
	require.EqualValues(t, snap.RoundSize, snap.RoundDone)
}

func TestWipeCancellationMarksIncomplete(t *testing.T) {
	dev := loopback(t, 256*1024*1024) // large enough that cancellation wins the race
	method, err := pattern.Lookup("zero")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	results := Wipe(ctx, []*device.Context{dev}, entropySource(), Options{
		Method: method,
		Rounds: 1,
	})

	require.Equal(t, OutcomeIncomplete, results[0].Outcome)
}

func TestOutcomeStringer(t *testing.T) {
	require.Equal(t, "success", OutcomePass.String())
	require.Equal(t, "failure", OutcomeFail.String())
	require.Equal(t, "incomplete", OutcomeIncomplete.String())
}
