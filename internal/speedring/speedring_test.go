// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package speedring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThroughputFloorsAtOne(t *testing.T) {
	r := New(4, time.Second)
	require.EqualValues(t, 1, r.Throughput(), "an empty ring must never report zero throughput")
}

func TestThroughputAccumulates(t *testing.T) {
	r := New(4, 10*time.Millisecond)
	start := time.Now()

	r.Sample(start, 1000)
	r.Sample(start.Add(20*time.Millisecond), 1000)
	r.Sample(start.Add(40*time.Millisecond), 1000)

	require.Greater(t, r.Throughput(), uint64(1))
}

func TestSamplesWithinGranularityAreCoalesced(t *testing.T) {
	r := New(4, time.Second)
	start := time.Now()

	r.Sample(start, 100)
	r.Sample(start.Add(100*time.Millisecond), 100) // well inside granularity, dropped

	require.EqualValues(t, 1, r.Throughput())
}

func TestRingEvictsOldestSample(t *testing.T) {
	r := New(2, time.Millisecond)
	start := time.Now()

	r.Sample(start, 10)
	r.Sample(start.Add(2*time.Millisecond), 10)
	r.Sample(start.Add(4*time.Millisecond), 10)
	r.Sample(start.Add(6*time.Millisecond), 10)

	require.EqualValues(t, 2, r.filled)
}

func TestETAGoesToZeroAsRemainingShrinks(t *testing.T) {
	r := New(4, time.Millisecond)
	start := time.Now()

	r.Sample(start, 1000)
	r.Sample(start.Add(2*time.Millisecond), 1000)

	require.Equal(t, time.Duration(0), r.ETA(0))
	require.GreaterOrEqual(t, r.ETA(1000), time.Duration(0))
}
