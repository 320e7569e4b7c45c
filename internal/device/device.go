// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package device wraps raw block-device access: opening a device
// node, probing its sector and block size, and exposing the
// positioned read/write operations the pass runner drives directly
// against the underlying file descriptor.
package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/dwipe-project/dwipe/internal/prng"
	"github.com/dwipe-project/dwipe/internal/speedring"
)

// Signal requests that a running wipe stop early.
type Signal int

const (
	SignalNone Signal = iota
	SignalCancel
)

// PassType classifies what the current pass is doing, reported
// alongside the round/pass counters (spec.md §3's pass_type
// enumeration).
type PassType int

const (
	PassNone PassType = iota
	PassWrite
	PassVerify
	PassFinalBlank
	PassFinalOps2
)

func (p PassType) String() string {
	switch p {
	case PassWrite:
		return "write"
	case PassVerify:
		return "verify"
	case PassFinalBlank:
		return "final-blank"
	case PassFinalOps2:
		return "final-ops2"
	default:
		return "none"
	}
}

// Result is the terminal outcome recorded for one device once its
// worker goroutine exits.
type Result struct {
	Success      bool
	PassErrors   uint64
	VerifyErrors uint64
	Err          error
}

// Context is the per-device state a worker goroutine owns for the
// duration of one wipe invocation: the open descriptor, its measured
// geometry, the PRNG state it reseeds on every pass, and the
// progress fields the status reporter polls concurrently.
//
// This is a Go-idiomatic reshaping of dwipe_context_t from the
// original C source: fields that were raw ints/pointers there
// (device_fd, device_size, sector_size, prng_seed) become typed Go
// values owned by one goroutine, with only the progress fields read
// concurrently (guarded by mu).
type Context struct {
	Name string
	FD   FileDescriptor

	Size       uint64
	SectorSize uint64
	BlockSize  uint64

	PRNG      prng.PRNG
	PRNGState prng.State

	Select bool

	mu           sync.Mutex
	pass         int
	passTotal    int
	round        int
	roundTotal   int
	passType     PassType
	passSize     uint64
	passDone     uint64
	roundSize    uint64
	roundDone    uint64
	passErrors   uint64
	verifyErrors uint64
	ring         *speedring.Ring
	syncPending  bool
	signal       Signal
	result       *Result
}

// New wraps an already-open descriptor with its measured geometry.
func New(name string, fd FileDescriptor, size, sectorSize, blockSize uint64, p prng.PRNG) *Context {
	return &Context{
		Name:       name,
		FD:         fd,
		Size:       size,
		SectorSize: sectorSize,
		BlockSize:  blockSize,
		PRNG:       p,
		ring:       speedring.New(speedring.DefaultSize, speedring.DefaultGranularity),
	}
}

// Progress is an immutable snapshot of a Context's current state,
// safe to pass across goroutines.
type Progress struct {
	Name         string
	Round        int
	RoundTotal   int
	Pass         int
	PassTotal    int
	PassType     PassType
	PassSize     uint64
	PassDone     uint64
	RoundSize    uint64
	RoundDone    uint64
	RoundPercent float64
	Size         uint64
	Throughput   uint64
	ETA          time.Duration
	PassErrors   uint64
	VerifyErrors uint64
	SyncPending  bool
	Result       *Result
}

// SetWorkload fixes the total byte workload a method run will perform
// across every round's write passes (spec.md §3 invariant 2's
// round_size: "rounds × Σ per-pattern sizes"). round_done and
// round_percent are measured against this total and never reset
// between passes or rounds; only a verify sub-phase's bytes (tracked
// via pass_done/pass_size instead) are excluded from it, since
// testable scenario 5 defines round_size in terms of bytes written,
// not bytes verified.
func (c *Context) SetWorkload(roundSize uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roundSize = roundSize
}

// SetRoundPass starts a new write pass: records which round/pass the
// worker is now running out of roundTotal/passTotal, tags the pass's
// type for reporting, and resets the per-pass byte counters. It never
// resets round_done, which accumulates across the whole run.
func (c *Context) SetRoundPass(round, roundTotal, pass, passTotal int, passType PassType, passSize uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.round, c.roundTotal = round, roundTotal
	c.pass, c.passTotal = pass, passTotal
	c.passType = passType
	c.passSize = passSize
	c.passDone = 0
}

// SetPassType switches the current pass's phase (e.g. a write pass
// handing off to its paired verify) without disturbing the
// round/pass counters, resetting pass_done so it tracks only the new
// phase's bytes.
func (c *Context) SetPassType(passType PassType, passSize uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passType = passType
	c.passSize = passSize
	c.passDone = 0
}

// SetSyncPending marks whether the worker is currently blocked inside
// a flush/fsync between passes.
func (c *Context) SetSyncPending(pending bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncPending = pending
}

// RecordProgress accounts for n additional bytes processed at time
// now, updating the rolling throughput estimator. Bytes processed
// during a verify sub-phase count toward pass_done but not
// round_done: round_size/round_done track the write workload only.
func (c *Context) RecordProgress(now time.Time, n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passDone += n
	if c.passType != PassVerify {
		c.roundDone += n
	}
	c.ring.Sample(now, n)
}

// RecordVerifyError increments the verification mismatch counter for
// the current pass; one bad sector does not abort the pass.
func (c *Context) RecordVerifyError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifyErrors++
}

// RecordPassError increments the read/write I/O error counter for the
// current pass. A bad sector is logged and skipped, never fatal.
func (c *Context) RecordPassError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passErrors++
}

// Finish records the terminal result once the worker goroutine exits.
func (c *Context) Finish(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = &r
}

// RequestCancel asks the worker to stop at the next safe checkpoint
// (the next block boundary).
func (c *Context) RequestCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signal = SignalCancel
}

// Cancelled reports whether RequestCancel has been called.
func (c *Context) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signal == SignalCancel
}

// Snapshot returns a consistent, concurrency-safe read of the
// Context's current progress. round_percent and the ETA are both
// computed over the whole run's round_size/round_done, per spec.md
// §4.3 steps 5-6, so they advance monotonically across every pass of
// every round instead of resetting at each pass boundary.
func (c *Context) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	var percent float64
	if c.roundSize > 0 {
		percent = float64(c.roundDone) / float64(c.roundSize) * 100
	}

	remaining := uint64(0)
	if c.roundSize > c.roundDone {
		remaining = c.roundSize - c.roundDone
	}

	return Progress{
		Name:         c.Name,
		Round:        c.round,
		RoundTotal:   c.roundTotal,
		Pass:         c.pass,
		PassTotal:    c.passTotal,
		PassType:     c.passType,
		PassSize:     c.passSize,
		PassDone:     c.passDone,
		RoundSize:    c.roundSize,
		RoundDone:    c.roundDone,
		RoundPercent: percent,
		Size:         c.Size,
		Throughput:   c.ring.Throughput(),
		ETA:          c.ring.ETA(remaining),
		PassErrors:   c.passErrors,
		VerifyErrors: c.verifyErrors,
		SyncPending:  c.syncPending,
		Result:       c.result,
	}
}

// Close releases the device's file descriptor.
func (c *Context) Close() error {
	return c.FD.Close()
}

// defaultSectorSize is the fallback used when BLKSSZGET fails or the
// platform has no such ioctl, the same 512-byte default the original
// source assumes.
const defaultSectorSize = 512

// normalizeBlockSize enforces invariant 3 (block_size == sector_size
// after initialization): whenever the probed soft block size differs
// from the hard sector size, the sector size wins outright, per
// spec.md §3's "the soft block size is forced to equal the hard
// sector size" rule — this is not a minimum, it is an equality.
func normalizeBlockSize(sectorSize, blockSize uint64) uint64 {
	if blockSize != sectorSize {
		return sectorSize
	}
	return blockSize
}

// ValidateSize cross-checks a size obtained by seeking to the end of
// the device against a size obtained from the BLKGETSIZE64 ioctl.
// Any mismatch is treated as a fatal setup error: the original C
// source flags this behavior as worth reconsidering but keeps it
// fatal, and we match that rather than silently trusting one source
// over the other.
func ValidateSize(seekSize, ioctlSize uint64) error {
	if seekSize != ioctlSize {
		return fmt.Errorf("device size mismatch: lseek reports %d bytes, BLKGETSIZE64 reports %d bytes", seekSize, ioctlSize)
	}
	return nil
}
