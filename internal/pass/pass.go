// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package pass implements the write and verify passes that overwrite
// or check one pattern across an entire device, block by block. It is
// the Go counterpart of dwipe_random_pass/dwipe_random_verify/
// dwipe_static_pass/dwipe_static_verify from the original source,
// generalized to share one block-traversal loop regardless of whether
// the pattern is fixed bytes or the random stream.
package pass

import (
	"fmt"
	"time"

	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/logger"
	"github.com/dwipe-project/dwipe/internal/pattern"
)

// VerifyMode mirrors dwipe_verify_t: how much of a method's passes get
// read back and checked.
type VerifyMode int

const (
	VerifyNone VerifyMode = iota
	VerifyLast
	VerifyAll
)

// ErrCancelled is returned when a pass stops early because the
// device's context was cancelled.
var ErrCancelled = fmt.Errorf("pass cancelled")

// Write overwrites the whole device with p, tiling fixed patterns
// across each block or drawing fresh bytes from the device's PRNG for
// the random pattern. A bad sector must not abort the whole pass: a
// write error on one block is logged, counted in ctx's pass-error
// counter, and the walk moves on to the next block, per spec.
func Write(ctx *device.Context, p pattern.Pattern) error {
	buf := make([]byte, ctx.BlockSize)

	return walk(ctx, func(offset int64, n int) error {
		chunk := buf[:n]
		fill(chunk, p, ctx, offset)

		if err := writeFull(ctx, chunk, offset); err != nil {
			logger.Warnf("%s: write error at offset %d: %v", ctx.Name, offset, err)
			ctx.RecordPassError()
		}
		return nil
	})
}

// writeFull writes all of chunk to offset, retrying the unwritten
// remainder at the next offset on a short write (spec.md §4.3 step 4).
func writeFull(ctx *device.Context, chunk []byte, offset int64) error {
	for written := 0; written < len(chunk); {
		n, err := ctx.FD.Pwrite(chunk[written:], offset+int64(written))
		if err != nil {
			return fmt.Errorf("writing %s at offset %d: %w", ctx.Name, offset+int64(written), err)
		}
		if n <= 0 {
			return fmt.Errorf("writing %s at offset %d: zero-length write", ctx.Name, offset+int64(written))
		}
		written += n
	}
	return nil
}

// Verify reads the whole device back and compares every block against
// what Write(ctx, p) should have produced, using the PRNG state
// supplied by the caller (the verify pass must be seeded with exactly
// the seed the preceding write pass used, never a fresh one, or every
// block will mismatch). A content mismatch increments ctx's
// verify-error counter; a read I/O error increments ctx's pass-error
// counter instead. Either way the pass continues.
func Verify(ctx *device.Context, p pattern.Pattern) error {
	buf := make([]byte, ctx.BlockSize)
	want := make([]byte, ctx.BlockSize)

	return walk(ctx, func(offset int64, n int) error {
		chunk := buf[:n]
		expected := want[:n]
		fill(expected, p, ctx, offset)

		if _, err := ctx.FD.Pread(chunk, offset); err != nil {
			logger.Warnf("%s: read error at offset %d: %v", ctx.Name, offset, err)
			ctx.RecordPassError()
			return nil
		}

		for i := range chunk {
			if chunk[i] != expected[i] {
				logger.Warnf("%s: verify mismatch at offset %d", ctx.Name, offset+int64(i))
				ctx.RecordVerifyError()
				break
			}
		}
		return nil
	})
}

// fill populates buf with one block's worth of a pattern: tiling the
// pattern's fixed bytes (continuing the tiling from the block's device
// offset, so the pattern runs unbroken across block boundaries), or
// drawing len(buf) fresh bytes from the device's PRNG when p is the
// random-stream pattern.
func fill(buf []byte, p pattern.Pattern, ctx *device.Context, offset int64) {
	if p.IsRandom() {
		if err := ctx.PRNG.Read(&ctx.PRNGState, buf); err != nil {
			// The PRNG interface never legitimately fails once seeded;
			// zero-fill rather than propagate a panic through a hot loop.
			for i := range buf {
				buf[i] = 0
			}
		}
		return
	}

	phase := int(offset % int64(len(p.Bytes)))
	for i := range buf {
		buf[i] = p.Bytes[(phase+i)%len(p.Bytes)]
	}
}

// walk traverses the device in ctx.BlockSize chunks, shrinking the
// final chunk to whatever remains, invoking fn for each. It stops
// early, returning ErrCancelled, if the context is cancelled between
// blocks.
func walk(ctx *device.Context, fn func(offset int64, n int) error) error {
	block := int64(ctx.BlockSize)
	total := int64(ctx.Size)

	for offset := int64(0); offset < total; offset += block {
		if ctx.Cancelled() {
			return ErrCancelled
		}

		n := block
		if offset+n > total {
			n = total - offset
		}

		if err := fn(offset, int(n)); err != nil {
			return err
		}

		ctx.RecordProgress(time.Now(), uint64(n))
	}

	return nil
}

// Sync flushes the device so the data written by the preceding pass
// is durable before the next pass (or verification) begins.
func Sync(ctx *device.Context) error {
	ctx.SetSyncPending(true)
	defer ctx.SetSyncPending(false)
	return ctx.FD.Sync()
}
