// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package engine

import (
	"fmt"

	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/entropy"
	"github.com/dwipe-project/dwipe/internal/logger"
	"github.com/dwipe-project/dwipe/internal/pass"
	"github.com/dwipe-project/dwipe/internal/pattern"
)

// seedSize is the number of entropy bytes drawn to reseed the PRNG at
// the start of every pass, matching the 512-byte / 128-word seed the
// original source pulls from /dev/urandom per pass.
const seedSize = 512

// runMethod runs every round of m against ctx, reseeding the PRNG
// before each pass and verifying according to mode. A pass's verify
// step reuses that same pass's write seed (resolves the pairing
// requirement between a write pass and its verification: reseeding
// independently would make every block mismatch).
func runMethod(ctx *device.Context, m *pattern.Method, src *entropy.Source, rounds int, mode pass.VerifyMode, sync bool) error {
	passesPerRound := len(m.Patterns)
	totalPasses := passesPerRound * rounds

	roundSize := uint64(m.RoundSize(int64(ctx.Size), int64(ctx.BlockSize))) * uint64(rounds)
	ctx.SetWorkload(roundSize)

	passNumber := 0
	for round := 1; round <= rounds; round++ {
		for i, p := range m.Patterns {
			if ctx.Cancelled() {
				return pass.ErrCancelled
			}

			passNumber++

			passType := device.PassWrite
			if i == passesPerRound-1 && m.Terminal != device.PassNone {
				passType = m.Terminal
			}
			ctx.SetRoundPass(round, rounds, passNumber, totalPasses, passType, ctx.Size)

			seed, err := src.Seed(seedSize)
			if err != nil {
				return fmt.Errorf("drawing pass seed: %w", err)
			}
			if err := ctx.PRNG.Init(&ctx.PRNGState, seed); err != nil {
				return fmt.Errorf("seeding prng: %w", err)
			}

			logger.Infof("%s: round %d/%d pass %d/%d (%s)", ctx.Name, round, rounds, i+1, passesPerRound, label(p))

			if err := pass.Write(ctx, p); err != nil {
				return err
			}

			if sync {
				if err := pass.Sync(ctx); err != nil {
					return fmt.Errorf("syncing %s: %w", ctx.Name, err)
				}
			}

			if shouldVerify(mode, round, rounds, i, passesPerRound) {
				ctx.SetPassType(device.PassVerify, ctx.Size)
				if err := ctx.PRNG.Init(&ctx.PRNGState, seed); err != nil {
					return fmt.Errorf("reseeding prng for verify: %w", err)
				}
				if err := pass.Verify(ctx, p); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// shouldVerify decides whether the pass at passIndex (0-based, out of
// passesPerRound) gets a verify pass. VerifyLast means only the very
// last pattern of the very last round, per spec: a method's last
// round gets its final pattern read back, not every round's.
func shouldVerify(mode pass.VerifyMode, round, rounds, passIndex, passesPerRound int) bool {
	switch mode {
	case pass.VerifyAll:
		return true
	case pass.VerifyLast:
		return round == rounds && passIndex == passesPerRound-1
	default:
		return false
	}
}

func label(p pattern.Pattern) string {
	if p.IsRandom() {
		return "random"
	}
	return fmt.Sprintf("%x", p.Bytes)
}
