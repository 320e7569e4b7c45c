// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package engine supervises one worker goroutine per selected device,
// running each through its configured wipe method and collecting
// terminal results. It generalizes the teacher's goroutine-per-target
// worker model (Worker.eventLoop, Manager.runPhase) from a storage
// benchmark's read/write phases to a wipe's round/pass sequence.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/entropy"
	"github.com/dwipe-project/dwipe/internal/logger"
	"github.com/dwipe-project/dwipe/internal/pass"
	"github.com/dwipe-project/dwipe/internal/pattern"
)

// Outcome is the terminal classification of one device's wipe.
type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeFail
	OutcomeIncomplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "success"
	case OutcomeFail:
		return "failure"
	default:
		return "incomplete"
	}
}

// Options configures one Wipe invocation across every selected
// device.
type Options struct {
	Method       *pattern.Method
	Rounds       int
	Sync         bool
	Verify       pass.VerifyMode
	ProgressEach time.Duration // 0 disables periodic progress logging
}

// Result is the final per-device outcome returned from Wipe.
type Result struct {
	Name         string
	Outcome      Outcome
	PassErrors   uint64
	VerifyErrors uint64
	Err          error
}

// Wipe runs opts.Method against every device in devices concurrently,
// one goroutine per device, until all finish, the context is
// cancelled, or a caller-level signal requests early stop. It blocks
// until every worker has returned a terminal Result.
func Wipe(ctx context.Context, devices []*device.Context, src *entropy.Source, opts Options) []Result {
	results := make([]Result, len(devices))

	var wg sync.WaitGroup
	wg.Add(len(devices))

	for i, d := range devices {
		go func(i int, d *device.Context) {
			defer wg.Done()
			results[i] = runWorker(ctx, d, src, opts)
		}(i, d)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(progressInterval(opts.ProgressEach))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return results

		case <-ctx.Done():
			for _, d := range devices {
				d.RequestCancel()
			}
			<-done
			return results

		case <-ticker.C:
			if opts.ProgressEach > 0 {
				logProgress(devices)
			}
		}
	}
}

func progressInterval(each time.Duration) time.Duration {
	if each <= 0 {
		return time.Hour
	}
	return each
}

func logProgress(devices []*device.Context) {
	for _, d := range devices {
		p := d.Snapshot()
		logger.Infof("%s: round %d/%d pass %d/%d %.1f%% %d B/s", p.Name, p.Round, p.RoundTotal, p.Pass, p.PassTotal, p.RoundPercent, p.Throughput)
	}
}

// runWorker drives a single device's Context through its configured
// method and turns the outcome into a Result, mirroring the
// eventLoop/sendResponse pattern of a single benchmark worker
// finishing its assigned phase.
func runWorker(ctx context.Context, d *device.Context, src *entropy.Source, opts Options) Result {
	defer d.Close()

	err := runMethod(d, opts.Method, src, opts.Rounds, opts.Verify, opts.Sync)

	snap := d.Snapshot()

	result := Result{Name: d.Name, PassErrors: snap.PassErrors, VerifyErrors: snap.VerifyErrors}

	switch {
	case err == pass.ErrCancelled:
		result.Outcome = OutcomeIncomplete
		result.Err = err
	case err != nil:
		result.Outcome = OutcomeFail
		result.Err = err
	case snap.VerifyErrors > 0:
		// A verification mismatch means the pattern was not actually
		// written to at least one sector: treated as a real failure,
		// not merely an incomplete run.
		result.Outcome = OutcomeFail
	case snap.PassErrors > 0:
		// Bad sectors were skipped but every other block was written
		// (and, where applicable, verified) successfully.
		result.Outcome = OutcomeIncomplete
	default:
		result.Outcome = OutcomePass
	}

	d.Finish(device.Result{
		Success:      result.Outcome == OutcomePass,
		PassErrors:   result.PassErrors,
		VerifyErrors: result.VerifyErrors,
		Err:          result.Err,
	})

	if result.Err != nil {
		logger.Errorf("%s: wipe ended: %v", d.Name, result.Err)
	} else {
		logger.Infof("%s: wipe finished: %s", d.Name, result.Outcome)
	}

	return result
}
