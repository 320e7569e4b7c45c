// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Command dwipe drives the wiping engine from the command line: it
// parses options with docopt-go the way sibench's own main.go does,
// opens and probes the selected devices, runs the engine, and leaves
// a result file behind for each device.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/dustin/go-humanize"

	"github.com/dwipe-project/dwipe/internal/config"
	"github.com/dwipe-project/dwipe/internal/device"
	"github.com/dwipe-project/dwipe/internal/discover"
	"github.com/dwipe-project/dwipe/internal/engine"
	"github.com/dwipe-project/dwipe/internal/entropy"
	"github.com/dwipe-project/dwipe/internal/logger"
	"github.com/dwipe-project/dwipe/internal/notify"
	"github.com/dwipe-project/dwipe/internal/pass"
	"github.com/dwipe-project/dwipe/internal/pattern"
	"github.com/dwipe-project/dwipe/internal/prng"
	"github.com/dwipe-project/dwipe/internal/report"
	"github.com/dwipe-project/dwipe/internal/status"
)

// Arguments is the struct DocOpt binds our command line options into,
// the same pattern _teacher_copy/sibench/main.go uses.
type Arguments struct {
	Wipe bool
	List bool

	Devices []string

	Verbose    bool
	AutoNuke   bool
	Method     string
	PRNG       string
	Rounds     int
	Sync       bool
	Verify     string
	LogFile    string
	Web        bool
	WebAddr    string
	WebUser    string
	WebPass    string
	NotifyStart   string
	NotifySuccess string
	NotifyFail    string
}

func usage() string {
	return `dwipe - securely erase block storage devices.

Usage:
  dwipe wipe [-v] [--autonuke] [--method=METHOD] [--prng=PRNG] [--rounds=N]
             [--sync] [--verify=LEVEL] [--log-file=FILE]
             [--web] [--web-addr=ADDR] [--web-user=USER] [--web-pass=PASS]
             [--notify-start=URL] [--notify-success=URL] [--notify-fail=URL]
             <devices>...
  dwipe list
  dwipe -h | --help

Commands:
  wipe                          Wipe the named device(s).
  list                          List candidate devices found on this host.

Options:
  -h, --help                    Show full usage.
  -v, --verbose                 Turn on debug output.
  --autonuke                    Skip interactive confirmation.
  --method=METHOD               Wipe method: zero, random, dodshort,
                                 dod522022m, gutmann, ops2.            [default: zero]
  --prng=PRNG                   PRNG for random passes: mersenne, isaac,
                                 chacha.                               [default: mersenne]
  --rounds=N                    Number of rounds to run the method.    [default: 1]
  --sync                        Request synchronous writes between passes.
  --verify=LEVEL                Verify level: off, last, all.         [default: off]
  --log-file=FILE               Append log output to FILE in addition to stdout.
  --web                         Start the read-only HTTP status endpoint.
  --web-addr=ADDR                Address for the status endpoint to listen on. [default: :8080]
  --web-user=USER                HTTP basic auth username for the status endpoint.
  --web-pass=PASS                HTTP basic auth password for the status endpoint.
  --notify-start=URL             Webhook fired when a wipe begins.
  --notify-success=URL           Webhook fired when every device passes.
  --notify-fail=URL              Webhook fired when any device fails.
`
}

func dieOnError(err error, format string, a ...interface{}) {
	if err != nil {
		fmt.Fprintf(os.Stderr, format, a...)
		fmt.Fprintf(os.Stderr, ": %v\n", err)
		os.Exit(-1)
	}
}

func main() {
	opts, err := docopt.ParseDoc(usage())
	dieOnError(err, "error parsing arguments")

	var args Arguments
	err = opts.Bind(&args)
	dieOnError(err, "failure binding arguments")

	if args.Verbose {
		logger.SetLevel(logger.Debug)
	}

	if args.List {
		runList()
		return
	}

	if args.Wipe {
		runWipe(&args)
	}
}

func runList() {
	entries, err := discover.List()
	dieOnError(err, "failure enumerating devices")

	for _, e := range entries {
		fmt.Println(e.Path)
	}
}

func runWipe(args *Arguments) {
	cfg, err := buildConfig(args)
	dieOnError(err, "failure building configuration")

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		dieOnError(err, "failure opening log file %s", cfg.LogFile)
		defer f.Close()
		logger.SetLogFile(f)
	}

	if !cfg.AutoNuke {
		if !confirm(args.Devices) {
			logger.Infof("aborted, no devices touched")
			return
		}
	}

	method, err := pattern.Lookup(cfg.Method)
	dieOnError(err, "unknown method %q", cfg.Method)

	prngImpl, err := prng.Lookup(cfg.PRNG)
	dieOnError(err, "unknown prng %q", cfg.PRNG)

	src, err := entropy.Open(entropy.KnobEntropy)
	dieOnError(err, "failure opening entropy source")
	defer src.Close()

	devices := make([]*device.Context, 0, len(args.Devices))
	for _, path := range args.Devices {
		ctx, err := openDevice(path, prngImpl)
		dieOnError(err, "failure opening device %s", path)
		ctx.Select = true
		devices = append(devices, ctx)
	}

	if len(devices) == 0 {
		dieOnError(fmt.Errorf("no devices selected"), "nothing to wipe")
	}

	verifyMode := toPassVerify(cfg.Verify)

	fireNotify(cfg.Notify, notifyStart)

	enumerated := len(devices)
	if entries, err := discover.List(); err != nil {
		logger.Warnf("failure enumerating devices for status reporting: %v", err)
	} else {
		enumerated = len(entries)
	}

	statusSrv := status.New(status.Options{
		Enabled:      cfg.Web.Enabled,
		Addr:         cfg.Web.Addr,
		AuthUser:     cfg.Web.AuthUser,
		AuthPass:     cfg.Web.AuthPass,
		EntropyLabel: src.Label(),
		PRNGLabel:    prngImpl.Label(),
		MethodLabel:  method.Label,
		VerifyLabel:  cfg.Verify.String(),
		Rounds:       cfg.Rounds,
		Enumerated:   enumerated,
	}, devices)

	var wg sync.WaitGroup
	if cfg.Web.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := statusSrv.Run(); err != nil {
				logger.Errorf("status endpoint stopped: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warnf("signal received, cancelling in-flight wipes")
		cancel()
	}()

	results := engine.Wipe(ctx, devices, src, engine.Options{
		Method:       method,
		Rounds:       cfg.Rounds,
		Sync:         cfg.Sync,
		Verify:       verifyMode,
		ProgressEach: time.Second,
	})

	signal.Stop(sigCh)
	cancel()
	statusSrv.Shutdown()
	wg.Wait()

	allPass := true
	for i, r := range results {
		logger.Infof("%s: %s (pass errors=%d verify errors=%d)", r.Name, r.Outcome, r.PassErrors, r.VerifyErrors)

		err := report.WriteResultFile(devices[i].Name, devices[i].Name, method, cfg.Rounds, cfg.Verify.String(), r)
		if err != nil {
			logger.Errorf("%s: failure writing result file: %v", r.Name, err)
		}

		if r.Outcome != engine.OutcomePass {
			allPass = false
		}
	}

	if allPass {
		fireNotify(cfg.Notify, notifySuccess)
		os.Exit(0)
	}

	fireNotify(cfg.Notify, notifyFail)
	for _, r := range results {
		if r.Outcome == engine.OutcomeFail {
			os.Exit(-1)
		}
	}
	os.Exit(1)
}

type notifyEvent int

const (
	notifyStart notifyEvent = iota
	notifySuccess
	notifyFail
)

// fireNotify dispatches to the matching lifecycle webhook, if
// configured.
func fireNotify(n config.NotifyOptions, e notifyEvent) {
	o := notify.Options(n)
	switch e {
	case notifyStart:
		o.Start()
	case notifySuccess:
		o.Success()
	case notifyFail:
		o.Fail()
	}
}

func toPassVerify(v config.VerifyLevel) pass.VerifyMode {
	switch v {
	case config.VerifyLast:
		return pass.VerifyLast
	case config.VerifyAll:
		return pass.VerifyAll
	default:
		return pass.VerifyNone
	}
}

func openDevice(path string, p prng.PRNG) (*device.Context, error) {
	fd, err := device.Open(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	sectorSize, blockSize, size, err := device.Probe(fd)
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}
	if size == 0 {
		fd.Close()
		return nil, fmt.Errorf("%s has zero size", path)
	}

	logger.Infof("%s: %s, sector size %d", path, humanize.Bytes(size), sectorSize)

	return device.New(path, fd, size, sectorSize, blockSize, p), nil
}

func confirm(devices []string) bool {
	fmt.Println("The following devices will be irrecoverably erased:")
	for _, d := range devices {
		fmt.Println("  " + d)
	}
	fmt.Print("Type 'yes' to continue: ")

	var answer string
	fmt.Scanln(&answer)
	return answer == "yes"
}

func buildConfig(args *Arguments) (config.Options, error) {
	cfg := config.Default()

	cfg.Method = args.Method
	cfg.PRNG = args.PRNG
	cfg.Rounds = args.Rounds
	cfg.Sync = args.Sync
	cfg.AutoNuke = args.AutoNuke
	cfg.LogFile = args.LogFile

	if cfg.Rounds < 1 {
		return cfg, fmt.Errorf("rounds must be >= 1, got %d", cfg.Rounds)
	}

	v, err := config.ParseVerifyLevel(args.Verify)
	if err != nil {
		return cfg, err
	}
	cfg.Verify = v

	cfg.Web = config.WebOptions{
		Enabled:  args.Web,
		Addr:     args.WebAddr,
		AuthUser: args.WebUser,
		AuthPass: args.WebPass,
	}
	cfg.Notify = config.NotifyOptions{
		StartURL:   args.NotifyStart,
		SuccessURL: args.NotifySuccess,
		FailURL:    args.NotifyFail,
	}

	return cfg, nil
}
