// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package entropy wraps the kernel entropy source that seeds dwipe's
// PRNGs.
//
// The production source is /dev/urandom, opened once at startup and
// held for the lifetime of the process. Tests substitute a
// deterministic io.Reader so that reseeding behavior (reseeding twice
// with the same entropy must produce a byte-identical stream) can be
// checked without depending on real randomness.
package entropy

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const KnobEntropy = "/dev/urandom"

// Source is a byte stream from which arbitrary-length reads produce
// uniformly random bytes. One Source is shared across every device
// worker goroutine, each reseeding its own PRNG independently, so Seed
// serializes access rather than assuming the underlying reader is
// safe for concurrent use.
type Source struct {
	mu    sync.Mutex
	r     io.Reader
	c     io.Closer
	label string
}

// Open opens the kernel entropy source named by path (normally
// KnobEntropy). It is a fatal setup error if this fails.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open entropy source %q: %w", path, err)
	}
	return &Source{r: f, c: f, label: path}, nil
}

// FromReader adapts an arbitrary io.Reader (e.g. a deterministic test
// source) into a Source. The returned Source's Close is a no-op.
func FromReader(r io.Reader) *Source {
	return &Source{r: r, label: "test-reader"}
}

// Label is the human-readable identifier for this entropy source,
// shown in status output.
func (s *Source) Label() string {
	return s.label
}

// Seed reads exactly n bytes of entropy, returning an error if fewer
// were available.
func (s *Source) Seed(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, fmt.Errorf("reading %d bytes of entropy: %w", n, err)
	}
	return buf, nil
}

// Close releases the underlying handle, if any.
func (s *Source) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
