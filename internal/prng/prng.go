// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package prng implements the pluggable pseudo-random stream registry.
//
// A PRNG is the capability pair {Init(state, seed), Read(state, buf)}:
// state is an opaque handle that the implementation allocates on its
// first Init call and reuses across reseeds, the same lazy-allocate
// pattern the original C dwipe_twister_init/dwipe_isaac_init use with
// their "if *state == NULL, malloc it" first-call check.
package prng

import "fmt"

// State is the opaque per-device PRNG state slot. The engine owns the
// slot; whichever PRNG implementation is selected allocates and owns
// the value stored inside it.
type State struct {
	twister *twisterState
	isaac   *isaacState
	chacha  *chachaState
}

// PRNG is a pluggable pseudo-random byte stream, seeded from entropy.
type PRNG interface {
	// Label is the human-readable name shown in status output.
	Label() string

	// Init (re)seeds state from seed. It allocates the backing state on
	// the first call for a given State value and reuses it on
	// subsequent reseeds.
	Init(state *State, seed []byte) error

	// Read fills buf completely from the PRNG's output stream.
	Read(state *State, buf []byte) error
}

// Mersenne Twister (mt19937), ISAAC and a ChaCha20-based stream are the
// three registry entries. Mersenne Twister and ISAAC match the
// original generators; ChaCha20 is an added modern stream cipher based
// PRNG.
var (
	Twister PRNG = twisterPRNG{}
	Isaac   PRNG = isaacPRNG{}
	ChaCha  PRNG = chachaPRNG{}
)

var registry = map[string]PRNG{
	"mersenne": Twister,
	"twister":  Twister,
	"mt19937":  Twister,
	"isaac":    Isaac,
	"chacha":   ChaCha,
}

// Lookup resolves one of the CLI-recognized PRNG names to its
// implementation.
func Lookup(name string) (PRNG, error) {
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown prng: %q", name)
	}
	return p, nil
}
