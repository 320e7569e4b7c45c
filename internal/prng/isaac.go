// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package prng

import "encoding/binary"

// isaacState is a port of Bob Jenkins' ISAAC ("rand.c 20010626"), the
// generator the C source names dwipe_isaac in src/prng.c.
type isaacState struct {
	randrsl [isaacSize]uint32
	randmem [isaacSize]uint32
	randa   uint32
	randb   uint32
	randc   uint32

	// pos is the cursor into randrsl for the next output word; a fresh
	// block is produced by generate() once pos reaches isaacSize.
	pos int
}

const (
	isaacSizeL = 8
	isaacSize  = 1 << isaacSizeL // 256
	isaacHalf  = isaacSize / 2
	goldenRatio = 0x9e3779b9
)

func isaacMix(a, b, c, d, e, f, g, h *uint32) {
	*a ^= *b << 11
	*d += *a
	*b += *c
	*b ^= *c >> 2
	*e += *b
	*c += *d
	*c ^= *d << 8
	*f += *c
	*d += *e
	*d ^= *e >> 16
	*g += *d
	*e += *f
	*e ^= *f << 10
	*h += *e
	*f += *g
	*f ^= *g >> 4
	*a += *f
	*g += *h
	*g ^= *h << 8
	*b += *g
	*h += *a
	*h ^= *a >> 9
	*c += *h
	*a += *b
}

func isaacInd(mm *[isaacSize]uint32, x uint32) uint32 {
	return mm[(x>>2)&(isaacSize-1)]
}

// randinit performs ISAAC's initialization mixing. useSeed selects
// whether randrsl contributes entropy (the "flag" parameter to the C
// randinit()); with useSeed false the generator starts unseeded.
func (s *isaacState) randinit(useSeed bool) {
	a, b, c, d := uint32(goldenRatio), uint32(goldenRatio), uint32(goldenRatio), uint32(goldenRatio)
	e, f, g, h := uint32(goldenRatio), uint32(goldenRatio), uint32(goldenRatio), uint32(goldenRatio)

	for i := 0; i < 4; i++ {
		isaacMix(&a, &b, &c, &d, &e, &f, &g, &h)
	}

	for i := 0; i < isaacSize; i += 8 {
		if useSeed {
			a += s.randrsl[i]
			b += s.randrsl[i+1]
			c += s.randrsl[i+2]
			d += s.randrsl[i+3]
			e += s.randrsl[i+4]
			f += s.randrsl[i+5]
			g += s.randrsl[i+6]
			h += s.randrsl[i+7]
		}

		isaacMix(&a, &b, &c, &d, &e, &f, &g, &h)

		s.randmem[i] = a
		s.randmem[i+1] = b
		s.randmem[i+2] = c
		s.randmem[i+3] = d
		s.randmem[i+4] = e
		s.randmem[i+5] = f
		s.randmem[i+6] = g
		s.randmem[i+7] = h
	}

	if useSeed {
		for i := 0; i < isaacSize; i += 8 {
			a += s.randmem[i]
			b += s.randmem[i+1]
			c += s.randmem[i+2]
			d += s.randmem[i+3]
			e += s.randmem[i+4]
			f += s.randmem[i+5]
			g += s.randmem[i+6]
			h += s.randmem[i+7]

			isaacMix(&a, &b, &c, &d, &e, &f, &g, &h)

			s.randmem[i] = a
			s.randmem[i+1] = b
			s.randmem[i+2] = c
			s.randmem[i+3] = d
			s.randmem[i+4] = e
			s.randmem[i+5] = f
			s.randmem[i+6] = g
			s.randmem[i+7] = h
		}
	}

	s.randa, s.randb, s.randc = 0, 0, 0
	s.generate()
	s.pos = 0
}

// generate runs one full ISAAC step, producing 256 fresh words into
// randrsl. It is the Go translation of the C isaac()/rngstep macros:
// the two-loop pointer-chasing structure in the reference collapses to
// a single loop once the pairing m2 = (m + isaacHalf) % isaacSize is
// made explicit.
func (s *isaacState) generate() {
	s.randc++
	a := s.randa
	b := s.randb + s.randc

	for i := 0; i < isaacSize; i++ {
		var mixVal uint32
		switch i % 4 {
		case 0:
			mixVal = a << 13
		case 1:
			mixVal = a >> 6
		case 2:
			mixVal = a << 2
		case 3:
			mixVal = a >> 16
		}

		m2 := (i + isaacHalf) % isaacSize

		x := s.randmem[i]
		a = (a ^ mixVal) + s.randmem[m2]
		y := isaacInd(&s.randmem, x) + a + b
		s.randmem[i] = y
		b = isaacInd(&s.randmem, y>>isaacSizeL) + x
		s.randrsl[i] = b
	}

	s.randa = a
	s.randb = b
}

type isaacPRNG struct{}

func (isaacPRNG) Label() string { return "ISAAC (rand.c 20010626)" }

// Init seeds from the minimum of the supplied entropy and the size of
// the randrsl seed buffer. With no entropy at all, ISAAC is
// initialized unseeded.
func (isaacPRNG) Init(state *State, seed []byte) error {
	if state.isaac == nil {
		state.isaac = &isaacState{}
	}
	s := state.isaac

	maxBytes := isaacSize * 4
	n := len(seed)
	if n > maxBytes {
		n = maxBytes
	}

	var raw [isaacSize * 4]byte
	copy(raw[:], seed[:n])

	for i := 0; i < isaacSize; i++ {
		s.randrsl[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}

	s.randinit(n > 0)
	return nil
}

// Read fills buf completely from the ISAAC output stream.
//
// This is a deliberate divergence from the original C dwipe_isaac_read,
// which returns early without touching the buffer at all. Here, Read
// actually produces output, so verification of ISAAC-wiped patterns is
// meaningful instead of silently comparing against stale memory.
func (isaacPRNG) Read(state *State, buf []byte) error {
	if state.isaac == nil {
		state.isaac = &isaacState{}
		state.isaac.randinit(false)
	}
	s := state.isaac

	i := 0
	for i < len(buf) {
		if s.pos >= isaacSize {
			s.generate()
		}

		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], s.randrsl[s.pos])
		s.pos++

		n := copy(buf[i:], word[:])
		i += n
	}

	return nil
}
