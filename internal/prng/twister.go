// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

package prng

import "encoding/binary"

// twisterState is a direct port of the mt19937ar-cok state (mt[624] plus
// a cursor), the reference Mersenne Twister implementation that the C
// source includes as mt19937ar-cok.c.
type twisterState struct {
	mt  [624]uint32
	mti int
}

const (
	twisterN         = 624
	twisterM         = 397
	twisterMatrixA   = 0x9908b0df
	twisterUpperMask = 0x80000000
	twisterLowerMask = 0x7fffffff
)

func (s *twisterState) initGenrand(seed uint32) {
	s.mt[0] = seed
	for i := 1; i < twisterN; i++ {
		s.mt[i] = 1812433253*(s.mt[i-1]^(s.mt[i-1]>>30)) + uint32(i)
	}
	s.mti = twisterN
}

// initByArray is the standard mt19937ar multi-key seeding routine,
// used because dwipe_twister_init seeds from an arbitrary-length
// entropy buffer rather than a single 32-bit value.
func (s *twisterState) initByArray(key []uint32) {
	s.initGenrand(19650218)

	i, j := 1, 0
	k := twisterN
	if len(key) > k {
		k = len(key)
	}

	for ; k > 0; k-- {
		s.mt[i] = (s.mt[i] ^ ((s.mt[i-1] ^ (s.mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= twisterN {
			s.mt[0] = s.mt[twisterN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}

	for k = twisterN - 1; k > 0; k-- {
		s.mt[i] = (s.mt[i] ^ ((s.mt[i-1] ^ (s.mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= twisterN {
			s.mt[0] = s.mt[twisterN-1]
			i = 1
		}
	}

	s.mt[0] = 0x80000000
}

func (s *twisterState) genrandUint32() uint32 {
	var mag01 = [2]uint32{0, twisterMatrixA}

	if s.mti >= twisterN {
		var kk int

		if s.mti == twisterN+1 {
			// Init without an explicit seed: use a fixed default, as
			// mt19937ar-cok.c itself does when genrand is called
			// before any seeding.
			s.initGenrand(5489)
		}

		for kk = 0; kk < twisterN-twisterM; kk++ {
			y := (s.mt[kk] & twisterUpperMask) | (s.mt[kk+1] & twisterLowerMask)
			s.mt[kk] = s.mt[kk+twisterM] ^ (y >> 1) ^ mag01[y&1]
		}
		for ; kk < twisterN-1; kk++ {
			y := (s.mt[kk] & twisterUpperMask) | (s.mt[kk+1] & twisterLowerMask)
			s.mt[kk] = s.mt[kk+(twisterM-twisterN)] ^ (y >> 1) ^ mag01[y&1]
		}
		y := (s.mt[twisterN-1] & twisterUpperMask) | (s.mt[0] & twisterLowerMask)
		s.mt[twisterN-1] = s.mt[twisterM-1] ^ (y >> 1) ^ mag01[y&1]

		s.mti = 0
	}

	y := s.mt[s.mti]
	s.mti++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18

	return y
}

type twisterPRNG struct{}

func (twisterPRNG) Label() string { return "Mersenne Twister (mt19937ar-cok)" }

func (twisterPRNG) Init(state *State, seed []byte) error {
	if state.twister == nil {
		state.twister = &twisterState{}
	}

	words := len(seed) / 4
	key := make([]uint32, words)
	for i := 0; i < words; i++ {
		key[i] = binary.LittleEndian.Uint32(seed[i*4:])
	}

	if len(key) == 0 {
		state.twister.initGenrand(5489)
		return nil
	}

	state.twister.initByArray(key)
	return nil
}

// Read fills buf with 32-bit words packed little-endian. Any trailing
// 1-3 bytes of the buffer are filled from one more 32-bit draw, of
// which only the low-order bytes needed are used (low byte first) and
// the rest discarded, matching dwipe_twister_read's documented behavior.
func (twisterPRNG) Read(state *State, buf []byte) error {
	if state.twister == nil {
		state.twister = &twisterState{}
		state.twister.initGenrand(5489)
	}

	words := len(buf) / 4
	remain := len(buf) % 4

	for i := 0; i < words; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], state.twister.genrandUint32())
	}

	if remain > 0 {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], state.twister.genrandUint32())
		copy(buf[words*4:], word[:remain])
	}

	return nil
}
