// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package reg provides primitives for accessing peripheral registers through
// a bus, so that the same drivers can run over memory mapped I/O on bare
// metal and over a simulated register file when hosted.
package reg

import (
	"runtime"

	"github.com/f-secure-foundry/tamago/bits"
)

// Bus represents a 32-bit register file addressed by byte offsets.
type Bus interface {
	Read(addr uint32) uint32
	Write(addr uint32, val uint32)
}

// Get returns the bitmask value at the position and mask arguments.
func Get(b Bus, addr uint32, pos int, mask int) uint32 {
	val := b.Read(addr)
	return bits.Get(&val, pos, mask)
}

// IsSet returns whether a specific bit position is set.
func IsSet(b Bus, addr uint32, pos int) bool {
	val := b.Read(addr)
	return bits.Get(&val, pos, 1) == 1
}

// Set sets an individual bit at the position argument.
func Set(b Bus, addr uint32, pos int) {
	val := b.Read(addr)
	bits.Set(&val, pos)
	b.Write(addr, val)
}

// Clear clears an individual bit at the position argument.
func Clear(b Bus, addr uint32, pos int) {
	val := b.Read(addr)
	bits.Clear(&val, pos)
	b.Write(addr, val)
}

// SetN sets a bitmask value at the position and mask arguments.
func SetN(b Bus, addr uint32, pos int, mask int, val uint32) {
	r := b.Read(addr)
	bits.SetN(&r, pos, mask, val)
	b.Write(addr, r)
}

// Wait waits for a specific register bit to match a value. There is no
// timeout, a peripheral which never completes stalls the caller.
func Wait(b Bus, addr uint32, pos int, mask int, val uint32) {
	for Get(b, addr, pos, mask) != val {
		runtime.Gosched()
	}
}

// WriteN writes a word array at consecutive register addresses.
func WriteN(b Bus, addr uint32, words []uint32) {
	for i, w := range words {
		b.Write(addr+uint32(i*4), w)
	}
}

// ReadN reads a word array from consecutive register addresses.
func ReadN(b Bus, addr uint32, words []uint32) {
	for i := range words {
		words[i] = b.Read(addr + uint32(i*4))
	}
}
