// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package word implements the fixed width word arrays exchanged with the
// cryptographic peripherals.
//
// Arrays are kept in big-endian word order (index 0 holds the most
// significant word), which is the order used by callers and by the curve
// engine registers. The math accelerator uses the opposite word order, the
// two representations are only converted through LE and FromLE.
package word

import (
	"encoding/binary"
	"runtime"

	"github.com/pkg/errors"
)

// Array4x12 represents a 384-bit value as 12 big-endian 32-bit words.
type Array4x12 [12]uint32

// Array4x8 represents a 256-bit value as 8 big-endian 32-bit words.
type Array4x8 [8]uint32

// Array4x12Size is the Array4x12 size in bytes.
const Array4x12Size = 48

// Array4x8Size is the Array4x8 size in bytes.
const Array4x8Size = 32

var errLength = errors.New("invalid length")

// FromBytes converts 48 big-endian bytes.
func FromBytes(buf [Array4x12Size]byte) (a Array4x12) {
	for i := range a {
		a[i] = binary.BigEndian.Uint32(buf[i*4:])
	}

	return
}

// Parse converts a 48 bytes big-endian slice.
func Parse(buf []byte) (a Array4x12, err error) {
	if len(buf) != Array4x12Size {
		return a, errLength
	}

	var b [Array4x12Size]byte
	copy(b[:], buf)

	return FromBytes(b), nil
}

// FromLE converts words in accelerator (least significant first) order.
func FromLE(le [12]uint32) (a Array4x12) {
	for i := range le {
		a[len(a)-1-i] = le[i]
	}

	return
}

// Bytes returns the big-endian byte representation.
func (a *Array4x12) Bytes() (buf [Array4x12Size]byte) {
	for i, w := range a {
		binary.BigEndian.PutUint32(buf[i*4:], w)
	}

	return
}

// LE returns the words in accelerator (least significant first) order.
func (a *Array4x12) LE() (le [12]uint32) {
	for i, w := range a {
		le[len(le)-1-i] = w
	}

	return
}

// IsZero returns whether all words are zero.
func (a *Array4x12) IsZero() bool {
	var acc uint32

	for _, w := range a {
		acc |= w
	}

	return acc == 0
}

// Zeroize overwrites the array with zeros.
func (a *Array4x12) Zeroize() {
	for i := range a {
		a[i] = 0
	}

	runtime.KeepAlive(a)
}

// Words returns the underlying words as a slice.
func (a *Array4x12) Words() []uint32 {
	return a[:]
}

// FromBytes8 converts 32 big-endian bytes.
func FromBytes8(buf [Array4x8Size]byte) (a Array4x8) {
	for i := range a {
		a[i] = binary.BigEndian.Uint32(buf[i*4:])
	}

	return
}

// Bytes returns the big-endian byte representation.
func (a *Array4x8) Bytes() (buf [Array4x8Size]byte) {
	for i, w := range a {
		binary.BigEndian.PutUint32(buf[i*4:], w)
	}

	return
}

// Zeroize overwrites the array with zeros.
func (a *Array4x8) Zeroize() {
	for i := range a {
		a[i] = 0
	}

	runtime.KeepAlive(a)
}

// ZeroizeLE overwrites a word array in accelerator order with zeros.
func ZeroizeLE(le *[12]uint32) {
	for i := range le {
		le[i] = 0
	}

	runtime.KeepAlive(le)
}
