// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package trng provides the random number sources used to generate
// initialization vectors for the cryptographic peripherals.
package trng

import (
	"crypto/rand"
	"crypto/sha512"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"

	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// deterministic stream diversifier
const DRBG_DIV = "armory-rot TRNG"

// Source represents a random number generator.
type Source interface {
	Generate() (word.Array4x12, error)
}

// Reader is a Source drawing from an io.Reader.
type Reader struct {
	r io.Reader
}

// New returns a Source reading from r.
func New(r io.Reader) *Reader {
	return &Reader{r: r}
}

// System returns a Source backed by the platform entropy source.
func System() *Reader {
	return New(rand.Reader)
}

// Deterministic returns a Source producing a reproducible stream expanded
// from seed, it must only be used for known-answer testing. The stream is
// limited to 255 values.
func Deterministic(seed []byte) *Reader {
	return New(hkdf.New(sha512.New384, seed, nil, []byte(DRBG_DIV)))
}

// Generate returns a 384-bit random value.
func (t *Reader) Generate() (a word.Array4x12, err error) {
	var buf [word.Array4x12Size]byte

	if _, err = io.ReadFull(t.r, buf[:]); err != nil {
		return a, errors.Wrap(err, "random source failure")
	}

	a = word.FromBytes(buf)

	for i := range buf {
		buf[i] = 0
	}

	return
}
