// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package digest produces the message digests consumed by the curve engine.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Maximum amount of data which can be digested in a single operation.
const MAX_DATA_SIZE = 1024 * 1024

// ErrMaxData indicates that the maximum data size has been exceeded.
var ErrMaxData = errors.New("maximum data size exceeded")

// Op represents a streaming digest operation.
type Op struct {
	h    hash.Hash
	size int
}

func (op *Op) update(buf []byte) error {
	if op.size+len(buf) > MAX_DATA_SIZE {
		return ErrMaxData
	}

	op.size += len(buf)
	op.h.Write(buf)

	return nil
}

// Sha384Op represents a streaming SHA-384 operation.
type Sha384Op struct {
	Op
}

// Sha384 starts a streaming SHA-384 operation.
func Sha384() *Sha384Op {
	return &Sha384Op{Op{h: sha512.New384()}}
}

// Update adds data to the operation.
func (op *Sha384Op) Update(buf []byte) error {
	return op.update(buf)
}

// Finalize returns the digest, the operation must not be used afterwards.
func (op *Sha384Op) Finalize() (d word.Array4x12) {
	var buf [word.Array4x12Size]byte
	op.h.Sum(buf[:0])

	return word.FromBytes(buf)
}

// Sha384Digest computes a one-shot SHA-384 digest.
func Sha384Digest(buf []byte) (d word.Array4x12, err error) {
	op := Sha384()

	if err = op.Update(buf); err != nil {
		return
	}

	return op.Finalize(), nil
}

// Sha256Op represents a streaming SHA-256 operation.
type Sha256Op struct {
	Op
}

// Sha256 starts a streaming SHA-256 operation.
func Sha256() *Sha256Op {
	return &Sha256Op{Op{h: sha256.New()}}
}

// Update adds data to the operation.
func (op *Sha256Op) Update(buf []byte) error {
	return op.update(buf)
}

// Finalize returns the digest, the operation must not be used afterwards.
func (op *Sha256Op) Finalize() (d word.Array4x8) {
	var buf [word.Array4x8Size]byte
	op.h.Sum(buf[:0])

	return word.FromBytes8(buf)
}

// Sha256Digest computes a one-shot SHA-256 digest.
func Sha256Digest(buf []byte) (d word.Array4x8, err error) {
	op := Sha256()

	if err = op.Update(buf); err != nil {
		return
	}

	return op.Finalize(), nil
}
