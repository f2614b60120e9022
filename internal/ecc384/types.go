// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecc384

import (
	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Uncompressed point encoding tag and size.
const (
	UNCOMPRESSED_TAG  = 0x04
	UNCOMPRESSED_SIZE = 1 + 2*word.Array4x12Size
)

// Scalar represents a 384-bit value in big-endian word order.
type Scalar = word.Array4x12

// Seed represents the source of a deterministic key pair generation seed,
// either SeedArray or SeedKey.
type Seed interface {
	seed()
}

// SeedArray supplies a seed held in memory.
type SeedArray struct {
	Value *Scalar
}

// SeedKey supplies a seed held in a key vault entry.
type SeedKey kv.KeyReadArgs

func (SeedArray) seed() {}
func (SeedKey) seed()   {}

// PrivKeyIn represents a private key consumed by signing, either
// PrivKeyInArray or PrivKeyInKey.
type PrivKeyIn interface {
	privKeyIn()
}

// PrivKeyInArray supplies a private key held in memory.
type PrivKeyInArray struct {
	Value *Scalar
}

// PrivKeyInKey supplies a private key held in a key vault entry.
type PrivKeyInKey kv.KeyReadArgs

func (PrivKeyInArray) privKeyIn() {}
func (PrivKeyInKey) privKeyIn()   {}

// PrivKeyOut represents the destination of a generated private key, either
// PrivKeyOutArray or PrivKeyOutKey.
type PrivKeyOut interface {
	// In returns the same key as a signing input.
	In() PrivKeyIn
}

// PrivKeyOutArray receives the private key in memory.
type PrivKeyOutArray struct {
	Value *Scalar
}

// PrivKeyOutKey stores the private key in a key vault entry, the usage must
// include kv.EccPrivateKey.
type PrivKeyOutKey kv.KeyWriteArgs

// In implements PrivKeyOut.
func (o PrivKeyOutArray) In() PrivKeyIn {
	return PrivKeyInArray{Value: o.Value}
}

// In implements PrivKeyOut.
func (o PrivKeyOutKey) In() PrivKeyIn {
	return PrivKeyInKey{ID: o.ID}
}

// PubKey represents an affine P-384 public key.
type PubKey struct {
	X Scalar
	Y Scalar
}

// Uncompressed returns the uncompressed point encoding (0x04 || X || Y).
func (p *PubKey) Uncompressed() []byte {
	buf := make([]byte, 0, UNCOMPRESSED_SIZE)

	x := p.X.Bytes()
	y := p.Y.Bytes()

	buf = append(buf, UNCOMPRESSED_TAG)
	buf = append(buf, x[:]...)
	buf = append(buf, y[:]...)

	return buf
}

// ToDER is an alias of Uncompressed, the encoding used in certificate
// subject public key fields.
func (p *PubKey) ToDER() []byte {
	return p.Uncompressed()
}

// PubKeyFromUncompressed decodes an uncompressed point encoding, the point
// is not validated against the curve.
func PubKeyFromUncompressed(buf []byte) (p PubKey, err error) {
	if len(buf) != UNCOMPRESSED_SIZE {
		return p, errors.Errorf("invalid public key length %d", len(buf))
	}

	if buf[0] != UNCOMPRESSED_TAG {
		return p, errors.Errorf("invalid public key tag %#x", buf[0])
	}

	if p.X, err = word.Parse(buf[1 : 1+word.Array4x12Size]); err != nil {
		return
	}

	p.Y, err = word.Parse(buf[1+word.Array4x12Size:])

	return
}

// Signature represents an ECDSA signature.
type Signature struct {
	R Scalar
	S Scalar
}

// Zeroize clears both signature components.
func (s *Signature) Zeroize() {
	s.R.Zeroize()
	s.S.Zeroize()
}

// Result represents a verification outcome.
type Result uint32

// Verification results
const (
	Success         Result = 0xaaaaaaaa
	SigVerifyFailed Result = 0x55555555
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case SigVerifyFailed:
		return "signature verification failed"
	default:
		return "invalid"
	}
}
