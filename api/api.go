// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package api implements the wire encoding of public keys and signatures
// exchanged with the host.
package api

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Signature represents a signed digest.
type Signature struct {
	Data []byte
	R    []byte
	S    []byte
}

// PublicKey represents a P-384 public key.
type PublicKey struct {
	X []byte
	Y []byte
}

// field numbers
const (
	signatureData = 1
	signatureR    = 2
	signatureS    = 3

	publicKeyX = 1
	publicKeyY = 2
)

func appendBytes(buf []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return buf
	}

	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendBytes(buf, v)
}

// unmarshal walks all fields of buf, bytes fields are passed to fn while
// unknown fields are skipped.
func unmarshal(buf []byte, fn func(num protowire.Number, v []byte) bool) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)

		if n < 0 {
			return protowire.ParseError(n)
		}

		buf = buf[n:]

		if typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(buf)

			if n < 0 {
				return protowire.ParseError(n)
			}

			if fn(num, v) {
				buf = buf[n:]
				continue
			}
		}

		n = protowire.ConsumeFieldValue(num, typ, buf)

		if n < 0 {
			return protowire.ParseError(n)
		}

		buf = buf[n:]
	}

	return nil
}

func clone(v []byte) []byte {
	return append([]byte(nil), v...)
}

// Bytes returns the message wire encoding.
func (sig *Signature) Bytes() (buf []byte) {
	buf = appendBytes(buf, signatureData, sig.Data)
	buf = appendBytes(buf, signatureR, sig.R)
	buf = appendBytes(buf, signatureS, sig.S)

	return
}

// Unmarshal parses a message wire encoding.
func (sig *Signature) Unmarshal(buf []byte) error {
	*sig = Signature{}

	return unmarshal(buf, func(num protowire.Number, v []byte) bool {
		switch num {
		case signatureData:
			sig.Data = clone(v)
		case signatureR:
			sig.R = clone(v)
		case signatureS:
			sig.S = clone(v)
		default:
			return false
		}

		return true
	})
}

// Bytes returns the message wire encoding.
func (pub *PublicKey) Bytes() (buf []byte) {
	buf = appendBytes(buf, publicKeyX, pub.X)
	buf = appendBytes(buf, publicKeyY, pub.Y)

	return
}

// Unmarshal parses a message wire encoding.
func (pub *PublicKey) Unmarshal(buf []byte) error {
	*pub = PublicKey{}

	return unmarshal(buf, func(num protowire.Number, v []byte) bool {
		switch num {
		case publicKeyX:
			pub.X = clone(v)
		case publicKeyY:
			pub.Y = clone(v)
		default:
			return false
		}

		return true
	})
}

// NewSignature returns the wire representation of a signature over digest.
func NewSignature(digest *ecc384.Scalar, s *ecc384.Signature) *Signature {
	d := digest.Bytes()
	r := s.R.Bytes()
	ss := s.S.Bytes()

	return &Signature{
		Data: d[:],
		R:    r[:],
		S:    ss[:],
	}
}

// Scalars returns the signed digest and the signature.
func (sig *Signature) Scalars() (digest ecc384.Scalar, s ecc384.Signature, err error) {
	if digest, err = word.Parse(sig.Data); err != nil {
		return digest, s, errors.Wrap(err, "invalid digest")
	}

	if s.R, err = word.Parse(sig.R); err != nil {
		return digest, s, errors.Wrap(err, "invalid r")
	}

	if s.S, err = word.Parse(sig.S); err != nil {
		return digest, s, errors.Wrap(err, "invalid s")
	}

	return
}

// NewPublicKey returns the wire representation of a public key.
func NewPublicKey(p *ecc384.PubKey) *PublicKey {
	x := p.X.Bytes()
	y := p.Y.Bytes()

	return &PublicKey{
		X: x[:],
		Y: y[:],
	}
}

// PubKey returns the public key coordinates.
func (pub *PublicKey) PubKey() (p ecc384.PubKey, err error) {
	if p.X, err = word.Parse(pub.X); err != nil {
		return p, errors.Wrap(err, "invalid x")
	}

	if p.Y, err = word.Parse(pub.Y); err != nil {
		return p, errors.Wrap(err, "invalid y")
	}

	return
}
