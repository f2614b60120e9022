// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kat implements the power-on self test of the curve engine.
//
// The engine output is checked against the Go reference implementation of
// P-384: the public key must match the one computed in software from the
// exported private key, engine signatures must verify in software and
// software signatures must verify on the engine.
package kat

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/f-secure-foundry/armory-rot/internal/digest"
	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/trng"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

const (
	// deterministic random source seed
	KAT_DIV = "armory-rot KAT"
	// signed message
	KAT_MSG = "armory-rot known answer test"
)

var (
	seed = word.Array4x12{
		0x8eb9e1f4, 0x3d4a3c06, 0x9ac5d4ab, 0x64b5d0f1,
		0x1d52a5e9, 0x3b8f0c71, 0x5a0e6c23, 0xf3e1a7b4,
		0x6c09d21e, 0x0b7a4f95, 0xd8c36e02, 0x47f1b8ac,
	}

	nonce = word.Array4x12{
		0x01234567, 0x89abcdef, 0xfedcba98, 0x76543210,
		0x0f1e2d3c, 0x4b5a6978, 0x8796a5b4, 0xc3d2e1f0,
		0x11223344, 0x55667788, 0x99aabbcc, 0xddeeff00,
	}
)

// ErrMismatch is returned when the engine and the reference
// implementation disagree.
var ErrMismatch = errors.New("self test mismatch")

var logger = zap.NewNop().Sugar()

// SetLogger sets the package logger.
func SetLogger(l *zap.Logger) {
	logger = l.Named("kat").Sugar()
}

func toInt(s *word.Array4x12) *big.Int {
	b := s.Bytes()
	return new(big.Int).SetBytes(b[:])
}

func fromInt(v *big.Int) (s word.Array4x12, err error) {
	if v.BitLen() > 384 {
		return s, errors.New("value too large")
	}

	return word.Parse(v.FillBytes(make([]byte, word.Array4x12Size)))
}

// Run executes the self test, the public key derived from the fixed test
// seed is returned on success.
func Run(e *ecc384.Ecc384) (pub ecc384.PubKey, err error) {
	var priv word.Array4x12
	defer priv.Zeroize()

	rng := trng.Deterministic([]byte(KAT_DIV))

	if pub, err = e.KeyPair(ecc384.SeedArray{Value: &seed}, &nonce, rng, ecc384.PrivKeyOutArray{Value: &priv}); err != nil {
		return pub, errors.Wrap(err, "key pair")
	}

	b := priv.Bytes()
	ref, err := ecdh.P384().NewPrivateKey(b[:])

	if err != nil {
		return
	}

	if !bytes.Equal(ref.PublicKey().Bytes(), pub.Uncompressed()) {
		return pub, errors.Wrap(ErrMismatch, "public key")
	}

	msg, err := digest.Sha384Digest([]byte(KAT_MSG))

	if err != nil {
		return
	}

	if err = engineSignature(e, &priv, &pub, &msg, rng); err != nil {
		return
	}

	if err = referenceSignature(e, &priv, &pub, &msg); err != nil {
		return
	}

	logger.Infow("self test passed")

	return
}

func engineSignature(e *ecc384.Ecc384, priv *word.Array4x12, pub *ecc384.PubKey, msg *word.Array4x12, rng trng.Source) (err error) {
	sig, err := e.Sign(ecc384.PrivKeyInArray{Value: priv}, pub, msg, rng)

	if err != nil {
		return errors.Wrap(err, "sign")
	}

	key := &ecdsa.PublicKey{
		Curve: elliptic.P384(),
		X:     toInt(&pub.X),
		Y:     toInt(&pub.Y),
	}

	b := msg.Bytes()

	if !ecdsa.Verify(key, b[:], toInt(&sig.R), toInt(&sig.S)) {
		return errors.Wrap(ErrMismatch, "engine signature")
	}

	// a corrupted signature must never pass
	sig.S[len(sig.S)-1] ^= 1

	if res, err := e.Verify(pub, msg, &sig); err == nil && res == ecc384.Success {
		return errors.Wrap(ErrMismatch, "corrupted signature")
	}

	return
}

func referenceSignature(e *ecc384.Ecc384, priv *word.Array4x12, pub *ecc384.PubKey, msg *word.Array4x12) (err error) {
	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: elliptic.P384(),
			X:     toInt(&pub.X),
			Y:     toInt(&pub.Y),
		},
		D: toInt(priv),
	}

	b := msg.Bytes()
	r, s, err := ecdsa.Sign(rand.Reader, key, b[:])

	if err != nil {
		return
	}

	sig := ecc384.Signature{}

	if sig.R, err = fromInt(r); err != nil {
		return
	}

	if sig.S, err = fromInt(s); err != nil {
		return
	}

	res, err := e.Verify(pub, msg, &sig)

	if err != nil {
		return errors.Wrap(err, "verify")
	}

	if res != ecc384.Success {
		return errors.Wrapf(ErrMismatch, "reference signature (%v)", res)
	}

	return
}
