// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecc384

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/trng"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// KeyPair generates a key pair deterministically from a seed and a nonce.
// The private key is delivered to out, the public key is returned.
//
// A key vault destination must carry the kv.EccPrivateKey usage, as the
// generated pair is checked by signing and verifying the all-zero digest
// before being released.
func (e *Ecc384) KeyPair(seed Seed, nonce *Scalar, rng trng.Source, out PrivKeyOut) (pub PubKey, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if key, ok := out.(PrivKeyOutKey); ok && !key.Usage.EccPrivateKey() {
		e.log.Warnw("keygen rejected", "slot", key.ID, "usage", key.Usage)
		return pub, ErrKeygenBadUsage
	}

	defer e.zeroizeInternal()

	if pub, err = e.keyPair(seed, nonce, rng, out); err != nil {
		if o, ok := out.(PrivKeyOutArray); ok {
			o.Value.Zeroize()
		}

		e.log.Warnw("keygen failed", "err", err)

		return PubKey{}, err
	}

	e.log.Debugw("keygen", "seed", seedKind(seed), "out", outKind(out))

	return
}

func (e *Ecc384) keyPair(seed Seed, nonce *Scalar, rng trng.Source, out PrivKeyOut) (pub PubKey, err error) {
	wr := e.port(ECC_KV_WR_PKEY_STATUS, ECC_KV_WR_PKEY_CTRL)

	e.waitReady()

	// route the private key to its destination
	switch o := out.(type) {
	case PrivKeyOutArray:
		err = kv.BeginCopyToArr(wr)
	case PrivKeyOutKey:
		if err = kv.BeginCopyToKV(wr, kv.KeyWriteArgs(o)); err != nil {
			return pub, writePrivKeyError(err)
		}
	default:
		return pub, errors.Errorf("invalid private key destination %T", out)
	}

	if err != nil {
		return
	}

	switch s := seed.(type) {
	case SeedArray:
		err = kv.CopyFromArr(s.Value, e.regs, ECC_SEED)
	case SeedKey:
		if err = kv.CopyFromKV(kv.KeyReadArgs(s), e.port(ECC_KV_RD_SEED_STATUS, ECC_KV_RD_SEED_CTRL)); err != nil {
			return pub, readSeedError(err)
		}
	default:
		return pub, errors.Errorf("invalid seed %T", seed)
	}

	if err != nil {
		return
	}

	if err = kv.CopyFromArr(nonce, e.regs, ECC_NONCE); err != nil {
		return
	}

	if err = e.iv(rng); err != nil {
		return
	}

	e.command(CMD_KEYGEN)

	var priv pka.Words
	defer word.ZeroizeLE(&priv)

	switch o := out.(type) {
	case PrivKeyOutArray:
		if err = kv.EndCopyToArr(e.regs, ECC_PRIVKEY_OUT, o.Value); err != nil {
			return
		}

		priv = o.Value.LE()
	case PrivKeyOutKey:
		if err = kv.EndCopyToKV(wr, kv.KeyWriteArgs(o)); err != nil {
			return pub, writePrivKeyError(err)
		}
	}

	lambda := e.lambda()
	defer word.ZeroizeLE(&lambda)

	g, err := e.randomizedG(&lambda)
	defer g.zeroize()

	if err != nil {
		return
	}

	switch o := out.(type) {
	case PrivKeyOutArray:
		err = e.stage(operand{&priv, pka.SCALAR})
	case PrivKeyOutKey:
		if err = e.pka.LoadFromVault(kv.KeyReadArgs{ID: o.ID}, pka.SCALAR); err != nil {
			return pub, readPrivKeyError(err)
		}
	}

	if err != nil {
		return
	}

	q, err := e.scalarMul(&g)
	defer q.zeroize()

	if err != nil {
		return
	}

	x, y, err := e.affine(&q)

	if err != nil {
		return
	}

	pub = PubKey{
		X: word.FromLE(x),
		Y: word.FromLE(y),
	}

	// pairwise consistency check
	var digest Scalar
	sig, err := e.sign(out.In(), &pub, &digest, rng)
	sig.Zeroize()

	if err != nil {
		return PubKey{}, errors.Wrapf(ErrKeygenPairwiseCheck, "%v", err)
	}

	return
}

// iv stages a fresh initialization vector.
func (e *Ecc384) iv(rng trng.Source) (err error) {
	iv, err := rng.Generate()
	defer iv.Zeroize()

	if err != nil {
		return trngError(err)
	}

	return kv.CopyFromArr(&iv, e.regs, ECC_IV)
}

func seedKind(seed Seed) string {
	if s, ok := seed.(SeedKey); ok {
		return fmt.Sprintf("vault:%d", s.ID)
	}

	return "array"
}

func outKind(out PrivKeyOut) string {
	if o, ok := out.(PrivKeyOutKey); ok {
		return fmt.Sprintf("vault:%d", o.ID)
	}

	return "array"
}
