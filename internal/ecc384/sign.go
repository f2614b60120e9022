// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecc384

import (
	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/cfi"
	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/trng"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Sign signs a digest with a private key. The signature is verified against
// the public key before being returned, a mismatch is reported as
// ErrSignValidateFailed.
func (e *Ecc384) Sign(priv PrivKeyIn, pub *PubKey, digest *Scalar, rng trng.Source) (sig Signature, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer e.zeroizeInternal()

	if sig, err = e.sign(priv, pub, digest, rng); err != nil {
		e.log.Warnw("sign failed", "err", err)
		return
	}

	e.log.Debugw("sign", "key", privKind(priv))

	return
}

func (e *Ecc384) sign(priv PrivKeyIn, pub *PubKey, digest *Scalar, rng trng.Source) (sig Signature, err error) {
	if sig, err = e.signInternal(priv, digest, rng); err != nil {
		return
	}

	r, err := e.verifyR(pub, digest, &sig)
	defer r.Zeroize()

	switch {
	case err != nil:
		err = errors.Wrapf(ErrSignValidateFailed, "%v", err)
	case !cfi.Eq12Words(&r, &sig.R):
		err = ErrSignValidateFailed
	}

	if err != nil {
		sig.Zeroize()
		return Signature{}, err
	}

	return
}

// signInternal computes an ECDSA signature with the hardware generated
// ephemeral scalar k:
//
//	r = x(k·G)
//	s = k⁻¹·(h + r·d) mod N
func (e *Ecc384) signInternal(priv PrivKeyIn, digest *Scalar, rng trng.Source) (sig Signature, err error) {
	e.waitReady()

	switch p := priv.(type) {
	case PrivKeyInArray:
		err = kv.CopyFromArr(p.Value, e.regs, ECC_PRIVKEY_IN)
	case PrivKeyInKey:
		if err = kv.CopyFromKV(kv.KeyReadArgs(p), e.port(ECC_KV_RD_PKEY_STATUS, ECC_KV_RD_PKEY_CTRL)); err != nil {
			return sig, readPrivKeyError(err)
		}
	default:
		return sig, errors.Errorf("invalid private key %T", priv)
	}

	if err != nil {
		return
	}

	if err = kv.CopyFromArr(digest, e.regs, ECC_MSG); err != nil {
		return
	}

	if err = e.iv(rng); err != nil {
		return
	}

	e.command(CMD_SIGNING)

	var k Scalar

	if err = kv.EndCopyToArr(e.regs, ECC_PRIVKEY_OUT, &k); err != nil {
		return
	}

	kLE := k.LE()
	k.Zeroize()
	defer word.ZeroizeLE(&kLE)

	lambda := e.lambda()
	defer word.ZeroizeLE(&lambda)

	// R = k·G
	g, err := e.randomizedG(&lambda)
	defer g.zeroize()

	if err != nil {
		return
	}

	if err = e.stage(operand{&kLE, pka.SCALAR}); err != nil {
		return
	}

	rp, err := e.scalarMul(&g)
	defer rp.zeroize()

	if err != nil {
		return
	}

	r, err := e.affineX(&rp)

	if err != nil {
		return
	}

	// s = k⁻¹·(h + r·d) mod N
	if err = e.modulus(&ECC_N); err != nil {
		return
	}

	switch p := priv.(type) {
	case PrivKeyInArray:
		d := p.Value.LE()
		err = e.stage(operand{&d, pka.MMUL_OP2})
		word.ZeroizeLE(&d)
	case PrivKeyInKey:
		if err = e.pka.LoadFromVault(kv.KeyReadArgs(p), pka.MMUL_OP2); err != nil {
			return sig, readPrivKeyError(err)
		}
	}

	if err != nil {
		return
	}

	if err = e.stage(operand{&r, pka.MMUL_OP1}); err != nil {
		return
	}

	s, err := e.run(pka.MM, pka.MMUL_RES)
	defer word.ZeroizeLE(&s)

	if err != nil {
		return
	}

	h := digest.LE()

	if s, err = e.modAdd(&s, &h); err != nil {
		return
	}

	kinv, err := e.modInv(&kLE)
	defer word.ZeroizeLE(&kinv)

	if err != nil {
		return
	}

	if s, err = e.modMul(&kinv, &s); err != nil {
		return
	}

	sig = Signature{
		R: word.FromLE(r),
		S: word.FromLE(s),
	}

	return
}

func privKind(priv PrivKeyIn) string {
	if p, ok := priv.(PrivKeyInKey); ok {
		return outKind(PrivKeyOutKey{ID: p.ID})
	}

	return "array"
}
