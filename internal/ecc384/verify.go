// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecc384

import (
	"github.com/f-secure-foundry/armory-rot/internal/cfi"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Verify verifies a signature over a digest. An invalid signature is
// reported as SigVerifyFailed, errors are reserved to malformed signatures
// and hardware failures.
func (e *Ecc384) Verify(pub *PubKey, digest *Scalar, sig *Signature) (res Result, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer e.zeroizeInternal()

	r, err := e.verifyR(pub, digest, sig)
	defer r.Zeroize()

	if err != nil {
		e.log.Warnw("verify failed", "err", err)
		return SigVerifyFailed, err
	}

	res = SigVerifyFailed

	if r == sig.R {
		if !cfi.Eq12Words(&r, &sig.R) {
			return SigVerifyFailed, ErrVerifyValidateFailed
		}

		res = Success
	}

	e.log.Debugw("verify", "result", res)

	return
}

// VerifyR returns the R value recovered from a signature, the signature is
// valid if it matches its r component.
func (e *Ecc384) VerifyR(pub *PubKey, digest *Scalar, sig *Signature) (r Scalar, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer e.zeroizeInternal()

	return e.verifyR(pub, digest, sig)
}

// verifyR computes the x coordinate of u1·G + u2·Q, with u1 = h·s⁻¹ and
// u2 = r·s⁻¹ mod N.
func (e *Ecc384) verifyR(pub *PubKey, digest *Scalar, sig *Signature) (r Scalar, err error) {
	if !rangeCheck(&sig.R) || !rangeCheck(&sig.S) {
		return r, ErrScalarRangeCheckFailed
	}

	e.waitReady()
	e.command(CMD_VERIFYING)

	if err = e.modulus(&ECC_N); err != nil {
		return
	}

	s := sig.S.LE()
	sinv, err := e.modInv(&s)

	if err != nil {
		return
	}

	h := digest.LE()
	u1, err := e.modMul(&h, &sinv)

	if err != nil {
		return
	}

	rLE := sig.R.LE()
	u2, err := e.modMul(&rLE, &sinv)

	if err != nil {
		return
	}

	var u1G point

	// u1·G is the identity for u1 = 0 and is left out
	useG := !isZeroLE(&u1)

	if useG {
		if err = e.stage(operand{&u1, pka.SCALAR}); err != nil {
			return
		}

		if u1G, err = e.scalarMul(&point{ECC_GX, ECC_GY, ECC_GZ}); err != nil {
			return
		}
	}

	if err = e.stage(operand{&u2, pka.SCALAR}); err != nil {
		return
	}

	q := point{pub.X.LE(), pub.Y.LE(), ECC_GZ}
	res, err := e.scalarMul(&q)

	if err != nil {
		return
	}

	if useG {
		if res, err = e.pointAdd(&u1G, &res); err != nil {
			return
		}
	}

	x, err := e.affineX(&res)

	if err != nil {
		return
	}

	return word.FromLE(x), nil
}
