// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecc384

import (
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// point represents projective coordinates (x = X/Z, y = Y/Z) in accelerator
// word order.
type point struct {
	x pka.Words
	y pka.Words
	z pka.Words
}

func (p *point) zeroize() {
	word.ZeroizeLE(&p.x)
	word.ZeroizeLE(&p.y)
	word.ZeroizeLE(&p.z)
}

// operand names an accelerator data memory slot and its value.
type operand struct {
	val  *pka.Words
	addr uint32
}

func isZeroLE(w *pka.Words) bool {
	var acc uint32

	for _, v := range w {
		acc |= v
	}

	return acc == 0
}

func (e *Ecc384) stage(ops ...operand) (err error) {
	for _, op := range ops {
		if err = e.pka.Write(op.val, op.addr); err != nil {
			return acceleratorError(err)
		}
	}

	return
}

func (e *Ecc384) execute(op pka.Op) (err error) {
	if err = e.pka.Execute(op); err != nil {
		return acceleratorError(err)
	}

	return
}

func (e *Ecc384) result(addr uint32) (w pka.Words, err error) {
	if w, err = e.pka.Read(addr); err != nil {
		return w, acceleratorError(err)
	}

	return
}

// modulus selects the modulus for the following modular operations.
func (e *Ecc384) modulus(m *pka.Words) error {
	return e.stage(operand{m, pka.MOD})
}

// run executes an operation whose operands are already staged and returns
// the value found at the result slot.
func (e *Ecc384) run(op pka.Op, res uint32) (w pka.Words, err error) {
	if err = e.execute(op); err != nil {
		return
	}

	return e.result(res)
}

func (e *Ecc384) modMul(a *pka.Words, b *pka.Words) (w pka.Words, err error) {
	if err = e.stage(operand{a, pka.MMUL_OP1}, operand{b, pka.MMUL_OP2}); err != nil {
		return
	}

	return e.run(pka.MM, pka.MMUL_RES)
}

func (e *Ecc384) modAdd(a *pka.Words, b *pka.Words) (w pka.Words, err error) {
	if err = e.stage(operand{a, pka.MADD_OP1}, operand{b, pka.MADD_OP2}); err != nil {
		return
	}

	return e.run(pka.MA, pka.MADD_RES)
}

func (e *Ecc384) modInv(a *pka.Words) (w pka.Words, err error) {
	if err = e.stage(operand{a, pka.MINV_OP}); err != nil {
		return
	}

	return e.run(pka.MI, pka.MINV_RES)
}

func (e *Ecc384) readPoint() (p point, err error) {
	if p.x, err = e.result(pka.RESX); err != nil {
		return
	}

	if p.y, err = e.result(pka.RESY); err != nil {
		return
	}

	p.z, err = e.result(pka.RESZ)

	return
}

// scalarMul multiplies a point by the scalar previously staged in the
// scalar slot.
func (e *Ecc384) scalarMul(p *point) (r point, err error) {
	err = e.stage(
		operand{&ECC_P, pka.MOD},
		operand{&ECC_A, pka.A},
		operand{&ECC_B, pka.B},
		operand{&p.x, pka.X0},
		operand{&p.y, pka.Y0},
		operand{&p.z, pka.Z0},
	)

	if err != nil {
		return
	}

	if err = e.execute(pka.SM); err != nil {
		return
	}

	return e.readPoint()
}

func (e *Ecc384) pointAdd(p0 *point, p1 *point) (r point, err error) {
	err = e.stage(
		operand{&ECC_P, pka.MOD},
		operand{&ECC_A, pka.A},
		operand{&ECC_B, pka.B},
		operand{&p0.x, pka.X0},
		operand{&p0.y, pka.Y0},
		operand{&p0.z, pka.Z0},
		operand{&p1.x, pka.X1},
		operand{&p1.y, pka.Y1},
		operand{&p1.z, pka.Z1},
	)

	if err != nil {
		return
	}

	if err = e.execute(pka.PA); err != nil {
		return
	}

	return e.readPoint()
}

// randomizedG returns the base point in the projective representation
// (Gx·λ, Gy·λ, λ).
func (e *Ecc384) randomizedG(lambda *pka.Words) (g point, err error) {
	if err = e.modulus(&ECC_P); err != nil {
		return
	}

	if g.x, err = e.modMul(&ECC_GX, lambda); err != nil {
		return
	}

	if g.y, err = e.modMul(&ECC_GY, lambda); err != nil {
		return
	}

	g.z = *lambda

	return
}

// affineX returns the affine x coordinate of a point, the modulus must be
// set to P.
func (e *Ecc384) affineX(p *point) (x pka.Words, err error) {
	zinv, err := e.modInv(&p.z)

	if err != nil {
		return
	}

	defer word.ZeroizeLE(&zinv)

	return e.modMul(&p.x, &zinv)
}

// affine returns the affine coordinates of a point, the modulus must be set
// to P.
func (e *Ecc384) affine(p *point) (x pka.Words, y pka.Words, err error) {
	zinv, err := e.modInv(&p.z)

	if err != nil {
		return
	}

	defer word.ZeroizeLE(&zinv)

	if x, err = e.modMul(&p.x, &zinv); err != nil {
		return
	}

	y, err = e.modMul(&p.y, &zinv)

	return
}
