// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/f-secure-foundry/crucible/util"
	"golang.org/x/crypto/hkdf"

	"github.com/f-secure-foundry/armory-rot/internal/word"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// leToInt converts an operand in accelerator word order.
func leToInt(le *[12]uint32) *big.Int {
	buf := make([]byte, word.Array4x12Size)

	for i, w := range le {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}

	return new(big.Int).SetBytes(util.SwitchEndianness(buf))
}

// intToLE converts a value below 2^384 to accelerator word order.
func intToLE(v *big.Int) (le [12]uint32) {
	buf := v.FillBytes(make([]byte, word.Array4x12Size))
	buf = util.SwitchEndianness(buf)

	for i := range le {
		le[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}

	return
}

func arrayToInt(a *word.Array4x12) *big.Int {
	buf := a.Bytes()
	return new(big.Int).SetBytes(buf[:])
}

func intToArray(v *big.Int) word.Array4x12 {
	var buf [word.Array4x12Size]byte
	v.FillBytes(buf[:])

	return word.FromBytes(buf)
}

// derive expands secret into a value in [1, max-1].
func derive(secret []byte, salt []byte, info string, max *big.Int) *big.Int {
	buf := make([]byte, word.Array4x12Size)
	r := hkdf.New(sha512.New384, secret, salt, []byte(info))

	if _, err := io.ReadFull(r, buf); err != nil {
		panic(err)
	}

	v := new(big.Int).SetBytes(buf)
	v.Mod(v, new(big.Int).Sub(max, one))

	return v.Add(v, one)
}

// randomNonZero returns a random value in [1, max-1].
func randomNonZero(max *big.Int) *big.Int {
	v, err := rand.Int(rand.Reader, new(big.Int).Sub(max, one))

	if err != nil {
		panic(err)
	}

	return v.Add(v, one)
}

// fermatInverse computes v^(m-2) mod m, which for prime m is the modular
// inverse of any non-zero v and zero for v = 0.
func fermatInverse(v *big.Int, m *big.Int) *big.Int {
	return new(big.Int).Exp(v, new(big.Int).Sub(m, two), m)
}

// point represents an affine point, nil coordinates stand for the point at
// infinity.
type point struct {
	x, y *big.Int
}

func (p point) infinity() bool {
	return p.x == nil
}

// curve implements short Weierstrass arithmetic y^2 = x^3 + ax + b over the
// prime field p.
type curve struct {
	p *big.Int
	a *big.Int
}

// inv must only be called on values which are non-zero modulo p.
func (c *curve) inv(v *big.Int) *big.Int {
	return new(big.Int).ModInverse(v, c.p)
}

func (c *curve) mod(v *big.Int) *big.Int {
	return v.Mod(v, c.p)
}

// affine converts projective (X, Y, Z) coordinates, x = X/Z and y = Y/Z.
func (c *curve) affine(x, y, z *big.Int) point {
	if new(big.Int).Mod(z, c.p).Sign() == 0 {
		return point{}
	}

	zinv := fermatInverse(z, c.p)

	return point{
		x: c.mod(new(big.Int).Mul(x, zinv)),
		y: c.mod(new(big.Int).Mul(y, zinv)),
	}
}

// projective returns the point with a random Z coordinate, the point at
// infinity is (0, 1, 0).
func (c *curve) projective(pt point) (x, y, z *big.Int) {
	if pt.infinity() {
		return big.NewInt(0), big.NewInt(1), big.NewInt(0)
	}

	z = randomNonZero(c.p)
	x = c.mod(new(big.Int).Mul(pt.x, z))
	y = c.mod(new(big.Int).Mul(pt.y, z))

	return
}

func (c *curve) double(pt point) point {
	if pt.infinity() || pt.y.Sign() == 0 {
		return point{}
	}

	// l = (3x^2 + a) / 2y
	num := new(big.Int).Mul(pt.x, pt.x)
	num.Mul(num, big.NewInt(3))
	num.Add(num, c.a)
	den := new(big.Int).Lsh(pt.y, 1)
	l := c.mod(num.Mul(num, c.inv(c.mod(den))))

	x := new(big.Int).Mul(l, l)
	x.Sub(x, new(big.Int).Lsh(pt.x, 1))
	c.mod(x)

	y := new(big.Int).Sub(pt.x, x)
	y.Mul(y, l)
	y.Sub(y, pt.y)
	c.mod(y)

	return point{x, y}
}

func (c *curve) add(p1, p2 point) point {
	switch {
	case p1.infinity():
		return p2
	case p2.infinity():
		return p1
	case p1.x.Cmp(p2.x) == 0:
		if p1.y.Cmp(p2.y) == 0 {
			return c.double(p1)
		}

		return point{}
	}

	// l = (y2 - y1) / (x2 - x1)
	num := new(big.Int).Sub(p2.y, p1.y)
	den := c.mod(new(big.Int).Sub(p2.x, p1.x))
	l := c.mod(num.Mul(num, c.inv(den)))

	x := new(big.Int).Mul(l, l)
	x.Sub(x, p1.x)
	x.Sub(x, p2.x)
	c.mod(x)

	y := new(big.Int).Sub(p1.x, x)
	y.Mul(y, l)
	y.Sub(y, p1.y)
	c.mod(y)

	return point{x, y}
}

func (c *curve) scalarMult(pt point, k *big.Int) (res point) {
	for i := k.BitLen() - 1; i >= 0; i-- {
		res = c.double(res)

		if k.Bit(i) == 1 {
			res = c.add(res, pt)
		}
	}

	return
}
