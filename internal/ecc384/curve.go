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

// P-384 domain parameters in accelerator word order
var (
	ECC_P = pka.Words{
		0xffffffff, 0x00000000, 0x00000000, 0xffffffff,
		0xfffffffe, 0xffffffff, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	}

	ECC_N = pka.Words{
		0xccc52973, 0xecec196a, 0x48b0a77a, 0x581a0db2,
		0xf4372ddf, 0xc7634d81, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	}

	ECC_A = pka.Words{
		0xfffffffc, 0x00000000, 0x00000000, 0xffffffff,
		0xfffffffe, 0xffffffff, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	}

	ECC_B = pka.Words{
		0xd3ec2aef, 0x2a85c8ed, 0x8a2ed19d, 0xc656398d,
		0x5013875a, 0x0314088f, 0xfe814112, 0x181d9c6e,
		0xe3f82d19, 0x988e056b, 0xe23ee7e4, 0xb3312fa7,
	}

	ECC_GX = pka.Words{
		0x72760ab7, 0x3a545e38, 0xbf55296c, 0x5502f25d,
		0x82542a38, 0x59f741e0, 0x8ba79b98, 0x6e1d3b62,
		0xf320ad74, 0x8eb1c71e, 0xbe8b0537, 0xaa87ca22,
	}

	ECC_GY = pka.Words{
		0x90ea0e5f, 0x7a431d7c, 0x1d7e819d, 0x0a60b1ce,
		0xb5f0b8c0, 0xe9da3113, 0x289a147c, 0xf8f41dbd,
		0x9292dc29, 0x5d9e98bf, 0x96262c6f, 0x3617de4a,
	}

	ECC_GZ = pka.Words{1}
)

// N-1, big-endian word order
var orderMinus1 = word.Array4x12{
	0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	0xffffffff, 0xffffffff, 0xc7634d81, 0xf4372ddf,
	0x581a0db2, 0x48b0a77a, 0xecec196a, 0xccc52972,
}

// rangeCheck returns whether a scalar lies in [1, N-1].
func rangeCheck(s *Scalar) bool {
	if s.IsZero() {
		return false
	}

	for i := range s {
		if s[i] != orderMinus1[i] {
			return s[i] < orderMinus1[i]
		}
	}

	return true
}
