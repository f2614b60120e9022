// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cfi implements comparisons meant to survive fault injection.
//
// Every function here must keep its //go:noinline directive, the directive
// is enforced by a package test.
package cfi

import (
	"crypto/subtle"

	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Eq12Words compares two 384-bit values in constant time. The comparison is
// performed twice, in opposite directions, and equality is reported only if
// both passes agree, so that a single skipped instruction cannot turn a
// mismatch into a match.
//
//go:noinline
func Eq12Words(a, b *word.Array4x12) bool {
	var fwd, rev uint32

	for i := 0; i < len(a); i++ {
		fwd |= a[i] ^ b[i]
	}

	for i := len(a) - 1; i >= 0; i-- {
		rev |= b[i] ^ a[i]
	}

	eq := subtle.ConstantTimeEq(int32(fwd), 0) & subtle.ConstantTimeEq(int32(rev), 0)

	return eq == 1 && fwd == rev
}
