// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence() (buf [Array4x12Size]byte) {
	for i := range buf {
		buf[i] = byte(i)
	}

	return
}

func TestByteOrder(t *testing.T) {
	a := FromBytes(sequence())

	assert.Equal(t, uint32(0x00010203), a[0])
	assert.Equal(t, uint32(0x2c2d2e2f), a[11])
	assert.Equal(t, sequence(), a.Bytes())
}

func TestLimbOrder(t *testing.T) {
	a := FromBytes(sequence())
	le := a.LE()

	assert.Equal(t, a[11], le[0])
	assert.Equal(t, a[0], le[11])
	assert.Equal(t, a, FromLE(le))
}

func TestParse(t *testing.T) {
	buf := sequence()

	a, err := Parse(buf[:])
	require.NoError(t, err)
	assert.Equal(t, FromBytes(buf), a)

	_, err = Parse(buf[:47])
	assert.Error(t, err)
}

func TestZeroize(t *testing.T) {
	a := FromBytes(sequence())
	require.False(t, a.IsZero())

	a.Zeroize()
	assert.True(t, a.IsZero())

	b := FromBytes8([Array4x8Size]byte{0xff})
	b.Zeroize()
	assert.Equal(t, Array4x8{}, b)

	le := [12]uint32{1, 2, 3}
	ZeroizeLE(&le)
	assert.Equal(t, [12]uint32{}, le)
}
