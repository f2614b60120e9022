// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministic(t *testing.T) {
	a := Deterministic([]byte("seed"))
	b := Deterministic([]byte("seed"))
	c := Deterministic([]byte("other"))

	for i := 0; i < 4; i++ {
		va, err := a.Generate()
		require.NoError(t, err)

		vb, err := b.Generate()
		require.NoError(t, err)

		vc, err := c.Generate()
		require.NoError(t, err)

		assert.Equal(t, va, vb)
		assert.NotEqual(t, va, vc)
	}
}

func TestDeterministicLimit(t *testing.T) {
	src := Deterministic([]byte("seed"))

	for i := 0; i < 255; i++ {
		_, err := src.Generate()
		require.NoError(t, err)
	}

	_, err := src.Generate()
	assert.Error(t, err)
}

func TestSystem(t *testing.T) {
	a, err := System().Generate()
	require.NoError(t, err)

	b, err := System().Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestShortRead(t *testing.T) {
	_, err := New(bytes.NewReader(make([]byte, 10))).Generate()
	assert.Error(t, err)
}
