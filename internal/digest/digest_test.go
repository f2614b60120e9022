// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha384(t *testing.T) {
	msg := []byte("abc")
	ref := sha512.Sum384(msg)

	d, err := Sha384Digest(msg)
	require.NoError(t, err)
	assert.Equal(t, ref, d.Bytes())

	// "abc" digest leading word
	assert.Equal(t, uint32(0xcb00753f), d[0])

	op := Sha384()
	require.NoError(t, op.Update([]byte("a")))
	require.NoError(t, op.Update([]byte("bc")))
	assert.Equal(t, d, op.Finalize())
}

func TestSha256(t *testing.T) {
	msg := []byte("armory")
	ref := sha256.Sum256(msg)

	d, err := Sha256Digest(msg)
	require.NoError(t, err)
	assert.Equal(t, ref, d.Bytes())
}

func TestMaxData(t *testing.T) {
	buf := make([]byte, MAX_DATA_SIZE)

	_, err := Sha384Digest(buf)
	require.NoError(t, err)

	_, err = Sha256Digest(append(buf, 0))
	assert.ErrorIs(t, err, ErrMaxData)

	op := Sha384()
	require.NoError(t, op.Update(buf[:MAX_DATA_SIZE-1]))
	require.NoError(t, op.Update(buf[:1]))
	assert.ErrorIs(t, op.Update(buf[:1]), ErrMaxData)
}
