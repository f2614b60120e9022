// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-secure-foundry/armory-rot/internal/word"
)

const (
	testStatus = 0x04
	testCtrl   = 0x08
	testData   = 0x40
)

// portBus completes every enabled transfer with a fixed error code.
type portBus struct {
	regs map[uint32]uint32
	code uint32
}

func newPortBus(code uint32) *portBus {
	return &portBus{
		regs: map[uint32]uint32{testStatus: 1 << STATUS_READY},
		code: code,
	}
}

func (b *portBus) Read(addr uint32) uint32 {
	return b.regs[addr]
}

func (b *portBus) Write(addr uint32, val uint32) {
	b.regs[addr] = val

	if addr == testCtrl && val&1 == 1 {
		b.regs[testStatus] = 1<<STATUS_READY | 1<<STATUS_VALID | b.code<<STATUS_ERROR
	}
}

func TestCopyFromKV(t *testing.T) {
	for _, tt := range []struct {
		code uint32
		err  error
	}{
		{KV_SUCCESS, nil},
		{KV_READ_FAIL, ErrKeyRead},
		{KV_WRITE_FAIL, ErrKeyWrite},
		{7, ErrGeneric},
	} {
		bus := newPortBus(tt.code)
		err := CopyFromKV(KeyReadArgs{ID: 9}, Port{bus, testStatus, testCtrl})

		if tt.err == nil {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, tt.err)
		}

		assert.Equal(t, uint32(1|9<<READ_CTRL_ENTRY), bus.regs[testCtrl])
	}
}

func TestCopyToKV(t *testing.T) {
	bus := newPortBus(KV_WRITE_FAIL)
	port := Port{bus, testStatus, testCtrl}
	key := KeyWriteArgs{ID: 31, Usage: EccPrivateKey | HmacData}

	require.NoError(t, BeginCopyToKV(port, key))

	ctrl := bus.regs[testCtrl]
	assert.Equal(t, uint32(1), ctrl&1)
	assert.Equal(t, uint32(31), (ctrl>>WRITE_CTRL_ENTRY)&0x1f)
	assert.Equal(t, uint32(EccPrivateKey|HmacData), (ctrl>>WRITE_CTRL_DEST_VALID)&0x3f)

	assert.ErrorIs(t, EndCopyToKV(port, key), ErrKeyWrite)
}

func TestInvalidEntry(t *testing.T) {
	bus := newPortBus(KV_SUCCESS)
	port := Port{bus, testStatus, testCtrl}

	assert.ErrorIs(t, CopyFromKV(KeyReadArgs{ID: KEY_COUNT}, port), ErrGeneric)
	assert.ErrorIs(t, BeginCopyToKV(port, KeyWriteArgs{ID: KEY_COUNT}), ErrGeneric)
	assert.NotContains(t, bus.regs, uint32(testCtrl))
}

func TestArrays(t *testing.T) {
	bus := newPortBus(KV_SUCCESS)
	in := word.Array4x12{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	require.NoError(t, CopyFromArr(&in, bus, testData))
	assert.Equal(t, uint32(1), bus.regs[testData])
	assert.Equal(t, uint32(12), bus.regs[testData+44])

	bus.regs[testCtrl] = 1
	require.NoError(t, BeginCopyToArr(Port{bus, testStatus, testCtrl}))
	assert.Equal(t, uint32(0), bus.regs[testCtrl])

	var out word.Array4x12
	require.NoError(t, EndCopyToArr(bus, testData, &out))
	assert.Equal(t, in, out)
}

func TestUsage(t *testing.T) {
	u := EccPrivateKey | EccKeyGenSeed

	assert.True(t, u.EccPrivateKey())
	assert.True(t, u.Has(EccKeyGenSeed))
	assert.False(t, u.Has(EccData))
	assert.False(t, HmacKey.EccPrivateKey())
}
