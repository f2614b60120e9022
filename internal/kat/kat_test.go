// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/reg"
	"github.com/f-secure-foundry/armory-rot/internal/sim"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

func newEngine(accel reg.Bus, soc *sim.SoC) *ecc384.Ecc384 {
	return ecc384.New(soc.ECC, pka.New(accel))
}

func TestRun(t *testing.T) {
	soc := sim.NewSoC()

	pub, err := Run(newEngine(soc.PKA, soc))
	require.NoError(t, err)

	// simulator key derivation from the test seed and nonce
	expected := ecc384.PubKey{
		X: word.Array4x12{
			0xe7965ec9, 0x58ad4cf4, 0x7814ea92, 0xa7d23cc0, 0x3f9fd2e2, 0xe911cfe5,
			0x2dddf001, 0x40d35ea8, 0x19dd9a08, 0xf959d783, 0x86a94f1c, 0x83994bea,
		},
		Y: word.Array4x12{
			0xdd9fd447, 0x7f72b86a, 0xcf1afa39, 0x124cb816, 0xa05080ad, 0x54ec8b28,
			0xd82aeafe, 0x4135f19c, 0xb6ecba85, 0x62f6a132, 0x83a1e685, 0x42e8f236,
		},
	}

	assert.Equal(t, expected, pub)

	// reproducible across devices
	other := sim.NewSoC()
	pub2, err := Run(newEngine(other.PKA, other))
	require.NoError(t, err)

	assert.Equal(t, pub, pub2)
}

// faultyBus reports an accelerator error on every operation.
type faultyBus struct {
	reg.Bus
}

func (b faultyBus) Read(addr uint32) uint32 {
	val := b.Bus.Read(addr)

	if addr == pka.PKA_STATUS {
		val |= 1 << pka.STATUS_ERROR
	}

	return val
}

func TestRunFault(t *testing.T) {
	soc := sim.NewSoC()

	_, err := Run(newEngine(faultyBus{soc.PKA}, soc))
	assert.ErrorIs(t, err, ecc384.ErrAccelerator)
}

func TestFromInt(t *testing.T) {
	s, err := fromInt(toInt(&seed))
	require.NoError(t, err)
	assert.Equal(t, seed, s)
}
