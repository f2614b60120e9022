// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package keyring

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/sim"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

const testPath = "/vault.img"

func TestSealOpen(t *testing.T) {
	msg := []byte("vault")

	image, err := seal([]byte("secret"), msg, 256)
	require.NoError(t, err)
	assert.Len(t, image, 256)

	buf, err := open([]byte("secret"), image)
	require.NoError(t, err)
	assert.Equal(t, msg, buf[:len(msg)])
	assert.Len(t, buf, 256-SALT_SIZE-16-32)

	_, err = open([]byte("wrong"), image)
	assert.ErrorIs(t, err, ErrHMAC)

	image[SALT_SIZE+16] ^= 1
	_, err = open([]byte("secret"), image)
	assert.ErrorIs(t, err, ErrHMAC)

	_, err = open([]byte("secret"), image[:40])
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	fs := afero.NewMemMapFs()
	k := New(fs, testPath, []byte("secret"))

	require.NoError(t, k.Init(false))
	id := k.Conf.ID

	image, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.Len(t, image, IMAGE_SIZE)

	// existing image is kept
	k = New(fs, testPath, []byte("secret"))
	require.NoError(t, k.Init(false))
	assert.Equal(t, id, k.Conf.ID)

	require.NoError(t, k.Init(true))
	assert.NotEqual(t, id, k.Conf.ID)

	// unsealing failures are not silently recovered
	k = New(fs, testPath, []byte("wrong"))
	assert.ErrorIs(t, k.Init(false), ErrHMAC)
}

func TestExportImport(t *testing.T) {
	fs := afero.NewMemMapFs()
	k := New(fs, testPath, []byte("secret"))
	require.NoError(t, k.Init(false))

	seed := word.Array4x12{0xa, 0xb, 0xc}
	vault := sim.NewVault()

	require.NoError(t, vault.Provision(SEED_SLOT, &seed, kv.EccKeyGenSeed))
	require.NoError(t, vault.LockEntry(SEED_SLOT, true, false))

	k.Export(vault)
	k.Conf.Identity = []byte{4, 1, 2}
	require.NoError(t, k.Save())

	k = New(fs, testPath, []byte("secret"))
	require.NoError(t, k.Load())
	assert.Equal(t, []byte{4, 1, 2}, k.Conf.Identity)

	restored := sim.NewVault()
	require.NoError(t, k.Import(restored))

	e := restored.Entry(SEED_SLOT)
	assert.Equal(t, seed, e.Value)
	assert.Equal(t, kv.EccKeyGenSeed, e.Usage)
	assert.True(t, e.LockWrite)
	assert.False(t, restored.Entry(IDENTITY_SLOT).Written)
}

func TestSaveWithoutConfiguration(t *testing.T) {
	k := New(afero.NewMemMapFs(), testPath, nil)
	assert.Error(t, k.Save())
}
