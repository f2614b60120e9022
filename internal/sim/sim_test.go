// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"crypto/elliptic"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/reg"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

func TestConversions(t *testing.T) {
	v, ok := new(big.Int).SetString("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f202122232425262728292a2b2c2d2e2f30", 16)
	require.True(t, ok)

	le := intToLE(v)
	assert.Equal(t, uint32(0x2d2e2f30), le[0])
	assert.Equal(t, uint32(0x01020304), le[11])
	assert.Equal(t, 0, leToInt(&le).Cmp(v))

	a := intToArray(v)
	assert.Equal(t, uint32(0x01020304), a[0])
	assert.Equal(t, 0, arrayToInt(&a).Cmp(v))
	assert.Equal(t, a.LE(), le)
}

func TestDerive(t *testing.T) {
	n := elliptic.P384().Params().N

	a := derive([]byte("secret"), []byte("salt"), "info", n)
	b := derive([]byte("secret"), []byte("salt"), "info", n)
	c := derive([]byte("secret"), []byte("other"), "info", n)

	assert.Equal(t, 0, a.Cmp(b))
	assert.NotEqual(t, 0, a.Cmp(c))
	assert.Equal(t, 1, a.Sign())
	assert.Equal(t, -1, a.Cmp(n))
}

func TestScalarMult(t *testing.T) {
	params := elliptic.P384().Params()
	c := &curve{p: params.P, a: new(big.Int).Sub(params.P, big.NewInt(3))}
	g := point{params.Gx, params.Gy}

	for _, k := range []*big.Int{
		big.NewInt(1),
		big.NewInt(2),
		big.NewInt(0xdeadbeef),
		new(big.Int).Sub(params.N, big.NewInt(1)),
	} {
		x, y := params.ScalarBaseMult(k.Bytes())
		r := c.scalarMult(g, k)

		require.False(t, r.infinity())
		assert.Equal(t, 0, x.Cmp(r.x))
		assert.Equal(t, 0, y.Cmp(r.y))
	}

	assert.True(t, c.scalarMult(g, params.N).infinity())
	assert.True(t, c.scalarMult(g, big.NewInt(0)).infinity())

	// projective round trip
	x, y, z := c.projective(g)
	p := c.affine(x, y, z)
	assert.Equal(t, 0, p.x.Cmp(g.x))
	assert.Equal(t, 0, p.y.Cmp(g.y))

	x, y, z = c.projective(point{})
	assert.True(t, c.affine(x, y, z).infinity())
	assert.Equal(t, int64(1), y.Int64())
}

func TestPKAPointAdd(t *testing.T) {
	params := elliptic.P384().Params()
	p := pka.New(NewPKA(NewVault()))

	gx := intToLE(params.Gx)
	gy := intToLE(params.Gy)
	gz := intToLE(big.NewInt(1))
	mod := intToLE(params.P)
	a := intToLE(new(big.Int).Sub(params.P, big.NewInt(3)))

	for _, op := range []struct {
		w    *pka.Words
		addr uint32
	}{
		{&mod, pka.MOD}, {&a, pka.A},
		{&gx, pka.X0}, {&gy, pka.Y0}, {&gz, pka.Z0},
		{&gx, pka.X1}, {&gy, pka.Y1}, {&gz, pka.Z1},
	} {
		require.NoError(t, p.Write(op.w, op.addr))
	}

	require.NoError(t, p.Execute(pka.PA))

	rx, err := p.Read(pka.RESX)
	require.NoError(t, err)
	ry, err := p.Read(pka.RESY)
	require.NoError(t, err)
	rz, err := p.Read(pka.RESZ)
	require.NoError(t, err)

	c := &curve{p: params.P, a: leToInt(&a)}
	r := c.affine(leToInt(&rx), leToInt(&ry), leToInt(&rz))

	x, y := params.Double(params.Gx, params.Gy)
	assert.Equal(t, 0, x.Cmp(r.x))
	assert.Equal(t, 0, y.Cmp(r.y))
}

func TestVault(t *testing.T) {
	v := NewVault()
	val := word.Array4x12{1, 2, 3}

	require.NoError(t, v.Provision(1, &val, kv.EccKeyGenSeed))

	_, code := v.read(1, kv.EccPrivateKey)
	assert.Equal(t, uint32(kv.KV_READ_FAIL), code)

	got, code := v.read(1, kv.EccKeyGenSeed)
	assert.Equal(t, uint32(kv.KV_SUCCESS), code)
	assert.Equal(t, val, got)

	require.NoError(t, v.LockEntry(1, false, true))
	_, code = v.read(1, kv.EccKeyGenSeed)
	assert.Equal(t, uint32(kv.KV_READ_FAIL), code)

	require.NoError(t, v.LockEntry(2, true, false))
	assert.Equal(t, uint32(kv.KV_WRITE_FAIL), v.write(2, &val, kv.EccPrivateKey))
	assert.Error(t, v.Provision(2, &val, kv.EccPrivateKey))
	assert.Error(t, v.Clear(2))
	assert.Error(t, v.Provision(kv.KEY_COUNT, &val, kv.EccPrivateKey))

	snap := v.Snapshot()
	require.NoError(t, v.Clear(1))
	assert.False(t, v.Entry(1).Written)

	require.NoError(t, v.Restore(snap))
	assert.Equal(t, val, v.Entry(1).Value)
	assert.Error(t, v.Restore(snap[1:]))
}

func TestECCKeygen(t *testing.T) {
	soc := NewSoC()

	seed := word.Array4x12{0xaaaa}
	nonce := word.Array4x12{0x5555}

	reg.WriteN(soc.ECC, ecc384.ECC_SEED, seed.Words())
	reg.WriteN(soc.ECC, ecc384.ECC_NONCE, nonce.Words())
	soc.ECC.Write(ecc384.ECC_CTRL, ecc384.CMD_KEYGEN)

	require.True(t, reg.IsSet(soc.ECC, ecc384.ECC_STATUS, ecc384.STATUS_VALID))

	var priv word.Array4x12
	reg.ReadN(soc.ECC, ecc384.ECC_PRIVKEY_OUT, priv.Words())
	assert.False(t, priv.IsZero())

	var lambda word.Array4x12
	reg.ReadN(soc.ECC, ecc384.ECC_LAMBDA, lambda.Words())
	assert.False(t, lambda.IsZero())

	// same seed through the vault, private key routed to the vault
	require.NoError(t, soc.Vault.Provision(0, &seed, kv.EccKeyGenSeed))

	soc.ECC.Write(ecc384.ECC_CTRL, 1<<ecc384.CTRL_ZEROIZE)
	assert.False(t, reg.IsSet(soc.ECC, ecc384.ECC_STATUS, ecc384.STATUS_VALID))

	soc.ECC.Write(ecc384.ECC_KV_RD_SEED_CTRL, 1)
	assert.Equal(t, uint32(1<<kv.STATUS_READY|1<<kv.STATUS_VALID), soc.ECC.Read(ecc384.ECC_KV_RD_SEED_STATUS))

	reg.WriteN(soc.ECC, ecc384.ECC_NONCE, nonce.Words())
	soc.ECC.Write(ecc384.ECC_KV_WR_PKEY_CTRL, 1|5<<kv.WRITE_CTRL_ENTRY|uint32(kv.EccPrivateKey)<<kv.WRITE_CTRL_DEST_VALID)
	soc.ECC.Write(ecc384.ECC_CTRL, ecc384.CMD_KEYGEN)

	assert.Equal(t, uint32(1<<kv.STATUS_READY|1<<kv.STATUS_VALID), soc.ECC.Read(ecc384.ECC_KV_WR_PKEY_STATUS))

	var out word.Array4x12
	reg.ReadN(soc.ECC, ecc384.ECC_PRIVKEY_OUT, out.Words())
	assert.True(t, out.IsZero())

	entry := soc.Vault.Entry(5)
	assert.Equal(t, priv, entry.Value)
	assert.Equal(t, kv.EccPrivateKey, entry.Usage)
}

func TestECCSeedUsage(t *testing.T) {
	soc := NewSoC()
	seed := word.Array4x12{1}

	require.NoError(t, soc.Vault.Provision(0, &seed, kv.EccPrivateKey))

	soc.ECC.Write(ecc384.ECC_KV_RD_SEED_CTRL, 1)
	status := soc.ECC.Read(ecc384.ECC_KV_RD_SEED_STATUS)

	assert.Equal(t, uint32(kv.KV_READ_FAIL), (status>>kv.STATUS_ERROR)&0xff)
}

func TestRecorder(t *testing.T) {
	soc := NewSoC()
	r := NewRecorder(soc.PKA)

	r.Write(pka.PKA_DMEM, 0xabcd)
	assert.Equal(t, uint32(0xabcd), r.Read(pka.PKA_DMEM))

	assert.Len(t, r.Accesses(), 2)
	assert.Equal(t, []Access{{Write: true, Addr: pka.PKA_DMEM, Val: 0xabcd}}, r.Writes())
}
