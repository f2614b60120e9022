// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"crypto/elliptic"
	"sync"

	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// ECC register file size
const eccSize = 0x700

// HKDF diversifiers
const (
	keygenInfo = "ecc384 keygen"
	signInfo   = "ecc384 sign"
	lambdaInfo = "ecc384 lambda"
)

// ECC simulates the curve engine register file. Commands complete
// synchronously on the CTRL write.
//
// Key generation derives the private key from seed and nonce, signing
// derives the ephemeral scalar from private key, digest and IV. Every
// command derives a projective randomization factor from the IV.
type ECC struct {
	mu sync.Mutex

	vault *Vault

	regs  [eccSize / 4]uint32
	valid bool

	rdSeed kvPort
	rdPkey kvPort
	wrPkey kvPort

	// values staged from the vault, not visible on the bus
	seedKV     word.Array4x12
	seedFromKV bool
	pkeyKV     word.Array4x12
	pkeyFromKV bool
}

// NewECC returns a curve engine attached to a key vault.
func NewECC(vault *Vault) *ECC {
	return &ECC{
		vault:  vault,
		rdSeed: newPort(),
		rdPkey: newPort(),
		wrPkey: newPort(),
	}
}

func within(addr uint32, base uint32) bool {
	return addr >= base && addr < base+word.Array4x12Size
}

// Read implements reg.Bus.
func (e *ECC) Read(addr uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch addr {
	case ecc384.ECC_CTRL:
		return 0
	case ecc384.ECC_STATUS:
		status := uint32(1 << ecc384.STATUS_READY)

		if e.valid {
			status |= 1 << ecc384.STATUS_VALID
		}

		return status
	case ecc384.ECC_KV_RD_SEED_CTRL:
		return e.rdSeed.ctrl
	case ecc384.ECC_KV_RD_SEED_STATUS:
		return e.rdSeed.status
	case ecc384.ECC_KV_RD_PKEY_CTRL:
		return e.rdPkey.ctrl
	case ecc384.ECC_KV_RD_PKEY_STATUS:
		return e.rdPkey.status
	case ecc384.ECC_KV_WR_PKEY_CTRL:
		return e.wrPkey.ctrl
	case ecc384.ECC_KV_WR_PKEY_STATUS:
		return e.wrPkey.status
	}

	if addr%4 != 0 || addr >= eccSize {
		return 0
	}

	return e.regs[addr/4]
}

// Write implements reg.Bus.
func (e *ECC) Write(addr uint32, val uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch addr {
	case ecc384.ECC_CTRL:
		e.control(val)
		return
	case ecc384.ECC_STATUS, ecc384.ECC_KV_RD_SEED_STATUS, ecc384.ECC_KV_RD_PKEY_STATUS, ecc384.ECC_KV_WR_PKEY_STATUS:
		return
	case ecc384.ECC_KV_RD_SEED_CTRL:
		e.rdSeed.arm(val)

		if e.rdSeed.enabled() {
			e.seedKV, e.seedFromKV = e.stage(&e.rdSeed, kv.EccKeyGenSeed)
		}

		return
	case ecc384.ECC_KV_RD_PKEY_CTRL:
		e.rdPkey.arm(val)

		if e.rdPkey.enabled() {
			e.pkeyKV, e.pkeyFromKV = e.stage(&e.rdPkey, kv.EccPrivateKey)
		}

		return
	case ecc384.ECC_KV_WR_PKEY_CTRL:
		e.wrPkey.arm(val)
		return
	}

	if addr%4 != 0 || addr >= eccSize {
		return
	}

	switch {
	case within(addr, ecc384.ECC_SEED):
		e.seedFromKV = false
	case within(addr, ecc384.ECC_PRIVKEY_IN):
		e.pkeyFromKV = false
	}

	e.regs[addr/4] = val
}

func (e *ECC) stage(p *kvPort, consumer kv.KeyUsage) (val word.Array4x12, ok bool) {
	val, code := e.vault.read(p.entry(), consumer)
	p.complete(code)

	return val, code == kv.KV_SUCCESS
}

func (e *ECC) array(base uint32) (a word.Array4x12) {
	copy(a[:], e.regs[base/4:])
	return
}

func (e *ECC) setArray(base uint32, a *word.Array4x12) {
	copy(e.regs[base/4:], a[:])
}

func (e *ECC) control(val uint32) {
	if val&(1<<ecc384.CTRL_ZEROIZE) != 0 {
		e.zeroize()
		return
	}

	cmd := (val >> ecc384.CTRL_CMD) & 0x3

	if cmd == 0 {
		return
	}

	e.valid = false

	switch cmd {
	case ecc384.CMD_KEYGEN:
		e.keygen()
	case ecc384.CMD_SIGNING:
		e.sign()
	}

	e.lambda()
	e.valid = true
}

func (e *ECC) keygen() {
	seed := e.array(ecc384.ECC_SEED)

	if e.seedFromKV {
		seed = e.seedKV
	}

	nonce := e.array(ecc384.ECC_NONCE)
	sb := seed.Bytes()
	nb := nonce.Bytes()

	priv := intToArray(derive(sb[:], nb[:], keygenInfo, elliptic.P384().Params().N))
	defer priv.Zeroize()

	if !e.wrPkey.enabled() {
		e.setArray(ecc384.ECC_PRIVKEY_OUT, &priv)
		return
	}

	e.wrPkey.complete(e.vault.write(e.wrPkey.entry(), &priv, e.wrPkey.usage()))
}

func (e *ECC) sign() {
	priv := e.array(ecc384.ECC_PRIVKEY_IN)

	if e.pkeyFromKV {
		priv = e.pkeyKV
	}

	msg := e.array(ecc384.ECC_MSG)
	iv := e.array(ecc384.ECC_IV)

	pb := priv.Bytes()
	mb := msg.Bytes()
	ib := iv.Bytes()

	k := intToArray(derive(append(pb[:], mb[:]...), ib[:], signInfo, elliptic.P384().Params().N))
	e.setArray(ecc384.ECC_PRIVKEY_OUT, &k)

	priv.Zeroize()
	k.Zeroize()
}

func (e *ECC) lambda() {
	iv := e.array(ecc384.ECC_IV)
	ib := iv.Bytes()

	l := intToArray(derive(ib[:], nil, lambdaInfo, elliptic.P384().Params().P))
	e.setArray(ecc384.ECC_LAMBDA, &l)
}

func (e *ECC) zeroize() {
	for i := range e.regs {
		e.regs[i] = 0
	}

	e.seedKV.Zeroize()
	e.pkeyKV.Zeroize()
	e.seedFromKV = false
	e.pkeyFromKV = false

	e.rdSeed.reset()
	e.rdPkey.reset()
	e.wrPkey.reset()

	e.valid = false
}
