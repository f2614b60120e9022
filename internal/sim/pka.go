// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"math/big"
	"sync"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
)

// PKA simulates the math accelerator register file and data memory,
// operations complete synchronously on the CTRL start write.
type PKA struct {
	mu sync.Mutex

	vault *Vault

	ctrl    uint32
	command uint32
	status  uint32
	nInv    [2]uint32

	kvRead kvPort
	kvDest uint32

	dmem [pka.DMEM_SIZE / 4]uint32
}

// NewPKA returns a math accelerator attached to a key vault.
func NewPKA(vault *Vault) *PKA {
	return &PKA{
		vault:  vault,
		kvRead: newPort(),
	}
}

// Read implements reg.Bus.
func (p *PKA) Read(addr uint32) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case addr == pka.PKA_CTRL:
		return p.ctrl
	case addr == pka.PKA_COMMAND:
		return p.command
	case addr == pka.PKA_STATUS:
		return p.status
	case addr == pka.PKA_N_INV_0:
		return p.nInv[0]
	case addr == pka.PKA_N_INV_1:
		return p.nInv[1]
	case addr == pka.PKA_KV_RD_CTRL:
		return p.kvRead.ctrl
	case addr == pka.PKA_KV_RD_STATUS:
		return p.kvRead.status
	case addr == pka.PKA_KV_RD_DEST:
		return p.kvDest
	case addr >= pka.PKA_DMEM && addr < pka.PKA_DMEM+pka.DMEM_SIZE:
		return p.dmem[(addr-pka.PKA_DMEM)/4]
	}

	return 0
}

// Write implements reg.Bus.
func (p *PKA) Write(addr uint32, val uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case addr == pka.PKA_CTRL:
		p.ctrl = val

		if val&(1<<pka.CTRL_START) != 0 {
			p.execute()
		}
	case addr == pka.PKA_COMMAND:
		p.command = val
	case addr == pka.PKA_N_INV_0:
		p.nInv[0] = val
	case addr == pka.PKA_N_INV_1:
		p.nInv[1] = val
	case addr == pka.PKA_KV_RD_CTRL:
		p.kvRead.arm(val)

		if p.kvRead.enabled() {
			p.loadFromVault()
		}
	case addr == pka.PKA_KV_RD_DEST:
		p.kvDest = val
	case addr >= pka.PKA_DMEM && addr < pka.PKA_DMEM+pka.DMEM_SIZE:
		p.dmem[(addr-pka.PKA_DMEM)/4] = val
	}
}

func (p *PKA) operand(addr uint32) *big.Int {
	var le [12]uint32
	copy(le[:], p.dmem[addr/4:])

	return leToInt(&le)
}

func (p *PKA) result(addr uint32, v *big.Int) {
	le := intToLE(v)
	copy(p.dmem[addr/4:], le[:])
}

func (p *PKA) point(x, y, z uint32) (*big.Int, *big.Int, *big.Int) {
	return p.operand(x), p.operand(y), p.operand(z)
}

func (p *PKA) execute() {
	p.status = 0
	m := p.operand(pka.MOD)

	// the modulus must be an odd prime for every supported operation
	if m.Bit(0) == 0 || m.Cmp(two) <= 0 {
		p.status = 1<<pka.STATUS_DONE | 1<<pka.STATUS_ERROR
		return
	}

	switch pka.Op(p.command) {
	case pka.MM:
		v := new(big.Int).Mul(p.operand(pka.MMUL_OP1), p.operand(pka.MMUL_OP2))
		p.result(pka.MMUL_RES, v.Mod(v, m))
	case pka.MA:
		v := new(big.Int).Add(p.operand(pka.MADD_OP1), p.operand(pka.MADD_OP2))
		p.result(pka.MADD_RES, v.Mod(v, m))
	case pka.MI:
		p.result(pka.MINV_RES, fermatInverse(p.operand(pka.MINV_OP), m))
	case pka.SM:
		c := &curve{p: m, a: new(big.Int).Mod(p.operand(pka.A), m)}
		pt := c.affine(p.point(pka.X0, pka.Y0, pka.Z0))
		p.store(c, c.scalarMult(pt, p.operand(pka.SCALAR)))
	case pka.PA:
		c := &curve{p: m, a: new(big.Int).Mod(p.operand(pka.A), m)}
		p0 := c.affine(p.point(pka.X0, pka.Y0, pka.Z0))
		p1 := c.affine(p.point(pka.X1, pka.Y1, pka.Z1))
		p.store(c, c.add(p0, p1))
	default:
		p.status = 1<<pka.STATUS_DONE | 1<<pka.STATUS_ERROR
		return
	}

	p.status = 1 << pka.STATUS_DONE
}

func (p *PKA) store(c *curve, pt point) {
	x, y, z := c.projective(pt)

	p.result(pka.RESX, x)
	p.result(pka.RESY, y)
	p.result(pka.RESZ, z)
}

func (p *PKA) loadFromVault() {
	dest := p.kvDest

	if dest%4 != 0 || dest+pka.OPERAND_LEN > pka.DMEM_SIZE {
		p.kvRead.complete(kvInvalid)
		return
	}

	val, code := p.vault.read(p.kvRead.entry(), kv.EccPrivateKey)

	if code == kv.KV_SUCCESS {
		le := val.LE()
		copy(p.dmem[dest/4:], le[:])
	}

	val.Zeroize()
	p.kvRead.complete(code)
}
