// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pka implements a driver for the public key math accelerator, a
// co-processor performing 384-bit modular arithmetic and elliptic curve
// point operations on operands held in its data memory.
//
// All operands are exchanged in the accelerator word order (least
// significant word first), no curve level reasoning happens here.
package pka

import (
	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/reg"
)

// PKA registers
const (
	PKA_CTRL   = 0x00
	CTRL_OPLEN = 16
	CTRL_START = 0

	PKA_COMMAND = 0x04

	PKA_STATUS   = 0x08
	STATUS_ERROR = 1
	STATUS_DONE  = 0

	PKA_N_INV_0 = 0x0c
	PKA_N_INV_1 = 0x10

	PKA_KV_RD_CTRL   = 0x14
	PKA_KV_RD_STATUS = 0x18
	PKA_KV_RD_DEST   = 0x1c

	PKA_DMEM  = 0x1000
	DMEM_SIZE = 0x800
)

// Montgomery approximation values
const (
	NI_0 = 0x00
	NI_1 = 0x10
)

// Operand length in bytes.
const OPERAND_LEN = 48

// Scratchpad slots, as byte offsets within data memory. Slots are shared
// between operations, their contents do not persist across operation type
// changes.
const (
	MOD    = 0x000
	X0     = 0x060
	Y0     = 0x0c0
	Z0     = 0x120
	X1     = 0x180
	Y1     = 0x1e0
	Z1     = 0x240
	RESX   = 0x2a0
	RESY   = 0x300
	RESZ   = 0x360
	A      = 0x3c0
	SCALAR = 0x420
	B      = 0x480

	MINV_OP  = 0x200
	MINV_RES = 0x400

	MMUL_OP1 = 0x200
	MMUL_OP2 = 0x400
	MMUL_RES = 0x600

	MADD_OP1 = 0x200
	MADD_OP2 = 0x400
	MADD_RES = 0x600
)

// Op represents an accelerator program entry point.
type Op uint32

// Accelerator operations
const (
	// modular multiplication
	MM Op = 0x00
	// point addition
	PA Op = 0x10
	// scalar point multiplication
	SM Op = 0x18
	// modular inverse
	MI Op = 0x30
	// modular addition
	MA Op = 0x38
)

func (op Op) String() string {
	switch op {
	case MM:
		return "modmult"
	case PA:
		return "pointadd"
	case SM:
		return "scalarmult"
	case MI:
		return "modinv"
	case MA:
		return "modadd"
	default:
		return "unknown"
	}
}

var (
	// ErrAddress indicates a transfer outside the accelerator data memory.
	ErrAddress = errors.New("invalid data memory address")
	// ErrFault indicates that the accelerator reported an error.
	ErrFault = errors.New("accelerator fault")
)

// Words represents an operand in accelerator word order.
type Words = [12]uint32

// PKA represents an exclusive handle to the math accelerator.
type PKA struct {
	bus reg.Bus
}

// New returns a handle for the accelerator reachable through the argument
// bus, the caller must own the peripheral.
func New(bus reg.Bus) *PKA {
	return &PKA{bus: bus}
}

func checkAddr(addr uint32) error {
	if addr%4 != 0 || addr+OPERAND_LEN > DMEM_SIZE {
		return errors.Wrapf(ErrAddress, "%#x", addr)
	}

	return nil
}

// Write stores an operand in a data memory slot.
func (p *PKA) Write(w *Words, addr uint32) (err error) {
	if err = checkAddr(addr); err != nil {
		return
	}

	reg.WriteN(p.bus, PKA_DMEM+addr, w[:])

	return
}

// Read loads an operand from a data memory slot.
func (p *PKA) Read(addr uint32) (w Words, err error) {
	if err = checkAddr(addr); err != nil {
		return
	}

	reg.ReadN(p.bus, PKA_DMEM+addr, w[:])

	return
}

// Execute runs an operation on the operands previously written to the
// scratchpad, it blocks until the accelerator reports completion.
func (p *PKA) Execute(op Op) error {
	p.bus.Write(PKA_N_INV_0, NI_0)
	p.bus.Write(PKA_N_INV_1, NI_1)
	p.bus.Write(PKA_COMMAND, uint32(op))
	p.bus.Write(PKA_CTRL, OPERAND_LEN<<CTRL_OPLEN|1<<CTRL_START)

	reg.Wait(p.bus, PKA_STATUS, STATUS_DONE, 1, 1)

	if reg.IsSet(p.bus, PKA_STATUS, STATUS_ERROR) {
		return errors.Wrap(ErrFault, op.String())
	}

	return nil
}

// LoadFromVault stages a key vault entry into a data memory slot, the value
// travels from the vault to the accelerator without being exposed to the
// caller. Vault failures are returned as kv errors.
func (p *PKA) LoadFromVault(key kv.KeyReadArgs, addr uint32) (err error) {
	if err = checkAddr(addr); err != nil {
		return
	}

	p.bus.Write(PKA_KV_RD_DEST, addr)

	return kv.CopyFromKV(key, kv.Port{
		Bus:    p.bus,
		Status: PKA_KV_RD_STATUS,
		Ctrl:   PKA_KV_RD_CTRL,
	})
}

// Zeroize overwrites the whole accelerator data memory.
func (p *PKA) Zeroize() {
	for off := uint32(0); off < DMEM_SIZE; off += 4 {
		p.bus.Write(PKA_DMEM+off, 0)
	}
}
