// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ecc384 implements a driver for the P-384 curve engine.
//
// The engine generates key pairs and ephemeral scalars in hardware and
// delegates all curve arithmetic to the math accelerator. Private keys are
// exchanged either through caller owned arrays or through the key vault, in
// which case they are never exposed to general memory.
//
// The following countermeasures are applied on every operation:
//   - the base point projective representation is randomized before each
//     scalar multiplication involving a secret scalar
//   - generated key pairs are checked by signing and verifying a known digest
//   - generated signatures are verified before being returned
//   - engine registers and accelerator memory are cleared on exit
package ecc384

import (
	"sync"

	"go.uber.org/zap"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/reg"
)

// ECC registers
const (
	ECC_CTRL      = 0x10
	CTRL_ZEROIZE  = 2
	CTRL_CMD      = 0
	CMD_KEYGEN    = 1
	CMD_SIGNING   = 2
	CMD_VERIFYING = 3

	ECC_STATUS   = 0x18
	STATUS_VALID = 1
	STATUS_READY = 0

	ECC_SEED        = 0x080
	ECC_MSG         = 0x100
	ECC_PRIVKEY_OUT = 0x180
	ECC_PUBKEY_X    = 0x200
	ECC_PUBKEY_Y    = 0x280
	ECC_SIGN_R      = 0x300
	ECC_SIGN_S      = 0x380
	ECC_VERIFY_R    = 0x400
	ECC_IV          = 0x480
	ECC_NONCE       = 0x500
	ECC_PRIVKEY_IN  = 0x580

	ECC_KV_RD_PKEY_CTRL   = 0x600
	ECC_KV_RD_PKEY_STATUS = 0x604
	ECC_KV_RD_SEED_CTRL   = 0x608
	ECC_KV_RD_SEED_STATUS = 0x60c
	ECC_KV_WR_PKEY_CTRL   = 0x610
	ECC_KV_WR_PKEY_STATUS = 0x614

	ECC_LAMBDA = 0x680
)

// Ecc384 represents an exclusive handle to the curve engine and to the math
// accelerator it drives. Operations on the same handle are serialized.
type Ecc384 struct {
	mu sync.Mutex

	regs reg.Bus
	pka  *pka.PKA
	log  *zap.SugaredLogger
}

// Option configures an engine handle.
type Option func(*Ecc384)

// WithLogger sets the logger used to report operation outcomes, key
// material is never logged.
func WithLogger(l *zap.Logger) Option {
	return func(e *Ecc384) {
		e.log = l.Named("ecc384").Sugar()
	}
}

// New returns an engine handle over the curve engine registers and the math
// accelerator, the caller must own both peripherals.
func New(regs reg.Bus, accel *pka.PKA, opts ...Option) *Ecc384 {
	e := &Ecc384{
		regs: regs,
		pka:  accel,
		log:  zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Ecc384) port(status uint32, ctrl uint32) kv.Port {
	return kv.Port{
		Bus:    e.regs,
		Status: status,
		Ctrl:   ctrl,
	}
}

func (e *Ecc384) waitReady() {
	reg.Wait(e.regs, ECC_STATUS, STATUS_READY, 1, 1)
}

func (e *Ecc384) command(cmd uint32) {
	reg.SetN(e.regs, ECC_CTRL, CTRL_CMD, 0x3, cmd)
	reg.Wait(e.regs, ECC_STATUS, STATUS_VALID, 1, 1)
}

// lambda reads the hardware projective randomization factor.
func (e *Ecc384) lambda() pka.Words {
	var l Scalar
	reg.ReadN(e.regs, ECC_LAMBDA, l.Words())

	defer l.Zeroize()

	return l.LE()
}

func (e *Ecc384) zeroizeInternal() {
	Zeroize(e.regs)
	e.pka.Zeroize()
}

// Zeroize clears the curve engine registers through the argument bus,
// without owning the engine handle, so that it can be invoked from fault or
// trap handlers.
//
// The caller must ensure that the results of any pending operation are not
// used after this function is called.
func Zeroize(regs reg.Bus) {
	reg.Set(regs, ECC_CTRL, CTRL_ZEROIZE)
}
