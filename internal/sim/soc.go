// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim provides a hosted simulation of the curve engine, the math
// accelerator and the key vault, reachable through the same register
// buses used by the drivers on bare metal.
package sim

import (
	"sync"

	"github.com/f-secure-foundry/armory-rot/internal/reg"
)

// SoC represents a set of simulated peripherals sharing one key vault.
type SoC struct {
	Vault *Vault
	ECC   *ECC
	PKA   *PKA
}

// Option configures a simulated SoC.
type Option func(*SoC)

// WithVault attaches an existing key vault.
func WithVault(v *Vault) Option {
	return func(s *SoC) {
		s.Vault = v
	}
}

// NewSoC returns a simulated SoC, with an empty key vault unless one is
// passed with WithVault.
func NewSoC(opts ...Option) *SoC {
	s := &SoC{}

	for _, opt := range opts {
		opt(s)
	}

	if s.Vault == nil {
		s.Vault = NewVault()
	}

	s.ECC = NewECC(s.Vault)
	s.PKA = NewPKA(s.Vault)

	return s
}

// Access represents a recorded register access.
type Access struct {
	Write bool
	Addr  uint32
	Val   uint32
}

// Recorder is a reg.Bus wrapper keeping track of all accesses.
type Recorder struct {
	mu sync.Mutex

	bus reg.Bus
	log []Access
}

// NewRecorder returns a Recorder forwarding accesses to bus.
func NewRecorder(bus reg.Bus) *Recorder {
	return &Recorder{bus: bus}
}

// Read implements reg.Bus.
func (r *Recorder) Read(addr uint32) (val uint32) {
	val = r.bus.Read(addr)

	r.mu.Lock()
	r.log = append(r.log, Access{Addr: addr, Val: val})
	r.mu.Unlock()

	return
}

// Write implements reg.Bus.
func (r *Recorder) Write(addr uint32, val uint32) {
	r.mu.Lock()
	r.log = append(r.log, Access{Write: true, Addr: addr, Val: val})
	r.mu.Unlock()

	r.bus.Write(addr, val)
}

// Accesses returns all accesses recorded so far.
func (r *Recorder) Accesses() []Access {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Access(nil), r.log...)
}

// Writes returns all write accesses recorded so far.
func (r *Recorder) Writes() (w []Access) {
	for _, a := range r.Accesses() {
		if a.Write {
			w = append(w, a)
		}
	}

	return
}
