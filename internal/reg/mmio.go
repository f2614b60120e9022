// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago
// +build tamago

package reg

import (
	"sync/atomic"
	"unsafe"
)

// MMIO represents a memory mapped register file.
type MMIO struct {
	base uint32
}

// Steal returns a bus over the memory mapped register file at the base
// address. This is the only place where peripheral ownership is taken
// without any check, callers must ensure that a single owner exists for
// each peripheral.
func Steal(base uint32) *MMIO {
	return &MMIO{base: base}
}

func (m *MMIO) Read(addr uint32) uint32 {
	reg := (*uint32)(unsafe.Pointer(uintptr(m.base + addr)))
	return atomic.LoadUint32(reg)
}

func (m *MMIO) Write(addr uint32, val uint32) {
	reg := (*uint32)(unsafe.Pointer(uintptr(m.base + addr)))
	atomic.StoreUint32(reg, val)
}
