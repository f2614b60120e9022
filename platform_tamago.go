// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago
// +build tamago

package main

import (
	_ "unsafe"

	"github.com/f-secure-foundry/tamago/board/f-secure/usbarmory/mark-two"

	"github.com/f-secure-foundry/armory-rot/internal/reg"
)

// Peripheral base addresses
const (
	ECC_BASE = 0x10008000
	PKA_BASE = 0x10009000
)

// Override usbarmory pkg ramSize, as this application has no large
// allocations.

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = 0x4000000 // 64MB

// platform takes ownership of the memory mapped peripherals, the key vault
// is provisioned before the firmware runs.
func platform() (eccBus reg.Bus, pkaBus reg.Bus, err error) {
	usbarmory.LED("blue", false)
	usbarmory.LED("white", false)

	return reg.Steal(ECC_BASE), reg.Steal(PKA_BASE), nil
}

func status(ok bool) {
	usbarmory.LED("white", ok)
}
