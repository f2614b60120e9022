// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kv implements access to the key vault from the peripherals that
// consume or produce secret material.
//
// Secret values are moved between the vault and a peripheral by the
// hardware, the functions in this package only program the transfer and
// collect its outcome, so that vault contents are never exposed to general
// memory. The plain memory equivalents (CopyFromArr, EndCopyToArr) are
// provided for callers supplying or receiving values in arrays.
package kv

import (
	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/reg"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// Number of key vault entries.
const KEY_COUNT = 32

// Key vault read control register
const (
	READ_CTRL_ENTRY = 1
	READ_CTRL_EN    = 0
)

// Key vault write control register
const (
	WRITE_CTRL_DEST_VALID = 6
	WRITE_CTRL_ENTRY      = 1
	WRITE_CTRL_EN         = 0
)

// Key vault status register
const (
	STATUS_ERROR = 2
	STATUS_VALID = 1
	STATUS_READY = 0
)

// Key vault status error codes
const (
	KV_SUCCESS    = 0
	KV_READ_FAIL  = 1
	KV_WRITE_FAIL = 2
)

var (
	// ErrKeyRead indicates that the vault refused to read an entry.
	ErrKeyRead = errors.New("key vault read failure")
	// ErrKeyWrite indicates that the vault refused to write an entry.
	ErrKeyWrite = errors.New("key vault write failure")
	// ErrGeneric indicates an unspecified vault failure.
	ErrGeneric = errors.New("key vault failure")
)

// KeyID represents a key vault entry index.
type KeyID uint8

// KeyUsage represents the set of peripherals allowed to consume a key vault
// entry, its bits map to the write control destination valid field.
type KeyUsage uint32

// Key usage flags
const (
	HmacKey KeyUsage = 1 << iota
	HmacData
	Sha384Data
	EccPrivateKey
	EccKeyGenSeed
	EccData
)

// Has returns whether all usage flags in u are set.
func (k KeyUsage) Has(u KeyUsage) bool {
	return k&u == u
}

// EccPrivateKey returns whether the entry may be used as an ECC private key.
func (k KeyUsage) EccPrivateKey() bool {
	return k.Has(EccPrivateKey)
}

// KeyReadArgs selects a key vault entry to read from.
type KeyReadArgs struct {
	ID KeyID
}

// KeyWriteArgs selects a key vault entry to write to, along with the usage
// granted to its new value.
type KeyWriteArgs struct {
	ID    KeyID
	Usage KeyUsage
}

// Port represents the status/control register pair through which a
// peripheral exchanges one kind of key material with the vault.
type Port struct {
	Bus    reg.Bus
	Status uint32
	Ctrl   uint32
}

func (p Port) waitReady() {
	reg.Wait(p.Bus, p.Status, STATUS_READY, 1, 1)
}

func (p Port) result() error {
	reg.Wait(p.Bus, p.Status, STATUS_VALID, 1, 1)

	switch reg.Get(p.Bus, p.Status, STATUS_ERROR, 0xff) {
	case KV_SUCCESS:
		return nil
	case KV_READ_FAIL:
		return ErrKeyRead
	case KV_WRITE_FAIL:
		return ErrKeyWrite
	default:
		return ErrGeneric
	}
}

// CopyFromKV requests the vault to deliver an entry to the peripheral and
// waits for the transfer outcome.
func CopyFromKV(key KeyReadArgs, p Port) error {
	if key.ID >= KEY_COUNT {
		return ErrGeneric
	}

	p.waitReady()

	var ctrl uint32
	ctrl |= 1 << READ_CTRL_EN
	ctrl |= uint32(key.ID) << READ_CTRL_ENTRY
	p.Bus.Write(p.Ctrl, ctrl)

	return p.result()
}

// BeginCopyToKV routes the next peripheral output to a vault entry.
func BeginCopyToKV(p Port, key KeyWriteArgs) error {
	if key.ID >= KEY_COUNT {
		return ErrGeneric
	}

	p.waitReady()

	var ctrl uint32
	ctrl |= 1 << WRITE_CTRL_EN
	ctrl |= uint32(key.ID) << WRITE_CTRL_ENTRY
	ctrl |= uint32(key.Usage&0x3f) << WRITE_CTRL_DEST_VALID
	p.Bus.Write(p.Ctrl, ctrl)

	return nil
}

// EndCopyToKV waits for the peripheral output to be stored in the vault.
func EndCopyToKV(p Port, _ KeyWriteArgs) error {
	return p.result()
}

// BeginCopyToArr routes the next peripheral output to its output register.
func BeginCopyToArr(p Port) error {
	p.waitReady()
	reg.Clear(p.Bus, p.Ctrl, WRITE_CTRL_EN)

	return nil
}

// EndCopyToArr reads a peripheral output register into an array.
func EndCopyToArr(b reg.Bus, addr uint32, a *word.Array4x12) error {
	reg.ReadN(b, addr, a.Words())
	return nil
}

// CopyFromArr writes an array to a peripheral input register.
func CopyFromArr(a *word.Array4x12, b reg.Bus, addr uint32) error {
	reg.WriteN(b, addr, a.Words())
	return nil
}
