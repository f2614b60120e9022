// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// vault status error code for invalid requests
const kvInvalid = 0xff

// Entry represents a key vault entry.
type Entry struct {
	Value word.Array4x12
	Usage kv.KeyUsage

	Written   bool
	LockWrite bool
	LockUse   bool
}

// Vault simulates the key vault, entries can be consumed only by the
// peripherals named in their usage.
type Vault struct {
	mu sync.Mutex

	entries [kv.KEY_COUNT]Entry
}

// NewVault returns an empty key vault.
func NewVault() *Vault {
	return &Vault{}
}

func checkID(id kv.KeyID) error {
	if id >= kv.KEY_COUNT {
		return errors.Errorf("invalid key vault entry %d", id)
	}

	return nil
}

// Provision stores a value in a key vault entry, this is the equivalent of
// fuse or boot ROM provisioning and does not go through any peripheral.
func (v *Vault) Provision(id kv.KeyID, value *word.Array4x12, usage kv.KeyUsage) (err error) {
	if err = checkID(id); err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	e := &v.entries[id]

	if e.LockWrite {
		return errors.Errorf("key vault entry %d is write locked", id)
	}

	e.Value = *value
	e.Usage = usage
	e.Written = true

	return
}

// Clear erases a key vault entry, locks are preserved.
func (v *Vault) Clear(id kv.KeyID) (err error) {
	if err = checkID(id); err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	e := &v.entries[id]

	if e.LockWrite {
		return errors.Errorf("key vault entry %d is write locked", id)
	}

	e.Value.Zeroize()
	e.Usage = 0
	e.Written = false

	return
}

// LockEntry sets the write and use locks of a key vault entry, locks are
// sticky until the vault is reset.
func (v *Vault) LockEntry(id kv.KeyID, write bool, use bool) (err error) {
	if err = checkID(id); err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	e := &v.entries[id]
	e.LockWrite = e.LockWrite || write
	e.LockUse = e.LockUse || use

	return
}

// Entry returns a copy of a key vault entry, it exists for test harness
// inspection only.
func (v *Vault) Entry(id kv.KeyID) (e Entry) {
	if checkID(id) != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return v.entries[id]
}

// Snapshot returns a copy of all key vault entries.
func (v *Vault) Snapshot() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := make([]Entry, len(v.entries))
	copy(s, v.entries[:])

	return s
}

// Restore replaces all key vault entries.
func (v *Vault) Restore(s []Entry) error {
	if len(s) != kv.KEY_COUNT {
		return errors.Errorf("invalid key vault snapshot size %d", len(s))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	copy(v.entries[:], s)

	return nil
}

// read delivers an entry to a consumer identified by its usage flag.
func (v *Vault) read(id kv.KeyID, consumer kv.KeyUsage) (val word.Array4x12, code uint32) {
	if id >= kv.KEY_COUNT {
		return val, kvInvalid
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	e := &v.entries[id]

	if !e.Written || e.LockUse || !e.Usage.Has(consumer) {
		return val, kv.KV_READ_FAIL
	}

	return e.Value, kv.KV_SUCCESS
}

// write stores a peripheral output in an entry.
func (v *Vault) write(id kv.KeyID, val *word.Array4x12, usage kv.KeyUsage) (code uint32) {
	if id >= kv.KEY_COUNT {
		return kvInvalid
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	e := &v.entries[id]

	if e.LockWrite {
		return kv.KV_WRITE_FAIL
	}

	e.Value = *val
	e.Usage = usage
	e.Written = true

	return kv.KV_SUCCESS
}
