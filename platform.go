// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago
// +build !tamago

package main

import (
	"github.com/f-secure-foundry/armory-rot/internal/keyring"
	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/reg"
	"github.com/f-secure-foundry/armory-rot/internal/sim"
	"github.com/f-secure-foundry/armory-rot/internal/trng"
)

// platform powers on a simulated SoC, with a random key generation seed
// provisioned and write locked as boot ROM would do.
func platform() (eccBus reg.Bus, pkaBus reg.Bus, err error) {
	soc := sim.NewSoC()

	seed, err := trng.System().Generate()

	if err != nil {
		return
	}

	defer seed.Zeroize()

	if err = soc.Vault.Provision(keyring.SEED_SLOT, &seed, kv.EccKeyGenSeed); err != nil {
		return
	}

	if err = soc.Vault.LockEntry(keyring.SEED_SLOT, true, false); err != nil {
		return
	}

	return soc.ECC, soc.PKA, nil
}

func status(ok bool) {}
