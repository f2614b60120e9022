// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/keyring"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/sim"
	"github.com/f-secure-foundry/armory-rot/internal/trng"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

// device represents a simulated root of trust backed by a vault image.
type device struct {
	keyring *keyring.Keyring
	soc     *sim.SoC
	engine  *ecc384.Ecc384
	rng     trng.Source
}

func (c *cli) entropy() (trng.Source, error) {
	e := c.v.GetString("entropy")

	if e == "" || e == "system" {
		return trng.System(), nil
	}

	seed, err := hex.DecodeString(e)

	if err != nil {
		return nil, errors.Wrap(err, "invalid entropy seed")
	}

	c.log.Warn("using deterministic entropy source")

	return trng.Deterministic(seed), nil
}

// open loads the vault image, creating it when missing, and powers on a
// simulated SoC with its key vault.
func (c *cli) open() (d *device, err error) {
	d = &device{
		keyring: keyring.New(c.fs, c.v.GetString("vault"), []byte(c.v.GetString("passphrase"))),
	}

	if err = d.keyring.Init(false); err != nil {
		return nil, err
	}

	vault := sim.NewVault()

	if err = d.keyring.Import(vault); err != nil {
		return nil, err
	}

	d.soc = sim.NewSoC(sim.WithVault(vault))

	if d.rng, err = c.entropy(); err != nil {
		return nil, err
	}

	d.engine = ecc384.New(d.soc.ECC, pka.New(d.soc.PKA), ecc384.WithLogger(c.log))

	return
}

// save stores the key vault back into the vault image.
func (d *device) save() error {
	d.keyring.Export(d.soc.Vault)
	return d.keyring.Save()
}

// identity returns the identity public key.
func (d *device) identity() (ecc384.PubKey, error) {
	if len(d.keyring.Conf.Identity) == 0 {
		return ecc384.PubKey{}, errors.New("missing identity, run keygen first")
	}

	return ecc384.PubKeyFromUncompressed(d.keyring.Conf.Identity)
}

// parseScalar decodes a big-endian hex value of up to 48 bytes.
func parseScalar(s string) (a word.Array4x12, err error) {
	buf, err := hex.DecodeString(s)

	if err != nil {
		return
	}

	if len(buf) > word.Array4x12Size {
		return a, errors.Errorf("value exceeds %d bytes", word.Array4x12Size)
	}

	var b [word.Array4x12Size]byte
	copy(b[len(b)-len(buf):], buf)

	return word.FromBytes(b), nil
}
