// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/f-secure-foundry/armory-rot/api"
	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/kat"
	"github.com/f-secure-foundry/armory-rot/internal/keyring"
	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/trng"
)

// attestation represents the boot measurement signed by the device identity.
type attestation struct {
	Identity    ecc384.PubKey
	Measurement ecc384.Scalar
	Signature   ecc384.Signature
}

// boot runs the self test, derives the device identity from the key vault
// seed and signs the firmware measurement with it.
func boot(e *ecc384.Ecc384, rng trng.Source) (a *attestation, err error) {
	if _, err = kat.Run(e); err != nil {
		return nil, errors.Wrap(err, "self test")
	}

	a = &attestation{}

	var nonce ecc384.Scalar

	seed := ecc384.SeedKey{ID: keyring.SEED_SLOT}
	out := ecc384.PrivKeyOutKey{ID: keyring.IDENTITY_SLOT, Usage: kv.EccPrivateKey}

	if a.Identity, err = e.KeyPair(seed, &nonce, rng, out); err != nil {
		return nil, errors.Wrap(err, "identity")
	}

	if a.Measurement, err = measure(); err != nil {
		return nil, errors.Wrap(err, "measurement")
	}

	if a.Signature, err = e.Sign(out.In(), &a.Identity, &a.Measurement, rng); err != nil {
		return nil, errors.Wrap(err, "attestation")
	}

	res, err := e.Verify(&a.Identity, &a.Measurement, &a.Signature)

	if err != nil {
		return nil, err
	}

	if res != ecc384.Success {
		return nil, errors.Errorf("attestation %v", res)
	}

	return
}

func main() {
	eccBus, pkaBus, err := platform()

	if err != nil {
		logger.Fatal("platform initialization failed", zap.Error(err))
	}

	e := ecc384.New(eccBus, pka.New(pkaBus), ecc384.WithLogger(logger))
	a, err := boot(e, trng.System())

	status(err == nil)

	if err != nil {
		ecc384.Zeroize(eccBus)
		logger.Fatal("boot failed", zap.Error(err))
	}

	logger.Info("armory-rot",
		zap.String("build", Build),
		zap.String("revision", Revision),
	)

	logger.Info("identity", zap.String("pubkey", hex.EncodeToString(a.Identity.Uncompressed())))
	logger.Info("attestation", zap.String("signature", hex.EncodeToString(api.NewSignature(&a.Measurement, &a.Signature).Bytes())))
}
