// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecc384

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
)

// Error represents an engine error code.
type Error uint32

// Engine errors
const (
	ErrReadSeedKvRead Error = 0x00050001 + iota
	ErrReadSeedKvWrite
	ErrReadSeedKvUnknown
	ErrReadPrivKeyKvRead
	ErrReadPrivKeyKvWrite
	ErrReadPrivKeyKvUnknown
	ErrWritePrivKeyKvRead
	ErrWritePrivKeyKvWrite
	ErrWritePrivKeyKvUnknown
	ErrKeygenPairwiseCheck
	ErrKeygenBadUsage
	ErrScalarRangeCheckFailed
	ErrSignValidateFailed
	ErrVerifyValidateFailed
	ErrAccelerator
	ErrTrng
)

var errorText = map[Error]string{
	ErrReadSeedKvRead:         "seed key vault read failure",
	ErrReadSeedKvWrite:        "seed key vault write failure",
	ErrReadSeedKvUnknown:      "seed key vault failure",
	ErrReadPrivKeyKvRead:      "private key vault read failure",
	ErrReadPrivKeyKvWrite:     "private key vault write failure",
	ErrReadPrivKeyKvUnknown:   "private key vault failure",
	ErrWritePrivKeyKvRead:     "private key vault store read failure",
	ErrWritePrivKeyKvWrite:    "private key vault store write failure",
	ErrWritePrivKeyKvUnknown:  "private key vault store failure",
	ErrKeygenPairwiseCheck:    "key pair consistency check failed",
	ErrKeygenBadUsage:         "private key destination not usable as ECC private key",
	ErrScalarRangeCheckFailed: "signature scalar out of range",
	ErrSignValidateFailed:     "signature validation failed",
	ErrVerifyValidateFailed:   "verification result mismatch",
	ErrAccelerator:            "math accelerator failure",
	ErrTrng:                   "random number generation failure",
}

func (e Error) Error() string {
	if s, ok := errorText[e]; ok {
		return "ecc384: " + s
	}

	return fmt.Sprintf("ecc384: error %#08x", uint32(e))
}

// kvError translates a key vault failure into the engine error of the
// operation category.
func kvError(err error, read Error, write Error, unknown Error) error {
	switch {
	case errors.Is(err, kv.ErrKeyRead):
		return read
	case errors.Is(err, kv.ErrKeyWrite):
		return write
	default:
		return unknown
	}
}

func readSeedError(err error) error {
	return kvError(err, ErrReadSeedKvRead, ErrReadSeedKvWrite, ErrReadSeedKvUnknown)
}

func readPrivKeyError(err error) error {
	return kvError(err, ErrReadPrivKeyKvRead, ErrReadPrivKeyKvWrite, ErrReadPrivKeyKvUnknown)
}

func writePrivKeyError(err error) error {
	return kvError(err, ErrWritePrivKeyKvRead, ErrWritePrivKeyKvWrite, ErrWritePrivKeyKvUnknown)
}

func acceleratorError(err error) error {
	return errors.Wrapf(ErrAccelerator, "%v", err)
}

func trngError(err error) error {
	return errors.Wrapf(ErrTrng, "%v", err)
}
