// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/f-secure-foundry/armory-rot/internal/digest"
	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/kat"
)

// initialized at compile time (-ldflags "-X main.Build=...")
var Build string
var Revision string

var logger *zap.Logger

func init() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.CallerKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stdout"}

	var err error

	if logger, err = cfg.Build(); err != nil {
		panic(err)
	}

	kat.SetLogger(logger)
}

// measure returns the digest of the running firmware identification.
func measure() (m ecc384.Scalar, err error) {
	h := digest.Sha384()

	for _, s := range []string{Build, Revision, runtime.Version()} {
		if err = h.Update([]byte(s)); err != nil {
			return
		}

		// separator
		if err = h.Update([]byte{0}); err != nil {
			return
		}
	}

	return h.Finalize(), nil
}
