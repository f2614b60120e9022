// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/f-secure-foundry/armory-rot/api"
	"github.com/f-secure-foundry/armory-rot/internal/cfi"
	"github.com/f-secure-foundry/armory-rot/internal/digest"
	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/keyring"
)

func (c *cli) digestFile(path string) (d ecc384.Scalar, err error) {
	buf, err := afero.ReadFile(c.fs, path)

	if err != nil {
		return
	}

	return digest.Sha384Digest(buf)
}

func (c *cli) signCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sign FILE",
		Short: "sign a file with the identity key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := c.open()

			if err != nil {
				return
			}

			pub, err := d.identity()

			if err != nil {
				return
			}

			msg, err := c.digestFile(args[0])

			if err != nil {
				return
			}

			priv := ecc384.PrivKeyInKey{ID: keyring.IDENTITY_SLOT}
			sig, err := d.engine.Sign(priv, &pub, &msg, d.rng)

			if err != nil {
				return
			}

			buf := api.NewSignature(&msg, &sig).Bytes()

			if output != "" {
				return afero.WriteFile(c.fs, output, buf, 0644)
			}

			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))

			return
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "signature output file (default hex on stdout)")

	return cmd
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE SIGNATURE",
		Short: "verify a file signature against the identity key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := c.open()

			if err != nil {
				return
			}

			pub, err := d.identity()

			if err != nil {
				return
			}

			msg, err := c.digestFile(args[0])

			if err != nil {
				return
			}

			buf, err := afero.ReadFile(c.fs, args[1])

			if err != nil {
				return
			}

			s := &api.Signature{}

			if err = s.Unmarshal(buf); err != nil {
				return
			}

			signed, sig, err := s.Scalars()

			if err != nil {
				return
			}

			if !cfi.Eq12Words(&signed, &msg) {
				return errors.New("signature error, data mismatch")
			}

			res, err := d.engine.Verify(&pub, &msg, &sig)

			if err != nil {
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), res)

			if res != ecc384.Success {
				return errors.New("signature error, invalid")
			}

			return
		},
	}
}
