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
	"github.com/spf13/cobra"

	"github.com/f-secure-foundry/armory-rot/api"
	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/keyring"
	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/word"
)

func (c *cli) provisionCmd() *cobra.Command {
	var seed string
	var lock bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "provision the key generation seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := c.open()

			if err != nil {
				return
			}

			var val word.Array4x12
			defer val.Zeroize()

			if seed != "" {
				val, err = parseScalar(seed)
			} else {
				val, err = d.rng.Generate()
			}

			if err != nil {
				return
			}

			if err = d.soc.Vault.Provision(keyring.SEED_SLOT, &val, kv.EccKeyGenSeed); err != nil {
				return
			}

			if err = d.soc.Vault.LockEntry(keyring.SEED_SLOT, lock, false); err != nil {
				return
			}

			// any previous identity no longer matches the seed
			d.keyring.Conf.Identity = nil
			if err = d.soc.Vault.Clear(keyring.IDENTITY_SLOT); err != nil {
				return errors.Wrap(err, "cannot clear identity")
			}

			c.log.Sugar().Infow("seed provisioned", "slot", keyring.SEED_SLOT, "locked", lock)

			return d.save()
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "seed value in hex (default random)")
	cmd.Flags().BoolVar(&lock, "lock", false, "write lock the seed slot")

	return cmd
}

func (c *cli) keygenCmd() *cobra.Command {
	var nonce string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "derive the identity key pair from the seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := c.open()

			if err != nil {
				return
			}

			n, err := parseScalar(nonce)

			if err != nil {
				return
			}

			seed := ecc384.SeedKey{ID: keyring.SEED_SLOT}
			out := ecc384.PrivKeyOutKey{ID: keyring.IDENTITY_SLOT, Usage: kv.EccPrivateKey}

			pub, err := d.engine.KeyPair(seed, &n, d.rng, out)

			if err != nil {
				return
			}

			d.keyring.Conf.Identity = pub.Uncompressed()

			if err = d.save(); err != nil {
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(pub.Uncompressed()))

			return
		},
	}

	cmd.Flags().StringVar(&nonce, "nonce", "", "key generation nonce in hex (default zero)")

	return cmd
}

func (c *cli) pubkeyCmd() *cobra.Command {
	var proto bool

	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "print the identity public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := c.open()

			if err != nil {
				return
			}

			pub, err := d.identity()

			if err != nil {
				return
			}

			buf := pub.Uncompressed()

			if proto {
				buf = api.NewPublicKey(&pub).Bytes()
			}

			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))

			return
		},
	}

	cmd.Flags().BoolVar(&proto, "proto", false, "print the protobuf encoding")

	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list key vault entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := c.open()

			if err != nil {
				return
			}

			fmt.Fprintf(cmd.OutOrStdout(), "vault %s\n", d.keyring.Conf.ID)

			for id := kv.KeyID(0); id < kv.KEY_COUNT; id++ {
				e := d.soc.Vault.Entry(id)

				if !e.Written && !e.LockWrite && !e.LockUse {
					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%2d usage:%#04x written:%v lock-write:%v lock-use:%v\n",
					id, uint32(e.Usage), e.Written, e.LockWrite, e.LockUse)
			}

			return
		},
	}
}
