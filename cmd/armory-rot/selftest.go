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
	"golang.org/x/sync/errgroup"

	"github.com/f-secure-foundry/armory-rot/internal/ecc384"
	"github.com/f-secure-foundry/armory-rot/internal/kat"
	"github.com/f-secure-foundry/armory-rot/internal/pka"
	"github.com/f-secure-foundry/armory-rot/internal/sim"
)

// selftest runs the known answer test on count independent SoCs and checks
// that all of them agree.
func (c *cli) selftest(count int) (pub ecc384.PubKey, err error) {
	if count < 1 {
		return pub, errors.Errorf("invalid count %d", count)
	}

	keys := make([]ecc384.PubKey, count)
	g := new(errgroup.Group)

	for i := 0; i < count; i++ {
		i := i

		g.Go(func() (err error) {
			soc := sim.NewSoC()
			e := ecc384.New(soc.ECC, pka.New(soc.PKA), ecc384.WithLogger(c.log))

			if keys[i], err = kat.Run(e); err != nil {
				return errors.Wrapf(err, "soc %d", i)
			}

			return
		})
	}

	if err = g.Wait(); err != nil {
		return
	}

	for i := 1; i < count; i++ {
		if keys[i] != keys[0] {
			return pub, errors.Wrapf(kat.ErrMismatch, "soc %d", i)
		}
	}

	return keys[0], nil
}

func (c *cli) selftestCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "run the known answer self test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			pub, err := c.selftest(count)

			if err != nil {
				return
			}

			fmt.Fprintf(cmd.OutOrStdout(), "self test passed (%d SoCs)\n%s\n", count, hex.EncodeToString(pub.Uncompressed()))

			return
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 4, "number of simulated SoCs")

	return cmd
}
