// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/f-secure-foundry/armory-rot/internal/keyring"
	"github.com/f-secure-foundry/armory-rot/internal/kat"
)

const envPrefix = "ARMORY_ROT"

const usage = `armory-rot - hosted root of trust

The key vault of a simulated root of trust is kept in a sealed vault image,
each command loads it, operates on the simulated peripherals and saves it
back when modified.`

// cli holds the state shared by all commands of one invocation.
type cli struct {
	fs  afero.Fs
	v   *viper.Viper
	log *zap.Logger
}

func newLogger(level string) (l *zap.Logger, err error) {
	var lvl zapcore.Level

	if err = lvl.UnmarshalText([]byte(level)); err != nil {
		return
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = ""
	cfg.DisableStacktrace = true

	return cfg.Build()
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	c := &cli{
		fs:  fs,
		v:   viper.New(),
		log: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "armory-rot",
		Short:         "hosted root of trust",
		Long:          usage,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			return c.init()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "configuration file")
	flags.String("vault", "vault.img", "vault image path")
	flags.String("passphrase", "", "vault image passphrase")
	flags.String("log-level", "info", "log level")
	flags.String("entropy", "system", "entropy source (system or hex seed for deterministic runs)")

	c.v.SetFs(fs)
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	c.bind(flags)

	root.AddCommand(
		c.provisionCmd(),
		c.keygenCmd(),
		c.pubkeyCmd(),
		c.listCmd(),
		c.signCmd(),
		c.verifyCmd(),
		c.selftestCmd(),
	)

	return root
}

// bind exposes flags as configuration keys, overridable through the
// environment and the configuration file.
func (c *cli) bind(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if err := c.v.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})
}

func (c *cli) init() (err error) {
	if path := c.v.GetString("config"); path != "" {
		c.v.SetConfigFile(path)

		if err = c.v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "cannot read configuration")
		}
	}

	if c.log, err = newLogger(c.v.GetString("log-level")); err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	for _, key := range []string{"config", "vault", "log-level", "entropy"} {
		c.log.Debug("configuration", zap.String(key, c.v.GetString(key)))
	}

	keyring.SetLogger(c.log)
	kat.SetLogger(c.log)

	return
}

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
