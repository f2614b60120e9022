// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package keyring implements the sealed persistence of the key vault
// contents, the host equivalent of fuse provisioning.
package keyring

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/f-secure-foundry/armory-rot/internal/kv"
	"github.com/f-secure-foundry/armory-rot/internal/sim"
)

// Key vault slot assignment
const (
	SEED_SLOT     = 0
	IDENTITY_SLOT = 1
)

// vault image size, including salt, IV and HMAC
const IMAGE_SIZE = 8192

var logger = zap.NewNop().Sugar()

// SetLogger sets the package logger.
func SetLogger(l *zap.Logger) {
	logger = l.Named("keyring").Sugar()
}

// PersistentConfiguration represents the sealed vault image content.
type PersistentConfiguration struct {
	// vault image identity
	ID uuid.UUID

	// key vault entries
	Vault []sim.Entry

	// serialized identity public key
	Identity []byte
}

// Keyring represents a vault image stored on a filesystem.
type Keyring struct {
	// Configuration instance
	Conf *PersistentConfiguration

	fs         afero.Fs
	path       string
	passphrase []byte
}

// New returns a Keyring for the vault image at path, sealed with a key
// derived from passphrase.
func New(fs afero.Fs, path string, passphrase []byte) *Keyring {
	return &Keyring{
		fs:         fs,
		path:       path,
		passphrase: passphrase,
	}
}

// Init loads the vault image, a fresh one is created if loading fails or
// overwrite is set.
func (k *Keyring) Init(overwrite bool) (err error) {
	if !overwrite {
		if err = k.Load(); err == nil {
			return
		}

		if !errors.Is(err, os.ErrNotExist) {
			return
		}
	}

	return k.reset()
}

func (k *Keyring) reset() (err error) {
	id, err := uuid.NewRandom()

	if err != nil {
		return
	}

	k.Conf = &PersistentConfiguration{
		ID:    id,
		Vault: make([]sim.Entry, kv.KEY_COUNT),
	}

	logger.Infow("vault image reset", "id", id)

	return k.Save()
}

// Load reads and unseals the vault image.
func (k *Keyring) Load() (err error) {
	image, err := afero.ReadFile(k.fs, k.path)

	if err != nil {
		return
	}

	buf, err := open(k.passphrase, image)

	if err != nil {
		return errors.Wrapf(err, "cannot unseal %s", k.path)
	}

	conf := &PersistentConfiguration{}

	if err = gob.NewDecoder(bytes.NewBuffer(buf)).Decode(conf); err != nil {
		return errors.Wrapf(err, "cannot decode %s", k.path)
	}

	k.Conf = conf
	logger.Debugw("vault image loaded", "id", conf.ID)

	return
}

// Save seals and writes the vault image.
func (k *Keyring) Save() (err error) {
	if k.Conf == nil {
		return errors.New("missing configuration")
	}

	buf := new(bytes.Buffer)

	if err = gob.NewEncoder(buf).Encode(k.Conf); err != nil {
		return
	}

	image, err := seal(k.passphrase, buf.Bytes(), IMAGE_SIZE)

	if err != nil {
		return
	}

	return afero.WriteFile(k.fs, k.path, image, 0600)
}

// Export stores the key vault entries in the configuration, the caller is
// responsible for saving it.
func (k *Keyring) Export(v *sim.Vault) {
	k.Conf.Vault = v.Snapshot()
}

// Import provisions the key vault with the configuration entries.
func (k *Keyring) Import(v *sim.Vault) error {
	return v.Restore(k.Conf.Vault)
}
