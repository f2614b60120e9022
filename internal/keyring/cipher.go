// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// key derivation iteration count
	PBKDF2_ITER = 4096
	// key derivation salt size
	SALT_SIZE = 16
)

// ErrHMAC is returned when a vault image fails authentication.
var ErrHMAC = errors.New("invalid HMAC")

// deriveKeys returns the image encryption and authentication keys.
func deriveKeys(passphrase []byte, salt []byte) (enc []byte, mac []byte) {
	dk := pbkdf2.Key(passphrase, salt, PBKDF2_ITER, 32+sha256.Size, sha256.New)
	return dk[:32], dk[32:]
}

func random(n int) (buf []byte, err error) {
	buf = make([]byte, n)
	_, err = rand.Read(buf)
	return
}

// seal encrypts and authenticates input, padded to length, as
// salt || IV || ciphertext || HMAC.
func seal(passphrase []byte, input []byte, length int) (output []byte, err error) {
	salt, err := random(SALT_SIZE)

	if err != nil {
		return
	}

	iv, err := random(aes.BlockSize)

	if err != nil {
		return
	}

	enc, key := deriveKeys(passphrase, salt)

	block, err := aes.NewCipher(enc)

	if err != nil {
		return
	}

	// pad to image size, accounting for header and HMAC length
	length -= len(salt) + len(iv) + sha256.Size

	if len(input) < length {
		input = append(input, make([]byte, length-len(input))...)
	}

	output = append(salt, iv...)
	hdr := len(output)
	output = append(output, make([]byte, len(input))...)

	stream := cipher.NewOFB(block, iv)
	stream.XORKeyStream(output[hdr:], input)

	mac := hmac.New(sha256.New, key)
	mac.Write(output)

	output = append(output, mac.Sum(nil)...)

	return
}

// open authenticates and decrypts a sealed image.
func open(passphrase []byte, input []byte) (output []byte, err error) {
	hdr := SALT_SIZE + aes.BlockSize

	if len(input) < hdr+sha256.Size {
		return nil, errors.New("invalid length for decrypt")
	}

	salt := input[0:SALT_SIZE]
	iv := input[SALT_SIZE:hdr]
	body := input[hdr : len(input)-sha256.Size]
	inputMac := input[len(input)-sha256.Size:]

	enc, key := deriveKeys(passphrase, salt)

	mac := hmac.New(sha256.New, key)
	mac.Write(input[:len(input)-sha256.Size])

	if !hmac.Equal(inputMac, mac.Sum(nil)) {
		return nil, ErrHMAC
	}

	block, err := aes.NewCipher(enc)

	if err != nil {
		return
	}

	output = make([]byte, len(body))

	stream := cipher.NewOFB(block, iv)
	stream.XORKeyStream(output, body)

	return
}
