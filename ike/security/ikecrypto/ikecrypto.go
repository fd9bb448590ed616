// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

// Package ikecrypto provides interfaces for IKE cryptographic operations.

package ikecrypto

// IKECrypto defines methods for encryption and decryption used in IKE.
type IKECrypto interface {
	// Encrypt encrypts the given plainText and returns the cipherText or an error.
	Encrypt(plainText []byte) ([]byte, error)
	// Decrypt decrypts the given cipherText and returns the plainText or an error.
	Decrypt(cipherText []byte) ([]byte, error)
}
