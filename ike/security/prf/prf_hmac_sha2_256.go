// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package prf

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	"github.com/ikewire/ikewire/ike/message"
)

const (
	PrfHmacSha2_256KeyLength    = 32
	PrfHmacSha2_256OutputLength = 32
)

var _ PRFType = &PrfHmacSha2_256{}

type PrfHmacSha2_256 struct{}

func toString_PRF_HMAC_SHA2_256(_ uint16, _ uint16, _ []byte) string {
	return PRF_HMAC_SHA2_256
}

func (t *PrfHmacSha2_256) TransformID() uint16 {
	return message.PRF_HMAC_SHA2_256
}

func (t *PrfHmacSha2_256) getAttribute() (bool, uint16, uint16, []byte) {
	return false, 0, 0, nil
}

func (t *PrfHmacSha2_256) GetKeyLength() int {
	return PrfHmacSha2_256KeyLength
}

func (t *PrfHmacSha2_256) GetOutputLength() int {
	return PrfHmacSha2_256OutputLength
}

func (t *PrfHmacSha2_256) Init(key []byte) hash.Hash {
	return hmac.New(sha256.New, key)
}
