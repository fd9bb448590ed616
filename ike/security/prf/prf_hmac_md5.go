// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package prf

import (
	"crypto/hmac"
	"crypto/md5"
	"hash"

	"github.com/ikewire/ikewire/ike/message"
)

const (
	PrfHmacMd5KeyLength    = 16
	PrfHmacMd5OutputLength = 16
)

var _ PRFType = &PrfHmacMd5{}

type PrfHmacMd5 struct{}

func toString_PRF_HMAC_MD5(_ uint16, _ uint16, _ []byte) string {
	return PRF_HMAC_MD5
}

func (t *PrfHmacMd5) TransformID() uint16 {
	return message.PRF_HMAC_MD5
}

func (t *PrfHmacMd5) getAttribute() (bool, uint16, uint16, []byte) {
	return false, 0, 0, nil
}

func (t *PrfHmacMd5) GetKeyLength() int {
	return PrfHmacMd5KeyLength
}

func (t *PrfHmacMd5) GetOutputLength() int {
	return PrfHmacMd5OutputLength
}

func (t *PrfHmacMd5) Init(key []byte) hash.Hash {
	return hmac.New(md5.New, key)
}
