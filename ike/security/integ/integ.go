// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package integ

import (
	"hash"

	"github.com/ikewire/ikewire/ike/message"
)

const (
	AUTH_HMAC_MD5_96       string = "AUTH_HMAC_MD5_96"
	AUTH_HMAC_SHA1_96      string = "AUTH_HMAC_SHA1_96"
	AUTH_HMAC_SHA2_256_128 string = "AUTH_HMAC_SHA2_256_128"
)

var (
	integString map[uint16]func(uint16, uint16, []byte) string
	integTypes  map[string]INTEGType
)

func init() {
	integString = map[uint16]func(uint16, uint16, []byte) string{
		message.AUTH_HMAC_MD5_96:       toString_AUTH_HMAC_MD5_96,
		message.AUTH_HMAC_SHA1_96:      toString_AUTH_HMAC_SHA1_96,
		message.AUTH_HMAC_SHA2_256_128: toString_AUTH_HMAC_SHA2_256_128,
	}

	integTypes = map[string]INTEGType{
		AUTH_HMAC_MD5_96: &AuthHmacMd5_96{
			KeyLen:    16,
			OutputLen: 12,
		},
		AUTH_HMAC_SHA1_96: &AuthHmacSha1_96{
			KeyLen:    20,
			OutputLen: 12,
		},
		AUTH_HMAC_SHA2_256_128: &AuthHmacSha2_256_128{
			KeyLen:    32,
			OutputLen: 16,
		},
	}
}

// StrToType returns the INTEGType for a given algorithm name.
func StrToType(algo string) INTEGType {
	return integTypes[algo]
}

// DecodeTransform returns the INTEGType for a given Transform message.
func DecodeTransform(transform *message.Transform) INTEGType {
	if f, ok := integString[transform.TransformID]; ok {
		s := f(transform.AttributeType, transform.AttributeValue, transform.VariableLengthAttributeValue)
		if s == "" {
			return nil
		}
		return integTypes[s]
	}
	return nil
}

// ToTransform creates a Transform message from an INTEGType.
func ToTransform(integType INTEGType) *message.Transform {
	t := new(message.Transform)
	t.TransformType = message.TypeIntegrityAlgorithm
	t.TransformID = integType.TransformID()
	t.AttributePresent, t.AttributeType, t.AttributeValue, t.VariableLengthAttributeValue = integType.getAttribute()
	if t.AttributePresent && t.VariableLengthAttributeValue == nil {
		t.AttributeFormat = message.AttributeFormatUseTV
	}
	return t
}

// INTEGType defines the interface for integrity algorithm implementations.
// GetOutputLength is the truncated checksum length placed on the wire,
// shorter than the underlying HMAC output.
type INTEGType interface {
	TransformID() uint16
	getAttribute() (bool, uint16, uint16, []byte)
	GetKeyLength() int
	GetOutputLength() int
	Init(key []byte) hash.Hash
}
