// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package encr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"math"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/ike/security/ikecrypto"
)

const (
	ENCR_AES_CBC_128 string = "ENCR_AES_CBC_128"
	ENCR_AES_CBC_192 string = "ENCR_AES_CBC_192"
	ENCR_AES_CBC_256 string = "ENCR_AES_CBC_256"
)

func toString_ENCR_AES_CBC(attrType uint16, intValue uint16, bytesValue []byte) string {
	if attrType != message.AttributeTypeKeyLength {
		return ""
	}
	switch intValue {
	case 128:
		return ENCR_AES_CBC_128
	case 192:
		return ENCR_AES_CBC_192
	case 256:
		return ENCR_AES_CBC_256
	default:
		return ""
	}
}

var _ ENCRType = &EncrAesCbc{}

type EncrAesCbc struct {
	keyLength int
}

func (t *EncrAesCbc) TransformID() uint16 {
	return message.ENCR_AES_CBC
}

func (t *EncrAesCbc) getAttribute() (bool, uint16, uint16, []byte, error) {
	keyLengthBits := t.keyLength * 8
	if keyLengthBits <= 0 || keyLengthBits > math.MaxUint16 {
		return false, 0, 0, nil, fmt.Errorf("key length exceeds uint16 maximum value: %v", keyLengthBits)
	}
	return true, message.AttributeTypeKeyLength, uint16(keyLengthBits), nil, nil
}

func (t *EncrAesCbc) GetKeyLength() int {
	return t.keyLength
}

func (t *EncrAesCbc) NewCrypto(key []byte) (ikecrypto.IKECrypto, error) {
	if len(key) != t.keyLength {
		return nil, fmt.Errorf("EncrAesCbc init error: unexpected key length")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("EncrAesCbc init: failed to create cipher: %v", err)
	}
	return &EncrAesCbcCrypto{Block: block}, nil
}

var _ ikecrypto.IKECrypto = &EncrAesCbcCrypto{}

// EncrAesCbcCrypto carries a keyed AES block. Iv and Padding override the
// random IV and random pad bytes for deterministic tests; leave them nil in
// production use.
type EncrAesCbcCrypto struct {
	Block   cipher.Block
	Iv      []byte
	Padding []byte
}

// Encrypt pads the plain text so the last byte records the count of pad
// bytes minus one, then prepends a fresh IV to the CBC cipher text.
func (encr *EncrAesCbcCrypto) Encrypt(plainText []byte) ([]byte, error) {
	if encr.Padding == nil {
		var err error
		plainText, err = pad(plainText, aes.BlockSize)
		if err != nil {
			return nil, fmt.Errorf("Encrypt: %v", err)
		}
	} else {
		plainText = append(plainText, encr.Padding...)
	}

	cipherText := make([]byte, aes.BlockSize+len(plainText))
	iv := cipherText[:aes.BlockSize]
	if encr.Iv == nil {
		if _, err := io.ReadFull(rand.Reader, iv); err != nil {
			return nil, fmt.Errorf("Encrypt: failed to read IV: %v", err)
		}
	} else {
		copy(iv, encr.Iv)
	}

	cbc := cipher.NewCBCEncrypter(encr.Block, iv)
	cbc.CryptBlocks(cipherText[aes.BlockSize:], plainText)
	return cipherText, nil
}

// pad appends 1..blockSize bytes so that the padded length is a multiple of
// blockSize. Pad content is random, only the final byte is meaningful: it
// holds padLen-1, matching RFC 7296, Section 3.14.
func pad(data []byte, blockSize int) ([]byte, error) {
	padLen := blockSize - (len(data) % blockSize)
	if padLen == 0 {
		padLen = blockSize
	}
	padding := make([]byte, padLen)
	if _, err := rand.Read(padding); err != nil {
		return nil, fmt.Errorf("pad: %v", err)
	}
	padding[padLen-1] = byte(padLen - 1)
	return append(data, padding...), nil
}

func (encr *EncrAesCbcCrypto) Decrypt(cipherText []byte) ([]byte, error) {
	if len(cipherText) < aes.BlockSize {
		return nil, fmt.Errorf("Decrypt: cipher text too short")
	}
	iv := cipherText[:aes.BlockSize]
	if encr.Iv != nil {
		iv = encr.Iv
	}
	encMsg := cipherText[aes.BlockSize:]
	if len(encMsg) == 0 || len(encMsg)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("Decrypt: cipher text not multiple of block size")
	}
	plainText := make([]byte, len(encMsg))
	cbc := cipher.NewCBCDecrypter(encr.Block, iv)
	cbc.CryptBlocks(plainText, encMsg)
	padLen := int(plainText[len(plainText)-1]) + 1
	if padLen > len(plainText) {
		return nil, fmt.Errorf("Decrypt: invalid padding")
	}
	return plainText[:len(plainText)-padLen], nil
}
