// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package dh

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/logger"
)

const (
	DH_1024_BIT_MODP string = "DH_1024_BIT_MODP"
	DH_2048_BIT_MODP string = "DH_2048_BIT_MODP"
)

var (
	dhString map[uint16]func(uint16, uint16, []byte) string
	dhTypes  map[string]DHType
)

func init() {
	// Initialize DH String map
	dhString = map[uint16]func(uint16, uint16, []byte) string{
		message.DH_1024_BIT_MODP: toString_DH_1024_BIT_MODP,
		message.DH_2048_BIT_MODP: toString_DH_2048_BIT_MODP,
	}

	// Initialize DH Types map
	dhTypes = make(map[string]DHType)

	// Group 2: Dh1024BitModp
	prime1024, ok := new(big.Int).SetString(Group2PrimeString, 16)
	if !ok {
		logger.IKELog.Errorln("IKE Diffie Hellman Group 2 failed to init")
		return
	}
	dhTypes[DH_1024_BIT_MODP] = &Dh1024BitModp{
		prime:            prime1024,
		generator:        new(big.Int).SetUint64(Group2Generator),
		primeBytesLength: len(prime1024.Bytes()),
	}

	// Group 14: DH2048BitModp
	prime2048, ok := new(big.Int).SetString(Group14PrimeString, 16)
	if !ok {
		logger.IKELog.Errorln("IKE Diffie Hellman Group 14 failed to init")
		return
	}
	dhTypes[DH_2048_BIT_MODP] = &DH2048BitModp{
		prime:            prime2048,
		generator:        new(big.Int).SetUint64(Group14Generator),
		primeBytesLength: len(prime2048.Bytes()),
	}
}

// StrToType returns the DHType for a given algorithm string
func StrToType(algo string) DHType {
	return dhTypes[algo]
}

// GetType returns the DHType for a given transform (group) ID, or nil when
// the group is not implemented.
func GetType(groupID uint16) DHType {
	f, ok := dhString[groupID]
	if !ok {
		return nil
	}
	return dhTypes[f(0, 0, nil)]
}

// DecodeTransform decodes a message.Transform to a DHType
func DecodeTransform(transform *message.Transform) DHType {
	f, ok := dhString[transform.TransformID]
	if !ok {
		return nil
	}
	s := f(transform.AttributeType, transform.AttributeValue, transform.VariableLengthAttributeValue)
	if s == "" {
		return nil
	}
	return dhTypes[s]
}

// ToTransform converts a DHType to a message.Transform
func ToTransform(dhType DHType) *message.Transform {
	t := &message.Transform{
		TransformType: message.TypeDiffieHellmanGroup,
		TransformID:   dhType.TransformID(),
	}
	t.AttributePresent, t.AttributeType, t.AttributeValue, t.VariableLengthAttributeValue = dhType.getAttribute()
	if t.AttributePresent && t.VariableLengthAttributeValue == nil {
		t.AttributeFormat = message.AttributeFormatUseTV
	}
	return t
}

// DHType interface for Diffie-Hellman groups
type DHType interface {
	TransformID() uint16
	getAttribute() (bool, uint16, uint16, []byte)
	// KeyDataLength is the exact byte length of public values and shared
	// secrets for this group.
	KeyDataLength() int
	GetSharedKey(secret, peerPublicValue *big.Int) []byte
	GetPublicValue(secret *big.Int) []byte
}

// ValidateKeyExchangeData checks that received key exchange data has the
// exact length the group demands. A truncated or padded public value is a
// wire error, not something to silently accept.
func ValidateKeyExchangeData(dhType DHType, keyExchangeData []byte) error {
	if expected := dhType.KeyDataLength(); len(keyExchangeData) != expected {
		return &message.SyntaxError{
			Reason: fmt.Sprintf("invalid KE payload length %d, group %d requires exactly %d",
				len(keyExchangeData), dhType.TransformID(), expected),
		}
	}
	return nil
}

// DecodeKeyExchange validates a received KE payload against its advertised
// group. An unrecognized group cannot be length-checked, so the payload is
// accepted opaquely with a nil DHType and the caller decides what to do
// with it.
func DecodeKeyExchange(keyExchange *message.KeyExchange) (DHType, error) {
	dhType := GetType(keyExchange.DiffieHellmanGroup)
	if dhType == nil {
		return nil, nil
	}
	if err := ValidateKeyExchangeData(dhType, keyExchange.KeyExchangeData); err != nil {
		return nil, err
	}
	return dhType, nil
}

// KeyPair holds a locally generated ephemeral secret together with its
// public value. The secret never leaves the struct.
type KeyPair struct {
	dhType      DHType
	secret      *big.Int
	publicValue []byte
}

// NewKeyPair generates a fresh ephemeral key pair for the group.
func NewKeyPair(dhType DHType) (*KeyPair, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(dhType.KeyDataLength()*8))
	secret, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("generate DH secret: %w", err)
	}
	return &KeyPair{
		dhType:      dhType,
		secret:      secret,
		publicValue: dhType.GetPublicValue(secret),
	}, nil
}

// PublicValue returns the zero-padded public value to place in a KE payload.
func (kp *KeyPair) PublicValue() []byte {
	return kp.publicValue
}

// SharedSecret combines the local secret with the peer's public value. The
// secret is wiped afterwards, so SharedSecret can be called once per key
// pair.
func (kp *KeyPair) SharedSecret(peerKeyExchangeData []byte) ([]byte, error) {
	if kp.secret == nil {
		return nil, errors.New("DH secret already consumed")
	}
	if err := ValidateKeyExchangeData(kp.dhType, peerKeyExchangeData); err != nil {
		return nil, err
	}
	peerPublicValue := new(big.Int).SetBytes(peerKeyExchangeData)
	sharedKey := kp.dhType.GetSharedKey(kp.secret, peerPublicValue)
	kp.secret = nil
	return sharedKey, nil
}
