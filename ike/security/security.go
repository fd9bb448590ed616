// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/ike/security/dh"
	"github.com/ikewire/ikewire/ike/security/encr"
	"github.com/ikewire/ikewire/ike/security/ikecrypto"
	"github.com/ikewire/ikewire/ike/security/integ"
	"github.com/ikewire/ikewire/ike/security/prf"
	"github.com/ikewire/ikewire/logger"
)

// GenerateRandomUint8 returns a random uint8 value
func GenerateRandomUint8() (uint8, error) {
	number := make([]byte, 1)
	if _, err := io.ReadFull(rand.Reader, number); err != nil {
		logger.IKELog.Errorf("read random failed: %+v", err)
		return 0, fmt.Errorf("read random failed: %+v", err)
	}
	return number[0], nil
}

// GenerateNonce returns length bytes of fresh random nonce data.
func GenerateNonce(length int) ([]byte, error) {
	nonce := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, nil
}

// concatenateNonceAndSPI concatenates nonce and both SPIs into a single byte slice
func concatenateNonceAndSPI(nonce []byte, spiInitiator, spiResponder uint64) []byte {
	buf := make([]byte, len(nonce)+16)
	copy(buf, nonce)
	binary.BigEndian.PutUint64(buf[len(nonce):], spiInitiator)
	binary.BigEndian.PutUint64(buf[len(nonce)+8:], spiResponder)
	return buf
}

// IKESAKey holds IKE SA keying material and algorithms
type IKESAKey struct {
	// IKE SA transform types
	DhInfo    dh.DHType
	EncrInfo  encr.ENCRType
	IntegInfo integ.INTEGType
	PrfInfo   prf.PRFType

	// Security objects
	Prf_d   hash.Hash           // used to derive key for child sa
	Integ_i hash.Hash           // used by initiator for integrity checking
	Integ_r hash.Hash           // used by responder for integrity checking
	Encr_i  ikecrypto.IKECrypto // used by initiator for encrypting
	Encr_r  ikecrypto.IKECrypto // used by responder for encrypting
	Prf_i   hash.Hash           // used by initiator for IKE authentication
	Prf_r   hash.Hash           // used by responder for IKE authentication

	// Keys
	SK_d  []byte // used for child SA key deriving
	SK_ai []byte // used by initiator for integrity checking
	SK_ar []byte // used by responder for integrity checking
	SK_ei []byte // used by initiator for encrypting
	SK_er []byte // used by responder for encrypting
	SK_pi []byte // used by initiator for IKE authentication
	SK_pr []byte // used by responder for IKE authentication
}

func (ikesaKey *IKESAKey) String() string {
	return fmt.Sprintf(`\nEncryption Algorithm: %d\nSK_ei: %s\nSK_er: %s\nIntegrity Algorithm: %d\nSK_ai: %s\nSK_ar: %s\nSK_pi: %s\nSK_pr: %s\nSK_d : %s\n`,
		ikesaKey.EncrInfo.TransformID(),
		hex.EncodeToString(ikesaKey.SK_ei),
		hex.EncodeToString(ikesaKey.SK_er),
		ikesaKey.IntegInfo.TransformID(),
		hex.EncodeToString(ikesaKey.SK_ai),
		hex.EncodeToString(ikesaKey.SK_ar),
		hex.EncodeToString(ikesaKey.SK_pi),
		hex.EncodeToString(ikesaKey.SK_pr),
		hex.EncodeToString(ikesaKey.SK_d),
	)
}

// ToProposal converts IKESAKey to a message.Proposal
func (ikesaKey *IKESAKey) ToProposal() (*message.Proposal, error) {
	p := new(message.Proposal)
	p.ProtocolID = message.TypeIKE
	p.DiffieHellmanGroup = append(p.DiffieHellmanGroup, dh.ToTransform(ikesaKey.DhInfo))
	p.PseudorandomFunction = append(p.PseudorandomFunction, prf.ToTransform(ikesaKey.PrfInfo))
	encrTranform, err := encr.ToTransform(ikesaKey.EncrInfo)
	if err != nil {
		return nil, fmt.Errorf("IKESAKey ToProposal: %w", err)
	}
	p.EncryptionAlgorithm = append(p.EncryptionAlgorithm, encrTranform)
	p.IntegrityAlgorithm = append(p.IntegrityAlgorithm, integ.ToTransform(ikesaKey.IntegInfo))
	return p, nil
}

// NewIKESAKey decodes the negotiated transforms, runs the Diffie-Hellman
// exchange against the peer's key exchange data, and derives all IKE SA
// keys. It returns the keyed SA and the local public value to place in the
// outgoing KE payload.
func NewIKESAKey(
	proposal *message.Proposal,
	keyExchangeData, concatenatedNonce []byte,
	initiatorSPI, responderSPI uint64,
) (*IKESAKey, []byte, error) {
	if proposal == nil {
		return nil, nil, fmt.Errorf("proposal is nil")
	}
	if len(proposal.DiffieHellmanGroup) == 0 || len(proposal.EncryptionAlgorithm) == 0 ||
		len(proposal.IntegrityAlgorithm) == 0 || len(proposal.PseudorandomFunction) == 0 {
		return nil, nil, fmt.Errorf("proposal missing required transforms")
	}

	ikesaKey := &IKESAKey{
		DhInfo:    dh.DecodeTransform(proposal.DiffieHellmanGroup[0]),
		EncrInfo:  encr.DecodeTransform(proposal.EncryptionAlgorithm[0]),
		IntegInfo: integ.DecodeTransform(proposal.IntegrityAlgorithm[0]),
		PrfInfo:   prf.DecodeTransform(proposal.PseudorandomFunction[0]),
	}
	if ikesaKey.DhInfo == nil || ikesaKey.EncrInfo == nil || ikesaKey.IntegInfo == nil || ikesaKey.PrfInfo == nil {
		return nil, nil, fmt.Errorf("unsupported transform in proposal")
	}

	localPublicValue, sharedKeyData, err := CalculateDiffieHellmanMaterials(ikesaKey, keyExchangeData)
	if err != nil {
		return nil, nil, fmt.Errorf("NewIKESAKey: %w", err)
	}
	if err := ikesaKey.GenerateKeyForIKESA(concatenatedNonce, sharedKeyData, initiatorSPI, responderSPI); err != nil {
		return nil, nil, fmt.Errorf("NewIKESAKey: %w", err)
	}
	return ikesaKey, localPublicValue, nil
}

// CalculateDiffieHellmanMaterials generates an ephemeral key pair and
// combines it with the peer's public value. The peer value length is
// validated against the group before any arithmetic.
func CalculateDiffieHellmanMaterials(
	ikesaKey *IKESAKey,
	peerPublicValue []byte,
) ([]byte, []byte, error) {
	keyPair, err := dh.NewKeyPair(ikesaKey.DhInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("CalculateDiffieHellmanMaterials(): %w", err)
	}
	sharedKey, err := keyPair.SharedSecret(peerPublicValue)
	if err != nil {
		return nil, nil, fmt.Errorf("CalculateDiffieHellmanMaterials(): %w", err)
	}
	return keyPair.PublicValue(), sharedKey, nil
}

// GenerateKeyForIKESA derives all IKE SA keys as defined in RFC7296
func (ikesaKey *IKESAKey) GenerateKeyForIKESA(
	concatenatedNonce, diffieHellmanSharedKey []byte,
	initiatorSPI, responderSPI uint64,
) error {
	// Check parameters
	if ikesaKey == nil {
		return fmt.Errorf("IKE SA is nil")
	}

	// Check if the context contain needed data
	if ikesaKey.EncrInfo == nil {
		return fmt.Errorf("no encryption algorithm specified")
	}
	if ikesaKey.IntegInfo == nil {
		return fmt.Errorf("no integrity algorithm specified")
	}
	if ikesaKey.PrfInfo == nil {
		return fmt.Errorf("no pseudorandom function specified")
	}
	if ikesaKey.DhInfo == nil {
		return fmt.Errorf("no Diffie-hellman group algorithm specified")
	}

	if len(concatenatedNonce) == 0 {
		return fmt.Errorf("no concatenated nonce data")
	}
	if len(diffieHellmanSharedKey) == 0 {
		return fmt.Errorf("no Diffie-Hellman shared key")
	}

	// Get key length of SK_d, SK_ai, SK_ar, SK_ei, SK_er, SK_pi, SK_pr
	var length_SK_d, length_SK_ai, length_SK_ar, length_SK_ei, length_SK_er, length_SK_pi, length_SK_pr, totalKeyLength int

	length_SK_d = ikesaKey.PrfInfo.GetKeyLength()
	length_SK_ai = ikesaKey.IntegInfo.GetKeyLength()
	length_SK_ar = length_SK_ai
	length_SK_ei = ikesaKey.EncrInfo.GetKeyLength()
	length_SK_er = length_SK_ei
	length_SK_pi, length_SK_pr = length_SK_d, length_SK_d

	totalKeyLength = length_SK_d + length_SK_ai + length_SK_ar + length_SK_ei + length_SK_er + length_SK_pi + length_SK_pr

	// Generate IKE SA key as defined in RFC7296 Section 1.3 and Section 1.4

	prfNonce := ikesaKey.PrfInfo.Init(concatenatedNonce)
	if _, err := prfNonce.Write(diffieHellmanSharedKey); err != nil {
		return err
	}

	skeyseed := prfNonce.Sum(nil)
	seed := concatenateNonceAndSPI(concatenatedNonce, initiatorSPI, responderSPI)

	keyStream := prfPlus(ikesaKey.PrfInfo.Init(skeyseed), seed, totalKeyLength)
	if keyStream == nil {
		return fmt.Errorf("error occurred in PrfPlus")
	}

	// Assign keys into context
	ikesaKey.SK_d = keyStream[:length_SK_d]
	keyStream = keyStream[length_SK_d:]
	ikesaKey.SK_ai = keyStream[:length_SK_ai]
	keyStream = keyStream[length_SK_ai:]
	ikesaKey.SK_ar = keyStream[:length_SK_ar]
	keyStream = keyStream[length_SK_ar:]
	ikesaKey.SK_ei = keyStream[:length_SK_ei]
	keyStream = keyStream[length_SK_ei:]
	ikesaKey.SK_er = keyStream[:length_SK_er]
	keyStream = keyStream[length_SK_er:]
	ikesaKey.SK_pi = keyStream[:length_SK_pi]
	keyStream = keyStream[length_SK_pi:]
	ikesaKey.SK_pr = keyStream[:length_SK_pr]

	// Set security objects
	ikesaKey.Prf_d = ikesaKey.PrfInfo.Init(ikesaKey.SK_d)
	ikesaKey.Integ_i = ikesaKey.IntegInfo.Init(ikesaKey.SK_ai)
	ikesaKey.Integ_r = ikesaKey.IntegInfo.Init(ikesaKey.SK_ar)

	var err error
	ikesaKey.Encr_i, err = ikesaKey.EncrInfo.NewCrypto(ikesaKey.SK_ei)
	if err != nil {
		return err
	}

	ikesaKey.Encr_r, err = ikesaKey.EncrInfo.NewCrypto(ikesaKey.SK_er)
	if err != nil {
		return err
	}

	ikesaKey.Prf_i = ikesaKey.PrfInfo.Init(ikesaKey.SK_pi)
	ikesaKey.Prf_r = ikesaKey.PrfInfo.Init(ikesaKey.SK_pr)

	return nil
}

// prfPlus implements the prf+ construction of RFC 7296, Section 2.13.
func prfPlus(prf hash.Hash, s []byte, streamLen int) []byte {
	var stream, block []byte
	for i := 1; len(stream) < streamLen; i++ {
		prf.Reset()
		if _, err := prf.Write(append(append(block, s...), byte(i))); err != nil {
			return nil
		}
		stream = prf.Sum(stream)
		block = stream[len(stream)-prf.Size():]
	}
	return stream[:streamLen]
}
