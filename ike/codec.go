// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package ike

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"hash"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/ike/security"
	"github.com/ikewire/ikewire/logger"
)

// CryptoError reports a failed envelope operation. A tampered checksum and
// an undecryptable cipher text produce the same observable error, so a peer
// cannot tell which check failed.
type CryptoError struct {
	cause error
}

func (e *CryptoError) Error() string {
	return "crypto operation failed"
}

func cryptoError(cause error) *CryptoError {
	logger.IKELog.Debugf("envelope failure: %v", cause)
	return &CryptoError{cause: cause}
}

// IsCryptoError reports whether any error in err's chain is a CryptoError.
func IsCryptoError(err error) bool {
	var ce *CryptoError
	return errors.As(err, &ce)
}

// EncodeEncrypt encodes ikeMsg to wire bytes. When ikesaKey is non-nil the
// payload list is wrapped in an SK payload first: encrypted, padded, and
// carrying the truncated integrity checksum over the whole message.
func EncodeEncrypt(ikeMsg *message.IKEMessage, ikesaKey *security.IKESAKey, role message.Role) ([]byte, error) {
	if ikesaKey != nil {
		if err := encryptMsg(ikeMsg, ikesaKey, role); err != nil {
			return nil, fmt.Errorf("IKE encode encrypt: %w", err)
		}
	}
	msg, err := ikeMsg.Encode()
	if err != nil {
		return nil, fmt.Errorf("IKE encode: %w", err)
	}
	return msg, nil
}

// DecodeDecrypt decodes an IKE message, unwrapping the SK payload when one
// leads the chain. ikeHeader may carry an already-parsed header for the
// same buffer, sparing a second header pass; pass nil to parse from msg.
func DecodeDecrypt(msg []byte, ikeHeader *message.IKEHeader, ikesaKey *security.IKESAKey, role message.Role) (*message.IKEMessage, error) {
	ikeMsg := new(message.IKEMessage)
	var err error

	if ikeHeader == nil {
		err = ikeMsg.Decode(msg)
	} else {
		ikeMsg.IKEHeader = ikeHeader
		err = ikeMsg.DecodePayload(ikeHeader.PayloadBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("DecodeDecrypt(): %w", err)
	}

	if len(ikeMsg.Payloads) > 0 && ikeMsg.Payloads[0].Type() == message.TypeSK {
		if ikesaKey == nil {
			return nil, errors.New("IKE decode decrypt: need ikesaKey to decrypt")
		}
		ikeMsg, err = decryptMsg(msg, ikeMsg, ikesaKey, role)
		if err != nil {
			return nil, fmt.Errorf("IKE decode decrypt: %w", err)
		}
	}
	return ikeMsg, nil
}

// DecodeDecryptProtected is the decode entry point for exchanges after
// IKE_SA_INIT. The first payload of the chain must be the SK payload;
// anything else means the peer sent payloads outside the protection of the
// envelope and the message is rejected whole.
func DecodeDecryptProtected(msg []byte, ikeHeader *message.IKEHeader, ikesaKey *security.IKESAKey, role message.Role) (*message.IKEMessage, error) {
	if ikesaKey == nil {
		return nil, errors.New("DecodeDecryptProtected(): ikesaKey is nil")
	}

	var nextPayload message.IKEPayloadType
	if ikeHeader != nil {
		nextPayload = ikeHeader.NextPayload
	} else {
		parsed, err := message.ParseHeader(msg)
		if err != nil {
			return nil, fmt.Errorf("DecodeDecryptProtected(): %w", err)
		}
		ikeHeader = parsed
		nextPayload = parsed.NextPayload
	}
	if nextPayload != message.TypeSK {
		return nil, fmt.Errorf("DecodeDecryptProtected(): first payload type %d: %w",
			nextPayload, message.ErrUnprotectedPayloads)
	}

	return DecodeDecrypt(msg, ikeHeader, ikesaKey, role)
}

func verifyIntegrity(originData, checksum []byte, ikesaKey *security.IKESAKey, role message.Role) error {
	expectChecksum, err := calculateIntegrity(ikesaKey, role, originData)
	if err != nil {
		return fmt.Errorf("verifyIntegrity[%d]: %w", ikesaKey.IntegInfo.TransformID(), err)
	}
	if !hmac.Equal(checksum, expectChecksum) {
		return errors.New("invalid checksum")
	}
	return nil
}

func calculateIntegrity(ikesaKey *security.IKESAKey, role message.Role, originData []byte) ([]byte, error) {
	outputLen := ikesaKey.IntegInfo.GetOutputLength()
	var mac hash.Hash
	if role == message.Role_Initiator {
		mac = ikesaKey.Integ_i
	} else {
		mac = ikesaKey.Integ_r
	}
	if mac == nil {
		return nil, errors.New("calculateIntegrity(): integrity key is nil")
	}
	mac.Reset()
	if _, err := mac.Write(originData); err != nil {
		return nil, fmt.Errorf("calculateIntegrity(): %w", err)
	}
	return mac.Sum(nil)[:outputLen], nil
}

func encryptPayload(plainText []byte, ikesaKey *security.IKESAKey, role message.Role) ([]byte, error) {
	if role == message.Role_Initiator {
		return ikesaKey.Encr_i.Encrypt(plainText)
	}
	return ikesaKey.Encr_r.Encrypt(plainText)
}

func decryptPayload(cipherText []byte, ikesaKey *security.IKESAKey, role message.Role) ([]byte, error) {
	if role == message.Role_Initiator {
		return ikesaKey.Encr_r.Decrypt(cipherText)
	}
	return ikesaKey.Encr_i.Decrypt(cipherText)
}

// decryptMsg unwraps the SK payload of ikeMsg: the checksum over the whole
// datagram minus the checksum itself is verified before any decryption is
// attempted, and both failure modes surface as the same CryptoError.
func decryptMsg(msg []byte, ikeMsg *message.IKEMessage, ikesaKey *security.IKESAKey, role message.Role) (*message.IKEMessage, error) {
	if ikesaKey == nil || msg == nil || ikeMsg == nil ||
		ikesaKey.IntegInfo == nil || ikesaKey.EncrInfo == nil {
		return nil, errors.New("decryptMsg(): missing required context")
	}
	// The receiver verifies with the peer's integrity hash and decrypts
	// with the peer's cipher.
	if role == message.Role_Initiator {
		if ikesaKey.Integ_r == nil || ikesaKey.Encr_r == nil {
			return nil, errors.New("decryptMsg(): missing responder-side keys")
		}
	} else if ikesaKey.Integ_i == nil || ikesaKey.Encr_i == nil {
		return nil, errors.New("decryptMsg(): missing initiator-side keys")
	}

	var encryptedPayload *message.Encrypted
	for _, ikePayload := range ikeMsg.Payloads {
		if ikePayload.Type() == message.TypeSK {
			encryptedPayload = ikePayload.(*message.Encrypted)
			break
		}
	}
	if encryptedPayload == nil {
		return nil, errors.New("decryptMsg(): SK payload not found")
	}

	checksumLength := ikesaKey.IntegInfo.GetOutputLength()
	dataLen := len(encryptedPayload.EncryptedData)
	if dataLen < checksumLength {
		return nil, &message.SyntaxError{
			Reason: fmt.Sprintf("encrypted data %d bytes, shorter than %d byte checksum", dataLen, checksumLength),
		}
	}
	checksum := encryptedPayload.EncryptedData[dataLen-checksumLength:]
	if err := verifyIntegrity(msg[:len(msg)-checksumLength], checksum, ikesaKey, !role); err != nil {
		return nil, cryptoError(err)
	}

	plainText, err := decryptPayload(encryptedPayload.EncryptedData[:dataLen-checksumLength], ikesaKey, role)
	if err != nil {
		return nil, cryptoError(err)
	}

	var decryptedPayloads message.IKEPayloadContainer
	if err := decryptedPayloads.Decode(encryptedPayload.NextPayload, plainText); err != nil {
		return nil, fmt.Errorf("decryptMsg(): decoding decrypted payload failed: %w", err)
	}
	ikeMsg.Payloads.Reset()
	ikeMsg.Payloads = append(ikeMsg.Payloads, decryptedPayloads...)
	return ikeMsg, nil
}

// encryptMsg replaces ikeMsg's payload list with a single SK payload. The
// cipher text is produced first, checksum space is reserved, and the
// checksum over the encoded message is copied in last so it covers header,
// generic payload header, IV, and cipher text.
func encryptMsg(ikeMsg *message.IKEMessage, ikesaKey *security.IKESAKey, role message.Role) error {
	if ikeMsg == nil || ikesaKey == nil || ikesaKey.IntegInfo == nil || ikesaKey.EncrInfo == nil {
		return errors.New("encryptMsg(): missing required context")
	}
	if role == message.Role_Initiator {
		if ikesaKey.Integ_i == nil || ikesaKey.Encr_i == nil {
			return errors.New("encryptMsg(): missing initiator-side keys")
		}
	} else if ikesaKey.Integ_r == nil || ikesaKey.Encr_r == nil {
		return errors.New("encryptMsg(): missing responder-side keys")
	}
	ikePayloads := ikeMsg.Payloads
	checksumLength := ikesaKey.IntegInfo.GetOutputLength()

	plainTextPayload, err := ikePayloads.Encode()
	if err != nil {
		return fmt.Errorf("encryptMsg(): encoding IKE payload failed: %w", err)
	}
	encryptedData, err := encryptPayload(plainTextPayload, ikesaKey, role)
	if err != nil {
		return cryptoError(err)
	}
	encryptedData = append(encryptedData, make([]byte, checksumLength)...) // reserve space for checksum
	ikeMsg.Payloads.Reset()

	var encrNextPayloadType message.IKEPayloadType
	if len(ikePayloads) == 0 {
		encrNextPayloadType = message.NoNext
	} else {
		encrNextPayloadType = ikePayloads[0].Type()
	}
	sk := ikeMsg.Payloads.BuildEncrypted(encrNextPayloadType, encryptedData)

	ikeMsgData, err := ikeMsg.Encode()
	if err != nil {
		return fmt.Errorf("encryptMsg(): encoding IKE message error: %w", err)
	}
	checksumOfMessage, err := calculateIntegrity(ikesaKey, role, ikeMsgData[:len(ikeMsgData)-checksumLength])
	if err != nil {
		return fmt.Errorf("encryptMsg(): error calculating checksum: %w", err)
	}
	copy(sk.EncryptedData[len(sk.EncryptedData)-checksumLength:], checksumOfMessage)
	return nil
}
