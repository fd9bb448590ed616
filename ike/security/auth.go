// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"fmt"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/ike/security/prf"
)

// Key pad string defined in RFC 7296, Section 2.15
const keyPadForIKEv2 = "Key Pad for IKEv2"

// AuthenticationFailedError reports a failed or unsupported peer
// authentication. It is fatal to the exchange, not to the socket.
type AuthenticationFailedError struct {
	Method uint8
	Reason string
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("authentication failed (method %d): %s", e.Method, e.Reason)
}

// SignWithPrf computes a single-shot MAC of data under key.
func SignWithPrf(prfType prf.PRFType, key, data []byte) []byte {
	h := prfType.Init(key)
	if _, err := h.Write(data); err != nil {
		return nil
	}
	return h.Sum(nil)
}

// GetSignedOctets assembles the authentication input defined in RFC 7296,
// Section 2.15:
//
//	responder: realMessage2 | NonceIData | prf(SK_pr, IDr')
//	initiator: realMessage1 | NonceRData | prf(SK_pi, IDi')
//
// messageBytes is the raw encoded message of the first exchange, peerNonce
// the other side's nonce data, and idPayloadBody the restricted ID payload
// body (type + reserved + data) of the signing side.
func GetSignedOctets(prfType prf.PRFType, prfKey, messageBytes, peerNonce, idPayloadBody []byte) []byte {
	macedID := SignWithPrf(prfType, prfKey, idPayloadBody)
	signedOctets := make([]byte, 0, len(messageBytes)+len(peerNonce)+len(macedID))
	signedOctets = append(signedOctets, messageBytes...)
	signedOctets = append(signedOctets, peerNonce...)
	signedOctets = append(signedOctets, macedID...)
	return signedOctets
}

// Authenticator produces and checks the AUTH payload body for one
// authentication method.
type Authenticator interface {
	AuthMethod() uint8
	Sign(signedOctets []byte) ([]byte, error)
	Verify(signedOctets, authData []byte) error
}

// NewAuthenticator maps an authentication method code from a received AUTH
// payload to its implementation. Method codes this build does not implement
// are a hard failure: an AUTH payload can never be skipped the way an
// ordinary unrecognized payload can.
func NewAuthenticator(
	method uint8,
	prfType prf.PRFType,
	preSharedKey []byte,
	localPrivateKey *rsa.PrivateKey,
	peerPublicKey *rsa.PublicKey,
) (Authenticator, error) {
	switch method {
	case message.SharedKeyMesageIntegrityCode:
		return &PSKAuthenticator{PrfType: prfType, Secret: preSharedKey}, nil
	case message.RSADigitalSignature, message.DigitalSignature:
		return &DigitalSignatureAuthenticator{
			Method:          method,
			LocalPrivateKey: localPrivateKey,
			PeerPublicKey:   peerPublicKey,
		}, nil
	default:
		return nil, &AuthenticationFailedError{
			Method: method,
			Reason: "unsupported authentication method",
		}
	}
}

var _ Authenticator = &PSKAuthenticator{}

// PSKAuthenticator implements shared-key message integrity code
// authentication (method 2).
type PSKAuthenticator struct {
	PrfType prf.PRFType
	Secret  []byte
}

func (a *PSKAuthenticator) AuthMethod() uint8 {
	return message.SharedKeyMesageIntegrityCode
}

// Sign computes prf(prf(secret, "Key Pad for IKEv2"), signedOctets).
func (a *PSKAuthenticator) Sign(signedOctets []byte) ([]byte, error) {
	padKey := SignWithPrf(a.PrfType, a.Secret, []byte(keyPadForIKEv2))
	if padKey == nil {
		return nil, &AuthenticationFailedError{Method: a.AuthMethod(), Reason: "PRF failure"}
	}
	mac := SignWithPrf(a.PrfType, padKey, signedOctets)
	if mac == nil {
		return nil, &AuthenticationFailedError{Method: a.AuthMethod(), Reason: "PRF failure"}
	}
	return mac, nil
}

func (a *PSKAuthenticator) Verify(signedOctets, authData []byte) error {
	expected, err := a.Sign(signedOctets)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, authData) {
		return &AuthenticationFailedError{Method: a.AuthMethod(), Reason: "MAC mismatch"}
	}
	return nil
}

var _ Authenticator = &DigitalSignatureAuthenticator{}

// DigitalSignatureAuthenticator implements the RSA digital signature
// method (1) and the generic digital signature method (14). Both share the
// same RSASSA-PKCS1-v1_5 over SHA-1 computation, distinguished only by the
// method code placed on the wire.
type DigitalSignatureAuthenticator struct {
	Method          uint8
	LocalPrivateKey *rsa.PrivateKey
	PeerPublicKey   *rsa.PublicKey
}

func (a *DigitalSignatureAuthenticator) AuthMethod() uint8 {
	return a.Method
}

func (a *DigitalSignatureAuthenticator) Sign(signedOctets []byte) ([]byte, error) {
	if a.LocalPrivateKey == nil {
		return nil, &AuthenticationFailedError{Method: a.Method, Reason: "no local private key"}
	}
	hashed := sha1.Sum(signedOctets)
	signature, err := rsa.SignPKCS1v15(rand.Reader, a.LocalPrivateKey, crypto.SHA1, hashed[:])
	if err != nil {
		return nil, &AuthenticationFailedError{Method: a.Method, Reason: err.Error()}
	}
	return signature, nil
}

func (a *DigitalSignatureAuthenticator) Verify(signedOctets, authData []byte) error {
	if a.PeerPublicKey == nil {
		return &AuthenticationFailedError{Method: a.Method, Reason: "no peer public key"}
	}
	hashed := sha1.Sum(signedOctets)
	if err := rsa.VerifyPKCS1v15(a.PeerPublicKey, crypto.SHA1, hashed[:], authData); err != nil {
		return &AuthenticationFailedError{Method: a.Method, Reason: "signature verification failed"}
	}
	return nil
}
