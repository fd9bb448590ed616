// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package ike

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/ike/security"
	"github.com/ikewire/ikewire/ike/security/dh"
	"github.com/ikewire/ikewire/ike/security/encr"
	"github.com/ikewire/ikewire/ike/security/integ"
	"github.com/ikewire/ikewire/ike/security/prf"
)

func newTestIKESAKey(t *testing.T) *security.IKESAKey {
	t.Helper()

	ikesaKey := &security.IKESAKey{
		DhInfo:    dh.StrToType(dh.DH_1024_BIT_MODP),
		EncrInfo:  encr.StrToType(encr.ENCR_AES_CBC_128),
		IntegInfo: integ.StrToType(integ.AUTH_HMAC_SHA1_96),
		PrfInfo:   prf.StrToType(prf.PRF_HMAC_SHA1),
	}

	concatenatedNonce := make([]byte, 32)
	sharedKey := make([]byte, 128)
	for i := range concatenatedNonce {
		concatenatedNonce[i] = byte(i)
	}
	for i := range sharedKey {
		sharedKey[i] = byte(255 - i)
	}

	err := ikesaKey.GenerateKeyForIKESA(concatenatedNonce, sharedKey,
		0x1111222233334444, 0x5555666677778888)
	if err != nil {
		t.Fatalf("GenerateKeyForIKESA() failed: %+v", err)
	}
	return ikesaKey
}

func buildProtectedTestMessage(t *testing.T) *message.IKEMessage {
	t.Helper()

	var payloads message.IKEPayloadContainer
	payloads.BuildIdentificationInitiator(message.ID_FQDN, []byte("ue.ikewire.org"))
	payloads.BuildAuthentication(message.SharedKeyMesageIntegrityCode, []byte{0xa1, 0xa2, 0xa3, 0xa4})
	payloads.BuildNonce([]byte{9, 8, 7, 6, 5, 4, 3, 2})

	return message.NewMessage(0x1111222233334444, 0x5555666677778888,
		message.IKE_AUTH, true, false, 1, payloads)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ikesaKey := newTestIKESAKey(t)
	ikeMsg := buildProtectedTestMessage(t)
	wantPayloads := append(message.IKEPayloadContainer{}, ikeMsg.Payloads...)

	data, err := EncodeEncrypt(ikeMsg, ikesaKey, message.Role_Initiator)
	if err != nil {
		t.Fatalf("EncodeEncrypt() failed: %+v", err)
	}

	// The wire form must expose nothing but the SK payload.
	header, err := message.ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() failed: %+v", err)
	}
	if header.NextPayload != message.TypeSK {
		t.Fatalf("first payload type %d, want %d", header.NextPayload, message.TypeSK)
	}

	decodedMsg, err := DecodeDecryptProtected(data, nil, ikesaKey, message.Role_Responder)
	if err != nil {
		t.Fatalf("DecodeDecryptProtected() failed: %+v", err)
	}
	if len(decodedMsg.Payloads) != len(wantPayloads) {
		t.Fatalf("payload count %d, want %d", len(decodedMsg.Payloads), len(wantPayloads))
	}
	for i := range wantPayloads {
		if decodedMsg.Payloads[i].Type() != wantPayloads[i].Type() {
			t.Errorf("payload %d type %d, want %d", i, decodedMsg.Payloads[i].Type(), wantPayloads[i].Type())
		}
	}
	idPayload := decodedMsg.Payloads[0].(*message.IdentificationInitiator)
	if !bytes.Equal(idPayload.IDData, []byte("ue.ikewire.org")) {
		t.Errorf("ID data mismatch: %v", idPayload.IDData)
	}
}

func TestDecryptTamperedMessage(t *testing.T) {
	ikesaKey := newTestIKESAKey(t)
	checksumLength := ikesaKey.IntegInfo.GetOutputLength()

	encode := func() []byte {
		data, err := EncodeEncrypt(buildProtectedTestMessage(t), ikesaKey, message.Role_Initiator)
		if err != nil {
			t.Fatalf("EncodeEncrypt() failed: %+v", err)
		}
		return data
	}

	testCases := []struct {
		name   string
		offset func(data []byte) int
	}{
		{"flip bit in cipher text", func(data []byte) int {
			return message.IKE_HEADER_LEN + 4 + ikesaKey.EncrInfo.GetKeyLength()
		}},
		{"flip bit in IV", func(data []byte) int {
			return message.IKE_HEADER_LEN + 4
		}},
		{"flip bit in checksum", func(data []byte) int {
			return len(data) - checksumLength
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := encode()
			data[tc.offset(data)] ^= 0x01

			_, err := DecodeDecryptProtected(data, nil, ikesaKey, message.Role_Responder)
			if err == nil {
				t.Fatal("DecodeDecryptProtected() accepted tampered message")
			}
			if !IsCryptoError(err) {
				t.Errorf("error type %T, want CryptoError", err)
			}
		})
	}
}

func TestDecodeDecryptProtectedRejectsPlainMessage(t *testing.T) {
	ikesaKey := newTestIKESAKey(t)

	var payloads message.IKEPayloadContainer
	payloads.BuildNonce([]byte{1, 2, 3, 4})
	ikeMsg := message.NewMessage(1, 2, message.IKE_AUTH, true, false, 1, payloads)
	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	_, err = DecodeDecryptProtected(data, nil, ikesaKey, message.Role_Responder)
	if err == nil {
		t.Fatal("DecodeDecryptProtected() accepted unprotected payloads")
	}
	if !errors.Is(err, message.ErrUnprotectedPayloads) {
		t.Errorf("error %v, want ErrUnprotectedPayloads in chain", err)
	}
}

func TestDecryptEncryptedDataShorterThanChecksum(t *testing.T) {
	ikesaKey := newTestIKESAKey(t)

	var payloads message.IKEPayloadContainer
	payloads.BuildEncrypted(message.NoNext, []byte{1, 2, 3, 4})
	ikeMsg := message.NewMessage(1, 2, message.IKE_AUTH, true, false, 1, payloads)
	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	_, err = DecodeDecrypt(data, nil, ikesaKey, message.Role_Responder)
	if err == nil {
		t.Fatal("DecodeDecrypt() accepted SK payload shorter than the checksum")
	}
	if !message.IsSyntaxError(err) {
		t.Errorf("error type %T, want SyntaxError", err)
	}
}

func TestEnvelopeWithHalfKeyedSA(t *testing.T) {
	ikesaKey := newTestIKESAKey(t)
	// An initiator-sent envelope only ever touches the initiator-side
	// security objects, on both ends.
	ikesaKey.Integ_r = nil
	ikesaKey.Encr_r = nil

	data, err := EncodeEncrypt(buildProtectedTestMessage(t), ikesaKey, message.Role_Initiator)
	if err != nil {
		t.Fatalf("EncodeEncrypt() failed: %+v", err)
	}
	if _, err := DecodeDecryptProtected(data, nil, ikesaKey, message.Role_Responder); err != nil {
		t.Fatalf("DecodeDecryptProtected() failed: %+v", err)
	}

	// A receiver acting as initiator needs the responder-side objects
	// and must refuse cleanly without them.
	if _, err := DecodeDecrypt(data, nil, ikesaKey, message.Role_Initiator); err == nil {
		t.Error("DecodeDecrypt() succeeded without the keys its role requires")
	}
	if err := encryptMsg(buildProtectedTestMessage(t), ikesaKey, message.Role_Responder); err == nil {
		t.Error("encryptMsg() succeeded without the keys its role requires")
	}
}

func TestEncodeEncryptWithoutKey(t *testing.T) {
	var payloads message.IKEPayloadContainer
	payloads.BuildNonce([]byte{1, 2, 3, 4})
	ikeMsg := message.NewMessage(1, 2, message.IKE_SA_INIT, true, false, 0, payloads)

	data, err := EncodeEncrypt(ikeMsg, nil, message.Role_Initiator)
	if err != nil {
		t.Fatalf("EncodeEncrypt() failed: %+v", err)
	}

	decodedMsg, err := DecodeDecrypt(data, nil, nil, message.Role_Responder)
	if err != nil {
		t.Fatalf("DecodeDecrypt() failed: %+v", err)
	}
	if len(decodedMsg.Payloads) != 1 || decodedMsg.Payloads[0].Type() != message.TypeNiNr {
		t.Errorf("plain message did not round-trip: %+v", decodedMsg.Payloads)
	}
}
