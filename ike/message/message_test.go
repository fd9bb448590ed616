// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func buildTestPayloads(t *testing.T) IKEPayloadContainer {
	t.Helper()

	var payloads IKEPayloadContainer

	sa := payloads.BuildSecurityAssociation()
	proposal := sa.Proposals.BuildProposal(1, TypeIKE, nil)
	attrType := uint16(AttributeTypeKeyLength)
	attrValue := uint16(128)
	proposal.EncryptionAlgorithm.BuildTransform(TypeEncryptionAlgorithm, ENCR_AES_CBC, &attrType, &attrValue, nil)
	proposal.PseudorandomFunction.BuildTransform(TypePseudorandomFunction, PRF_HMAC_SHA1, nil, nil, nil)
	proposal.IntegrityAlgorithm.BuildTransform(TypeIntegrityAlgorithm, AUTH_HMAC_SHA1_96, nil, nil, nil)
	proposal.DiffieHellmanGroup.BuildTransform(TypeDiffieHellmanGroup, DH_1024_BIT_MODP, nil, nil, nil)

	keData := make([]byte, 128)
	for i := range keData {
		keData[i] = byte(i)
	}
	payloads.BuildKeyExchange(DH_1024_BIT_MODP, keData)

	payloads.BuildNonce([]byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04})
	payloads.BuildIdentificationInitiator(ID_FQDN, []byte("ue.ikewire.org"))
	payloads.BuildAuthentication(SharedKeyMesageIntegrityCode, []byte{0x11, 0x22, 0x33, 0x44})
	payloads.BuildCertificate(X509CertificateSignature, []byte{0x30, 0x82, 0x01, 0x00})
	payloads.BuildCertificateRequest(X509CertificateSignature, []byte{0xca, 0xfe})
	payloads.BuildNotification(TypeNone, NAT_DETECTION_SOURCE_IP, nil, []byte{0xaa, 0xbb})
	payloads.BuildDeletePayload(TypeESP, 4, [][]byte{{0, 0, 0, 1}, {0, 0, 0, 2}})
	payloads.BuildVendorID([]byte("ikewire"))

	tsi := payloads.BuildTrafficSelectorInitiator()
	tsi.TrafficSelectors.BuildIndividualTrafficSelector(TS_IPV4_ADDR_RANGE, IPProtocolAll,
		0, 65535, []byte{10, 0, 0, 1}, []byte{10, 0, 0, 254})
	tsr := payloads.BuildTrafficSelectorResponder()
	tsr.TrafficSelectors.BuildIndividualTrafficSelector(TS_IPV6_ADDR_RANGE, IPProtocolTCP,
		0, 65535,
		bytes.Repeat([]byte{0x20, 0x01}, 8),
		bytes.Repeat([]byte{0x20, 0x02}, 8))

	return payloads
}

func TestMessageRoundTrip(t *testing.T) {
	payloads := buildTestPayloads(t)

	ikeMsg := NewMessage(0x1122334455667788, 0x8877665544332211,
		IKE_SA_INIT, false, true, 7, payloads)

	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	decodedMsg := new(IKEMessage)
	if err := decodedMsg.Decode(data); err != nil {
		t.Fatalf("Decode() failed: %+v", err)
	}

	if decodedMsg.InitiatorSPI != 0x1122334455667788 {
		t.Errorf("initiator SPI mismatch: 0x%x", decodedMsg.InitiatorSPI)
	}
	if decodedMsg.ResponderSPI != 0x8877665544332211 {
		t.Errorf("responder SPI mismatch: 0x%x", decodedMsg.ResponderSPI)
	}
	if decodedMsg.ExchangeType != IKE_SA_INIT {
		t.Errorf("exchange type mismatch: %d", decodedMsg.ExchangeType)
	}
	if !decodedMsg.IsInitiator() || decodedMsg.IsResponse() {
		t.Errorf("flags mismatch: 0x%x", decodedMsg.Flags)
	}
	if decodedMsg.MessageID != 7 {
		t.Errorf("message ID mismatch: %d", decodedMsg.MessageID)
	}

	if len(decodedMsg.Payloads) != len(payloads) {
		t.Fatalf("payload count %d, want %d", len(decodedMsg.Payloads), len(payloads))
	}
	for i := range payloads {
		if !reflect.DeepEqual(decodedMsg.Payloads[i], payloads[i]) {
			t.Errorf("payload %d (type %d) did not round-trip:\ngot  %+v\nwant %+v",
				i, payloads[i].Type(), decodedMsg.Payloads[i], payloads[i])
		}
	}
}

func TestDecodeUnsupportedCriticalPayload(t *testing.T) {
	var payloads IKEPayloadContainer
	payloads.BuildNonce([]byte{1, 2, 3, 4})
	payloads = append(payloads, &UnsupportedPayload{PayloadType: 201, Critical: true})

	ikeMsg := NewMessage(1, 2, IKE_SA_INIT, false, true, 0, payloads)
	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	decodedMsg := new(IKEMessage)
	err = decodedMsg.Decode(data)
	if err == nil {
		t.Fatal("Decode() succeeded, want unsupported critical payload error")
	}
	var ucp *UnsupportedCriticalPayloadError
	if !errors.As(err, &ucp) {
		t.Fatalf("error type %T, want UnsupportedCriticalPayloadError", err)
	}
	if len(ucp.PayloadTypes) != 1 || ucp.PayloadTypes[0] != 201 {
		t.Errorf("offending types %v, want [201]", ucp.PayloadTypes)
	}
}

func TestDecodeSkipsUnsupportedNonCritical(t *testing.T) {
	var payloads IKEPayloadContainer
	payloads.BuildNonce([]byte{1, 2, 3, 4})
	payloads = append(payloads, &UnsupportedPayload{PayloadType: 202, Critical: false})
	payloads.BuildVendorID([]byte("ikewire"))

	ikeMsg := NewMessage(1, 2, IKE_SA_INIT, false, true, 0, payloads)
	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	decodedMsg := new(IKEMessage)
	if err := decodedMsg.Decode(data); err != nil {
		t.Fatalf("Decode() failed: %+v", err)
	}
	if len(decodedMsg.Payloads) != 2 {
		t.Fatalf("payload count %d, want 2 (non-critical unknown dropped)", len(decodedMsg.Payloads))
	}
	if decodedMsg.Payloads[0].Type() != TypeNiNr || decodedMsg.Payloads[1].Type() != TypeV {
		t.Errorf("payload types %d, %d, want %d, %d",
			decodedMsg.Payloads[0].Type(), decodedMsg.Payloads[1].Type(), TypeNiNr, TypeV)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	var payloads IKEPayloadContainer
	payloads.BuildNonce([]byte{1, 2, 3, 4})
	encoded, err := payloads.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}
	encoded = append(encoded, 0xff, 0xff, 0xff)

	var decoded IKEPayloadContainer
	err = decoded.Decode(TypeNiNr, encoded)
	if err == nil {
		t.Fatal("Decode() succeeded, want syntax error for trailing bytes")
	}
	if !IsSyntaxError(err) {
		t.Errorf("error type %T, want SyntaxError", err)
	}
}

func TestDecodeMalformedLengths(t *testing.T) {
	testCases := []struct {
		name    string
		rawData []byte
	}{
		{"payload length below header size", []byte{0, 0, 0, 3}},
		{"payload length beyond buffer", []byte{0, 0, 0, 40, 1, 2, 3, 4}},
		{"truncated generic header", []byte{0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var decoded IKEPayloadContainer
			err := decoded.Decode(TypeNiNr, tc.rawData)
			if err == nil {
				t.Fatal("Decode() succeeded, want syntax error")
			}
			if !IsSyntaxError(err) {
				t.Errorf("error type %T, want SyntaxError", err)
			}
		})
	}
}

func TestDecodeOversizedSPISize(t *testing.T) {
	testCases := []struct {
		name        string
		nextPayload IKEPayloadType
		body        []byte
	}{
		// Proposal declaring 8 bytes total but a 248-byte SPI
		{"security association proposal", TypeSA, []byte{0, 0, 0, 8, 1, 1, 248, 0}},
		// Notification declaring a 252-byte SPI in a 4-byte body
		{"notification", TypeN, []byte{1, 252, 0, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rawData := append([]byte{byte(NoNext), 0, 0, byte(4 + len(tc.body))}, tc.body...)

			var decoded IKEPayloadContainer
			err := decoded.Decode(tc.nextPayload, rawData)
			if err == nil {
				t.Fatal("Decode() accepted SPI size exceeding the payload")
			}
			if !IsSyntaxError(err) {
				t.Errorf("error type %T, want SyntaxError", err)
			}
		})
	}
}

func TestDecodeTruncatedTransformAttribute(t *testing.T) {
	// A single transform declaring 9 bytes: too long for a bare
	// transform, too short for the fixed attribute header.
	transform := []byte{0, 0, 0, 9, TypeEncryptionAlgorithm, 0, 0, 12, 0xff}
	proposal := append([]byte{0, 0, 0, byte(8 + len(transform)), 1, 1, 0, 1}, transform...)
	rawData := append([]byte{byte(NoNext), 0, 0, byte(4 + len(proposal))}, proposal...)

	var decoded IKEPayloadContainer
	err := decoded.Decode(TypeSA, rawData)
	if err == nil {
		t.Fatal("Decode() accepted transform shorter than its attribute header")
	}
	if !IsSyntaxError(err) {
		t.Errorf("error type %T, want SyntaxError", err)
	}
}

func TestDecodeStopsAtNoNextSentinel(t *testing.T) {
	var payloads IKEPayloadContainer
	payloads.BuildNonce([]byte{5, 6, 7, 8})
	encoded, err := payloads.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	var decoded IKEPayloadContainer
	if err := decoded.Decode(TypeNiNr, encoded); err != nil {
		t.Fatalf("Decode() failed: %+v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("payload count %d, want 1", len(decoded))
	}
	nonce := decoded[0].(*Nonce)
	if !bytes.Equal(nonce.NonceData, []byte{5, 6, 7, 8}) {
		t.Errorf("nonce data mismatch: %v", nonce.NonceData)
	}
}

func TestDecodeSKPayloadKeepsInnerType(t *testing.T) {
	var payloads IKEPayloadContainer
	payloads.BuildEncrypted(TypeIDi, []byte{0x10, 0x20, 0x30, 0x40})

	ikeMsg := NewMessage(1, 2, IKE_AUTH, true, false, 3, payloads)
	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}

	decodedMsg := new(IKEMessage)
	if err := decodedMsg.Decode(data); err != nil {
		t.Fatalf("Decode() failed: %+v", err)
	}
	if len(decodedMsg.Payloads) != 1 {
		t.Fatalf("payload count %d, want 1", len(decodedMsg.Payloads))
	}
	sk, ok := decodedMsg.Payloads[0].(*Encrypted)
	if !ok {
		t.Fatalf("payload type %T, want *Encrypted", decodedMsg.Payloads[0])
	}
	if sk.NextPayload != TypeIDi {
		t.Errorf("SK inner next payload %d, want %d", sk.NextPayload, TypeIDi)
	}
	if !bytes.Equal(sk.EncryptedData, []byte{0x10, 0x20, 0x30, 0x40}) {
		t.Errorf("SK data mismatch: %v", sk.EncryptedData)
	}
}
