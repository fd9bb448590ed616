// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"encoding/binary"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader(0x0102030405060708, 0x1112131415161718,
		IKE_AUTH, true, false, 42, TypeSK, []byte{0xaa, 0xbb, 0xcc, 0xdd})

	data, err := h.Marshal()
	if err != nil {
		t.Fatalf("Marshal() failed: %+v", err)
	}
	if len(data) != IKE_HEADER_LEN+4 {
		t.Fatalf("marshalled length %d, want %d", len(data), IKE_HEADER_LEN+4)
	}

	parsed, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() failed: %+v", err)
	}
	if parsed.InitiatorSPI != h.InitiatorSPI || parsed.ResponderSPI != h.ResponderSPI {
		t.Errorf("SPI mismatch: 0x%x 0x%x", parsed.InitiatorSPI, parsed.ResponderSPI)
	}
	if parsed.MajorVersion != 2 || parsed.MinorVersion != 0 {
		t.Errorf("version mismatch: %d.%d", parsed.MajorVersion, parsed.MinorVersion)
	}
	if parsed.ExchangeType != IKE_AUTH {
		t.Errorf("exchange type mismatch: %d", parsed.ExchangeType)
	}
	if !parsed.IsResponse() || parsed.IsInitiator() {
		t.Errorf("flags mismatch: 0x%x", parsed.Flags)
	}
	if parsed.MessageID != 42 {
		t.Errorf("message ID mismatch: %d", parsed.MessageID)
	}
	if parsed.NextPayload != TypeSK {
		t.Errorf("next payload mismatch: %d", parsed.NextPayload)
	}
}

func TestParseHeaderTooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, IKE_HEADER_LEN-1))
	if err == nil {
		t.Fatal("ParseHeader() succeeded on short buffer")
	}
	if !IsSyntaxError(err) {
		t.Errorf("error type %T, want SyntaxError", err)
	}
}

func TestParseHeaderLengthMismatch(t *testing.T) {
	h := NewHeader(1, 2, IKE_SA_INIT, false, true, 0, NoNext, nil)
	data, err := h.Marshal()
	if err != nil {
		t.Fatalf("Marshal() failed: %+v", err)
	}

	// Declared length larger than the datagram
	binary.BigEndian.PutUint32(data[24:28], uint32(len(data)+8))
	if _, err := ParseHeader(data); err == nil || !IsSyntaxError(err) {
		t.Errorf("oversized declared length: got %v, want SyntaxError", err)
	}

	// Declared length smaller than the datagram
	binary.BigEndian.PutUint32(data[24:28], uint32(IKE_HEADER_LEN))
	grown := append(data, 0x00)
	if _, err := ParseHeader(grown); err == nil || !IsSyntaxError(err) {
		t.Errorf("trailing bytes after declared length: got %v, want SyntaxError", err)
	}

	// Declared length below the fixed header size
	binary.BigEndian.PutUint32(data[24:28], 8)
	if _, err := ParseHeader(data); err == nil || !IsSyntaxError(err) {
		t.Errorf("declared length below header size: got %v, want SyntaxError", err)
	}
}
