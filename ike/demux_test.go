// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package ike

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/ikewire/ikewire/ike/message"
)

type captureHandler struct {
	called     int
	lastHeader *message.IKEHeader
	lastRaw    []byte
	lastAddr   *net.UDPAddr
}

func (h *captureHandler) HandleIkePacket(ikeHeader *message.IKEHeader, rawBytes []byte, remoteAddr *net.UDPAddr) {
	h.called++
	h.lastHeader = ikeHeader
	h.lastRaw = rawBytes
	h.lastAddr = remoteAddr
}

func newTestSocket() *IkeSocket {
	return &IkeSocket{
		key:    "test",
		routes: make(map[uint64]SessionHandler),
	}
}

func encodeTestMessage(t *testing.T, initiatorSPI, responderSPI uint64, initiator bool) []byte {
	t.Helper()

	var payloads message.IKEPayloadContainer
	payloads.BuildNonce([]byte{1, 2, 3, 4})
	ikeMsg := message.NewMessage(initiatorSPI, responderSPI, message.IKE_SA_INIT,
		!initiator, initiator, 0, payloads)
	data, err := ikeMsg.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %+v", err)
	}
	return data
}

func TestDispatchRoutesByLocalSPI(t *testing.T) {
	s := newTestSocket()
	handler := new(captureHandler)
	remoteAddr := &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 500}

	// Peer is the initiator, so the responder SPI is the local one.
	s.RegisterIke(0xbbbb, handler)
	msg := encodeTestMessage(t, 0xaaaa, 0xbbbb, true)
	s.dispatch(msg, remoteAddr)

	if handler.called != 1 {
		t.Fatalf("handler called %d times, want 1", handler.called)
	}
	if handler.lastHeader.InitiatorSPI != 0xaaaa || handler.lastHeader.ResponderSPI != 0xbbbb {
		t.Errorf("header SPIs 0x%x 0x%x", handler.lastHeader.InitiatorSPI, handler.lastHeader.ResponderSPI)
	}
	if !bytes.Equal(handler.lastRaw, msg) {
		t.Error("handler did not receive the full datagram")
	}
	if handler.lastAddr != remoteAddr {
		t.Error("handler did not receive the source address")
	}

	// Peer is the responder, so the initiator SPI is the local one.
	responderSide := new(captureHandler)
	s.RegisterIke(0xcccc, responderSide)
	s.dispatch(encodeTestMessage(t, 0xcccc, 0xdddd, false), remoteAddr)
	if responderSide.called != 1 {
		t.Errorf("responder-side handler called %d times, want 1", responderSide.called)
	}
}

func TestRegisterIkeLastWriteWins(t *testing.T) {
	s := newTestSocket()
	first := new(captureHandler)
	second := new(captureHandler)
	remoteAddr := &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 500}

	s.RegisterIke(0x1234, first)
	s.RegisterIke(0x1234, second)
	s.dispatch(encodeTestMessage(t, 0xaaaa, 0x1234, true), remoteAddr)

	if first.called != 0 {
		t.Errorf("replaced handler called %d times, want 0", first.called)
	}
	if second.called != 1 {
		t.Errorf("current handler called %d times, want 1", second.called)
	}
}

func TestDispatchDropsUnroutableAndMalformed(t *testing.T) {
	s := newTestSocket()
	handler := new(captureHandler)
	remoteAddr := &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 500}
	s.RegisterIke(0x1234, handler)

	// Unregistered SPI
	s.dispatch(encodeTestMessage(t, 0xaaaa, 0x9999, true), remoteAddr)

	// Unregistered after removal
	s.UnregisterIke(0x1234)
	s.dispatch(encodeTestMessage(t, 0xaaaa, 0x1234, true), remoteAddr)

	// Too short for a fixed header
	s.dispatch(make([]byte, message.IKE_HEADER_LEN-1), remoteAddr)

	// Declared length disagrees with the datagram length
	msg := encodeTestMessage(t, 0xaaaa, 0x1234, true)
	s.dispatch(append(msg, 0x00), remoteAddr)

	if handler.called != 0 {
		t.Errorf("handler called %d times, want 0", handler.called)
	}
}

func TestDispatchRejectsHigherMajorVersion(t *testing.T) {
	s := newTestSocket()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("ListenUDP() failed: %+v", err)
	}
	defer conn.Close()
	s.conn = conn
	handler := new(captureHandler)
	remoteAddr := &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 500}
	s.RegisterIke(0xbbbb, handler)

	msg := encodeTestMessage(t, 0xaaaa, 0xbbbb, true)
	msg[17] = 0x30 // version 3.0
	s.dispatch(msg, remoteAddr)

	if handler.called != 0 {
		t.Errorf("handler called %d times for a version-3 message, want 0", handler.called)
	}
}

func TestInvalidMajorVersionNotify(t *testing.T) {
	registry := NewSocketRegistry()
	sock, err := registry.Acquire(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("Acquire() failed: %+v", err)
	}
	defer sock.Release()

	peer, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("ListenUDP() failed: %+v", err)
	}
	defer peer.Close()

	msg := encodeTestMessage(t, 0xaaaa, 0xbbbb, true)
	msg[17] = 0x30 // version 3.0
	if _, err := peer.WriteToUDP(msg, sock.conn.LocalAddr().(*net.UDPAddr)); err != nil {
		t.Fatalf("WriteToUDP() failed: %+v", err)
	}

	if err := peer.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() failed: %+v", err)
	}
	buf := make([]byte, MAX_BUF_MSG_LEN)
	n, _, err := peer.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no reply to version-3 message: %+v", err)
	}

	reply := new(message.IKEMessage)
	if err := reply.Decode(buf[:n]); err != nil {
		t.Fatalf("Decode() of reply failed: %+v", err)
	}
	if reply.ExchangeType != message.INFORMATIONAL || !reply.IsResponse() {
		t.Errorf("reply exchange type %d, response %t", reply.ExchangeType, reply.IsResponse())
	}
	if reply.InitiatorSPI != 0xaaaa || reply.ResponderSPI != 0xbbbb {
		t.Errorf("reply SPIs 0x%x 0x%x", reply.InitiatorSPI, reply.ResponderSPI)
	}
	if len(reply.Payloads) != 1 {
		t.Fatalf("reply payload count %d, want 1", len(reply.Payloads))
	}
	notify, ok := reply.Payloads[0].(*message.Notification)
	if !ok {
		t.Fatalf("reply payload type %T, want *Notification", reply.Payloads[0])
	}
	if notify.NotifyMessageType != message.INVALID_MAJOR_VERSION {
		t.Errorf("notify type %d, want %d", notify.NotifyMessageType, message.INVALID_MAJOR_VERSION)
	}
}

func TestHandleNattMsg(t *testing.T) {
	s := newTestSocket()
	s.natt = true
	remoteAddr := &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 4500}

	if got := s.handleNattMsg([]byte{0xff}, remoteAddr); got != nil {
		t.Errorf("keepalive not skipped: %v", got)
	}
	if got := s.handleNattMsg([]byte{0, 0}, remoteAddr); got != nil {
		t.Errorf("short datagram not dropped: %v", got)
	}
	// A leading non-zero word is an ESP SPI, not the Non-ESP marker.
	if got := s.handleNattMsg([]byte{0, 0, 0, 1, 0xde, 0xad}, remoteAddr); got != nil {
		t.Errorf("ESP datagram not dropped: %v", got)
	}

	inner := encodeTestMessage(t, 0xaaaa, 0xbbbb, true)
	marked := append([]byte{0, 0, 0, 0}, inner...)
	if got := s.handleNattMsg(marked, remoteAddr); !bytes.Equal(got, inner) {
		t.Errorf("marker not stripped: %v", got)
	}
}

func TestSocketRegistryRefCount(t *testing.T) {
	registry := NewSocketRegistry()
	bindAddr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}

	first, err := registry.Acquire(bindAddr)
	if err != nil {
		t.Fatalf("Acquire() failed: %+v", err)
	}
	second, err := registry.Acquire(bindAddr)
	if err != nil {
		t.Fatalf("second Acquire() failed: %+v", err)
	}
	if first != second {
		t.Error("same bind address produced two sockets")
	}
	if first.refCount != 2 {
		t.Errorf("refcount %d, want 2", first.refCount)
	}

	first.Release()
	if len(registry.sockets) != 1 {
		t.Error("socket removed while references remain")
	}
	second.Release()
	if len(registry.sockets) != 0 {
		t.Error("socket not removed after last release")
	}
}
