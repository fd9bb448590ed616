// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package ike

import (
	"bytes"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ikewire/ikewire/ike/message"
	"github.com/ikewire/ikewire/logger"
	"github.com/ikewire/ikewire/util"
)

const (
	DEFAULT_IKE_PORT  = 500
	DEFAULT_NATT_PORT = 4500

	MAX_BUF_MSG_LEN = 65535
)

var nonEspMarker = []byte{0, 0, 0, 0}

// SessionHandler receives datagrams routed to a registered SPI. The header
// is the already-parsed fixed header; rawBytes is the full datagram without
// the Non-ESP marker.
type SessionHandler interface {
	HandleIkePacket(ikeHeader *message.IKEHeader, rawBytes []byte, remoteAddr *net.UDPAddr)
}

// SocketRegistry hands out IkeSocket instances keyed by bind address. A
// second Acquire of the same address returns the existing socket with its
// reference count incremented instead of binding a duplicate descriptor.
type SocketRegistry struct {
	mu      sync.Mutex
	sockets map[string]*IkeSocket
}

func NewSocketRegistry() *SocketRegistry {
	return &SocketRegistry{
		sockets: make(map[string]*IkeSocket),
	}
}

// Acquire binds a UDP socket on bindAddr, or returns the already-bound one.
// Sockets on the NAT-T port get UDP_ENCAP_ESPINUDP set so the kernel can
// peel off ESP traffic sharing the port.
func (r *SocketRegistry) Acquire(bindAddr *net.UDPAddr) (*IkeSocket, error) {
	key := bindAddr.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sockets[key]; ok {
		s.refCount++
		logger.DemuxLog.Debugf("reuse socket %s, refcount %d", key, s.refCount)
		return s, nil
	}

	conn, err := net.ListenUDP("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("listen UDP %s: %w", key, err)
	}

	natt := bindAddr.Port == DEFAULT_NATT_PORT
	if natt {
		if err := setUDPEncap(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("socket %s: %w", key, err)
		}
	}

	s := &IkeSocket{
		registry: r,
		key:      key,
		conn:     conn,
		natt:     natt,
		refCount: 1,
		routes:   make(map[uint64]SessionHandler),
	}
	r.sockets[key] = s

	go s.receiveLoop()

	logger.DemuxLog.Infof("bound IKE socket %s (NAT-T: %t)", key, natt)
	return s, nil
}

func (r *SocketRegistry) release(s *IkeSocket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.refCount--
	if s.refCount > 0 {
		logger.DemuxLog.Debugf("release socket %s, refcount %d", s.key, s.refCount)
		return
	}
	delete(r.sockets, s.key)
	if err := s.conn.Close(); err != nil {
		logger.DemuxLog.Errorf("close socket %s: %+v", s.key, err)
	}
	logger.DemuxLog.Infof("closed IKE socket %s", s.key)
}

// setUDPEncap marks the descriptor for ESP-in-UDP decapsulation
// (RFC 3948) so only IKE traffic reaches userspace reads.
func setUDPEncap(conn *net.UDPConn) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("syscall conn: %w", err)
	}
	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_UDP, unix.UDP_ENCAP, unix.UDP_ENCAP_ESPINUDP)
	})
	if err != nil {
		return fmt.Errorf("raw conn control: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("set UDP_ENCAP_ESPINUDP: %w", sockErr)
	}
	return nil
}

// IkeSocket wraps one bound UDP descriptor and owns the SPI routing table
// for every session sharing it.
type IkeSocket struct {
	registry *SocketRegistry
	key      string
	conn     *net.UDPConn
	natt     bool
	refCount int

	mu     sync.Mutex
	routes map[uint64]SessionHandler
}

// RegisterIke routes datagrams carrying the locally-generated SPI to
// handler. Registering an SPI twice replaces the previous handler.
func (s *IkeSocket) RegisterIke(spi uint64, handler SessionHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[spi] = handler
	logger.DemuxLog.Debugf("registered SPI 0x%016x on %s", spi, s.key)
}

// UnregisterIke removes the routing entry for spi.
func (s *IkeSocket) UnregisterIke(spi uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, spi)
	logger.DemuxLog.Debugf("unregistered SPI 0x%016x on %s", spi, s.key)
}

func (s *IkeSocket) lookup(spi uint64) (SessionHandler, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handler, ok := s.routes[spi]
	return handler, ok
}

// Send transmits an encoded IKE message to dstAddr. On a NAT-T socket the
// Non-ESP marker is prepended. The socket stays unconnected: one descriptor
// carries traffic for many peers.
func (s *IkeSocket) Send(ikeMsgData []byte, dstAddr *net.UDPAddr) error {
	if s.natt {
		prepended := make([]byte, 0, len(nonEspMarker)+len(ikeMsgData))
		prepended = append(prepended, nonEspMarker...)
		prepended = append(prepended, ikeMsgData...)
		ikeMsgData = prepended
	}
	n, err := s.conn.WriteToUDP(ikeMsgData, dstAddr)
	if err != nil {
		return fmt.Errorf("send to %s: %w", dstAddr.String(), err)
	}
	if n != len(ikeMsgData) {
		return fmt.Errorf("send to %s: wrote %d of %d bytes", dstAddr.String(), n, len(ikeMsgData))
	}
	return nil
}

// Release drops one reference; the descriptor is closed and the registry
// entry removed when the last reference goes.
func (s *IkeSocket) Release() {
	s.registry.release(s)
}

// receiveLoop reads datagrams and dispatches them by SPI. Malformed or
// unroutable packets are logged and dropped; no receive error short of the
// socket closing stops the loop.
func (s *IkeSocket) receiveLoop() {
	defer util.RecoverWithLog(logger.DemuxLog)

	data := make([]byte, MAX_BUF_MSG_LEN)
	for {
		n, remoteAddr, err := s.conn.ReadFromUDP(data)
		if err != nil {
			logger.DemuxLog.Infof("receive loop on %s stopped: %+v", s.key, err)
			return
		}

		forwardData := make([]byte, n)
		copy(forwardData, data[:n])

		if s.natt {
			forwardData = s.handleNattMsg(forwardData, remoteAddr)
			if forwardData == nil {
				continue
			}
		}

		s.dispatch(forwardData, remoteAddr)
	}
}

// handleNattMsg strips the Non-ESP marker from a NAT-T datagram. Keepalives
// are skipped, and any datagram without the marker is a misrouted ESP
// packet: it is dropped before header parsing is even attempted.
func (s *IkeSocket) handleNattMsg(msgBuf []byte, rAddr *net.UDPAddr) []byte {
	if len(msgBuf) == 1 && msgBuf[0] == 0xff {
		// skip NAT-T Keepalive
		return nil
	}
	if len(msgBuf) < len(nonEspMarker) {
		logger.DemuxLog.Warnf("received msg from %s is too short", rAddr.String())
		return nil
	}
	if !bytes.Equal(msgBuf[:len(nonEspMarker)], nonEspMarker) {
		logger.DemuxLog.Debugf("drop non-IKE packet from %s", rAddr.String())
		return nil
	}
	return msgBuf[len(nonEspMarker):]
}

// dispatch parses only the fixed header, then routes the whole datagram by
// the locally-generated SPI. The initiator flag tells which of the two SPIs
// the peer generated: when the peer is the initiator, the responder SPI is
// ours, and vice versa.
func (s *IkeSocket) dispatch(msg []byte, remoteAddr *net.UDPAddr) {
	if len(msg) < message.IKE_HEADER_LEN {
		logger.DemuxLog.Warnf("received IKE msg is too short from %s", remoteAddr.String())
		return
	}

	ikeHeader, err := message.ParseHeader(msg)
	if err != nil {
		logger.DemuxLog.Warnf("IKE msg decode header from %s: %+v", remoteAddr.String(), err)
		return
	}

	if ikeHeader.MajorVersion > 2 {
		logger.DemuxLog.Warnf("received an IKE message with higher major version (%d>2) from %s",
			ikeHeader.MajorVersion, remoteAddr.String())
		s.replyInvalidMajorVersion(ikeHeader, remoteAddr)
		return
	}

	var localSPI uint64
	if ikeHeader.IsInitiator() {
		localSPI = ikeHeader.ResponderSPI
	} else {
		localSPI = ikeHeader.InitiatorSPI
	}

	handler, ok := s.lookup(localSPI)
	if !ok {
		logger.DemuxLog.Warnf("no session for SPI 0x%016x, drop packet from %s", localSPI, remoteAddr.String())
		return
	}
	handler.HandleIkePacket(ikeHeader, msg, remoteAddr)
}

func (s *IkeSocket) replyInvalidMajorVersion(ikeHeader *message.IKEHeader, remoteAddr *net.UDPAddr) {
	payload := new(message.IKEPayloadContainer)
	payload.BuildNotification(message.TypeNone, message.INVALID_MAJOR_VERSION, nil, nil)
	responseIKEMessage := message.NewMessage(ikeHeader.InitiatorSPI, ikeHeader.ResponderSPI,
		message.INFORMATIONAL, true, false, ikeHeader.MessageID, *payload)
	msgData, err := responseIKEMessage.Encode()
	if err != nil {
		logger.DemuxLog.Errorf("encode INVALID_MAJOR_VERSION notification: %+v", err)
		return
	}
	if err := s.Send(msgData, remoteAddr); err != nil {
		logger.DemuxLog.Errorf("send INVALID_MAJOR_VERSION notification: %+v", err)
	}
}
