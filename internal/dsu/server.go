package dsu

import (
	"context"
	"encoding/binary"
	"log"
	"math/rand/v2"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// readTimeout bounds each blocking read so the serve loop can observe
	// cancellation.
	readTimeout = 500 * time.Millisecond

	// clientTimeout drops subscribers that stopped re-sending data requests.
	// Consuming emulators re-subscribe every couple of seconds.
	clientTimeout = 5 * time.Second
)

// subscriber is one remote client that asked for pad data.
type subscriber struct {
	addr     *net.UDPAddr
	lastSeen time.Time
	allSlots bool
	slots    [MaxSlots]bool
}

// Server serves the DSU protocol over a UDP socket. Controller metadata is
// registered once per slot; frames are pushed to every live subscriber of
// that slot as they are produced.
type Server struct {
	conn *net.UDPConn
	id   uint32

	mu   sync.Mutex
	info [MaxSlots]ControllerInfo
	subs map[string]*subscriber

	packetNum atomic.Uint32
}

// NewServer binds a UDP socket on addr. A bind failure is fatal for the
// caller: without the socket there is nothing to publish to.
func NewServer(addr string) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		conn: conn,
		id:   rand.Uint32(),
		subs: make(map[string]*subscriber),
	}
	for i := range s.info {
		s.info[i] = ControllerInfo{Slot: uint8(i), SlotState: SlotStateDisconnected}
	}
	return s, nil
}

// Addr returns the bound socket address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Start serves client requests until ctx is cancelled. The returned channel
// closes once the socket is drained and closed; callers join it before
// process exit so no in-flight write is truncated.
func (s *Server) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go s.serve(ctx, done)
	return done
}

func (s *Server) serve(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	defer s.conn.Close()

	buf := make([]byte, 1024)
	for ctx.Err() == nil {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Printf("dsu: read failed: %v", err)
			continue
		}

		for _, resp := range s.handlePacket(buf[:n], addr) {
			// Best effort. A client that went away gets pruned by the
			// subscriber timeout.
			s.conn.WriteToUDP(resp, addr)
		}
	}
}

// handlePacket validates one client datagram and returns any responses to
// send back. Malformed packets are dropped silently; the socket is shared
// with whatever else roams the network.
func (s *Server) handlePacket(raw []byte, addr *net.UDPAddr) [][]byte {
	req, err := parseRequest(raw)
	if err != nil {
		return nil
	}

	switch req.msgType {
	case msgTypeVersion:
		payload := make([]byte, 2)
		binary.LittleEndian.PutUint16(payload, ProtocolVersion)
		return [][]byte{encodePacket(s.id, msgTypeVersion, payload)}

	case msgTypeInfo:
		if len(req.payload) < 4 {
			return nil
		}
		count := int(int32(binary.LittleEndian.Uint32(req.payload[0:4])))
		if count < 0 || count > len(req.payload)-4 {
			return nil
		}
		var responses [][]byte
		for _, slot := range req.payload[4 : 4+count] {
			if slot >= MaxSlots {
				continue
			}
			payload := make([]byte, 12)
			s.mu.Lock()
			s.info[slot].writeTo(payload[0:11])
			s.mu.Unlock()
			responses = append(responses, encodePacket(s.id, msgTypeInfo, payload))
		}
		return responses

	case msgTypeData:
		s.subscribe(req.payload, addr)
		return nil
	}
	return nil
}

// subscribe records a pad-data request: flags bit 0 asks for a single slot,
// no flags asks for everything. MAC-based registration is accepted but
// treated as subscribe-all; this server only ever exposes one device.
func (s *Server) subscribe(payload []byte, addr *net.UDPAddr) {
	var slot uint8
	allSlots := true
	if len(payload) >= 2 && payload[0]&0x01 != 0 {
		allSlots = false
		slot = payload[1]
		if slot >= MaxSlots {
			return
		}
	}

	key := addr.String()
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[key]
	if !ok {
		sub = &subscriber{addr: addr}
		s.subs[key] = sub
		log.Printf("dsu: client subscribed: %s", key)
	}
	sub.lastSeen = time.Now()
	if allSlots {
		sub.allSlots = true
	} else {
		sub.slots[slot] = true
	}
}

// SetControllerInfo registers the metadata reported for a slot in info and
// data responses. Called once at startup before frames flow.
func (s *Server) SetControllerInfo(info ControllerInfo) {
	if info.Slot >= MaxSlots {
		return
	}
	s.mu.Lock()
	s.info[info.Slot] = info
	s.mu.Unlock()
}

// SendControllerData publishes one frame for slot to every live subscriber.
// Write failures are dropped; the next frame supersedes this one anyway.
func (s *Server) SendControllerData(slot uint8, data ControllerData) {
	if slot >= MaxSlots {
		return
	}

	now := time.Now()
	s.mu.Lock()
	info := s.info[slot]
	var targets []*net.UDPAddr
	for key, sub := range s.subs {
		if now.Sub(sub.lastSeen) > clientTimeout {
			delete(s.subs, key)
			log.Printf("dsu: client timed out: %s", key)
			continue
		}
		if sub.allSlots || sub.slots[slot] {
			targets = append(targets, sub.addr)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	packet := encodePacket(s.id, msgTypeData, data.encode(info, s.packetNum.Add(1)))
	for _, addr := range targets {
		s.conn.WriteToUDP(packet, addr)
	}
}
