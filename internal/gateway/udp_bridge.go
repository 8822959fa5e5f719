package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Datagram protocol between the radio controller and the hub. Every
// datagram starts with a version byte and a message type; uplinks and
// downlinks carry the node id and the raw frame behind it.
const (
	ProtocolVersion = 1

	// Message types
	DataUp    = 0x00 // controller -> bridge: received frame
	UpAck     = 0x01 // bridge -> controller
	Keepalive = 0x02 // controller -> bridge: downlink path announcement
	DataDown  = 0x03 // bridge -> controller: frame to transmit
	DownAck   = 0x04 // controller -> bridge
)

// Controller addresses expire when no keepalive arrives for this long.
const controllerTTL = 2 * time.Minute

// controllerInfo tracks one radio controller's return path
type controllerInfo struct {
	addr     *net.UDPAddr
	lastSeen time.Time
}

// UDPBridge relays frames between radio controllers speaking the
// datagram protocol and the hub's NATS subjects: uplinks go to
// zwave.node.<id>.rx, downlinks are consumed from zwave.node.*.tx.
type UDPBridge struct {
	conn *net.UDPConn
	nc   *nats.Conn

	mu          sync.RWMutex
	controllers map[string]*controllerInfo
}

// outboundFrame mirrors the hub's tx message
type outboundFrame struct {
	Data    []byte `json:"data"`
	DelayMs int    `json:"delayMs,omitempty"`
}

// inboundFrame mirrors the hub's rx message
type inboundFrame struct {
	Data []byte `json:"data"`
}

// NewUDPBridge creates a bridge bound to the given UDP address
func NewUDPBridge(bindAddr string, nc *nats.Conn) (*UDPBridge, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	return &UDPBridge{
		conn:        conn,
		nc:          nc,
		controllers: make(map[string]*controllerInfo),
	}, nil
}

// Start runs the bridge until the context is canceled
func (b *UDPBridge) Start(ctx context.Context) error {
	log.Info().Str("addr", b.conn.LocalAddr().String()).Msg("Gateway bridge started")

	sub, err := b.nc.Subscribe("zwave.node.*.tx", b.handleDownlink)
	if err != nil {
		return fmt.Errorf("subscribe downlink frames: %w", err)
	}

	go b.expireControllers(ctx)

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
		b.conn.Close()
	}()

	buf := make([]byte, 512)
	for {
		n, addr, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("UDP read error")
			continue
		}

		b.handleDatagram(buf[:n], addr)
	}
}

// handleDatagram dispatches one received datagram
func (b *UDPBridge) handleDatagram(data []byte, addr *net.UDPAddr) {
	if len(data) < 2 || data[0] != ProtocolVersion {
		log.Warn().Str("addr", addr.String()).Msg("Bad datagram dropped")
		return
	}

	switch data[1] {
	case DataUp:
		b.handleUplink(data[2:], addr)
	case Keepalive:
		b.touchController(addr)
	case DownAck:
		// Nothing to retransmit yet, acknowledgments are informational.
	default:
		log.Warn().Uint8("type", data[1]).Msg("Unknown datagram type dropped")
	}
}

// handleUplink publishes one received frame to the hub
func (b *UDPBridge) handleUplink(payload []byte, addr *net.UDPAddr) {
	if len(payload) < 2 {
		log.Warn().Str("addr", addr.String()).Msg("Truncated uplink dropped")
		return
	}

	b.touchController(addr)

	nodeID := payload[0]
	frame := payload[1:]

	msg, err := json.Marshal(inboundFrame{Data: frame})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal uplink")
		return
	}

	subject := fmt.Sprintf("zwave.node.%d.rx", nodeID)
	if err := b.nc.Publish(subject, msg); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to publish uplink")
		return
	}

	// Acknowledge receipt to the controller.
	if _, err := b.conn.WriteToUDP([]byte{ProtocolVersion, UpAck}, addr); err != nil {
		log.Error().Err(err).Str("addr", addr.String()).Msg("Failed to send uplink ack")
	}

	log.Debug().
		Uint8("nodeId", nodeID).
		Int("bytes", len(frame)).
		Str("addr", addr.String()).
		Msg("Uplink forwarded")
}

// handleDownlink sends one hub frame to every known controller
func (b *UDPBridge) handleDownlink(msg *nats.Msg) {
	parts := strings.Split(msg.Subject, ".")
	if len(parts) != 4 {
		return
	}
	nodeID, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		log.Warn().Str("subject", msg.Subject).Msg("Downlink on bad subject dropped")
		return
	}

	var frame outboundFrame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal downlink")
		return
	}

	datagram := make([]byte, 0, 3+len(frame.Data))
	datagram = append(datagram, ProtocolVersion, DataDown, uint8(nodeID))
	datagram = append(datagram, frame.Data...)

	b.mu.RLock()
	addrs := make([]*net.UDPAddr, 0, len(b.controllers))
	for _, c := range b.controllers {
		addrs = append(addrs, c.addr)
	}
	b.mu.RUnlock()

	if len(addrs) == 0 {
		log.Warn().Uint8("nodeId", uint8(nodeID)).Msg("No controller connected, downlink dropped")
		return
	}

	for _, addr := range addrs {
		if _, err := b.conn.WriteToUDP(datagram, addr); err != nil {
			log.Error().Err(err).Str("addr", addr.String()).Msg("Failed to send downlink")
		}
	}

	// The controller paces the mesh; the bridge honors the hint between
	// sends to preserve ordering for frames queued back to back.
	if frame.DelayMs > 0 {
		time.Sleep(time.Duration(frame.DelayMs) * time.Millisecond)
	}

	log.Debug().
		Uint8("nodeId", uint8(nodeID)).
		Int("bytes", len(frame.Data)).
		Int("controllers", len(addrs)).
		Msg("Downlink forwarded")
}

// touchController records a controller's return address
func (b *UDPBridge) touchController(addr *net.UDPAddr) {
	key := addr.String()

	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.controllers[key]; ok {
		c.lastSeen = time.Now()
		return
	}

	b.controllers[key] = &controllerInfo{addr: addr, lastSeen: time.Now()}
	log.Info().Str("addr", key).Msg("Controller registered")
}

// expireControllers drops controllers that stopped sending keepalives
func (b *UDPBridge) expireControllers(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-controllerTTL)

			b.mu.Lock()
			for key, c := range b.controllers {
				if c.lastSeen.Before(cutoff) {
					delete(b.controllers, key)
					log.Info().Str("addr", key).Msg("Controller expired")
				}
			}
			b.mu.Unlock()
		}
	}
}
