package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/zwavehub/zwave-hub-server/internal/driver"
	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/internal/storage"
	"github.com/zwavehub/zwave-hub-server/pkg/zwave"
)

// NATS subjects. Inbound frames arrive on zwave.node.<id>.rx, outbound
// frames go to zwave.node.<id>.tx, decoded device events are published
// on hub.device.<id>.event.
const (
	inboundSubject  = "zwave.node.*.rx"
	outboundSubject = "zwave.node.%d.tx"
	eventSubject    = "hub.device.%d.event"
)

// InboundFrame is the message the radio gateway publishes for each
// received frame.
type InboundFrame struct {
	Data []byte `json:"data"`
	RSSI *int   `json:"rssi,omitempty"`
}

// OutboundFrame is the message the radio gateway consumes for each
// frame to transmit. DelayMs asks the gateway to pause before sending
// the next frame.
type OutboundFrame struct {
	Data    []byte `json:"data"`
	DelayMs int    `json:"delayMs,omitempty"`
}

// Bridge connects the NATS frame transport to the per-node protocol
// adapters: inbound frames are decoded into events and persisted,
// outbound commands are encapsulated and published.
type Bridge struct {
	nc    *nats.Conn
	store storage.Store

	mu       sync.Mutex
	adapters map[uint8]*driver.Adapter
	seq      map[uint8]byte
	versions map[uint8]string
}

// NewBridge creates a frame bridge
func NewBridge(nc *nats.Conn, store storage.Store) *Bridge {
	return &Bridge{
		nc:       nc,
		store:    store,
		adapters: make(map[uint8]*driver.Adapter),
		seq:      make(map[uint8]byte),
		versions: make(map[uint8]string),
	}
}

// Start subscribes to inbound frames and blocks until the context is
// canceled.
func (b *Bridge) Start(ctx context.Context) error {
	sub, err := b.nc.Subscribe(inboundSubject, b.handleInbound)
	if err != nil {
		return fmt.Errorf("subscribe inbound frames: %w", err)
	}

	log.Info().Str("subject", inboundSubject).Msg("Frame bridge started")

	<-ctx.Done()

	sub.Unsubscribe()
	return ctx.Err()
}

// Adapter returns the protocol adapter for a node, creating it on first
// use. Devices included with security get secure-marked outbound frames.
func (b *Bridge) Adapter(nodeID uint8) *driver.Adapter {
	b.mu.Lock()
	if a, ok := b.adapters[nodeID]; ok {
		b.mu.Unlock()
		return a
	}
	b.mu.Unlock()

	secure := false
	device, err := b.store.GetDeviceByNodeID(context.Background(), nodeID)
	if err == nil {
		secure = device.SecureInclusion
	} else if err != storage.ErrNotFound {
		log.Error().Err(err).Uint8("nodeId", nodeID).Msg("Failed to look up device")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.adapters[nodeID]; ok {
		return a
	}
	a := driver.New(nodeID, secure)
	b.adapters[nodeID] = a
	return a
}

// Send publishes commands for a node, applying secure encapsulation
// where the adapter asked for it.
func (b *Bridge) Send(ctx context.Context, nodeID uint8, cmds []driver.Command) error {
	subject := fmt.Sprintf(outboundSubject, nodeID)

	for _, cmd := range cmds {
		frame := cmd.Data
		if cmd.Secure {
			frame = zwave.SecureEncap(b.nextSeq(nodeID), frame)
		}

		data, err := json.Marshal(OutboundFrame{Data: frame, DelayMs: cmd.DelayMs})
		if err != nil {
			return fmt.Errorf("marshal outbound frame: %w", err)
		}

		if err := b.nc.Publish(subject, data); err != nil {
			return fmt.Errorf("publish outbound frame: %w", err)
		}
	}

	log.Debug().Uint8("nodeId", nodeID).Int("frames", len(cmds)).Msg("Commands published")
	return nil
}

// nextSeq returns the next secure-encapsulation sequence number for a
// node.
func (b *Bridge) nextSeq(nodeID uint8) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq[nodeID]++
	return b.seq[nodeID]
}

// handleInbound processes one received frame
func (b *Bridge) handleInbound(msg *nats.Msg) {
	nodeID, err := nodeFromSubject(msg.Subject)
	if err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("Frame on bad subject dropped")
		return
	}

	var inbound InboundFrame
	if err := json.Unmarshal(msg.Data, &inbound); err != nil || len(inbound.Data) == 0 {
		// Some gateways publish the raw frame bytes directly.
		inbound.Data = msg.Data
	}

	ctx := context.Background()
	adapter := b.Adapter(nodeID)
	result := adapter.HandleFrame(inbound.Data)

	if err := b.store.TouchDeviceLastSeen(ctx, nodeID, time.Now()); err != nil && err != storage.ErrNotFound {
		log.Error().Err(err).Uint8("nodeId", nodeID).Msg("Failed to update last seen")
	}

	b.syncVersions(ctx, nodeID, adapter)
	b.publishEvents(ctx, nodeID, result.Events)

	if len(result.Commands) > 0 {
		if err := b.Send(ctx, nodeID, result.Commands); err != nil {
			log.Error().Err(err).Uint8("nodeId", nodeID).Msg("Failed to send follow-up commands")
		}
	}
}

// publishEvents persists each event and publishes it for subscribers
func (b *Bridge) publishEvents(ctx context.Context, nodeID uint8, events []models.DeviceEvent) {
	if len(events) == 0 {
		return
	}

	device, err := b.store.GetDeviceByNodeID(ctx, nodeID)
	if err != nil {
		device = nil
	}

	for _, event := range events {
		entry := &models.EventLog{
			NodeID:      &nodeID,
			Type:        event.Type,
			Level:       models.EventLevelInfo,
			Description: event.Describe(),
		}
		if device != nil {
			entry.DeviceID = &device.ID
		}
		if err := b.store.CreateEventLog(ctx, entry); err != nil {
			log.Error().Err(err).Uint8("nodeId", nodeID).Msg("Failed to create event log")
		}

		payload := struct {
			models.DeviceEvent
			DeviceName string `json:"deviceName,omitempty"`
		}{DeviceEvent: event}
		if device != nil {
			payload.DeviceName = device.Name
		}

		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal device event")
			continue
		}
		if err := b.nc.Publish(fmt.Sprintf(eventSubject, nodeID), data); err != nil {
			log.Error().Err(err).Uint8("nodeId", nodeID).Msg("Failed to publish device event")
		}
	}
}

// syncVersions writes version and serial information to the device row
// when the adapter learned something new.
func (b *Bridge) syncVersions(ctx context.Context, nodeID uint8, adapter *driver.Adapter) {
	state := adapter.State()
	if state.Firmware == "" && state.Serial == "" {
		return
	}

	sig := state.Firmware + "|" + state.Protocol + "|" + state.Hardware + "|" + state.Serial

	b.mu.Lock()
	unchanged := b.versions[nodeID] == sig
	b.versions[nodeID] = sig
	b.mu.Unlock()
	if unchanged {
		return
	}

	err := b.store.UpdateDeviceVersions(ctx, nodeID, state.Firmware, state.Protocol, state.Hardware, state.Serial)
	if err != nil && err != storage.ErrNotFound {
		log.Error().Err(err).Uint8("nodeId", nodeID).Msg("Failed to update device versions")
	}
}

// nodeFromSubject extracts the node id from zwave.node.<id>.rx
func nodeFromSubject(subject string) (uint8, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("bad frame subject: %s", subject)
	}
	nodeID, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad node id %q: %w", parts[2], err)
	}
	return uint8(nodeID), nil
}
