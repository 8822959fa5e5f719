package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/zwavehub/zwave-hub-server/internal/config"
	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/internal/storage"
)

// Notification is the message published when inactive devices are found
type Notification struct {
	Time    time.Time        `json:"time"`
	Mode    string           `json:"mode"`
	Count   int              `json:"count"`
	Message string           `json:"message"`
	Devices []InactiveDevice `json:"devices"`
}

// Monitor periodically evaluates device groups against their inactivity
// thresholds and publishes notifications for devices that went silent.
type Monitor struct {
	store storage.Store
	nc    *nats.Conn
	cfg   config.MonitorConfig
}

// NewMonitor creates an activity monitor
func NewMonitor(store storage.Store, nc *nats.Conn, cfg config.MonitorConfig) *Monitor {
	return &Monitor{store: store, nc: nc, cfg: cfg}
}

// Start runs evaluation on the configured interval until the context is
// canceled. One evaluation runs immediately on startup.
func (m *Monitor) Start(ctx context.Context) error {
	log.Info().
		Dur("interval", m.cfg.Interval).
		Str("subject", m.cfg.NotifySubject).
		Msg("Activity monitor started")

	if err := m.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Activity evaluation failed")
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Activity monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Activity evaluation failed")
			}
		}
	}
}

// RunOnce performs a single evaluation pass
func (m *Monitor) RunOnce(ctx context.Context) error {
	mode, err := m.store.GetHubMode(ctx)
	if err != nil {
		return fmt.Errorf("failed to load hub mode: %w", err)
	}

	groups, err := m.store.ListDeviceGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to load device groups: %w", err)
	}

	now := time.Now()
	inactive := Evaluate(groups, mode, now)

	log.Debug().
		Int("groups", len(groups)).
		Int("inactive", len(inactive)).
		Str("mode", mode).
		Msg("Activity evaluation complete")

	if len(inactive) == 0 {
		return nil
	}

	m.recordFindings(ctx, inactive, now)

	notify := make([]InactiveDevice, 0, len(inactive))
	for _, d := range inactive {
		if d.Group.Notify {
			notify = append(notify, d)
		}
	}
	if len(notify) == 0 {
		return nil
	}

	return m.publish(notify, mode, now)
}

// recordFindings writes one inactivity event per silent device
func (m *Monitor) recordFindings(ctx context.Context, inactive []InactiveDevice, now time.Time) {
	for _, d := range inactive {
		event := &models.EventLog{
			DeviceID:    &d.Device.ID,
			NodeID:      &d.Device.NodeID,
			Type:        models.EventTypeInactivity,
			Level:       models.EventLevelWarning,
			Description: d.Describe(now),
			Details: models.Variables{
				"group": d.Group.Name,
			},
		}
		if err := m.store.CreateEventLog(ctx, event); err != nil {
			log.Error().Err(err).Str("device", d.Device.Name).Msg("Failed to record inactivity event")
		}
	}
}

// publish sends the notification message over NATS
func (m *Monitor) publish(inactive []InactiveDevice, mode string, now time.Time) error {
	lines := make([]string, 0, len(inactive))
	for _, d := range inactive {
		lines = append(lines, d.Describe(now))
	}

	data, err := json.Marshal(Notification{
		Time:    now,
		Mode:    mode,
		Count:   len(inactive),
		Message: strings.Join(lines, "\n"),
		Devices: inactive,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := m.nc.Publish(m.cfg.NotifySubject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Info().Int("count", len(inactive)).Msg("Inactivity notification published")
	return nil
}
