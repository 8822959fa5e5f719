package models

import (
	"github.com/lib/pq"
)

// DeviceGroup represents an ordered set of devices watched for
// inactivity, with a per-group threshold and a hub-mode allowlist.
type DeviceGroup struct {
	BaseModel

	Number int    `json:"number" db:"number"`
	Name   string `json:"name" db:"name"`

	// Threshold components; all zero means every device with any
	// recorded activity is reported inactive.
	ThresholdDays    int `json:"thresholdDays" db:"threshold_days"`
	ThresholdHours   int `json:"thresholdHours" db:"threshold_hours"`
	ThresholdMinutes int `json:"thresholdMinutes" db:"threshold_minutes"`

	// Notification gating
	Modes  pq.StringArray `json:"modes" db:"modes"`
	Notify bool           `json:"notify" db:"notify"`

	// SortByName controls report ordering; the default keeps input order.
	SortByName bool `json:"sortByName" db:"sort_by_name"`

	// Relations
	Devices []*Device `json:"devices,omitempty"`
}

// TotalThresholdMinutes normalizes the threshold to minutes
func (g *DeviceGroup) TotalThresholdMinutes() int {
	return g.ThresholdDays*1440 + g.ThresholdHours*60 + g.ThresholdMinutes
}

// ModeAllowed reports whether notifications are allowed in the given hub
// mode. An empty allowlist allows every mode.
func (g *DeviceGroup) ModeAllowed(mode string) bool {
	if len(g.Modes) == 0 {
		return true
	}
	for _, m := range g.Modes {
		if m == mode {
			return true
		}
	}
	return false
}
