package activity

import (
	"fmt"
	"sort"
	"time"

	"github.com/zwavehub/zwave-hub-server/internal/models"
)

// InactiveDevice is one device that has crossed its group's inactivity
// threshold, with how long it has been silent. LastSeen is nil when the
// device has never reported at all.
type InactiveDevice struct {
	Device   *models.Device      `json:"device"`
	Group    *models.DeviceGroup `json:"group"`
	LastSeen *time.Time          `json:"lastSeen"`
}

// Evaluate walks every group and returns the devices whose last
// activity is at or before the group's threshold cutoff. Groups whose
// mode allowlist excludes the current hub mode are skipped entirely.
// Devices that never reported are always inactive. A zero threshold
// makes the cutoff "now", so every device that has ever reported is
// inactive too; that matches the threshold's documented meaning of
// "silent for at least this long".
func Evaluate(groups []*models.DeviceGroup, mode string, now time.Time) []InactiveDevice {
	var inactive []InactiveDevice

	for _, group := range groups {
		if !group.ModeAllowed(mode) {
			continue
		}

		cutoff := now.Add(-time.Duration(group.TotalThresholdMinutes()) * time.Minute)

		devices := make([]InactiveDevice, 0)
		for _, device := range group.Devices {
			if device.IsDisabled {
				continue
			}
			if device.LastSeenAt == nil || !device.LastSeenAt.After(cutoff) {
				devices = append(devices, InactiveDevice{
					Device:   device,
					Group:    group,
					LastSeen: device.LastSeenAt,
				})
			}
		}

		sortInactive(devices, group.SortByName)
		inactive = append(inactive, devices...)
	}

	return inactive
}

// sortInactive orders a group's findings alphabetically when requested;
// the default keeps the group's device order.
func sortInactive(devices []InactiveDevice, byName bool) {
	if !byName {
		return
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Device.Name < devices[j].Device.Name
	})
}

// Describe renders one finding as a report line
func (d InactiveDevice) Describe(now time.Time) string {
	if d.LastSeen == nil {
		return fmt.Sprintf("%s: never reported", d.Device.Name)
	}
	return fmt.Sprintf("%s: inactive for %s", d.Device.Name, formatDuration(now.Sub(*d.LastSeen)))
}

// formatDuration renders a duration as days, hours and minutes,
// dropping leading zero units.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	days := minutes / (24 * 60)
	hours := (minutes / 60) % 24
	mins := minutes % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
