package activity

import (
	"testing"
	"time"

	"github.com/zwavehub/zwave-hub-server/internal/models"
)

func device(name string, lastSeen *time.Time) *models.Device {
	return &models.Device{Name: name, LastSeenAt: lastSeen}
}

func minutesAgo(now time.Time, m int) *time.Time {
	t := now.Add(-time.Duration(m) * time.Minute)
	return &t
}

func TestEvaluateThreshold(t *testing.T) {
	now := time.Now()

	group := &models.DeviceGroup{
		Name:             "sensors",
		ThresholdHours:   1,
		ThresholdMinutes: 30,
		Devices: []*models.Device{
			device("stale", minutesAgo(now, 100)),
			device("fresh", minutesAgo(now, 80)),
			device("exact", minutesAgo(now, 90)),
			device("silent", nil),
		},
	}

	inactive := Evaluate([]*models.DeviceGroup{group}, "day", now)

	got := make(map[string]bool)
	for _, d := range inactive {
		got[d.Device.Name] = true
	}

	// 90-minute threshold: 100 minutes ago and exactly 90 minutes ago are
	// inactive, 80 minutes ago is not, never-reported always is.
	for _, name := range []string{"stale", "exact", "silent"} {
		if !got[name] {
			t.Errorf("device %q not reported inactive", name)
		}
	}
	if got["fresh"] {
		t.Error("device seen 80 minutes ago reported inactive at a 90-minute threshold")
	}
}

func TestEvaluateThresholdUnits(t *testing.T) {
	tests := []struct {
		days, hours, minutes int
		wantMinutes          int
	}{
		{0, 0, 0, 0},
		{0, 0, 45, 45},
		{0, 2, 0, 120},
		{1, 0, 0, 1440},
		{2, 3, 15, 3075},
	}

	for _, tt := range tests {
		g := models.DeviceGroup{
			ThresholdDays:    tt.days,
			ThresholdHours:   tt.hours,
			ThresholdMinutes: tt.minutes,
		}
		if got := g.TotalThresholdMinutes(); got != tt.wantMinutes {
			t.Errorf("threshold %dd %dh %dm = %d minutes, want %d",
				tt.days, tt.hours, tt.minutes, got, tt.wantMinutes)
		}
	}
}

func TestEvaluateZeroThreshold(t *testing.T) {
	now := time.Now()
	group := &models.DeviceGroup{
		Name: "immediate",
		Devices: []*models.Device{
			device("old", minutesAgo(now, 1)),
			device("now", &now),
		},
	}

	// Zero threshold means the cutoff is now itself: anything that ever
	// reported is at or before it.
	inactive := Evaluate([]*models.DeviceGroup{group}, "", now)
	if len(inactive) != 2 {
		t.Errorf("zero threshold flagged %d devices, want 2", len(inactive))
	}
}

func TestEvaluateModeGate(t *testing.T) {
	now := time.Now()
	group := &models.DeviceGroup{
		Name:  "night only",
		Modes: []string{"night"},
		Devices: []*models.Device{
			device("silent", nil),
		},
	}

	if inactive := Evaluate([]*models.DeviceGroup{group}, "day", now); len(inactive) != 0 {
		t.Errorf("mode-gated group evaluated in wrong mode: %d findings", len(inactive))
	}
	if inactive := Evaluate([]*models.DeviceGroup{group}, "night", now); len(inactive) != 1 {
		t.Errorf("mode-gated group skipped in its own mode: %d findings", len(inactive))
	}

	// An empty allowlist means the group runs in every mode.
	group.Modes = nil
	if inactive := Evaluate([]*models.DeviceGroup{group}, "away", now); len(inactive) != 1 {
		t.Errorf("ungated group skipped: %d findings", len(inactive))
	}
}

func TestEvaluateSkipsDisabled(t *testing.T) {
	now := time.Now()
	disabled := device("ignored", nil)
	disabled.IsDisabled = true

	group := &models.DeviceGroup{
		Devices: []*models.Device{disabled},
	}

	if inactive := Evaluate([]*models.DeviceGroup{group}, "", now); len(inactive) != 0 {
		t.Errorf("disabled device reported inactive")
	}
}

func TestEvaluateSortOrder(t *testing.T) {
	now := time.Now()
	devices := []*models.Device{
		device("bravo", minutesAgo(now, 200)),
		device("alpha", minutesAgo(now, 100)),
		device("charlie", nil),
	}

	group := &models.DeviceGroup{
		ThresholdMinutes: 10,
		Devices:          devices,
	}

	// The default keeps the group's device order.
	inactive := Evaluate([]*models.DeviceGroup{group}, "", now)
	wantDefault := []string{"bravo", "alpha", "charlie"}
	for i, name := range wantDefault {
		if inactive[i].Device.Name != name {
			t.Errorf("default order[%d] = %q, want %q", i, inactive[i].Device.Name, name)
		}
	}

	group.SortByName = true
	inactive = Evaluate([]*models.DeviceGroup{group}, "", now)
	wantByName := []string{"alpha", "bravo", "charlie"}
	for i, name := range wantByName {
		if inactive[i].Device.Name != name {
			t.Errorf("name order[%d] = %q, want %q", i, inactive[i].Device.Name, name)
		}
	}
}

func TestDescribe(t *testing.T) {
	now := time.Now()

	tests := []struct {
		minutesAgo int
		want       string
	}{
		{5, "meter: inactive for 5m"},
		{90, "meter: inactive for 1h 30m"},
		{1501, "meter: inactive for 1d 1h 1m"},
	}

	for _, tt := range tests {
		d := InactiveDevice{
			Device:   device("meter", minutesAgo(now, tt.minutesAgo)),
			LastSeen: minutesAgo(now, tt.minutesAgo),
		}
		if got := d.Describe(now); got != tt.want {
			t.Errorf("Describe(%d minutes) = %q, want %q", tt.minutesAgo, got, tt.want)
		}
	}

	never := InactiveDevice{Device: device("meter", nil)}
	if got := never.Describe(now); got != "meter: never reported" {
		t.Errorf("Describe(never) = %q", got)
	}
}
