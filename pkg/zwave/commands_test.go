package zwave

import (
	"bytes"
	"testing"
)

func TestConfigurationSetMarshal(t *testing.T) {
	tests := []struct {
		name string
		cmd  ConfigurationSet
		want []byte
	}{
		{"one byte", ConfigurationSet{Parameter: 7, Size: 1, Value: 3}, []byte{7, 1, 3}},
		{"two bytes", ConfigurationSet{Parameter: 16, Size: 2, Value: 0x0102}, []byte{16, 2, 1, 2}},
		{"four bytes", ConfigurationSet{Parameter: 17, Size: 4, Value: 0x01020304}, []byte{17, 4, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		got, err := tt.cmd.MarshalBinary()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := (ConfigurationSet{Parameter: 1, Size: 3, Value: 1}).MarshalBinary(); err == nil {
		t.Error("expected error for size 3")
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	// Encoding a set for (P, V, S) then decoding a report with the same
	// payload must yield the same value.
	set := ConfigurationSet{Parameter: 11, Size: 2, Value: 516}
	payload, err := set.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var report ConfigurationReport
	if err := report.UnmarshalBinary(payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if report.Parameter != set.Parameter || report.Size != set.Size || report.Value != set.Value {
		t.Errorf("round trip mismatch: got %+v, want %+v", report, set)
	}
}

func TestConfigurationReportUnmarshalErrors(t *testing.T) {
	bad := [][]byte{
		nil,
		{7},
		{7, 3, 1, 1, 1},
		{7, 2, 1},
		{7, 4, 1, 2, 3},
	}

	for _, data := range bad {
		var report ConfigurationReport
		if err := report.UnmarshalBinary(data); err == nil {
			t.Errorf("expected error for %v", data)
		}
	}
}

func TestCentralSceneNotificationRoundTrip(t *testing.T) {
	in := CentralSceneNotification{
		SequenceNumber: 42,
		KeyAttribute:   KeyPressed3,
		SceneNumber:    5,
		SlowRefresh:    true,
	}

	payload, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out CentralSceneNotification
	if err := out.UnmarshalBinary(payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestKeyAttributeTapCount(t *testing.T) {
	tests := []struct {
		attr KeyAttribute
		want int
	}{
		{KeyPressed1, 1},
		{KeyPressed2, 2},
		{KeyPressed3, 3},
		{KeyPressed4, 4},
		{KeyPressed5, 5},
		{KeyHeldDown, 0},
		{KeyReleased, 0},
	}

	for _, tt := range tests {
		if got := tt.attr.TapCount(); got != tt.want {
			t.Errorf("TapCount(%d): got %d, want %d", tt.attr, got, tt.want)
		}
	}
}

func TestSupervisionGetUnmarshal(t *testing.T) {
	// session 0x21 with status updates, encapsulating a BasicReport(0xFF)
	data := []byte{0xA1, 0x03, 0x20, 0x03, 0xFF}

	var get SupervisionGet
	if err := get.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if get.SessionID != 0x21 {
		t.Errorf("session: got %#x, want 0x21", get.SessionID)
	}
	if !get.StatusUpdates {
		t.Error("expected status updates flag")
	}
	if !bytes.Equal(get.Encapsulated, []byte{0x20, 0x03, 0xFF}) {
		t.Errorf("encapsulated: got %v", get.Encapsulated)
	}

	// truncated encapsulation
	if err := get.UnmarshalBinary([]byte{0x01, 0x05, 0x20}); err == nil {
		t.Error("expected error for truncated encapsulated command")
	}
}

func TestSupervisionReportMarshal(t *testing.T) {
	report := SupervisionReport{SessionID: 0x21, Status: SupervisionStatusSuccess}
	got, err := report.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(got, []byte{0x21, 0xFF, 0x00}) {
		t.Errorf("got %v", got)
	}
}

func TestDeviceSpecificReportSerial(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"binary format", []byte{0x01, 0x24, 0xDE, 0xAD, 0xBE, 0xEF}, "deadbeef"},
		{"utf8 format", []byte{0x01, 0x04, 'A', '1', 'B', '2'}, "A1B2"},
	}

	for _, tt := range tests {
		var report DeviceSpecificReport
		if err := report.UnmarshalBinary(tt.data); err != nil {
			t.Errorf("%s: unmarshal: %v", tt.name, err)
			continue
		}
		if got := report.SerialNumber(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestVersionReportUnmarshal(t *testing.T) {
	var report VersionReport
	if err := report.UnmarshalBinary([]byte{0x03, 7, 15, 1, 4, 2, 0}); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := report.Firmware(); got != "1.04" {
		t.Errorf("firmware: got %q, want 1.04", got)
	}
	if got := report.Protocol(); got != "7.15" {
		t.Errorf("protocol: got %q, want 7.15", got)
	}
	if report.HardwareVersion != 2 {
		t.Errorf("hardware: got %d, want 2", report.HardwareVersion)
	}

	// v1-length report, no hardware version
	var v1 VersionReport
	if err := v1.UnmarshalBinary([]byte{0x03, 4, 5, 1, 0}); err != nil {
		t.Fatalf("unmarshal v1: %v", err)
	}
	if v1.HardwareVersion != 0 {
		t.Errorf("hardware: got %d, want 0", v1.HardwareVersion)
	}
}

func TestIndicatorSetMarshal(t *testing.T) {
	set := IndicatorSet{
		Properties: []IndicatorProperty{
			{IndicatorID: 0x45, PropertyID: IndicatorPropOffPeriod, Value: 5},
			{IndicatorID: 0x45, PropertyID: IndicatorPropOnOffCycles, Value: 3},
			{IndicatorID: 0x45, PropertyID: IndicatorPropOnPeriod, Value: 5},
		},
	}

	got, err := set.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := []byte{0x00, 0x03, 0x45, 0x03, 0x05, 0x45, 0x04, 0x03, 0x45, 0x05, 0x05}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIndicatorSupportedReportChain(t *testing.T) {
	var report IndicatorSupportedReport
	if err := report.UnmarshalBinary([]byte{0x41, 0x42, 0x01, 0x3E}); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if report.IndicatorID != 0x41 || report.NextIndicatorID != 0x42 {
		t.Errorf("got %+v", report)
	}
	if !bytes.Equal(report.Properties, []byte{0x3E}) {
		t.Errorf("properties: got %v", report.Properties)
	}
}

func TestParseDispatch(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"basic report", []byte{0x20, 0x03, 0xFF}},
		{"basic set", []byte{0x20, 0x01, 0x00}},
		{"switch binary report", []byte{0x25, 0x03, 0x00}},
		{"configuration report", []byte{0x70, 0x06, 0x07, 0x01, 0x03}},
		{"central scene", []byte{0x5B, 0x03, 0x01, 0x00, 0x03}},
		{"supervision get", []byte{0x6C, 0x01, 0x01, 0x03, 0x20, 0x03, 0xFF}},
		{"version report", []byte{0x86, 0x12, 0x03, 7, 15, 1, 4, 2, 0}},
		{"device specific report", []byte{0x72, 0x07, 0x01, 0x22, 0xAB, 0xCD}},
		{"indicator supported report", []byte{0x87, 0x05, 0x41, 0x00, 0x00}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.data)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if _, unknown := got.(Unrecognized); unknown {
			t.Errorf("%s: parsed as Unrecognized", tt.name)
		}
	}

	// unknown class is not an error
	cmd, err := Parse([]byte{0x71, 0x05, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cmd.(Unrecognized); !ok {
		t.Errorf("expected Unrecognized, got %T", cmd)
	}

	// short frame is an error
	if _, err := Parse([]byte{0x20}); err == nil {
		t.Error("expected error for short frame")
	}
}

func TestSecureEncapDecap(t *testing.T) {
	frame := []byte{0x70, 0x04, 0x07, 0x01, 0x03}
	wrapped := SecureEncap(9, frame)

	if wrapped[0] != 0x9F || wrapped[1] != 0x03 || wrapped[2] != 9 {
		t.Errorf("bad encapsulation header: %v", wrapped[:4])
	}

	inner, err := SecureDecap(wrapped)
	if err != nil {
		t.Fatalf("decap: %v", err)
	}
	if !bytes.Equal(inner, frame) {
		t.Errorf("got %v, want %v", inner, frame)
	}

	// non-encapsulated frames pass through
	plain, err := SecureDecap(frame)
	if err != nil {
		t.Fatalf("decap plain: %v", err)
	}
	if !bytes.Equal(plain, frame) {
		t.Errorf("got %v, want %v", plain, frame)
	}
}

func TestVersionOfTable(t *testing.T) {
	tests := []struct {
		class CommandClass
		want  uint8
	}{
		{ClassBasic, 1},
		{ClassManufacturerSpecific, 2},
		{ClassVersion, 2},
		{ClassIndicator, 3},
		{ClassSecurity2, 1},
		{CommandClass(0x31), 0},
	}

	for _, tt := range tests {
		if got := VersionOf(tt.class); got != tt.want {
			t.Errorf("VersionOf(%#x): got %d, want %d", tt.class, got, tt.want)
		}
	}
}
