package driver

import (
	"bytes"
	"testing"

	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/pkg/zwave"
)

func TestBrightnessLevel(t *testing.T) {
	tests := []struct {
		percent  int
		wantCode uint32
		wantOff  bool
		wantOK   bool
	}{
		{0, 0, true, true},
		{1, ledBrightnessLow, false, true},
		{30, ledBrightnessLow, false, true},
		{44, ledBrightnessLow, false, true},
		{45, ledBrightnessMedium, false, true},
		{60, ledBrightnessMedium, false, true},
		{74, ledBrightnessMedium, false, true},
		{75, ledBrightnessHigh, false, true},
		{100, ledBrightnessHigh, false, true},
		{101, 0, false, false},
		{-1, 0, false, false},
	}

	for _, tt := range tests {
		code, off, ok := brightnessLevel(tt.percent)
		if code != tt.wantCode || off != tt.wantOff || ok != tt.wantOK {
			t.Errorf("brightnessLevel(%d) = (%d, %v, %v), want (%d, %v, %v)",
				tt.percent, code, off, ok, tt.wantCode, tt.wantOff, tt.wantOK)
		}
	}
}

func TestSetLEDFrameSequence(t *testing.T) {
	a := New(12, true)

	brightness := 60
	cmds := a.SetLED(3, "red", &brightness)

	want := [][]byte{
		{0x70, 0x04, 9, 1, 3},   // color param for LED 3, red
		{0x70, 0x05, 9},         // read back
		{0x70, 0x04, 14, 1, 1},  // brightness param for LED 3, 60%
		{0x70, 0x05, 14},        // read back
		{0x70, 0x04, 4, 1, 3},   // indicator mode for LED 3, always on
		{0x70, 0x05, 4},         // read back
	}

	if len(cmds) != len(want) {
		t.Fatalf("got %d commands, want %d", len(cmds), len(want))
	}
	for i, cmd := range cmds {
		if !bytes.Equal(cmd.Data, want[i]) {
			t.Errorf("command %d = % X, want % X", i, cmd.Data, want[i])
		}
		if !cmd.Secure {
			t.Errorf("command %d not marked secure", i)
		}
	}
}

func TestSetLEDBrightnessZeroTurnsOff(t *testing.T) {
	a := New(12, false)

	brightness := 0
	cmds := a.SetLED(2, "", &brightness)

	// No color, no brightness write: only the mode pair, set to always off.
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	wantSet := []byte{0x70, 0x04, 3, 1, 2}
	if !bytes.Equal(cmds[0].Data, wantSet) {
		t.Errorf("mode set = % X, want % X", cmds[0].Data, wantSet)
	}
}

func TestSetLEDUnknownColorSkipsColorPair(t *testing.T) {
	a := New(12, false)

	cmds := a.SetLED(1, "purple", nil)

	// Unknown color drops the color pair but the mode pair still goes out.
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Data[2] != ledModeParams[1] {
		t.Errorf("first frame targets parameter %d, want mode parameter %d", cmds[0].Data[2], ledModeParams[1])
	}
}

func TestSetLEDRelayOverrideGate(t *testing.T) {
	a := New(12, false)

	if cmds := a.SetLED(RelayLED, "blue", nil); cmds != nil {
		t.Fatalf("relay LED change emitted %d commands without override enabled", len(cmds))
	}

	// Parameter 26 = 1 arrives from the device and unlocks the relay LED.
	report, err := zwave.Encode(zwave.ConfigurationReport{Parameter: ParamRelayLEDOverride, Size: 1, Value: 1})
	if err != nil {
		t.Fatal(err)
	}
	a.HandleFrame(report)

	if cmds := a.SetLED(RelayLED, "blue", nil); len(cmds) == 0 {
		t.Fatal("relay LED change emitted nothing with override enabled")
	}
}

func TestSetIndicatorFlash(t *testing.T) {
	a := New(12, false)

	cmds := a.SetIndicator(RelayLED, "flash", &FlashTiming{OffPeriod: 5, Repeats: 3, OnPeriod: 5})
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}

	want := []byte{0x87, 0x01, 0x00, 0x03, 0x45, 0x03, 5, 0x45, 0x04, 3, 0x45, 0x05, 5}
	if !bytes.Equal(cmds[0].Data, want) {
		t.Errorf("flash frame = % X, want % X", cmds[0].Data, want)
	}
}

func TestSetIndicatorOnOff(t *testing.T) {
	a := New(12, false)

	cmds := a.SetIndicator(0, "on", nil)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	want := []byte{0x87, 0x01, 0x00, 0x01, 0x00, 0x02, 0xFF}
	if !bytes.Equal(cmds[0].Data, want) {
		t.Errorf("on frame = % X, want % X", cmds[0].Data, want)
	}

	if cmds := a.SetIndicator(7, "on", nil); cmds != nil {
		t.Error("unknown indicator produced commands")
	}
}

func TestMultiTapRemap(t *testing.T) {
	tests := []struct {
		attribute   zwave.KeyAttribute
		scene       byte
		wantButtons []int
		wantActions []string
	}{
		{zwave.KeyPressed1, 2, []int{2}, []string{models.ButtonActionPushed}},
		{zwave.KeyPressed2, 2, []int{7, 2}, []string{models.ButtonActionPushed, models.ButtonActionDoubleTapped}},
		{zwave.KeyPressed3, 2, []int{12}, []string{models.ButtonActionPushed}},
		{zwave.KeyPressed4, 2, []int{17}, []string{models.ButtonActionPushed}},
		{zwave.KeyPressed5, 2, []int{22}, []string{models.ButtonActionPushed}},
		{zwave.KeyHeldDown, 3, []int{3}, []string{models.ButtonActionHeld}},
		{zwave.KeyReleased, 3, []int{3}, []string{models.ButtonActionReleased}},
		{zwave.KeyPressed1, RelayLED, []int{5}, []string{models.ButtonActionPushed}},
	}

	for _, tt := range tests {
		a := New(12, false)
		frame, err := zwave.Encode(zwave.CentralSceneNotification{
			SequenceNumber: 1,
			KeyAttribute:   tt.attribute,
			SceneNumber:    tt.scene,
		})
		if err != nil {
			t.Fatal(err)
		}

		result := a.HandleFrame(frame)
		if len(result.Events) != len(tt.wantButtons) {
			t.Errorf("attribute %d scene %d: got %d events, want %d",
				tt.attribute, tt.scene, len(result.Events), len(tt.wantButtons))
			continue
		}
		for i, ev := range result.Events {
			if ev.Button != tt.wantButtons[i] || ev.Action != tt.wantActions[i] {
				t.Errorf("attribute %d scene %d event %d: got button %d action %q, want button %d action %q",
					tt.attribute, tt.scene, i, ev.Button, ev.Action, tt.wantButtons[i], tt.wantActions[i])
			}
		}
	}
}

func TestSceneNumberOutOfRangeIgnored(t *testing.T) {
	a := New(12, false)
	frame, err := zwave.Encode(zwave.CentralSceneNotification{
		SequenceNumber: 1,
		KeyAttribute:   zwave.KeyPressed1,
		SceneNumber:    9,
	})
	if err != nil {
		t.Fatal(err)
	}

	result := a.HandleFrame(frame)
	if len(result.Events) != 0 || len(result.Commands) != 0 {
		t.Errorf("out-of-range scene produced %d events, %d commands", len(result.Events), len(result.Commands))
	}
}

func TestSwitchEventIdempotent(t *testing.T) {
	a := New(12, false)
	frame, err := zwave.Encode(zwave.BasicReport{Value: 0xFF})
	if err != nil {
		t.Fatal(err)
	}

	first := a.HandleFrame(frame)
	if len(first.Events) != 1 || first.Events[0].Switch != "on" {
		t.Fatalf("first report: got %+v, want one 'on' event", first.Events)
	}

	second := a.HandleFrame(frame)
	if len(second.Events) != 0 {
		t.Errorf("repeated report produced %d events, want 0", len(second.Events))
	}

	off, err := zwave.Encode(zwave.SwitchBinaryReport{Value: 0x00})
	if err != nil {
		t.Fatal(err)
	}
	third := a.HandleFrame(off)
	if len(third.Events) != 1 || third.Events[0].Switch != "off" {
		t.Fatalf("off report: got %+v, want one 'off' event", third.Events)
	}
}

func TestSupervisionAckAlwaysSent(t *testing.T) {
	a := New(12, false)

	inner, err := zwave.Encode(zwave.BasicReport{Value: 0xFF})
	if err != nil {
		t.Fatal(err)
	}
	frame, err := zwave.Encode(zwave.SupervisionGet{SessionID: 0x21, Encapsulated: inner})
	if err != nil {
		t.Fatal(err)
	}

	result := a.HandleFrame(frame)
	if len(result.Events) != 1 {
		t.Errorf("supervised report produced %d events, want 1", len(result.Events))
	}
	if len(result.Commands) != 1 {
		t.Fatalf("got %d commands, want 1 supervision ack", len(result.Commands))
	}
	wantAck := []byte{0x6C, 0x02, 0x21, 0xFF, 0x00}
	if !bytes.Equal(result.Commands[0].Data, wantAck) {
		t.Errorf("ack = % X, want % X", result.Commands[0].Data, wantAck)
	}

	// A supervised command the adapter cannot even parse still gets acked.
	broken, err := zwave.Encode(zwave.SupervisionGet{SessionID: 0x05, Encapsulated: []byte{0x20}})
	if err != nil {
		t.Fatal(err)
	}
	result = a.HandleFrame(broken)
	if len(result.Commands) != 1 {
		t.Fatalf("broken supervised frame: got %d commands, want 1 ack", len(result.Commands))
	}
	if result.Commands[0].Data[2] != 0x05 {
		t.Errorf("ack session = %#x, want 0x05", result.Commands[0].Data[2])
	}
}

func TestConfigurationReportsFillLEDCache(t *testing.T) {
	a := New(12, false)

	reports := []zwave.ConfigurationReport{
		{Parameter: 8, Size: 1, Value: 2},  // LED 2 color green
		{Parameter: 13, Size: 1, Value: 1}, // LED 2 brightness 60%
		{Parameter: 3, Size: 1, Value: 3},  // LED 2 mode always on
		{Parameter: 16, Size: 4, Value: 7200},
	}
	for _, r := range reports {
		frame, err := zwave.Encode(r)
		if err != nil {
			t.Fatal(err)
		}
		a.HandleFrame(frame)
	}

	state := a.State()
	led, ok := state.LEDs[2]
	if !ok {
		t.Fatal("LED 2 missing from state")
	}
	if led.Color != "green" || led.Brightness != "60%" || led.Mode != "always on" {
		t.Errorf("LED 2 = %+v, want green/60%%/always on", led)
	}
	if state.Parameters[16] != 7200 {
		t.Errorf("parameter 16 = %d, want 7200", state.Parameters[16])
	}
}

func TestVersionAndSerialRecorded(t *testing.T) {
	a := New(12, false)

	version, err := zwave.Encode(zwave.VersionReport{
		LibraryType:        3,
		ProtocolVersion:    7,
		ProtocolSubVersion: 13,
		FirmwareVersion:    10,
		FirmwareSubVersion: 20,
		HardwareVersion:    2,
	})
	if err != nil {
		t.Fatal(err)
	}
	a.HandleFrame(version)

	serial, err := zwave.Encode(zwave.DeviceSpecificReport{
		IDType: zwave.DeviceIDTypeSerialNumber,
		Format: zwave.DeviceIDFormatBinary,
		Data:   []byte{0xDE, 0xAD},
	})
	if err != nil {
		t.Fatal(err)
	}
	a.HandleFrame(serial)

	state := a.State()
	if state.Firmware != "10.20" || state.Protocol != "7.13" || state.Hardware != "2" {
		t.Errorf("versions = %q/%q/%q, want 10.20/7.13/2", state.Firmware, state.Protocol, state.Hardware)
	}
	if state.Serial != "dead" {
		t.Errorf("serial = %q, want %q", state.Serial, "dead")
	}
}

func TestIndicatorSupportedChain(t *testing.T) {
	a := New(12, false)

	frame, err := zwave.Encode(zwave.IndicatorSupportedReport{
		IndicatorID:     0x41,
		NextIndicatorID: 0x42,
		Properties:      []byte{0x3E},
	})
	if err != nil {
		t.Fatal(err)
	}

	result := a.HandleFrame(frame)
	if len(result.Commands) != 1 {
		t.Fatalf("got %d commands, want 1 follow-up get", len(result.Commands))
	}
	want := []byte{0x87, 0x04, 0x42}
	if !bytes.Equal(result.Commands[0].Data, want) {
		t.Errorf("follow-up = % X, want % X", result.Commands[0].Data, want)
	}

	// End of the chain: next id zero means no follow-up.
	last, err := zwave.Encode(zwave.IndicatorSupportedReport{IndicatorID: 0x45})
	if err != nil {
		t.Fatal(err)
	}
	if result := a.HandleFrame(last); len(result.Commands) != 0 {
		t.Errorf("chain end produced %d commands, want 0", len(result.Commands))
	}
}

func TestSecureEncapsulatedInbound(t *testing.T) {
	a := New(12, true)

	inner, err := zwave.Encode(zwave.BasicReport{Value: 0x00})
	if err != nil {
		t.Fatal(err)
	}
	// Adapters start with no switch state; the first report always fires.
	result := a.HandleFrame(zwave.SecureEncap(7, inner))
	if len(result.Events) != 1 || result.Events[0].Switch != "off" {
		t.Fatalf("secure frame: got %+v, want one 'off' event", result.Events)
	}
}

func TestUnrecognizedFrameIgnored(t *testing.T) {
	a := New(12, false)

	result := a.HandleFrame([]byte{0x71, 0x05, 0x00, 0x00})
	if len(result.Events) != 0 || len(result.Commands) != 0 {
		t.Errorf("unrecognized frame produced %d events, %d commands", len(result.Events), len(result.Commands))
	}

	result = a.HandleFrame([]byte{0x20})
	if len(result.Events) != 0 || len(result.Commands) != 0 {
		t.Error("truncated frame produced output")
	}
}

func TestSetParameterUsesTableSize(t *testing.T) {
	a := New(12, false)

	cmds := a.SetParameter(ParamAutoOffTimer, 3600, 0)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	wantSet := []byte{0x70, 0x04, 16, 4, 0x00, 0x00, 0x0E, 0x10}
	if !bytes.Equal(cmds[0].Data, wantSet) {
		t.Errorf("set = % X, want % X", cmds[0].Data, wantSet)
	}

	if cmds := a.SetParameter(99, 1, 0); cmds != nil {
		t.Error("unknown parameter without size produced commands")
	}
	if cmds := a.SetParameter(99, 1, 3); cmds != nil {
		t.Error("bad size produced commands")
	}
}

func TestConfigureBootstrap(t *testing.T) {
	a := New(12, true)

	cmds := a.Configure()
	// 5 mode defaults + 15 read-backs + version + serial.
	if len(cmds) != 22 {
		t.Fatalf("got %d commands, want 22", len(cmds))
	}
	for i, cmd := range cmds {
		if !cmd.Secure {
			t.Fatalf("command %d not marked secure", i)
		}
	}
	if cmds[0].DelayMs != configureDelayMs {
		t.Errorf("first delay = %d, want %d", cmds[0].DelayMs, configureDelayMs)
	}
	wantLast := []byte{0x72, 0x06, 0x01}
	if !bytes.Equal(cmds[21].Data, wantLast) {
		t.Errorf("last frame = % X, want % X", cmds[21].Data, wantLast)
	}
}

func TestClearResetsState(t *testing.T) {
	a := New(12, false)

	frame, err := zwave.Encode(zwave.BasicReport{Value: 0xFF})
	if err != nil {
		t.Fatal(err)
	}
	a.HandleFrame(frame)
	a.Clear()

	state := a.State()
	if state.Switch != nil || len(state.LEDs) != 0 || len(state.Parameters) != 0 {
		t.Errorf("state after clear = %+v, want empty", state)
	}
}
