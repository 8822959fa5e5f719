package driver

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/pkg/zwave"
)

// Inter-command delay hints handed to the transport, in milliseconds.
// The transport paces the mesh; the adapter never waits itself.
const (
	configureDelayMs = 300
	pairDelayMs      = 100
)

// Command is one encoded frame ready for the transport: the wire bytes,
// whether it must be secure-encapsulated, and a pacing hint for the
// frame that follows it.
type Command struct {
	Data    []byte `json:"data"`
	Secure  bool   `json:"secure"`
	DelayMs int    `json:"delayMs"`
}

// Result is everything a decoded inbound frame produced: state-change
// events for subscribers plus any follow-up frames to transmit.
type Result struct {
	Commands []Command
	Events   []models.DeviceEvent
}

// FlashTiming holds the three indicator flash properties, all in tenths
// of a second except Repeats.
type FlashTiming struct {
	OffPeriod byte `json:"offPeriod"`
	Repeats   byte `json:"repeats"`
	OnPeriod  byte `json:"onPeriod"`
}

// Adapter translates between the hub's command surface and the scene
// controller's command-class frames. It is a stateless codec plus a
// small write-through cache populated by report decoding.
type Adapter struct {
	nodeID uint8
	secure bool

	mu          sync.Mutex
	leds        map[int]*models.LEDState
	params      map[uint8]uint32
	switchState string
	firmware    string
	protocol    string
	hardware    string
	serial      string

	log zerolog.Logger
}

// New creates an adapter for one node. secure marks frames for secure
// encapsulation on devices included with network security.
func New(nodeID uint8, secure bool) *Adapter {
	return &Adapter{
		nodeID: nodeID,
		secure: secure,
		leds:   make(map[int]*models.LEDState),
		params: make(map[uint8]uint32),
		log:    log.With().Uint8("nodeId", nodeID).Logger(),
	}
}

// NodeID returns the node this adapter serves
func (a *Adapter) NodeID() uint8 { return a.nodeID }

// Clear resets every cached value
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.leds = make(map[int]*models.LEDState)
	a.params = make(map[uint8]uint32)
	a.switchState = ""
	a.firmware, a.protocol, a.hardware, a.serial = "", "", "", ""
}

// State returns a snapshot of the cached device state
func (a *Adapter) State() models.DeviceState {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := models.DeviceState{
		NodeID:     a.nodeID,
		LEDs:       make(map[int]models.LEDState, len(a.leds)),
		Parameters: make(map[uint8]uint32, len(a.params)),
		Firmware:   a.firmware,
		Protocol:   a.protocol,
		Hardware:   a.hardware,
		Serial:     a.serial,
	}
	if a.switchState != "" {
		s := a.switchState
		state.Switch = &s
	}
	for n, led := range a.leds {
		state.LEDs[n] = *led
	}
	for p, v := range a.params {
		state.Parameters[p] = v
	}
	return state
}

// command marshals a typed command into a transport Command
func (a *Adapter) command(c zwave.Cmd, delayMs int) (Command, bool) {
	data, err := zwave.Encode(c)
	if err != nil {
		a.log.Error().Err(err).Msgf("encode %T failed", c)
		return Command{}, false
	}
	return Command{Data: data, Secure: a.secure, DelayMs: delayMs}, true
}

// appendCommand marshals and appends, dropping frames that fail to encode
func (a *Adapter) appendCommand(cmds []Command, c zwave.Cmd, delayMs int) []Command {
	cmd, ok := a.command(c, delayMs)
	if !ok {
		return cmds
	}
	return append(cmds, cmd)
}

// ========== Outbound encode operations ==========

// On switches the relay on
func (a *Adapter) On() []Command {
	return a.appendCommand(nil, zwave.BasicSet{Value: 0xFF}, 0)
}

// Off switches the relay off
func (a *Adapter) Off() []Command {
	return a.appendCommand(nil, zwave.BasicSet{Value: 0x00}, 0)
}

// Refresh queries the relay state and version information
func (a *Adapter) Refresh() []Command {
	cmds := a.appendCommand(nil, zwave.BasicGet{}, pairDelayMs)
	return a.appendCommand(cmds, zwave.VersionGet{}, 0)
}

// Configure emits the first-time bootstrap sequence: LED indicator-mode
// defaults, a read-back of every LED sub-parameter, a version query and
// a serial number query, spaced to avoid overwhelming the mesh.
func (a *Adapter) Configure() []Command {
	var cmds []Command

	for led := 1; led <= RelayLED; led++ {
		cmds = a.appendCommand(cmds, zwave.ConfigurationSet{
			Parameter: ledModeParams[led],
			Size:      1,
			Value:     ledModeOnWhenOff,
		}, configureDelayMs)
	}

	for led := 1; led <= RelayLED; led++ {
		cmds = a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: ledModeParams[led]}, configureDelayMs)
		cmds = a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: ledColorParams[led]}, configureDelayMs)
		cmds = a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: ledBrightnessParams[led]}, configureDelayMs)
	}

	cmds = a.appendCommand(cmds, zwave.VersionGet{}, configureDelayMs)
	cmds = a.appendCommand(cmds, zwave.DeviceSpecificGet{IDType: zwave.DeviceIDTypeSerialNumber}, 0)

	return cmds
}

// SetParameter writes a configuration parameter and reads it back. When
// size is zero the table size is used; unknown parameters with no size
// produce nothing.
func (a *Adapter) SetParameter(number uint8, value uint32, size byte) []Command {
	if size == 0 {
		p, ok := LookupParameter(number)
		if !ok {
			a.log.Warn().Uint8("parameter", number).Msg("unknown parameter and no size given, nothing sent")
			return nil
		}
		size = p.Size
	}

	if size != 1 && size != 2 && size != 4 {
		a.log.Warn().Uint8("parameter", number).Uint8("size", size).Msg("bad parameter size, nothing sent")
		return nil
	}

	cmds := a.appendCommand(nil, zwave.ConfigurationSet{Parameter: number, Size: size, Value: value}, pairDelayMs)
	return a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: number}, 0)
}

// SetLED changes one LED's appearance. color may be empty to leave the
// color alone; brightness may be nil to leave the level alone. Each
// resolved sub-parameter produces a Configuration Set/Get pair; inputs
// outside their domain produce no frame for that sub-parameter.
func (a *Adapter) SetLED(led int, color string, brightness *int) []Command {
	if _, ok := ledModeParams[led]; !ok {
		a.log.Warn().Int("led", led).Msg("no such LED, nothing sent")
		return nil
	}

	if led == RelayLED && !a.relayOverrideAllowed() {
		a.log.Warn().Msg("relay LED override not enabled, refusing LED change")
		return nil
	}

	var cmds []Command
	mode := ledModeAlwaysOn

	if color != "" {
		code, ok := ledColors[color]
		if !ok {
			a.log.Warn().Str("color", color).Msg("unknown LED color, skipping color change")
		} else {
			cmds = a.appendCommand(cmds, zwave.ConfigurationSet{
				Parameter: ledColorParams[led], Size: 1, Value: code,
			}, pairDelayMs)
			cmds = a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: ledColorParams[led]}, pairDelayMs)
		}
	}

	if brightness != nil {
		code, off, ok := brightnessLevel(*brightness)
		switch {
		case !ok:
			a.log.Warn().Int("brightness", *brightness).Msg("brightness out of range, skipping level change")
		case off:
			mode = ledModeAlwaysOff
		default:
			cmds = a.appendCommand(cmds, zwave.ConfigurationSet{
				Parameter: ledBrightnessParams[led], Size: 1, Value: code,
			}, pairDelayMs)
			cmds = a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: ledBrightnessParams[led]}, pairDelayMs)
		}
	}

	cmds = a.appendCommand(cmds, zwave.ConfigurationSet{
		Parameter: ledModeParams[led], Size: 1, Value: mode,
	}, pairDelayMs)
	cmds = a.appendCommand(cmds, zwave.ConfigurationGet{Parameter: ledModeParams[led]}, 0)

	return cmds
}

// SetIndicator drives an LED through the Indicator command class. led 0
// addresses every LED; mode is "flash", "on" or "off". timing applies
// to flash only and defaults to 500ms on/off for 3 cycles.
func (a *Adapter) SetIndicator(led int, mode string, timing *FlashTiming) []Command {
	channel, ok := indicatorChannels[led]
	if !ok {
		a.log.Warn().Int("led", led).Msg("no such indicator, nothing sent")
		return nil
	}

	switch mode {
	case "flash":
		t := FlashTiming{OffPeriod: 5, Repeats: 3, OnPeriod: 5}
		if timing != nil {
			t = *timing
		}
		return a.appendCommand(nil, zwave.IndicatorSet{
			Properties: []zwave.IndicatorProperty{
				{IndicatorID: channel, PropertyID: zwave.IndicatorPropOffPeriod, Value: t.OffPeriod},
				{IndicatorID: channel, PropertyID: zwave.IndicatorPropOnOffCycles, Value: t.Repeats},
				{IndicatorID: channel, PropertyID: zwave.IndicatorPropOnPeriod, Value: t.OnPeriod},
			},
		}, 0)

	case "on", "off":
		value := byte(0x00)
		if mode == "on" {
			value = 0xFF
		}
		return a.appendCommand(nil, zwave.IndicatorSet{
			Properties: []zwave.IndicatorProperty{
				{IndicatorID: channel, PropertyID: zwave.IndicatorPropBinary, Value: value},
			},
		}, 0)

	default:
		a.log.Warn().Str("mode", mode).Msg("unknown indicator mode, nothing sent")
		return nil
	}
}

// relayOverrideAllowed reports whether parameter 26 permits driving the
// relay LED independently of the load.
func (a *Adapter) relayOverrideAllowed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params[ParamRelayLEDOverride] == 1
}

// ========== Inbound decode ==========

// HandleFrame decodes one inbound frame into state changes and
// follow-up commands. Malformed frames are dropped with a log entry;
// unrecognized frame types are logged and otherwise ignored.
func (a *Adapter) HandleFrame(data []byte) Result {
	inner, err := zwave.SecureDecap(data)
	if err != nil {
		a.log.Warn().Err(err).Msg("bad secure encapsulation, frame dropped")
		return Result{}
	}

	cmd, err := zwave.Parse(inner)
	if err != nil {
		a.log.Warn().Err(err).Msg("malformed frame dropped")
		return Result{}
	}

	return a.handleCommand(cmd, true)
}

// handleCommand dispatches one decoded command. allowEncap permits one
// level of supervision encapsulation.
func (a *Adapter) handleCommand(cmd zwave.Cmd, allowEncap bool) Result {
	switch c := cmd.(type) {
	case *zwave.SupervisionGet:
		if !allowEncap {
			a.log.Warn().Msg("nested supervision encapsulation ignored")
			return Result{}
		}
		return a.handleSupervisionGet(c)

	case *zwave.BasicReport:
		return a.switchEvent(c.Value)
	case *zwave.BasicSet:
		return a.switchEvent(c.Value)
	case *zwave.SwitchBinaryReport:
		return a.switchEvent(c.Value)

	case *zwave.CentralSceneNotification:
		return a.buttonEvents(c)

	case *zwave.ConfigurationReport:
		a.storeParameter(c)
		return Result{}

	case *zwave.VersionReport:
		a.mu.Lock()
		a.firmware = c.Firmware()
		a.protocol = c.Protocol()
		a.hardware = strconv.Itoa(int(c.HardwareVersion))
		a.mu.Unlock()
		a.log.Debug().Str("firmware", c.Firmware()).Str("protocol", c.Protocol()).Msg("version recorded")
		return Result{}

	case *zwave.DeviceSpecificReport:
		serial := c.SerialNumber()
		a.mu.Lock()
		a.serial = serial
		a.mu.Unlock()
		a.log.Debug().Str("serial", serial).Msg("serial number recorded")
		return Result{}

	case *zwave.IndicatorSupportedReport:
		if c.NextIndicatorID != 0 {
			return Result{
				Commands: a.appendCommand(nil, zwave.IndicatorSupportedGet{IndicatorID: c.NextIndicatorID}, 0),
			}
		}
		return Result{}

	case *zwave.IndicatorReport:
		return Result{}

	default:
		a.log.Debug().
			Uint8("class", uint8(cmd.Class())).
			Uint8("command", cmd.ID()).
			Msg("unhandled frame type ignored")
		return Result{}
	}
}

// handleSupervisionGet decodes the encapsulated command one level deep
// and acknowledges the session. The ack goes out regardless of whether
// the inner command was recognized.
func (a *Adapter) handleSupervisionGet(get *zwave.SupervisionGet) Result {
	var result Result

	inner, err := zwave.Parse(get.Encapsulated)
	if err != nil {
		a.log.Warn().Err(err).Msg("malformed supervised command ignored")
	} else {
		result = a.handleCommand(inner, false)
	}

	result.Commands = a.appendCommand(result.Commands, zwave.SupervisionReport{
		SessionID: get.SessionID,
		Status:    zwave.SupervisionStatusSuccess,
	}, 0)

	return result
}

// switchEvent normalizes a level to on/off and emits a change event.
// Repeated reports of the same state are no-ops.
func (a *Adapter) switchEvent(value byte) Result {
	state := "off"
	if value != 0 {
		state = "on"
	}

	a.mu.Lock()
	changed := a.switchState != state
	a.switchState = state
	a.mu.Unlock()

	if !changed {
		return Result{}
	}

	a.log.Info().Str("switch", state).Msg("switch state changed")
	return Result{Events: []models.DeviceEvent{{
		NodeID: a.nodeID,
		Time:   time.Now(),
		Type:   models.EventTypeSwitch,
		Switch: state,
	}}}
}

// buttonEvents decodes a scene notification into button events. Taps
// 2-5 are remapped onto synthetic button ids base+5*(n-1); a double tap
// additionally emits a doubleTapped event on the base button id.
func (a *Adapter) buttonEvents(n *zwave.CentralSceneNotification) Result {
	base := int(n.SceneNumber)
	if base < 1 || base > RelayLED {
		a.log.Warn().Int("scene", base).Msg("scene number out of range, ignored")
		return Result{}
	}

	now := time.Now()
	event := func(button int, action string) models.DeviceEvent {
		return models.DeviceEvent{
			NodeID: a.nodeID,
			Time:   now,
			Type:   models.EventTypeButton,
			Button: button,
			Action: action,
		}
	}

	switch n.KeyAttribute {
	case zwave.KeyHeldDown:
		return Result{Events: []models.DeviceEvent{event(base, models.ButtonActionHeld)}}

	case zwave.KeyReleased:
		return Result{Events: []models.DeviceEvent{event(base, models.ButtonActionReleased)}}

	default:
		taps := n.KeyAttribute.TapCount()
		if taps == 0 {
			a.log.Warn().Uint8("keyAttribute", uint8(n.KeyAttribute)).Msg("unknown key attribute ignored")
			return Result{}
		}

		events := []models.DeviceEvent{event(base+5*(taps-1), models.ButtonActionPushed)}
		if n.KeyAttribute == zwave.KeyPressed2 {
			events = append(events, event(base, models.ButtonActionDoubleTapped))
		}
		return Result{Events: events}
	}
}

// storeParameter resolves a configuration report against the LED
// sub-parameter tables and updates the cache. Parameters the tables do
// not cover are stored raw, keyed by number, for generic read-back.
func (a *Adapter) storeParameter(report *zwave.ConfigurationReport) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.params[report.Parameter] = report.Value

	led, kind := ledSubParameter(report.Parameter)
	if kind == ledSubNone {
		a.log.Debug().
			Uint8("parameter", report.Parameter).
			Uint32("value", report.Value).
			Msg("parameter cached")
		return
	}

	slot, ok := a.leds[led]
	if !ok {
		slot = &models.LEDState{}
		a.leds[led] = slot
	}

	switch kind {
	case ledSubMode:
		slot.Mode = ledModeNames[report.Value]
	case ledSubColor:
		slot.Color = ledColorNames[report.Value]
	case ledSubBrightness:
		slot.Brightness = ledBrightnessNames[report.Value]
	}

	a.log.Debug().Int("led", led).Interface("state", *slot).Msg("LED state cached")
}
