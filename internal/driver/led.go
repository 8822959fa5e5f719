package driver

// The controller has five LEDs: one per small button (1-4) and one on
// the large relay button (5). Each LED has three sub-parameters at
// distinct parameter numbers.

// RelayLED is the logical number of the relay button's LED
const RelayLED = 5

// LED indicator modes (sub-parameter values)
const (
	ledModeOnWhenOff uint32 = 0
	ledModeOnWhenOn  uint32 = 1
	ledModeAlwaysOff uint32 = 2
	ledModeAlwaysOn  uint32 = 3
)

// ledModeNames translates indicator-mode values to human strings
var ledModeNames = map[uint32]string{
	ledModeOnWhenOff: "on when load off",
	ledModeOnWhenOn:  "on when load on",
	ledModeAlwaysOff: "always off",
	ledModeAlwaysOn:  "always on",
}

// ledModeParams maps logical LED number to the indicator-mode parameter.
// The relay LED sits at parameter 1, small buttons 1-4 at 2-5.
var ledModeParams = map[int]uint8{
	1: 2, 2: 3, 3: 4, 4: 5, RelayLED: 1,
}

// ledColorParams maps logical LED number to the color parameter
var ledColorParams = map[int]uint8{
	1: 7, 2: 8, 3: 9, 4: 10, RelayLED: 6,
}

// ledBrightnessParams maps logical LED number to the brightness parameter
var ledBrightnessParams = map[int]uint8{
	1: 12, 2: 13, 3: 14, 4: 15, RelayLED: 11,
}

// ledColors is the vendor color table: name to wire code
var ledColors = map[string]uint32{
	"white":   0,
	"blue":    1,
	"green":   2,
	"red":     3,
	"magenta": 4,
	"yellow":  5,
	"cyan":    6,
}

// ledColorNames is the reverse color table
var ledColorNames = map[uint32]string{
	0: "white", 1: "blue", 2: "green", 3: "red", 4: "magenta", 5: "yellow", 6: "cyan",
}

// LED brightness levels (sub-parameter values)
const (
	ledBrightnessHigh   uint32 = 0 // 100%
	ledBrightnessMedium uint32 = 1 // 60%
	ledBrightnessLow    uint32 = 2 // 30%
)

// ledBrightnessNames translates brightness values to human strings
var ledBrightnessNames = map[uint32]string{
	ledBrightnessHigh:   "100%",
	ledBrightnessMedium: "60%",
	ledBrightnessLow:    "30%",
}

// brightnessLevel resolves a percentage into one of the discrete
// brightness codes. Level 0 means the LED should be switched off via its
// indicator mode; percentages outside 0-100 resolve to nothing at all.
func brightnessLevel(percent int) (code uint32, off bool, ok bool) {
	switch {
	case percent == 0:
		return 0, true, true
	case percent >= 1 && percent <= 44:
		return ledBrightnessLow, false, true
	case percent >= 45 && percent <= 74:
		return ledBrightnessMedium, false, true
	case percent >= 75 && percent <= 100:
		return ledBrightnessHigh, false, true
	default:
		return 0, false, false
	}
}

// Vendor indicator-channel ids for the Indicator command class. Logical
// 0 addresses every LED at once; the relay has its own channel.
var indicatorChannels = map[int]byte{
	0:        0x00,
	1:        0x41,
	2:        0x42,
	3:        0x43,
	4:        0x44,
	RelayLED: 0x45,
}

// ledSubParameter classifies a parameter number against the three LED
// tables, returning the logical LED number it belongs to.
type ledSubKind int

const (
	ledSubNone ledSubKind = iota
	ledSubMode
	ledSubColor
	ledSubBrightness
)

func ledSubParameter(param uint8) (led int, kind ledSubKind) {
	for led, p := range ledModeParams {
		if p == param {
			return led, ledSubMode
		}
	}
	for led, p := range ledColorParams {
		if p == param {
			return led, ledSubColor
		}
	}
	for led, p := range ledBrightnessParams {
		if p == param {
			return led, ledSubBrightness
		}
	}
	return 0, ledSubNone
}
