package brightness

import "fmt"

// Class selects which kind of brightness control is addressed.
type Class int

const (
	Display Class = iota
	Keyboard
)

const (
	DefaultBacklightRoot = "/sys/class/backlight"
	DefaultKeylightRoot  = "/sys/class/leds"
)

func (c Class) String() string {
	switch c {
	case Display:
		return "backlight"
	case Keyboard:
		return "keylight"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Subsystem is the kernel subsystem name devices of this class are exported under.
func (c Class) Subsystem() string {
	if c == Keyboard {
		return "leds"
	}
	return "backlight"
}

// DefaultRoot returns the sysfs directory scanned for devices of this class.
func (c Class) DefaultRoot() string {
	if c == Keyboard {
		return DefaultKeylightRoot
	}
	return DefaultBacklightRoot
}
