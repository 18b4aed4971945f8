package operation

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/hoppxi/backlighter/pkg/brightness"
)

const (
	logindDest      = "org.freedesktop.login1"
	logindSession   = dbus.ObjectPath("/org/freedesktop/login1/session/auto")
	logindSetMethod = "org.freedesktop.login1.Session.SetBrightness"
)

type busConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// LogindWriter sets device levels through systemd-logind, which lets the
// active session user change brightness without write access to sysfs.
type LogindWriter struct {
	connect func() (busConn, error)
}

// Logind is the exported instance.
var Logind = &LogindWriter{
	connect: func() (busConn, error) {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			return nil, err
		}
		return conn, nil
	},
}

// WriteLevel asks logind to set dev to level.
func (l *LogindWriter) WriteLevel(dev brightness.Device, level int64) error {
	path := dev.File(brightness.ControlCurrent)
	value := strconv.FormatInt(level, 10)

	if level < 0 || level > math.MaxUint32 {
		return &brightness.Error{Kind: brightness.KindIO, Class: dev.Class, Path: path, Value: value,
			Err: errors.New("level out of range for logind")}
	}

	conn, err := l.connect()
	if err != nil {
		return &brightness.Error{Kind: brightness.KindIO, Class: dev.Class, Path: path, Value: value,
			Err: fmt.Errorf("failed to connect to system bus: %w", err)}
	}
	defer conn.Close()

	obj := conn.Object(logindDest, logindSession)
	err = obj.Call(logindSetMethod, 0, dev.Class.Subsystem(), dev.Name, uint32(level)).Store()
	if err != nil {
		return &brightness.Error{Kind: brightness.KindIO, Class: dev.Class, Path: path, Value: value,
			Err: fmt.Errorf("logind SetBrightness: %w", err)}
	}

	return nil
}
