package subscribe

import (
	"bytes"
	"context"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// recvTimeout bounds how long a cancelled UeventEvents keeps its socket.
const recvTimeout = 250 * time.Millisecond

// UeventEvents reports kernel "change" uevents for the named device of a
// subsystem ("backlight" or "leds"). The channel is closed when ctx ends or
// the socket cannot be opened.
func UeventEvents(ctx context.Context, subsystem, name string, log zerolog.Logger) <-chan struct{} {
	events := make(chan struct{}, 1)

	go func() {
		defer close(events)

		fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_RAW, syscall.NETLINK_KOBJECT_UEVENT)
		if err != nil {
			log.Warn().Err(err).Msg("subscribe: failed to open netlink socket")
			return
		}
		defer syscall.Close(fd)

		addr := &syscall.SockaddrNetlink{
			Family: syscall.AF_NETLINK,
			Groups: 1, // listen to broadcast uevents
		}
		if err := syscall.Bind(fd, addr); err != nil {
			log.Warn().Err(err).Msg("subscribe: failed to bind netlink socket")
			return
		}

		// Recvfrom has to return now and then so cancellation is noticed.
		tv := syscall.NsecToTimeval(recvTimeout.Nanoseconds())
		if err := syscall.SetsockoptTimeval(fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
			log.Warn().Err(err).Msg("subscribe: failed to set netlink receive timeout")
			return
		}

		buf := make([]byte, 4096)
		for {
			if ctx.Err() != nil {
				return
			}
			n, _, err := syscall.Recvfrom(fd, buf, 0)
			if err == syscall.EAGAIN || err == syscall.EINTR {
				continue
			}
			if err != nil {
				log.Debug().Err(err).Msg("subscribe: netlink recv error")
				continue
			}

			if matchUevent(buf[:n], subsystem, name) {
				notify(events)
			}
		}
	}()

	return events
}

// matchUevent reports whether msg is a change event for the device.
func matchUevent(msg []byte, subsystem, name string) bool {
	var action, sub, devpath bool
	for _, field := range bytes.Split(msg, []byte{0}) {
		switch {
		case bytes.Equal(field, []byte("ACTION=change")):
			action = true
		case bytes.Equal(field, []byte("SUBSYSTEM="+subsystem)):
			sub = true
		case bytes.HasPrefix(field, []byte("DEVPATH=")) && bytes.HasSuffix(field, []byte("/"+name)):
			devpath = true
		}
	}
	return action && sub && devpath
}

// FileEvents reports writes to path. sysfs attributes rarely raise inotify
// events, so this mostly catches changes on ordinary filesystems.
func FileEvents(ctx context.Context, path string, log zerolog.Logger) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					notify(events)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug().Err(err).Str("path", path).Msg("subscribe: fsnotify error")
			}
		}
	}()

	return events, nil
}

func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
