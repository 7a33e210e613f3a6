package wpa

import "github.com/godbus/dbus/v5"

type wpaSignalHandler struct {
	*Wpa
}

var _ dbus.SignalHandler = (*wpaSignalHandler)(nil)
var _ dbus.Terminator = (*wpaSignalHandler)(nil)

// DeliverSignal runs on the connection's reader and must not block or call
// back into the bus.
func (h wpaSignalHandler) DeliverSignal(iface, name string, signal *dbus.Signal) {
	h.mu.Lock()
	for _, l := range h.listeners {
		if l.path != signal.Path {
			continue
		}

		select {
		case l.signals <- signal:
		default:
		}
	}
	h.mu.Unlock()

	select {
	case h.signals <- signal:
	default:
		h.log.Warnf("Dropped signal %v from %v", signal.Name, signal.Path)
	}
}

func (h wpaSignalHandler) Terminate() {
	h.terminate.Do(func() {
		close(h.terminated)
	})
}
