package wifi

// Observer receives notifications from a Notifier. It may implement any
// subset of the handler interfaces below; kinds it does not handle are
// dropped silently.
type Observer interface{}

// InterruptionHandler is told when the connection to the wireless service
// was lost temporarily. Monitored events are re-registered automatically, so
// the handler should only re-sync local state.
type InterruptionHandler interface {
	ConnectionInterrupted()
}

// InvalidationHandler is told when the connection is gone for good. A new
// Client is needed to receive further events.
type InvalidationHandler interface {
	ConnectionInvalidated()
}

type PowerHandler interface {
	PowerDidChange(iface string)
}

type SSIDHandler interface {
	SSIDDidChange(iface string)
}

type BSSIDHandler interface {
	BSSIDDidChange(iface string)
}

type CountryCodeHandler interface {
	CountryCodeDidChange(iface string)
}

type LinkHandler interface {
	LinkDidChange(iface string)
}

// LinkQualityHandler receives the RSSI and transmit rate current at delivery.
type LinkQualityHandler interface {
	LinkQualityDidChange(iface string, rssi int, transmitRate float64)
}

type ModeHandler interface {
	ModeDidChange(iface string)
}

type ScanCacheHandler interface {
	ScanCacheUpdated(iface string)
}

// Handles reports whether o implements the handler for t.
func Handles(o Observer, t EventType) bool {
	switch t {
	case EventTypePowerDidChange:
		_, ok := o.(PowerHandler)
		return ok
	case EventTypeSSIDDidChange:
		_, ok := o.(SSIDHandler)
		return ok
	case EventTypeBSSIDDidChange:
		_, ok := o.(BSSIDHandler)
		return ok
	case EventTypeCountryCodeDidChange:
		_, ok := o.(CountryCodeHandler)
		return ok
	case EventTypeLinkDidChange:
		_, ok := o.(LinkHandler)
		return ok
	case EventTypeLinkQualityDidChange:
		_, ok := o.(LinkQualityHandler)
		return ok
	case EventTypeModeDidChange:
		_, ok := o.(ModeHandler)
		return ok
	case EventTypeScanCacheUpdated:
		_, ok := o.(ScanCacheHandler)
		return ok
	default:
		return false
	}
}

func deliver(o Observer, e Event) {
	switch e.Type {
	case EventTypePowerDidChange:
		if h, ok := o.(PowerHandler); ok {
			h.PowerDidChange(e.Interface)
		}
	case EventTypeSSIDDidChange:
		if h, ok := o.(SSIDHandler); ok {
			h.SSIDDidChange(e.Interface)
		}
	case EventTypeBSSIDDidChange:
		if h, ok := o.(BSSIDHandler); ok {
			h.BSSIDDidChange(e.Interface)
		}
	case EventTypeCountryCodeDidChange:
		if h, ok := o.(CountryCodeHandler); ok {
			h.CountryCodeDidChange(e.Interface)
		}
	case EventTypeLinkDidChange:
		if h, ok := o.(LinkHandler); ok {
			h.LinkDidChange(e.Interface)
		}
	case EventTypeLinkQualityDidChange:
		if h, ok := o.(LinkQualityHandler); ok {
			h.LinkQualityDidChange(e.Interface, e.RSSI, e.TransmitRate)
		}
	case EventTypeModeDidChange:
		if h, ok := o.(ModeHandler); ok {
			h.ModeDidChange(e.Interface)
		}
	case EventTypeScanCacheUpdated:
		if h, ok := o.(ScanCacheHandler); ok {
			h.ScanCacheUpdated(e.Interface)
		}
	}
}
