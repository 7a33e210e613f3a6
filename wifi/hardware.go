package wifi

// Authorization is an opaque privilege token. The client never looks inside
// it; it is handed to the hardware with CommitConfiguration.
type Authorization []byte

// ConnectionState reports the health of the channel to the wireless service.
type ConnectionState int

const (
	ConnectionUp ConnectionState = iota
	ConnectionInterrupted
	ConnectionInvalidated
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionUp:
		return "UP"
	case ConnectionInterrupted:
		return "INTERRUPTED"
	case ConnectionInvalidated:
		return "INVALIDATED"
	default:
		return "INVALID STATE"
	}
}

// Event is a change reported by the hardware. A zero Type with a non-zero
// Connection carries a connection state change instead of an interface event.
type Event struct {
	Type         EventType
	Interface    string
	RSSI         int
	TransmitRate float64
	Connection   ConnectionState
}

// Hardware is the collaborator that reaches the wireless driver. Every call
// may fail; failures should already carry a Code where the backend knows one.
type Hardware interface {
	InterfaceNames() ([]string, error)
	DefaultInterfaceName() (string, error)
	Device(name string) (Device, error)

	// StartMonitoring asks the backend to report events of the given type on
	// the Events channel. It must be idempotent.
	StartMonitoring(t EventType) error
	StopMonitoring(t EventType) error

	// Events is closed when the hardware is closed.
	Events() <-chan Event

	Close() error
}

// Device is the per-interface part of the hardware collaborator.
type Device interface {
	Name() string

	PowerOn() (bool, error)
	SupportedChannels() ([]Channel, error)
	Channel() (Channel, error)
	PHYMode() (PHYMode, error)
	SSID() ([]byte, error)
	BSSID() (string, error)
	RSSI() (int, error)
	Noise() (int, error)
	Security() (Security, error)
	TransmitRate() (float64, error)
	CountryCode() (string, error)
	Mode() (InterfaceMode, error)
	TransmitPower() (int, error)
	HardwareAddress() (string, error)
	ServiceActive() (bool, error)
	CachedScanResults() ([]Network, error)
	Configuration() (Configuration, error)

	SetPower(on bool) error
	SetChannel(channel Channel) error
	SetPairwiseMasterKey(key []byte) error
	SetWEPKey(key []byte, flags CipherKeyFlags, index int) error
	Scan(ssid []byte) ([]Network, error)
	Associate(network Network, password string) error
	Disassociate() error
	StartIBSS(ssid []byte, security IBSSModeSecurity, channel Channel, password string) error
	CommitConfiguration(config Configuration, auth Authorization) error
}
