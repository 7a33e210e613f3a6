package mock

import (
	"fmt"
	"sync"

	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifidb"
)

// check Hardware compliance to its interface during compile time
var _ wifi.Hardware = (*Hardware)(nil)

const eventBuffer = 64

type Config struct {
	Logger Logger

	// DB persists committed configurations. Without it configurations only
	// live as long as the Hardware.
	DB *wifidb.DB

	// Interfaces to simulate, the first being the default. Defaults to
	// a single wlan0.
	Interfaces []string
}

// Hardware is a simulated wireless driver. Every interface sees its own set
// of networks, which tests and the daemon's mock mode add at will.
type Hardware struct {
	log Logger
	db  *wifidb.DB

	mu         sync.Mutex
	devices    map[string]*state
	order      []string
	monitoring map[wifi.EventType]bool
	available  bool
	closed     bool
	failures   map[string][]error
	calls      map[string]int
	nextAddr   int

	sendMu sync.RWMutex
	events chan wifi.Event
	done   chan struct{}
	once   sync.Once
}

func New(config *Config) *Hardware {
	h := &Hardware{
		db:         config.DB,
		devices:    make(map[string]*state),
		monitoring: make(map[wifi.EventType]bool),
		available:  true,
		failures:   make(map[string][]error),
		calls:      make(map[string]int),
		events:     make(chan wifi.Event, eventBuffer),
		done:       make(chan struct{}),
	}

	if config.Logger != nil {
		h.log = config.Logger
	} else {
		h.log = noopLogger{}
	}

	names := config.Interfaces
	if len(names) == 0 {
		names = []string{"wlan0"}
	}

	for _, name := range names {
		h.AddInterface(name)
	}

	return h
}

// AddInterface makes a new interface appear. Adding an existing name is a
// no-op.
func (h *Hardware) AddInterface(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.devices[name]; ok {
		return
	}

	h.nextAddr++
	s := newState(fmt.Sprintf("02:00:00:00:00:%02X", h.nextAddr))

	if h.db != nil {
		config, err := h.db.GetConfiguration(name)
		if err != nil {
			h.log.Warnf("Could not load configuration of %v: %v", name, err)
		} else {
			s.config = config
		}
	}

	h.devices[name] = s
	h.order = append(h.order, name)

	h.log.Debugf("Added mock interface %v", name)
}

// RemoveInterface makes an interface disappear, as if it was unplugged.
func (h *Hardware) RemoveInterface(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.devices, name)

	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// FailNext makes the next call of op, a Device or Hardware method name like
// "Scan" or "StartMonitoring", return err. Calls queue up.
func (h *Hardware) FailNext(op string, err error) {
	h.mu.Lock()
	h.failures[op] = append(h.failures[op], err)
	h.mu.Unlock()
}

// Calls returns how often op was called on the hardware or any device.
func (h *Hardware) Calls(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls[op]
}

// TotalCalls returns the number of device calls of any kind.
func (h *Hardware) TotalCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for _, n := range h.calls {
		total += n
	}

	return total
}

// callLocked records a call of op and pops an injected failure.
func (h *Hardware) callLocked(op string) error {
	h.calls[op]++

	if h.closed {
		return wifi.NewError(wifi.IPCFailureError, "hardware is closed")
	}

	if queued := h.failures[op]; len(queued) > 0 {
		h.failures[op] = queued[1:]
		return queued[0]
	}

	return nil
}

func (h *Hardware) InterfaceNames() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.callLocked("InterfaceNames"); err != nil {
		return nil, err
	}

	return append([]string{}, h.order...), nil
}

func (h *Hardware) DefaultInterfaceName() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.callLocked("DefaultInterfaceName"); err != nil {
		return "", err
	}

	if len(h.order) == 0 {
		return "", nil
	}

	return h.order[0], nil
}

func (h *Hardware) Device(name string) (wifi.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.callLocked("Device"); err != nil {
		return nil, err
	}

	if _, ok := h.devices[name]; !ok {
		return nil, wifi.NewError(wifi.ReferenceNotBoundError, "no mock interface %v", name)
	}

	return &Device{hw: h, name: name}, nil
}

func (h *Hardware) StartMonitoring(t wifi.EventType) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.callLocked("StartMonitoring"); err != nil {
		return err
	}

	if !h.available {
		return wifi.NewError(wifi.IPCFailureError, "wireless service is not running")
	}

	h.monitoring[t] = true

	return nil
}

func (h *Hardware) StopMonitoring(t wifi.EventType) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.callLocked("StopMonitoring"); err != nil {
		return err
	}

	delete(h.monitoring, t)

	return nil
}

// Monitoring reports whether the hardware currently reports events of type t.
func (h *Hardware) Monitoring(t wifi.EventType) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.monitoring[t]
}

func (h *Hardware) Events() <-chan wifi.Event {
	return h.events
}

// Emit reports an event of type t on iface if somebody monitors it.
func (h *Hardware) Emit(t wifi.EventType, iface string) {
	h.emit(wifi.Event{Type: t, Interface: iface})
}

func (h *Hardware) emit(e wifi.Event) {
	h.mu.Lock()
	wanted := e.Type == wifi.EventTypeNone || h.monitoring[e.Type]
	h.mu.Unlock()

	if !wanted {
		return
	}

	h.send(e)
}

func (h *Hardware) send(e wifi.Event) {
	h.sendMu.RLock()
	defer h.sendMu.RUnlock()

	select {
	case <-h.done:
	case h.events <- e:
	}
}

// Interrupt simulates a restart of the wireless service: every registration
// is lost and new ones fail until Restore.
func (h *Hardware) Interrupt() {
	h.mu.Lock()
	h.available = false
	h.monitoring = make(map[wifi.EventType]bool)
	h.mu.Unlock()

	h.log.Infof("Mock wireless service interrupted")

	h.send(wifi.Event{Connection: wifi.ConnectionInterrupted})
}

// Restore brings the wireless service back after Interrupt.
func (h *Hardware) Restore() {
	h.mu.Lock()
	h.available = true
	h.mu.Unlock()

	h.log.Infof("Mock wireless service restored")

	h.send(wifi.Event{Connection: wifi.ConnectionUp})
}

// Invalidate simulates losing the wireless service for good.
func (h *Hardware) Invalidate() {
	h.mu.Lock()
	h.available = false
	h.monitoring = make(map[wifi.EventType]bool)
	h.mu.Unlock()

	h.log.Infof("Mock wireless service invalidated")

	h.send(wifi.Event{Connection: wifi.ConnectionInvalidated})
}

func (h *Hardware) Close() error {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()

		close(h.done)

		h.sendMu.Lock()
		close(h.events)
		h.sendMu.Unlock()
	})

	return nil
}

func (h *Hardware) state(name string) (*state, error) {
	s, ok := h.devices[name]
	if !ok {
		return nil, wifi.NewError(wifi.ReferenceNotBoundError, "mock interface %v went away", name)
	}

	return s, nil
}
