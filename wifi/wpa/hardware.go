package wpa

import (
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifidb"
)

// check Hardware compliance to its interface during compile time
var _ wifi.Hardware = (*Hardware)(nil)

const (
	defaultScanTimeout      = 15 * time.Second
	defaultAssociateTimeout = 30 * time.Second
	defaultPollInterval     = 2 * time.Second

	eventBuffer = 64
)

type Config struct {
	Logger Logger

	// DB persists committed configurations. Optional.
	DB *wifidb.DB

	// Interface is reported as the default interface. When empty the first
	// interface the supplicant controls is.
	Interface string

	ScanTimeout      time.Duration
	AssociateTimeout time.Duration

	// PollInterval is how often link quality is sampled while monitored.
	PollInterval time.Duration
}

type linkSample struct {
	rssi int
	rate int
}

// Hardware reaches the wireless driver through wpa_supplicant.
type Hardware struct {
	log Logger
	db  *wifidb.DB
	wpa *Wpa

	defaultInterface string
	scanTimeout      time.Duration
	associateTimeout time.Duration
	pollInterval     time.Duration

	mu         sync.Mutex
	monitoring map[wifi.EventType]bool
	names      map[dbus.ObjectPath]string
	states     map[string]string
	samples    map[string]linkSample
	staged     map[string]*credentials
	closing    bool

	events chan wifi.Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func New(config *Config) *Hardware {
	h := &Hardware{
		db:               config.DB,
		defaultInterface: config.Interface,
		scanTimeout:      config.ScanTimeout,
		associateTimeout: config.AssociateTimeout,
		pollInterval:     config.PollInterval,
		monitoring:       make(map[wifi.EventType]bool),
		names:            make(map[dbus.ObjectPath]string),
		states:           make(map[string]string),
		samples:          make(map[string]linkSample),
		staged:           make(map[string]*credentials),
		events:           make(chan wifi.Event, eventBuffer),
		done:             make(chan struct{}),
	}

	if config.Logger != nil {
		h.log = config.Logger
	} else {
		h.log = noopLogger{}
	}

	if h.scanTimeout <= 0 {
		h.scanTimeout = defaultScanTimeout
	}

	if h.associateTimeout <= 0 {
		h.associateTimeout = defaultAssociateTimeout
	}

	if h.pollInterval <= 0 {
		h.pollInterval = defaultPollInterval
	}

	h.wpa = NewWpa(h.log)

	return h
}

// Start connects to the system bus and begins translating supplicant
// signals into events.
func (h *Hardware) Start() error {
	err := h.wpa.Start()
	if err != nil {
		return wifi.Wrap(wifi.IPCFailureError, err, "could not start wpa")
	}

	if _, err := h.InterfaceNames(); err != nil {
		h.log.Warnf("Could not list interfaces: %v", err)
	}

	h.wg.Add(2)
	go h.dispatch()
	go h.poll()

	return nil
}

func (h *Hardware) InterfaceNames() ([]string, error) {
	ifaces, err := h.wpa.Interfaces()
	if err != nil {
		return nil, dbusError(err, "could not list interfaces")
	}

	names := make([]string, 0, len(ifaces))

	for _, iface := range ifaces {
		name, err := iface.Ifname()
		if err != nil {
			// removed while listing
			continue
		}

		h.track(iface, name)

		names = append(names, name)
	}

	return names, nil
}

func (h *Hardware) DefaultInterfaceName() (string, error) {
	if h.defaultInterface != "" {
		return h.defaultInterface, nil
	}

	names, err := h.InterfaceNames()
	if err != nil {
		return "", err
	}

	if len(names) == 0 {
		return "", nil
	}

	return names[0], nil
}

func (h *Hardware) Device(name string) (wifi.Device, error) {
	iface, err := h.wpa.GetInterface(name)
	if err != nil {
		return nil, err
	}

	h.track(iface, name)

	return &Device{
		hw:    h,
		name:  name,
		iface: iface,
	}, nil
}

// StartMonitoring fails while wpa_supplicant is not on the bus, so a
// registration lost to a supplicant restart is retried until it is back.
func (h *Hardware) StartMonitoring(t wifi.EventType) error {
	running, err := h.wpa.NameHasOwner()
	if err != nil {
		return err
	}

	if !running {
		return wifi.NewError(wifi.IPCFailureError, "wpa_supplicant is not running")
	}

	h.mu.Lock()
	h.monitoring[t] = true
	h.mu.Unlock()

	return nil
}

func (h *Hardware) StopMonitoring(t wifi.EventType) error {
	h.mu.Lock()
	delete(h.monitoring, t)
	h.mu.Unlock()

	return nil
}

func (h *Hardware) Events() <-chan wifi.Event {
	return h.events
}

func (h *Hardware) Close() error {
	var err error

	h.once.Do(func() {
		h.mu.Lock()
		h.closing = true
		h.mu.Unlock()

		close(h.done)

		err = h.wpa.Stop()
		h.wg.Wait()

		close(h.events)
	})

	if err != nil {
		return wifi.Wrap(wifi.IPCFailureError, err, "could not stop wpa")
	}

	return nil
}

func (h *Hardware) send(e wifi.Event) {
	select {
	case h.events <- e:
	case <-h.done:
	}
}

func (h *Hardware) emit(t wifi.EventType, iface string) {
	h.mu.Lock()
	wanted := h.monitoring[t]
	h.mu.Unlock()

	if wanted {
		h.send(wifi.Event{Type: t, Interface: iface})
	}
}

func (h *Hardware) dispatch() {
	defer h.wg.Done()

	for {
		select {
		case signal := <-h.wpa.Signals():
			h.handleSignal(signal)
		case <-h.wpa.Terminated():
			h.mu.Lock()
			closing := h.closing
			h.mu.Unlock()

			if !closing {
				h.log.Errorf("Lost connection to the system bus")
				h.send(wifi.Event{Connection: wifi.ConnectionInvalidated})
			}

			return
		case <-h.done:
			return
		}
	}
}

func (h *Hardware) handleSignal(signal *dbus.Signal) {
	switch signal.Name {
	case "org.freedesktop.DBus.NameOwnerChanged":
		if len(signal.Body) < 3 {
			return
		}

		name, _ := signal.Body[0].(string)
		owner, _ := signal.Body[2].(string)

		if name != service {
			return
		}

		if owner == "" {
			h.serviceLost()
			return
		}

		h.log.Infof("wpa_supplicant is back on the bus")
		h.send(wifi.Event{Connection: wifi.ConnectionUp})
	case interfaceName + ".ScanDone":
		name, ok := h.nameOf(signal.Path)
		if !ok {
			return
		}

		h.emit(wifi.EventTypeScanCacheUpdated, name)
	case interfaceName + ".PropertiesChanged":
		if len(signal.Body) < 1 {
			return
		}

		props, ok := signal.Body[0].(map[string]dbus.Variant)
		if !ok {
			return
		}

		name, ok := h.nameOf(signal.Path)
		if !ok {
			return
		}

		for _, t := range h.propertyEvents(name, props) {
			h.emit(t, name)
		}
	}
}

// propertyEvents translates a change of interface properties into events.
func (h *Hardware) propertyEvents(name string, props map[string]dbus.Variant) []wifi.EventType {
	var events []wifi.EventType

	if v, ok := props["State"]; ok {
		if state, ok := v.Value().(string); ok {
			h.mu.Lock()
			previous, known := h.states[name]
			h.states[name] = state
			h.mu.Unlock()

			events = append(events, stateEvents(previous, state, known)...)
		}
	}

	if _, ok := props["CurrentBSS"]; ok {
		events = append(events, wifi.EventTypeSSIDDidChange, wifi.EventTypeBSSIDDidChange)
	}

	if _, ok := props["Country"]; ok {
		events = append(events, wifi.EventTypeCountryCodeDidChange)
	}

	if _, ok := props["CurrentNetwork"]; ok {
		events = append(events, wifi.EventTypeModeDidChange)
	}

	return events
}

func stateEvents(previous string, state string, known bool) []wifi.EventType {
	var events []wifi.EventType

	if !known || previous == state {
		return nil
	}

	if (previous == "interface_disabled") != (state == "interface_disabled") {
		events = append(events, wifi.EventTypePowerDidChange)
	}

	if (previous == "completed") != (state == "completed") {
		events = append(events, wifi.EventTypeLinkDidChange)
	}

	return events
}

func (h *Hardware) serviceLost() {
	h.mu.Lock()
	h.monitoring = make(map[wifi.EventType]bool)
	h.names = make(map[dbus.ObjectPath]string)
	h.states = make(map[string]string)
	h.samples = make(map[string]linkSample)
	h.mu.Unlock()

	h.log.Warnf("wpa_supplicant left the bus")

	h.send(wifi.Event{Connection: wifi.ConnectionInterrupted})
}

// nameOf resolves the interface name of an object path. It may call the
// bus, so it must not run on the connection's reader.
func (h *Hardware) nameOf(path dbus.ObjectPath) (string, bool) {
	h.mu.Lock()
	name, ok := h.names[path]
	h.mu.Unlock()

	if ok {
		return name, true
	}

	name, err := h.wpa.Interface(path).Ifname()
	if err != nil {
		h.log.Debugf("Could not resolve interface %v: %v", path, err)
		return "", false
	}

	h.mu.Lock()
	h.names[path] = name
	h.mu.Unlock()

	return name, true
}

// poll samples link quality of associated interfaces, since the supplicant
// does not signal it.
func (h *Hardware) poll() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sampleLinkQuality()
		case <-h.done:
			return
		}
	}
}

func (h *Hardware) sampleLinkQuality() {
	h.mu.Lock()
	if !h.monitoring[wifi.EventTypeLinkQualityDidChange] {
		h.mu.Unlock()
		return
	}

	paths := make(map[dbus.ObjectPath]string, len(h.names))
	for path, name := range h.names {
		if h.states[name] == "completed" {
			paths[path] = name
		}
	}
	h.mu.Unlock()

	for path, name := range paths {
		props, err := h.wpa.Interface(path).SignalPoll()
		if err != nil {
			h.log.Debugf("Could not poll signal of %v: %v", name, err)
			continue
		}

		sample := linkSample{
			rssi: variantInt(props["rssi"]),
			rate: variantInt(props["linkspeed"]),
		}

		h.mu.Lock()
		previous, known := h.samples[name]
		h.samples[name] = sample
		h.mu.Unlock()

		if known && previous == sample {
			continue
		}

		h.send(wifi.Event{
			Type:         wifi.EventTypeLinkQualityDidChange,
			Interface:    name,
			RSSI:         sample.rssi,
			TransmitRate: float64(sample.rate),
		})
	}
}

// track remembers the name behind an interface path and seeds its state, so
// the first State change already yields events.
func (h *Hardware) track(iface *Interface, name string) {
	h.mu.Lock()
	h.names[iface.Path()] = name
	_, known := h.states[name]
	h.mu.Unlock()

	if known {
		return
	}

	state, err := iface.State()
	if err != nil {
		h.log.Debugf("Could not read state of %v: %v", name, err)
		return
	}

	h.mu.Lock()
	if _, ok := h.states[name]; !ok {
		h.states[name] = state
	}
	h.mu.Unlock()
}

func (h *Hardware) credentials(name string) *credentials {
	h.mu.Lock()
	defer h.mu.Unlock()

	creds, ok := h.staged[name]
	if !ok {
		creds = &credentials{}
		h.staged[name] = creds
	}

	return creds
}

func variantInt(v dbus.Variant) int {
	switch n := v.Value().(type) {
	case int32:
		return int(n)
	case uint32:
		return int(n)
	case int16:
		return int(n)
	case uint16:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
