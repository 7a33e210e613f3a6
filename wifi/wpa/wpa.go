package wpa

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

const (
	service       = "fi.w1.wpa_supplicant1"
	rootPath      = dbus.ObjectPath("/fi/w1/wpa_supplicant1")
	interfaceName = "fi.w1.wpa_supplicant1.Interface"
	bssName       = "fi.w1.wpa_supplicant1.BSS"
	networkName   = "fi.w1.wpa_supplicant1.Network"

	signalBuffer = 64
)

type nextListener struct {
	sync.Mutex
	id uint32
}

// listener receives the signals emitted by one object.
type listener struct {
	id      uint32
	path    dbus.ObjectPath
	signals chan *dbus.Signal
}

// Wpa is a connection to wpa_supplicant on the system bus.
type Wpa struct {
	log  Logger
	conn *dbus.Conn
	obj  dbus.BusObject

	signals    chan *dbus.Signal
	terminated chan struct{}
	terminate  sync.Once

	mu           sync.Mutex
	listeners    map[uint32]*listener
	nextListener nextListener
}

func NewWpa(log Logger) *Wpa {
	if log == nil {
		log = noopLogger{}
	}

	return &Wpa{
		log:        log,
		signals:    make(chan *dbus.Signal, signalBuffer),
		terminated: make(chan struct{}),
		listeners:  make(map[uint32]*listener),
	}
}

func (w *Wpa) Start() error {
	conn, err := dbus.ConnectSystemBus(dbus.WithSignalHandler(&wpaSignalHandler{w}))
	if err != nil {
		return errors.Errorf("could not connect to system bus: %v", err)
	}

	w.conn = conn
	w.obj = conn.Object(service, rootPath)

	matches := []struct {
		iface   string
		member  string
		options []dbus.MatchOption
	}{
		{"org.freedesktop.DBus", "NameOwnerChanged", []dbus.MatchOption{dbus.WithMatchArg(0, service)}},
		{interfaceName, "PropertiesChanged", nil},
		{interfaceName, "ScanDone", nil},
	}

	for _, m := range matches {
		call := conn.BusObject().AddMatchSignal(m.iface, m.member, m.options...)
		if call.Err != nil {
			_ = conn.Close()
			return errors.Errorf("could not add signal %v.%v: %v", m.iface, m.member, call.Err)
		}
	}

	return nil
}

func (w *Wpa) Stop() error {
	if w.conn == nil {
		return nil
	}

	err := w.conn.Close()
	if err != nil {
		return errors.Errorf("could not close system bus connection: %v", err)
	}

	return nil
}

// Signals delivers every signal the supplicant emits. Signals are dropped
// when nobody keeps up.
func (w *Wpa) Signals() <-chan *dbus.Signal {
	return w.signals
}

// Terminated is closed once the bus connection is gone.
func (w *Wpa) Terminated() <-chan struct{} {
	return w.terminated
}

// NameHasOwner reports whether wpa_supplicant is currently on the bus.
func (w *Wpa) NameHasOwner() (bool, error) {
	var has bool

	err := w.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, service).Store(&has)
	if err != nil {
		return false, dbusError(err, "could not look up wpa_supplicant")
	}

	return has, nil
}

// GetInterface returns the supplicant interface controlling ifname.
func (w *Wpa) GetInterface(ifname string) (*Interface, error) {
	var path dbus.ObjectPath

	err := w.obj.Call(service+".GetInterface", 0, ifname).Store(&path)
	if err != nil {
		return nil, dbusError(err, "could not get interface "+ifname)
	}

	return w.Interface(path), nil
}

// Interfaces returns every interface the supplicant controls.
func (w *Wpa) Interfaces() ([]*Interface, error) {
	v, err := w.obj.GetProperty(service + ".Interfaces")
	if err != nil {
		return nil, dbusError(err, "could not get interfaces")
	}

	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert interfaces: %v", v)
	}

	var ifaces []*Interface

	for _, path := range paths {
		ifaces = append(ifaces, w.Interface(path))
	}

	return ifaces, nil
}

func (w *Wpa) Interface(path dbus.ObjectPath) *Interface {
	return &Interface{
		wpa: w,
		obj: w.conn.Object(service, path),
	}
}

func (w *Wpa) listen(path dbus.ObjectPath) *listener {
	l := &listener{
		path:    path,
		signals: make(chan *dbus.Signal, signalBuffer),
	}

	w.nextListener.Lock()
	l.id = w.nextListener.id
	w.nextListener.id++
	w.nextListener.Unlock()

	w.mu.Lock()
	w.listeners[l.id] = l
	w.mu.Unlock()

	return l
}

func (w *Wpa) unlisten(l *listener) {
	w.mu.Lock()
	delete(w.listeners, l.id)
	w.mu.Unlock()
}
