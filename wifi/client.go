package wifi

import (
	"sync"

	"github.com/cenkalti/backoff/v4"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Hardware reaches the wireless driver. Required.
	Hardware Hardware

	Logger Logger

	// Entitlements granted to this process. Scanning, associating and
	// creating IBSS networks each need their own entitlement.
	Entitlements Entitlements

	// Privileged reports whether the caller has administrator privileges.
	// Defaults to IsRoot.
	Privileged func() bool

	// NewBackOff returns the retry policy used to re-register events after
	// an interruption.
	NewBackOff func() backoff.BackOff
}

// Client owns the interface handles of one process and its event notifier.
type Client struct {
	hw           Hardware
	log          Logger
	entitlements Entitlements
	privileged   func() bool

	notifier *Notifier

	mu         sync.Mutex
	interfaces map[string]*Interface
}

// NewClient creates a Client on top of config.Hardware and starts its
// notifier.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil || config.Hardware == nil {
		return nil, NewError(InvalidParameterError, "no hardware given")
	}

	c := &Client{
		hw:           config.Hardware,
		log:          config.Logger,
		entitlements: config.Entitlements,
		privileged:   config.Privileged,
		interfaces:   make(map[string]*Interface),
	}

	if c.log == nil {
		c.log = noopLogger{}
	}

	if c.privileged == nil {
		c.privileged = IsRoot
	}

	c.notifier = newNotifier(&notifierConfig{
		Hardware:   c.hw,
		Logger:     c.log,
		NewBackOff: config.NewBackOff,
	})

	c.notifier.start()

	return c, nil
}

var (
	shared     *Client
	sharedErr  error
	sharedOnce sync.Once
)

// Shared returns a process wide Client with every entitlement, creating it
// with the hardware returned by open on first use. Later calls ignore open.
func Shared(open func() (Hardware, error)) (*Client, error) {
	sharedOnce.Do(func() {
		hw, err := open()
		if err != nil {
			sharedErr = hardwareError(err, IPCFailureError, "could not open hardware")
			return
		}

		shared, sharedErr = NewClient(&ClientConfig{
			Hardware:     hw,
			Entitlements: EntitlementsAll,
		})
	})

	return shared, sharedErr
}

// Entitlements returns the entitlements granted to the client.
func (c *Client) Entitlements() Entitlements {
	return c.entitlements
}

// InterfaceNames returns the names of all Wi-Fi interfaces.
func (c *Client) InterfaceNames() ([]string, error) {
	names, err := c.hw.InterfaceNames()
	if err != nil {
		return nil, hardwareError(err, IPCFailureError, "could not list interfaces")
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

// DefaultInterface returns the platform's default Wi-Fi interface.
func (c *Client) DefaultInterface() (*Interface, error) {
	return c.Interface("")
}

// Interface returns the interface called name, or the default interface when
// name is empty. Handles are cached and dropped once their interface
// disappears.
func (c *Client) Interface(name string) (*Interface, error) {
	if name == "" {
		var err error

		name, err = c.hw.DefaultInterfaceName()
		if err != nil {
			return nil, hardwareError(err, IPCFailureError, "could not determine default interface")
		}

		if name == "" {
			return nil, NewError(ReferenceNotBoundError, "no default interface")
		}
	}

	names, err := c.InterfaceNames()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(names)

	if !contains(names, name) {
		return nil, NewError(ReferenceNotBoundError, "no interface named %v", name)
	}

	if iface, ok := c.interfaces[name]; ok {
		return iface, nil
	}

	dev, err := c.hw.Device(name)
	if err != nil {
		return nil, hardwareError(err, ReferenceNotBoundError, "could not open interface "+name)
	}

	iface := &Interface{
		name:   name,
		dev:    dev,
		client: c,
		log:    c.log,
	}

	c.interfaces[name] = iface

	return iface, nil
}

// Interfaces returns a handle for every Wi-Fi interface.
func (c *Client) Interfaces() ([]*Interface, error) {
	names, err := c.InterfaceNames()
	if err != nil {
		return nil, err
	}

	ifaces := make([]*Interface, 0, len(names))

	for _, name := range names {
		iface, err := c.Interface(name)
		if err != nil {
			// vanished between the two lookups
			if CodeOf(err) == ReferenceNotBoundError {
				continue
			}

			return nil, err
		}

		ifaces = append(ifaces, iface)
	}

	return ifaces, nil
}

func (c *Client) evictLocked(names []string) {
	for name := range c.interfaces {
		if !contains(names, name) {
			c.log.Debugf("Interface %v went away", name)
			delete(c.interfaces, name)
		}
	}
}

func (c *Client) Notifier() *Notifier {
	return c.notifier
}

func (c *Client) SetObserver(o Observer) {
	c.notifier.SetObserver(o)
}

func (c *Client) RemoveObserver() {
	c.notifier.RemoveObserver()
}

func (c *Client) StartMonitoring(t EventType) error {
	return c.notifier.StartMonitoring(t)
}

func (c *Client) StopMonitoring(t EventType) error {
	return c.notifier.StopMonitoring(t)
}

func (c *Client) StopMonitoringAll() error {
	return c.notifier.StopMonitoringAll()
}

// Close stops event delivery and releases the hardware.
func (c *Client) Close() error {
	c.notifier.close()

	err := c.hw.Close()
	if err != nil {
		return hardwareError(err, IPCFailureError, "could not close hardware")
	}

	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}

	return false
}
