package wifi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// SubscriptionState is the registration state of one event type.
type SubscriptionState int

const (
	Unregistered SubscriptionState = iota
	Registered
	Interrupted
	Invalidated
)

func (s SubscriptionState) String() string {
	switch s {
	case Unregistered:
		return "UNREGISTERED"
	case Registered:
		return "REGISTERED"
	case Interrupted:
		return "INTERRUPTED"
	case Invalidated:
		return "INVALIDATED"
	default:
		return "INVALID STATE"
	}
}

type notifierConfig struct {
	Hardware   Hardware
	Logger     Logger
	NewBackOff func() backoff.BackOff
}

// Notifier keeps the event subscriptions of one client and delivers hardware
// events to its observer on a dedicated goroutine.
type Notifier struct {
	hw         Hardware
	log        Logger
	newBackOff func() backoff.BackOff

	mu            sync.Mutex
	observer      Observer
	subscriptions map[EventType]SubscriptionState
	invalidated   bool
	recovering    bool
	epoch         uint64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func newNotifier(config *notifierConfig) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())

	n := &Notifier{
		hw:            config.Hardware,
		log:           config.Logger,
		newBackOff:    config.NewBackOff,
		subscriptions: make(map[EventType]SubscriptionState),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if n.log == nil {
		n.log = noopLogger{}
	}

	if n.newBackOff == nil {
		n.newBackOff = defaultBackOff
	}

	return n
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0

	return b
}

func (n *Notifier) start() {
	n.wg.Add(1)
	go n.run()
}

// SetObserver replaces the observer. The notifier does not own it; call
// RemoveObserver before the observer goes away.
func (n *Notifier) SetObserver(o Observer) {
	n.mu.Lock()
	n.observer = o
	n.mu.Unlock()
}

func (n *Notifier) RemoveObserver() {
	n.SetObserver(nil)
}

// State returns the registration state of t.
func (n *Notifier) State(t EventType) SubscriptionState {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.invalidated {
		return Invalidated
	}

	return n.subscriptions[t]
}

// StartMonitoring registers for events of type t. Registering twice is a
// no-op, as is registering a type that is waiting for re-registration.
func (n *Notifier) StartMonitoring(t EventType) error {
	if !t.Valid() {
		return NewError(InvalidParameterError, "cannot monitor event type %v", t)
	}

	n.mu.Lock()
	if n.invalidated {
		n.mu.Unlock()
		return NewError(IPCFailureError, "connection to wireless service was invalidated")
	}

	switch n.subscriptions[t] {
	case Registered, Interrupted:
		n.mu.Unlock()
		return nil
	}

	epoch := n.epoch
	n.mu.Unlock()

	err := n.hw.StartMonitoring(t)
	if err != nil {
		return hardwareError(err, IPCFailureError, "could not start monitoring "+t.String())
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.invalidated {
		return NewError(IPCFailureError, "connection to wireless service was invalidated")
	}

	if epoch != n.epoch {
		// the registration raced with an interruption and may have been lost
		n.subscriptions[t] = Interrupted
		n.ensureRecoveryLocked()
		return nil
	}

	n.subscriptions[t] = Registered
	n.log.Debugf("Started monitoring %v events", t)

	return nil
}

// StopMonitoring unregisters events of type t.
func (n *Notifier) StopMonitoring(t EventType) error {
	if !t.Valid() {
		return NewError(InvalidParameterError, "cannot monitor event type %v", t)
	}

	n.mu.Lock()
	if n.invalidated {
		n.mu.Unlock()
		return NewError(IPCFailureError, "connection to wireless service was invalidated")
	}

	previous := n.subscriptions[t]
	delete(n.subscriptions, t)
	n.mu.Unlock()

	// an interrupted registration no longer exists on the hardware side
	if previous != Registered {
		return nil
	}

	err := n.hw.StopMonitoring(t)
	if err != nil {
		return hardwareError(err, IPCFailureError, "could not stop monitoring "+t.String())
	}

	n.log.Debugf("Stopped monitoring %v events", t)

	return nil
}

// StopMonitoringAll unregisters every event type and reports the first
// failure.
func (n *Notifier) StopMonitoringAll() error {
	var first error

	for _, t := range EventTypes {
		err := n.StopMonitoring(t)
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

func (n *Notifier) run() {
	defer n.wg.Done()

	events := n.hw.Events()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				n.invalidate()
				return
			}

			n.handle(e)
		case <-n.done:
			return
		}
	}
}

func (n *Notifier) handle(e Event) {
	if e.Type == EventTypeNone {
		switch e.Connection {
		case ConnectionInterrupted:
			n.interrupt()
		case ConnectionInvalidated:
			n.invalidate()
		case ConnectionUp:
			n.log.Debugf("Connection to wireless service is up")
		}

		return
	}

	n.mu.Lock()
	state := n.subscriptions[e.Type]
	observer := n.observer
	invalidated := n.invalidated
	n.mu.Unlock()

	if invalidated || state != Registered || observer == nil {
		return
	}

	deliver(observer, e)
}

func (n *Notifier) interrupt() {
	n.mu.Lock()
	if n.invalidated {
		n.mu.Unlock()
		return
	}

	n.epoch++

	for t, state := range n.subscriptions {
		if state == Registered {
			n.subscriptions[t] = Interrupted
		}
	}

	n.ensureRecoveryLocked()
	observer := n.observer
	n.mu.Unlock()

	n.log.Warnf("Connection to wireless service was interrupted")

	if h, ok := observer.(InterruptionHandler); ok {
		h.ConnectionInterrupted()
	}
}

func (n *Notifier) invalidate() {
	n.mu.Lock()
	if n.invalidated {
		n.mu.Unlock()
		return
	}

	n.invalidated = true

	for _, t := range EventTypes {
		n.subscriptions[t] = Invalidated
	}

	observer := n.observer
	n.mu.Unlock()

	n.cancel()

	n.log.Errorf("Connection to wireless service was invalidated")

	if h, ok := observer.(InvalidationHandler); ok {
		h.ConnectionInvalidated()
	}
}

// ensureRecoveryLocked starts the re-registration goroutine unless one is
// already running. n.mu must be held.
func (n *Notifier) ensureRecoveryLocked() {
	if n.recovering || n.invalidated || n.ctx.Err() != nil {
		return
	}

	for _, state := range n.subscriptions {
		if state == Interrupted {
			n.recovering = true
			n.wg.Add(1)
			go n.reregister()
			return
		}
	}
}

func (n *Notifier) interruptedTypes() []EventType {
	var types []EventType

	for _, t := range EventTypes {
		if n.subscriptions[t] == Interrupted {
			types = append(types, t)
		}
	}

	return types
}

func (n *Notifier) reregister() {
	defer n.wg.Done()

	for {
		b := backoff.WithContext(n.newBackOff(), n.ctx)

		err := backoff.RetryNotify(n.reregisterOnce, b, func(err error, next time.Duration) {
			n.log.Debugf("Could not re-register events, retrying in %v: %v", next, err)
		})
		if err != nil {
			n.log.Warnf("Gave up re-registering events: %v", err)
		}

		n.mu.Lock()
		if n.invalidated || n.ctx.Err() != nil || len(n.interruptedTypes()) == 0 {
			n.recovering = false
			n.mu.Unlock()
			return
		}
		n.mu.Unlock()
	}
}

func (n *Notifier) reregisterOnce() error {
	n.mu.Lock()
	if n.invalidated {
		n.mu.Unlock()
		return backoff.Permanent(NewError(IPCFailureError, "connection to wireless service was invalidated"))
	}

	pending := n.interruptedTypes()
	epoch := n.epoch
	n.mu.Unlock()

	var failed error

	for _, t := range pending {
		err := n.hw.StartMonitoring(t)
		if err != nil {
			failed = err
			continue
		}

		n.mu.Lock()
		state := n.subscriptions[t]
		if state == Interrupted && epoch == n.epoch {
			n.subscriptions[t] = Registered
		}
		n.mu.Unlock()

		if state == Unregistered {
			// stopped while we were re-registering
			_ = n.hw.StopMonitoring(t)
			continue
		}

		n.log.Infof("Re-registered %v events", t)
	}

	return failed
}

func (n *Notifier) close() {
	n.once.Do(func() {
		n.cancel()
		close(n.done)
	})

	n.wg.Wait()
}

// hardwareError keeps errors that already carry a code and assigns fallback
// to anything else.
func hardwareError(err error, fallback Code, msg string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Wrap(fallback, err, msg)
}
