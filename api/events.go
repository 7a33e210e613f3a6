package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/wlanctl/wifi"
)

const (
	sessionBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type eventMessage struct {
	Session      string  `json:"session"`
	Type         string  `json:"type"`
	Interface    string  `json:"interface,omitempty"`
	RSSI         int     `json:"rssi,omitempty"`
	TransmitRate float64 `json:"transmit_rate,omitempty"`
}

type session struct {
	id       string
	messages chan *eventMessage
}

// Events fans the client's notifications out to every websocket session.
type Events struct {
	log Logger

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

var (
	_ wifi.InterruptionHandler = (*Events)(nil)
	_ wifi.InvalidationHandler = (*Events)(nil)
	_ wifi.PowerHandler        = (*Events)(nil)
	_ wifi.SSIDHandler         = (*Events)(nil)
	_ wifi.BSSIDHandler        = (*Events)(nil)
	_ wifi.CountryCodeHandler  = (*Events)(nil)
	_ wifi.LinkHandler         = (*Events)(nil)
	_ wifi.LinkQualityHandler  = (*Events)(nil)
	_ wifi.ModeHandler         = (*Events)(nil)
	_ wifi.ScanCacheHandler    = (*Events)(nil)
)

func newEvents(log Logger) *Events {
	return &Events{
		log:      log,
		sessions: make(map[string]*session),
	}
}

func (e *Events) subscribe() (*session, bool) {
	s := &session{
		id:       uuid.New().String(),
		messages: make(chan *eventMessage, sessionBuffer),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, false
	}

	e.sessions[s.id] = s

	e.log.Debugf("Opened event session %v", s.id)

	return s, true
}

func (e *Events) unsubscribe(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[s.id]; !ok {
		return
	}

	delete(e.sessions, s.id)
	close(s.messages)

	e.log.Debugf("Closed event session %v", s.id)
}

func (e *Events) close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	for id, s := range e.sessions {
		delete(e.sessions, id)
		close(s.messages)
	}
}

// publish never blocks the notifier. A session that does not keep up loses
// messages.
func (e *Events) publish(msg eventMessage) {
	e.log.Infof("Wi-Fi event %v on %v", msg.Type, msg.Interface)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.sessions {
		m := msg
		m.Session = s.id

		select {
		case s.messages <- &m:
		default:
			e.log.Warnf("Dropped %v event for slow session %v", msg.Type, s.id)
		}
	}
}

func (e *Events) ConnectionInterrupted() {
	e.publish(eventMessage{Type: "interrupted"})
}

func (e *Events) ConnectionInvalidated() {
	e.publish(eventMessage{Type: "invalidated"})
}

func (e *Events) PowerDidChange(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypePowerDidChange.String(), Interface: iface})
}

func (e *Events) SSIDDidChange(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypeSSIDDidChange.String(), Interface: iface})
}

func (e *Events) BSSIDDidChange(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypeBSSIDDidChange.String(), Interface: iface})
}

func (e *Events) CountryCodeDidChange(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypeCountryCodeDidChange.String(), Interface: iface})
}

func (e *Events) LinkDidChange(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypeLinkDidChange.String(), Interface: iface})
}

func (e *Events) LinkQualityDidChange(iface string, rssi int, transmitRate float64) {
	e.publish(eventMessage{
		Type:         wifi.EventTypeLinkQualityDidChange.String(),
		Interface:    iface,
		RSSI:         rssi,
		TransmitRate: transmitRate,
	})
}

func (e *Events) ModeDidChange(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypeModeDidChange.String(), Interface: iface})
}

func (e *Events) ScanCacheUpdated(iface string) {
	e.publish(eventMessage{Type: wifi.EventTypeScanCacheUpdated.String(), Interface: iface})
}

func (a *Api) handleGetEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := a.events.subscribe()
		if !ok {
			a.jsonError(w, wifi.NewError(wifi.IPCFailureError, "event stream is closed"))
			return
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.events.unsubscribe(s)
			a.log.Errorf("Could not upgrade event session: %v", err)
			return
		}

		// read pump
		go func() {
			defer a.events.unsubscribe(s)

			c.SetReadLimit(512)
			_ = c.SetReadDeadline(time.Now().Add(pongWait))
			c.SetPongHandler(func(string) error {
				return c.SetReadDeadline(time.Now().Add(pongWait))
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					break
				}
			}
		}()

		// write pump
		go func() {
			defer c.Close()

			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()

			for {
				select {
				case msg, ok := <-s.messages:
					_ = c.SetWriteDeadline(time.Now().Add(writeWait))

					if !ok {
						_ = c.WriteMessage(websocket.CloseMessage, []byte{})
						return
					}

					err := c.WriteJSON(msg)
					if err != nil {
						return
					}
				case <-ticker.C:
					_ = c.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
	}
}
