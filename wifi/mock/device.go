package mock

import (
	"bytes"
	"fmt"

	"github.com/the-lightning-land/wlanctl/wifi"
)

var _ wifi.Device = (*Device)(nil)

type state struct {
	power         bool
	supported     []wifi.Channel
	channel       wifi.Channel
	phyMode       wifi.PHYMode
	ssid          []byte
	bssid         string
	rssi          int
	noise         int
	security      wifi.Security
	transmitRate  float64
	countryCode   string
	mode          wifi.InterfaceMode
	transmitPower int
	hardwareAddr  string
	serviceActive bool

	environment []visibleNetwork
	cache       []wifi.Network
	config      wifi.Configuration
	pmk         []byte
	wepKeys     [4][]byte
}

type visibleNetwork struct {
	network  wifi.Network
	hidden   bool
	password string
}

func newState(hardwareAddr string) *state {
	s := &state{
		power:         true,
		channel:       wifi.Channel{Number: 6, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand2GHz},
		phyMode:       wifi.PHYMode11n,
		security:      wifi.SecurityNone,
		countryCode:   "US",
		mode:          wifi.InterfaceModeStation,
		transmitPower: 100,
		hardwareAddr:  hardwareAddr,
		serviceActive: true,
	}

	for n := 1; n <= 11; n++ {
		s.supported = append(s.supported, wifi.Channel{Number: n, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand2GHz})
	}

	for _, n := range []int{36, 40, 44, 48} {
		s.supported = append(s.supported, wifi.Channel{Number: n, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand5GHz})
	}

	return s
}

// AddNetwork makes network visible to scans on iface. password is what
// Associate expects; it is ignored for open networks. The same network may be
// added more than once, e.g. to simulate repeated beacons.
func (h *Hardware) AddNetwork(iface string, network wifi.Network, password string) error {
	return h.addNetwork(iface, network, password, false)
}

// AddHiddenNetwork adds a network that only directed scans find.
func (h *Hardware) AddHiddenNetwork(iface string, network wifi.Network, password string) error {
	return h.addNetwork(iface, network, password, true)
}

func (h *Hardware) addNetwork(iface string, network wifi.Network, password string, hidden bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.state(iface)
	if err != nil {
		return err
	}

	s.environment = append(s.environment, visibleNetwork{
		network:  network.Clone(),
		hidden:   hidden,
		password: password,
	})

	return nil
}

// SetLinkQuality changes the measurements of iface and reports a link
// quality event.
func (h *Hardware) SetLinkQuality(iface string, rssi int, transmitRate float64) error {
	h.mu.Lock()
	s, err := h.state(iface)
	if err != nil {
		h.mu.Unlock()
		return err
	}

	s.rssi = rssi
	s.transmitRate = transmitRate
	h.mu.Unlock()

	h.emit(wifi.Event{
		Type:         wifi.EventTypeLinkQualityDidChange,
		Interface:    iface,
		RSSI:         rssi,
		TransmitRate: transmitRate,
	})

	return nil
}

// SetCountryCode changes the adopted country code of iface.
func (h *Hardware) SetCountryCode(iface string, code string) error {
	h.mu.Lock()
	s, err := h.state(iface)
	if err != nil {
		h.mu.Unlock()
		return err
	}

	s.countryCode = code
	h.mu.Unlock()

	h.Emit(wifi.EventTypeCountryCodeDidChange, iface)

	return nil
}

// PairwiseMasterKey returns the PMK installed on iface.
func (h *Hardware) PairwiseMasterKey(iface string) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.devices[iface]; ok {
		return s.pmk
	}

	return nil
}

// WEPKey returns the key installed at index 1-4 on iface.
func (h *Hardware) WEPKey(iface string, index int) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.devices[iface]; ok && index >= 1 && index <= 4 {
		return s.wepKeys[index-1]
	}

	return nil
}

// Device is a simulated interface.
type Device struct {
	hw   *Hardware
	name string
}

func (d *Device) Name() string {
	return d.name
}

// query runs fn on the state of the device under the hardware lock.
func (d *Device) query(op string, fn func(s *state)) error {
	d.hw.mu.Lock()
	defer d.hw.mu.Unlock()

	if err := d.hw.callLocked(op); err != nil {
		return err
	}

	s, err := d.hw.state(d.name)
	if err != nil {
		return err
	}

	fn(s)

	return nil
}

func (d *Device) PowerOn() (bool, error) {
	var on bool
	err := d.query("PowerOn", func(s *state) { on = s.power })
	return on, err
}

func (d *Device) SupportedChannels() ([]wifi.Channel, error) {
	var channels []wifi.Channel
	err := d.query("SupportedChannels", func(s *state) {
		channels = append([]wifi.Channel(nil), s.supported...)
	})
	return channels, err
}

func (d *Device) Channel() (wifi.Channel, error) {
	var channel wifi.Channel
	err := d.query("Channel", func(s *state) { channel = s.channel })
	return channel, err
}

func (d *Device) PHYMode() (wifi.PHYMode, error) {
	var mode wifi.PHYMode
	err := d.query("PHYMode", func(s *state) { mode = s.phyMode })
	return mode, err
}

func (d *Device) SSID() ([]byte, error) {
	var ssid []byte
	err := d.query("SSID", func(s *state) { ssid = append([]byte(nil), s.ssid...) })
	return ssid, err
}

func (d *Device) BSSID() (string, error) {
	var bssid string
	err := d.query("BSSID", func(s *state) { bssid = s.bssid })
	return bssid, err
}

func (d *Device) RSSI() (int, error) {
	var rssi int
	err := d.query("RSSI", func(s *state) { rssi = s.rssi })
	return rssi, err
}

func (d *Device) Noise() (int, error) {
	var noise int
	err := d.query("Noise", func(s *state) { noise = s.noise })
	return noise, err
}

func (d *Device) Security() (wifi.Security, error) {
	var security wifi.Security
	err := d.query("Security", func(s *state) { security = s.security })
	return security, err
}

func (d *Device) TransmitRate() (float64, error) {
	var rate float64
	err := d.query("TransmitRate", func(s *state) { rate = s.transmitRate })
	return rate, err
}

func (d *Device) CountryCode() (string, error) {
	var code string
	err := d.query("CountryCode", func(s *state) { code = s.countryCode })
	return code, err
}

func (d *Device) Mode() (wifi.InterfaceMode, error) {
	var mode wifi.InterfaceMode
	err := d.query("Mode", func(s *state) { mode = s.mode })
	return mode, err
}

func (d *Device) TransmitPower() (int, error) {
	var power int
	err := d.query("TransmitPower", func(s *state) { power = s.transmitPower })
	return power, err
}

func (d *Device) HardwareAddress() (string, error) {
	var addr string
	err := d.query("HardwareAddress", func(s *state) { addr = s.hardwareAddr })
	return addr, err
}

func (d *Device) ServiceActive() (bool, error) {
	var active bool
	err := d.query("ServiceActive", func(s *state) { active = s.serviceActive && s.power })
	return active, err
}

func (d *Device) CachedScanResults() ([]wifi.Network, error) {
	var networks []wifi.Network
	err := d.query("CachedScanResults", func(s *state) {
		for _, n := range s.cache {
			networks = append(networks, n.Clone())
		}
	})
	return networks, err
}

func (d *Device) Configuration() (wifi.Configuration, error) {
	var config wifi.Configuration
	err := d.query("Configuration", func(s *state) { config = s.config.Clone() })
	if err != nil {
		return wifi.Configuration{}, err
	}

	if d.hw.db == nil {
		return config, nil
	}

	config, err = d.hw.db.GetConfiguration(d.name)
	if err != nil {
		return wifi.Configuration{}, wifi.Wrap(wifi.IPCFailureError, err, "could not load configuration")
	}

	return config, nil
}

func (d *Device) SetPower(on bool) error {
	var events []wifi.EventType

	err := d.query("SetPower", func(s *state) {
		if s.power == on {
			return
		}

		s.power = on
		events = append(events, wifi.EventTypePowerDidChange)

		if !on && s.bssid != "" {
			s.disassociate()
			events = append(events, wifi.EventTypeSSIDDidChange, wifi.EventTypeBSSIDDidChange, wifi.EventTypeLinkDidChange)
		}
	})
	if err != nil {
		return err
	}

	d.emit(events...)

	return nil
}

func (d *Device) SetChannel(channel wifi.Channel) error {
	return d.query("SetChannel", func(s *state) { s.channel = channel })
}

func (d *Device) SetPairwiseMasterKey(key []byte) error {
	return d.query("SetPairwiseMasterKey", func(s *state) {
		s.pmk = append([]byte(nil), key...)
		if key == nil {
			s.pmk = nil
		}
	})
}

func (d *Device) SetWEPKey(key []byte, flags wifi.CipherKeyFlags, index int) error {
	return d.query("SetWEPKey", func(s *state) {
		s.wepKeys[index-1] = nil
		if key != nil {
			s.wepKeys[index-1] = append([]byte(nil), key...)
		}
	})
}

func (d *Device) Scan(ssid []byte) ([]wifi.Network, error) {
	var (
		found   []wifi.Network
		scanErr error
	)

	err := d.query("Scan", func(s *state) {
		if !s.power {
			scanErr = wifi.NewError(wifi.GenericError, "%v is powered off", d.name)
			return
		}

		for _, v := range s.environment {
			if v.hidden && (ssid == nil || !bytes.Equal(ssid, v.network.SSIDData)) {
				continue
			}

			if ssid != nil && !bytes.Equal(ssid, v.network.SSIDData) {
				continue
			}

			found = append(found, v.network.Clone())
		}

		s.cache = found
	})
	if err != nil {
		return nil, err
	}

	if scanErr != nil {
		return nil, scanErr
	}

	d.emit(wifi.EventTypeScanCacheUpdated)

	return found, nil
}

func (d *Device) Associate(network wifi.Network, password string) error {
	var (
		associateErr error
		remembered   *wifi.Configuration
	)

	err := d.query("Associate", func(s *state) {
		if !s.power {
			associateErr = wifi.NewError(wifi.GenericError, "%v is powered off", d.name)
			return
		}

		var target *visibleNetwork
		for i := range s.environment {
			if s.environment[i].network.Equal(network) ||
				(network.BSSID == "" && bytes.Equal(s.environment[i].network.SSIDData, network.SSIDData)) {
				target = &s.environment[i]
				break
			}
		}

		if target == nil {
			associateErr = wifi.NewError(wifi.TimeoutError, "network %q is out of range", network.SSIDData)
			return
		}

		security := target.network.Security()
		if security.RequiresPassword() && target.password != password {
			// the 4-way handshake never completes with a wrong passphrase
			associateErr = wifi.NewError(wifi.CodeForReason(15), "handshake with %v failed", target.network.BSSID)
			return
		}

		s.ssid = append([]byte(nil), target.network.SSIDData...)
		s.bssid = target.network.BSSID
		s.channel = target.network.Channel
		s.rssi = target.network.RSSI
		s.noise = target.network.Noise
		s.security = security
		s.transmitRate = 144.4
		s.mode = wifi.InterfaceModeStation

		if s.config.RememberJoinedNetworks {
			if _, ok := s.config.Profile(s.ssid); !ok {
				s.config.NetworkProfiles = append(s.config.NetworkProfiles, wifi.NewNetworkProfile(s.ssid, security))
				config := s.config.Clone()
				remembered = &config
			}
		}
	})
	if err != nil {
		return err
	}

	if associateErr != nil {
		return associateErr
	}

	if remembered != nil && d.hw.db != nil {
		auth, err := d.hw.db.Authorization(d.name)
		if err == nil {
			err = d.hw.db.SetConfiguration(d.name, *remembered, auth)
		}
		if err != nil {
			d.hw.log.Warnf("Could not remember network on %v: %v", d.name, err)
		}
	}

	d.emit(wifi.EventTypeSSIDDidChange, wifi.EventTypeBSSIDDidChange, wifi.EventTypeLinkDidChange)

	return nil
}

func (d *Device) Disassociate() error {
	changed := false

	err := d.query("Disassociate", func(s *state) {
		changed = s.bssid != ""
		s.disassociate()
	})
	if err != nil {
		return err
	}

	if changed {
		d.emit(wifi.EventTypeSSIDDidChange, wifi.EventTypeBSSIDDidChange, wifi.EventTypeLinkDidChange)
	}

	return nil
}

func (d *Device) StartIBSS(ssid []byte, security wifi.IBSSModeSecurity, channel wifi.Channel, password string) error {
	err := d.query("StartIBSS", func(s *state) {
		s.disassociate()
		s.ssid = append([]byte(nil), ssid...)
		s.bssid = fmt.Sprintf("12%s", s.hardwareAddr[2:])
		s.channel = channel
		s.mode = wifi.InterfaceModeIBSS

		if security != wifi.IBSSModeSecurityNone {
			s.security = wifi.SecurityWEP
		}
	})
	if err != nil {
		return err
	}

	d.emit(wifi.EventTypeModeDidChange, wifi.EventTypeSSIDDidChange, wifi.EventTypeBSSIDDidChange)

	return nil
}

func (d *Device) CommitConfiguration(config wifi.Configuration, auth wifi.Authorization) error {
	err := d.query("CommitConfiguration", func(s *state) { s.config = config.Clone() })
	if err != nil {
		return err
	}

	if d.hw.db == nil {
		return nil
	}

	err = d.hw.db.SetConfiguration(d.name, config, auth)
	if err != nil {
		return wifi.Wrap(wifi.IPCFailureError, err, "could not persist configuration")
	}

	return nil
}

func (d *Device) emit(types ...wifi.EventType) {
	for _, t := range types {
		d.hw.Emit(t, d.name)
	}
}

func (s *state) disassociate() {
	s.ssid = nil
	s.bssid = ""
	s.rssi = 0
	s.noise = 0
	s.transmitRate = 0
	s.security = wifi.SecurityNone
	s.mode = wifi.InterfaceModeStation
}
