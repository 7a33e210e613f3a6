package wpa

import (
	"bytes"
	"net"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wlanctl/wifi"
)

// check Device compliance to its interface during compile time
var _ wifi.Device = (*Device)(nil)

// Device is one interface controlled by wpa_supplicant.
type Device struct {
	hw    *Hardware
	name  string
	iface *Interface
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) PowerOn() (bool, error) {
	return linkUp(d.name)
}

// SupportedChannels is not exposed by the supplicant.
func (d *Device) SupportedChannels() ([]wifi.Channel, error) {
	return nil, wifi.NewError(wifi.NotSupportedError, "supported channels are unknown to wpa_supplicant")
}

func (d *Device) Channel() (wifi.Channel, error) {
	props, err := d.iface.SignalPoll()
	if err != nil {
		return wifi.Channel{}, err
	}

	width, _ := props["width"].Value().(string)

	return wifi.ChannelFromFrequency(variantInt(props["frequency"]), wifi.ParseChannelWidth(width)), nil
}

func (d *Device) PHYMode() (wifi.PHYMode, error) {
	network, err := d.currentNetwork()
	if err != nil || network == nil {
		return wifi.PHYModeNone, err
	}

	return bestPHYMode(network.PHYModes), nil
}

func (d *Device) SSID() ([]byte, error) {
	network, err := d.currentNetwork()
	if err != nil || network == nil {
		return nil, err
	}

	return network.SSIDData, nil
}

func (d *Device) BSSID() (string, error) {
	network, err := d.currentNetwork()
	if err != nil || network == nil {
		return "", err
	}

	return network.BSSID, nil
}

func (d *Device) RSSI() (int, error) {
	return d.signal("rssi")
}

func (d *Device) Noise() (int, error) {
	return d.signal("noise")
}

func (d *Device) TransmitRate() (float64, error) {
	rate, err := d.signal("linkspeed")
	if err != nil {
		return 0, err
	}

	return float64(rate), nil
}

func (d *Device) Security() (wifi.Security, error) {
	network, err := d.currentNetwork()
	if err != nil {
		return wifi.SecurityUnknown, err
	}

	if network == nil {
		return wifi.SecurityNone, nil
	}

	return network.Security(), nil
}

func (d *Device) CountryCode() (string, error) {
	return d.iface.Country()
}

func (d *Device) Mode() (wifi.InterfaceMode, error) {
	network, err := d.iface.CurrentNetwork()
	if err != nil {
		return wifi.InterfaceModeNone, err
	}

	if network == nil {
		return wifi.InterfaceModeStation, nil
	}

	return network.Mode()
}

// TransmitPower is not exposed by the supplicant.
func (d *Device) TransmitPower() (int, error) {
	return 0, wifi.NewError(wifi.NotSupportedError, "transmit power is unknown to wpa_supplicant")
}

func (d *Device) HardwareAddress() (string, error) {
	link, err := net.InterfaceByName(d.name)
	if err != nil {
		return "", wifi.Wrap(wifi.ReferenceNotBoundError, err, "could not find interface "+d.name)
	}

	return wifi.FormatMAC(link.HardwareAddr), nil
}

func (d *Device) ServiceActive() (bool, error) {
	state, err := d.iface.State()
	if err != nil {
		return false, err
	}

	return state == "completed", nil
}

func (d *Device) CachedScanResults() ([]wifi.Network, error) {
	return d.networks(nil)
}

func (d *Device) Configuration() (wifi.Configuration, error) {
	if d.hw.db == nil {
		return wifi.Configuration{}, nil
	}

	config, err := d.hw.db.GetConfiguration(d.name)
	if err != nil {
		return wifi.Configuration{}, wifi.Wrap(wifi.GenericError, err, "could not read configuration")
	}

	return config, nil
}

func (d *Device) SetPower(on bool) error {
	return setLinkUp(d.name, on)
}

// SetChannel needs a monitor interface, which the supplicant does not offer.
func (d *Device) SetChannel(channel wifi.Channel) error {
	return wifi.NewError(wifi.NotSupportedError, "wpa_supplicant can not change channels")
}

func (d *Device) SetPairwiseMasterKey(key []byte) error {
	creds := d.hw.credentials(d.name)

	d.hw.mu.Lock()
	if key == nil {
		creds.pmk = nil
	} else {
		creds.pmk = append([]byte(nil), key...)
	}
	d.hw.mu.Unlock()

	return nil
}

func (d *Device) SetWEPKey(key []byte, flags wifi.CipherKeyFlags, index int) error {
	creds := d.hw.credentials(d.name)

	d.hw.mu.Lock()
	defer d.hw.mu.Unlock()

	if key == nil {
		creds.wepKeys[index-1] = nil
	} else {
		creds.wepKeys[index-1] = append([]byte(nil), key...)
	}

	if flags&wifi.CipherKeyFlagsTx != 0 {
		creds.wepTx = index - 1
	}

	return nil
}

// Scan triggers a scan and waits for it to finish. With a non-nil ssid only
// matching networks are returned.
func (d *Device) Scan(ssid []byte) ([]wifi.Network, error) {
	l := d.hw.wpa.listen(d.iface.Path())
	defer d.hw.wpa.unlisten(l)

	err := d.iface.Scan(ssid)
	if err != nil {
		return nil, err
	}

	timeout := time.NewTimer(d.hw.scanTimeout)
	defer timeout.Stop()

	for done := false; !done; {
		select {
		case signal := <-l.signals:
			done = signal.Name == interfaceName+".ScanDone"
		case <-timeout.C:
			return nil, wifi.NewError(wifi.TimeoutError, "scan on %v did not finish within %v", d.name, d.hw.scanTimeout)
		case <-d.hw.done:
			return nil, wifi.NewError(wifi.IPCFailureError, "hardware is closed")
		}
	}

	return d.networks(ssid)
}

// Associate joins network and waits until the supplicant completes or gives
// up on it. A failed network block is removed again.
func (d *Device) Associate(network wifi.Network, password string) error {
	creds := d.stagedCredentials()
	creds.password = password

	if d.hw.db != nil {
		config, err := d.Configuration()
		if err != nil {
			return err
		}

		if ssid, ok := network.SSID(); ok {
			if eap, ok := config.EAPProfile(ssid); ok {
				creds.eap = &eap
			}
		}
	}

	security := network.Security()

	args, err := networkArgs(network.SSIDData, network.BSSID, security, creds)
	if err != nil {
		return err
	}

	l := d.hw.wpa.listen(d.iface.Path())
	defer d.hw.wpa.unlisten(l)

	block, err := d.iface.AddNetwork(args)
	if err != nil {
		return err
	}

	err = d.iface.SelectNetwork(block)
	if err != nil {
		d.removeNetwork(block)
		return err
	}

	err = d.awaitCompletion(l)
	if err != nil {
		d.removeNetwork(block)
		return err
	}

	d.rememberNetwork(network.SSIDData, security)

	return nil
}

func (d *Device) awaitCompletion(l *listener) error {
	timeout := time.NewTimer(d.hw.associateTimeout)
	defer timeout.Stop()

	// selecting a network disconnects first, so disconnected only counts as
	// failure once an attempt was made
	attempted := false

	for {
		select {
		case signal := <-l.signals:
			state, ok := stateOf(signal)
			if !ok {
				continue
			}

			switch state {
			case "completed":
				return nil
			case "authenticating", "associating", "associated", "4way_handshake", "group_handshake":
				attempted = true
			case "disconnected", "inactive":
				if attempted {
					return d.associationError()
				}
			case "interface_disabled":
				return d.associationError()
			}
		case <-timeout.C:
			return wifi.NewError(wifi.TimeoutError, "association on %v did not complete within %v", d.name, d.hw.associateTimeout)
		case <-d.hw.done:
			return wifi.NewError(wifi.IPCFailureError, "hardware is closed")
		}
	}
}

// associationError reads why the last association failed, preferring the
// status the access point answered with.
func (d *Device) associationError() error {
	if status, err := d.iface.AssocStatusCode(); err == nil && status > 0 {
		return wifi.NewError(wifi.CodeForStatus(status), "association rejected with status %d", status)
	}

	if status, err := d.iface.AuthStatusCode(); err == nil && status > 0 {
		return wifi.NewError(wifi.CodeForStatus(status), "authentication rejected with status %d", status)
	}

	if reason, err := d.iface.DisconnectReason(); err == nil && reason != 0 {
		return wifi.NewError(wifi.CodeForReason(reason), "disconnected with reason %d", reason)
	}

	return wifi.NewError(wifi.AssociationDeniedError, "association failed")
}

func (d *Device) Disassociate() error {
	return d.iface.Disconnect()
}

func (d *Device) StartIBSS(ssid []byte, security wifi.IBSSModeSecurity, channel wifi.Channel, password string) error {
	block, err := d.iface.AddNetwork(ibssArgs(ssid, security, channel, password))
	if err != nil {
		return err
	}

	err = d.iface.SelectNetwork(block)
	if err != nil {
		d.removeNetwork(block)
		return err
	}

	return nil
}

// CommitConfiguration stores config and replaces the supplicant's network
// blocks with one disabled block per profile.
func (d *Device) CommitConfiguration(config wifi.Configuration, auth wifi.Authorization) error {
	if d.hw.db != nil {
		err := d.hw.db.SetConfiguration(d.name, config, auth)
		if err != nil {
			return wifi.Wrap(wifi.GenericError, err, "could not store configuration")
		}
	}

	err := d.iface.RemoveAllNetworks()
	if err != nil {
		return err
	}

	for _, profile := range config.NetworkProfiles {
		var eap *wifi.EAPProfile

		if ssid, ok := profile.SSID(); ok {
			if p, ok := config.EAPProfile(ssid); ok {
				eap = &p
			}
		}

		_, err := d.iface.AddNetwork(profileArgs(profile, eap))
		if err != nil {
			return err
		}
	}

	err = d.iface.SaveConfig()
	if err != nil {
		d.hw.log.Warnf("Could not save supplicant configuration of %v: %v", d.name, err)
	}

	return nil
}

func (d *Device) stagedCredentials() credentials {
	creds := d.hw.credentials(d.name)

	d.hw.mu.Lock()
	defer d.hw.mu.Unlock()

	return *creds
}

func (d *Device) removeNetwork(block *Network) {
	err := d.iface.RemoveNetwork(block)
	if err != nil {
		d.hw.log.Warnf("Could not remove network %v: %v", block, err)
	}
}

func (d *Device) rememberNetwork(ssid []byte, security wifi.Security) {
	if d.hw.db == nil {
		return
	}

	config, err := d.hw.db.GetConfiguration(d.name)
	if err != nil {
		d.hw.log.Warnf("Could not read configuration of %v: %v", d.name, err)
		return
	}

	if !config.RememberJoinedNetworks {
		return
	}

	if _, ok := config.Profile(ssid); ok {
		return
	}

	config.NetworkProfiles = append(config.NetworkProfiles, wifi.NewNetworkProfile(ssid, security))

	auth, err := d.hw.db.Authorization(d.name)
	if err == nil {
		err = d.hw.db.SetConfiguration(d.name, config, auth)
	}

	if err != nil {
		d.hw.log.Warnf("Could not remember network on %v: %v", d.name, err)
	}
}

func (d *Device) currentNetwork() (*wifi.Network, error) {
	bss, err := d.iface.CurrentBSS()
	if err != nil || bss == nil {
		return nil, err
	}

	network, err := bss.Network()
	if err != nil {
		return nil, wifi.Wrap(wifi.GenericError, err, "could not read current network")
	}

	return &network, nil
}

func (d *Device) signal(name string) (int, error) {
	props, err := d.iface.SignalPoll()
	if err != nil {
		return 0, err
	}

	return variantInt(props[name]), nil
}

// networks reads the supplicant's scan cache, skipping entries that expired
// while reading.
func (d *Device) networks(ssid []byte) ([]wifi.Network, error) {
	bsss, err := d.iface.BSSs()
	if err != nil {
		return nil, err
	}

	networks := make([]wifi.Network, 0, len(bsss))

	for _, bss := range bsss {
		network, err := bss.Network()
		if err != nil {
			d.hw.log.Debugf("Skipping BSS %v: %v", bss, err)
			continue
		}

		if ssid != nil && !bytes.Equal(network.SSIDData, ssid) {
			continue
		}

		networks = append(networks, network)
	}

	return networks, nil
}

// stateOf extracts the new State from a PropertiesChanged signal.
func stateOf(signal *dbus.Signal) (string, bool) {
	if signal.Name != interfaceName+".PropertiesChanged" || len(signal.Body) < 1 {
		return "", false
	}

	props, ok := signal.Body[0].(map[string]dbus.Variant)
	if !ok {
		return "", false
	}

	v, ok := props["State"]
	if !ok {
		return "", false
	}

	state, ok := v.Value().(string)

	return state, ok
}
