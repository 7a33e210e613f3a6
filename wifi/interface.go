package wifi

import (
	"encoding/hex"
	"os"
	"sort"
)

// Interface controls one Wi-Fi interface.
//
// Queries never fail: when the hardware cannot answer they return the zero
// value of their result (false, 0, "", nil or the None/Unknown member of an
// enumeration). Callers cannot tell a zero RSSI, noise, transmit rate or
// transmit power from a missing reading.
//
// Operations report failures as *Error. Scan, Associate, StartIBSS and
// CommitConfiguration block for the duration of the hardware operation.
type Interface struct {
	name   string
	dev    Device
	client *Client
	log    Logger
}

func (i *Interface) Name() string {
	return i.name
}

func (i *Interface) queryFailed(what string, err error) {
	i.log.Debugf("Could not query %v of %v: %v", what, i.name, err)
}

// PowerOn reports whether the radio is powered.
func (i *Interface) PowerOn() bool {
	on, err := i.dev.PowerOn()
	if err != nil {
		i.queryFailed("power state", err)
		return false
	}

	return on
}

// SupportedChannels returns the channels allowed under the adopted country
// code.
func (i *Interface) SupportedChannels() []Channel {
	channels, err := i.dev.SupportedChannels()
	if err != nil {
		i.queryFailed("supported channels", err)
		return nil
	}

	return channels
}

// Channel returns the current channel, nil when unknown.
func (i *Interface) Channel() *Channel {
	channel, err := i.dev.Channel()
	if err != nil {
		i.queryFailed("channel", err)
		return nil
	}

	if channel.Number == 0 {
		return nil
	}

	return &channel
}

func (i *Interface) PHYMode() PHYMode {
	mode, err := i.dev.PHYMode()
	if err != nil {
		i.queryFailed("PHY mode", err)
		return PHYModeNone
	}

	return mode
}

// SSIDData returns the raw SSID of the current network, nil when not
// associated.
func (i *Interface) SSIDData() []byte {
	ssid, err := i.dev.SSID()
	if err != nil {
		i.queryFailed("SSID", err)
		return nil
	}

	if len(ssid) == 0 {
		return nil
	}

	return ssid
}

// SSID returns the decoded SSID of the current network. It is empty when not
// associated or when the SSID decodes as neither UTF-8 nor Windows-1252.
func (i *Interface) SSID() string {
	ssid, _ := DecodeSSID(i.SSIDData())
	return ssid
}

// BSSID returns the access point address as XX:XX:XX:XX:XX:XX, empty when not
// associated.
func (i *Interface) BSSID() string {
	bssid, err := i.dev.BSSID()
	if err != nil {
		i.queryFailed("BSSID", err)
		return ""
	}

	if bssid == "" {
		return ""
	}

	bssid, err = ParseMAC(bssid)
	if err != nil {
		i.queryFailed("BSSID", err)
		return ""
	}

	return bssid
}

// RSSI returns the signal strength in dBm.
func (i *Interface) RSSI() int {
	rssi, err := i.dev.RSSI()
	if err != nil {
		i.queryFailed("RSSI", err)
		return 0
	}

	return rssi
}

// Noise returns the noise measurement in dBm.
func (i *Interface) Noise() int {
	noise, err := i.dev.Noise()
	if err != nil {
		i.queryFailed("noise", err)
		return 0
	}

	return noise
}

func (i *Interface) Security() Security {
	security, err := i.dev.Security()
	if err != nil {
		i.queryFailed("security", err)
		return SecurityUnknown
	}

	return security
}

// TransmitRate returns the transmit rate in Mbps.
func (i *Interface) TransmitRate() float64 {
	rate, err := i.dev.TransmitRate()
	if err != nil {
		i.queryFailed("transmit rate", err)
		return 0
	}

	return rate
}

// CountryCode returns the adopted ISO 3166-1 country code.
func (i *Interface) CountryCode() string {
	code, err := i.dev.CountryCode()
	if err != nil {
		i.queryFailed("country code", err)
		return ""
	}

	return NormalizeCountryCode(code)
}

func (i *Interface) Mode() InterfaceMode {
	mode, err := i.dev.Mode()
	if err != nil {
		i.queryFailed("mode", err)
		return InterfaceModeNone
	}

	return mode
}

// TransmitPower returns the transmit power in mW.
func (i *Interface) TransmitPower() int {
	power, err := i.dev.TransmitPower()
	if err != nil {
		i.queryFailed("transmit power", err)
		return 0
	}

	return power
}

// HardwareAddress returns the interface MAC as XX:XX:XX:XX:XX:XX.
func (i *Interface) HardwareAddress() string {
	addr, err := i.dev.HardwareAddress()
	if err != nil {
		i.queryFailed("hardware address", err)
		return ""
	}

	addr, err = ParseMAC(addr)
	if err != nil {
		i.queryFailed("hardware address", err)
		return ""
	}

	return addr
}

// ServiceActive reports whether the network service of the interface is up.
func (i *Interface) ServiceActive() bool {
	active, err := i.dev.ServiceActive()
	if err != nil {
		i.queryFailed("service state", err)
		return false
	}

	return active
}

// CachedScanResults returns the networks in the scan cache.
func (i *Interface) CachedScanResults() []Network {
	networks, err := i.dev.CachedScanResults()
	if err != nil {
		i.queryFailed("scan cache", err)
		return nil
	}

	return uniqueNetworks(networks)
}

// Configuration returns the current configuration, nil when unknown.
func (i *Interface) Configuration() *Configuration {
	config, err := i.dev.Configuration()
	if err != nil {
		i.queryFailed("configuration", err)
		return nil
	}

	return &config
}

// SetPower turns the radio on or off. Nothing is sent to the hardware when
// it is already in the requested state.
func (i *Interface) SetPower(on bool) error {
	current, err := i.dev.PowerOn()
	if err == nil && current == on {
		return nil
	}

	if i.adminRequired(func(c Configuration) bool { return c.RequireAdministratorForPower }) {
		return NewError(OperationNotPermittedError, "changing power of %v requires administrator privileges", i.name)
	}

	i.log.Infof("Setting power of %v to %v", i.name, on)

	err = i.dev.SetPower(on)
	if err != nil {
		return hardwareError(err, GenericError, "could not set power")
	}

	return nil
}

// SetChannel tunes the interface. Changing the channel while associated is
// not permitted. When the hardware lists its supported channels, number, width
// and band must all match one of them.
func (i *Interface) SetChannel(channel Channel) error {
	if channel.Number <= 0 {
		return NewError(InvalidParameterError, "invalid channel number %d", channel.Number)
	}

	bssid, err := i.dev.BSSID()
	if err != nil {
		return hardwareError(err, GenericError, "could not determine association state")
	}

	if bssid != "" {
		return NewError(OperationNotPermittedError, "cannot change channel of %v while associated to %v", i.name, bssid)
	}

	supported, err := i.dev.SupportedChannels()
	if err == nil && len(supported) > 0 && !containsChannel(supported, channel) {
		return NewError(InvalidParameterError, "channel %v is not supported by %v", channel, i.name)
	}

	i.log.Infof("Setting channel of %v to %v", i.name, channel)

	err = i.dev.SetChannel(channel)
	if err != nil {
		return hardwareError(err, GenericError, "could not set channel")
	}

	return nil
}

// SetPairwiseMasterKey installs a 32 octet PMK. A nil key clears it.
func (i *Interface) SetPairwiseMasterKey(key []byte) error {
	if key != nil && len(key) != PMKLength {
		return NewError(InvalidParameterError, "pairwise master key must be %d octets, got %d", PMKLength, len(key))
	}

	err := i.dev.SetPairwiseMasterKey(key)
	if err != nil {
		return hardwareError(err, GenericError, "could not set pairwise master key")
	}

	return nil
}

// SetWEPKey installs a 40 or 104 bit WEP key at a default key index (1-4). A
// nil key clears the key at that index.
func (i *Interface) SetWEPKey(key []byte, flags CipherKeyFlags, index int) error {
	if index < 1 || index > 4 {
		return NewError(InvalidParameterError, "WEP key index must be between 1 and 4, got %d", index)
	}

	if !flags.Valid() {
		return NewError(InvalidParameterError, "invalid cipher key flags %#x", uint32(flags))
	}

	if key != nil && len(key) != 5 && len(key) != 13 {
		return NewError(InvalidParameterError, "WEP key must be 5 or 13 octets, got %d", len(key))
	}

	err := i.dev.SetWEPKey(key, flags, index)
	if err != nil {
		return hardwareError(err, GenericError, "could not set WEP key")
	}

	return nil
}

// Scan blocks while the interface scans and returns the networks found, one
// entry per SSID and BSSID. A non-nil ssid makes it a directed scan that also
// finds hidden networks with that name.
func (i *Interface) Scan(ssid []byte) ([]Network, error) {
	if !i.client.entitlements.Has(EntitlementScan) {
		return nil, NewError(OperationNotPermittedError, "scanning requires the scan entitlement")
	}

	if ssid != nil && !ValidSSID(ssid) {
		return nil, NewError(InvalidParameterError, "SSID must be 1 to %d octets, got %d", MaxSSIDLength, len(ssid))
	}

	i.log.Infof("Scanning on %v", i.name)

	networks, err := i.dev.Scan(ssid)
	if err != nil {
		return nil, hardwareError(err, GenericError, "could not scan")
	}

	networks = uniqueNetworks(networks)

	i.log.Debugf("Scan on %v found %d networks", i.name, len(networks))

	return networks, nil
}

// ScanForName is Scan with the SSID given as a string. An empty name scans
// for all networks.
func (i *Interface) ScanForName(name string) ([]Network, error) {
	if name == "" {
		return i.Scan(nil)
	}

	return i.Scan([]byte(name))
}

// Associate blocks while the interface joins network. A password is required
// for WEP and WPA/WPA2 Personal networks.
func (i *Interface) Associate(network Network, password string) error {
	if !i.client.entitlements.Has(EntitlementAssociate) {
		return NewError(OperationNotPermittedError, "associating requires the associate entitlement")
	}

	if !ValidSSID(network.SSIDData) {
		return NewError(InvalidParameterError, "SSID must be 1 to %d octets, got %d", MaxSSIDLength, len(network.SSIDData))
	}

	if network.RequiresPassword() {
		security := passwordSecurity(network)

		if password == "" {
			return NewError(InvalidParameterError, "a password is required to join a %v network", security)
		}

		err := validatePassword(security, password)
		if err != nil {
			return err
		}
	}

	if i.adminRequired(func(c Configuration) bool { return c.RequireAdministratorForAssociation }) {
		return NewError(OperationNotPermittedError, "associating %v requires administrator privileges", i.name)
	}

	ssid, _ := network.SSID()
	i.log.Infof("Associating %v to %v (%v)", i.name, ssid, network.BSSID)

	err := i.dev.Associate(network, password)
	if err != nil {
		return hardwareError(err, GenericError, "could not associate")
	}

	return nil
}

// Disassociate leaves the current network. Failures are logged and
// otherwise ignored.
func (i *Interface) Disassociate() {
	i.log.Infof("Disassociating %v", i.name)

	err := i.dev.Disassociate()
	if err != nil {
		i.log.Warnf("Could not disassociate %v: %v", i.name, err)
	}
}

// StartIBSS creates an ad-hoc network. A nil ssid uses the host name.
func (i *Interface) StartIBSS(ssid []byte, security IBSSModeSecurity, channel int, password string) error {
	if !i.client.entitlements.Has(EntitlementIBSS) {
		return NewError(OperationNotPermittedError, "creating an IBSS network requires the ibss entitlement")
	}

	if ssid == nil {
		hostname, err := os.Hostname()
		if err != nil {
			return Wrap(GenericError, err, "could not determine host name")
		}

		ssid = []byte(hostname)
		if len(ssid) > MaxSSIDLength {
			ssid = ssid[:MaxSSIDLength]
		}
	}

	if !ValidSSID(ssid) {
		return NewError(InvalidParameterError, "SSID must be 1 to %d octets, got %d", MaxSSIDLength, len(ssid))
	}

	var c Channel

	switch {
	case channel >= 1 && channel <= 14:
		c = Channel{Number: channel, Width: ChannelWidth20MHz, Band: ChannelBand2GHz}
	case channel >= 36 && channel <= 196:
		c = Channel{Number: channel, Width: ChannelWidth20MHz, Band: ChannelBand5GHz}
	default:
		return NewError(InvalidParameterError, "invalid IBSS channel %d", channel)
	}

	switch security {
	case IBSSModeSecurityNone:
	case IBSSModeSecurityWEP40:
		if !validWEPPassword(password, 5) {
			return NewError(InvalidParameterError, "WEP-40 password must be 5 characters or 10 hex digits")
		}
	case IBSSModeSecurityWEP104:
		if !validWEPPassword(password, 13) {
			return NewError(InvalidParameterError, "WEP-104 password must be 13 characters or 26 hex digits")
		}
	default:
		return NewError(InvalidParameterError, "invalid IBSS security %v", security)
	}

	if i.adminRequired(func(c Configuration) bool { return c.RequireAdministratorForIBSS }) {
		return NewError(OperationNotPermittedError, "creating an IBSS network on %v requires administrator privileges", i.name)
	}

	i.log.Infof("Starting IBSS network %q on %v channel %v", ssid, i.name, c)

	err := i.dev.StartIBSS(ssid, security, c, password)
	if err != nil {
		return hardwareError(err, GenericError, "could not start IBSS network")
	}

	return nil
}

// CommitConfiguration persists config for the interface. The caller must be
// root or pass an authorization token; the token is forwarded untouched.
func (i *Interface) CommitConfiguration(config Configuration, auth Authorization) error {
	err := config.Validate()
	if err != nil {
		return err
	}

	if !i.client.privileged() && len(auth) == 0 {
		return NewError(OperationNotPermittedError, "committing a configuration requires root privileges or an authorization")
	}

	i.log.Infof("Committing configuration of %v with %d network profiles", i.name, len(config.NetworkProfiles))

	err = i.dev.CommitConfiguration(config.Clone(), auth)
	if err != nil {
		return hardwareError(err, GenericError, "could not commit configuration")
	}

	return nil
}

func (i *Interface) adminRequired(required func(Configuration) bool) bool {
	if i.client.privileged() {
		return false
	}

	config, err := i.dev.Configuration()
	if err != nil {
		i.queryFailed("configuration", err)
		return false
	}

	return required(config)
}

func containsChannel(channels []Channel, channel Channel) bool {
	for _, c := range channels {
		if c.Equal(channel) {
			return true
		}
	}

	return false
}

// passwordSecurity returns the strongest advertised security type that takes
// a password.
func passwordSecurity(network Network) Security {
	best := SecurityNone
	for _, s := range network.Securities {
		if s.RequiresPassword() && s > best {
			best = s
		}
	}

	return best
}

func validatePassword(security Security, password string) error {
	switch security {
	case SecurityWEP:
		if !validWEPPassword(password, 5) && !validWEPPassword(password, 13) {
			return NewError(InvalidParameterError, "WEP key must be 5 or 13 characters, or 10 or 26 hex digits")
		}
	default:
		if len(password) == 64 {
			if _, err := hex.DecodeString(password); err != nil {
				return NewError(InvalidParameterError, "a 64 character passphrase must be a hex encoded key")
			}

			return nil
		}

		if len(password) < 8 || len(password) > 63 {
			return NewError(InvalidParameterError, "WPA passphrase must be 8 to 63 characters, got %d", len(password))
		}
	}

	return nil
}

func validWEPPassword(password string, octets int) bool {
	if len(password) == octets {
		return true
	}

	if len(password) == octets*2 {
		_, err := hex.DecodeString(password)
		return err == nil
	}

	return false
}

// uniqueNetworks collapses repeated reports of the same SSID and BSSID,
// keeping the strongest reading, and orders the result by signal. BSSIDs come
// out in canonical form.
func uniqueNetworks(networks []Network) []Network {
	index := make(map[string]int, len(networks))
	unique := make([]Network, 0, len(networks))

	for _, network := range networks {
		if bssid, err := ParseMAC(network.BSSID); err == nil {
			network.BSSID = bssid
		}

		key := network.Key()

		if at, ok := index[key]; ok {
			if network.RSSI > unique[at].RSSI {
				unique[at] = network
			}
			continue
		}

		index[key] = len(unique)
		unique = append(unique, network)
	}

	sort.SliceStable(unique, func(a, b int) bool {
		return unique[a].RSSI > unique[b].RSSI
	})

	return unique
}
