package wpa

import (
	"encoding/hex"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wlanctl/wifi"
)

// Network is a network block configured in the supplicant.
type Network struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (n *Network) String() string {
	return string(n.obj.Path())
}

// Properties returns the network block's variables, e.g. ssid and mode.
func (n *Network) Properties() (map[string]dbus.Variant, error) {
	v, err := n.obj.GetProperty(networkName + ".Properties")
	if err != nil {
		return nil, dbusError(err, "could not get network properties")
	}

	props, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, errors.Errorf("could not convert network properties: %v", v)
	}

	return props, nil
}

// Mode reads the network block's mode variable.
func (n *Network) Mode() (wifi.InterfaceMode, error) {
	props, err := n.Properties()
	if err != nil {
		return wifi.InterfaceModeNone, err
	}

	mode, _ := props["mode"].Value().(string)

	return interfaceMode(mode), nil
}

func interfaceMode(mode string) wifi.InterfaceMode {
	switch mode {
	case "", "0":
		return wifi.InterfaceModeStation
	case "1":
		return wifi.InterfaceModeIBSS
	case "2":
		return wifi.InterfaceModeHostAP
	default:
		return wifi.InterfaceModeNone
	}
}

// credentials are the keys staged for the next network block.
type credentials struct {
	password string
	pmk      []byte
	wepKeys  [4][]byte
	wepTx    int
	eap      *wifi.EAPProfile
}

// networkArgs builds the AddNetwork arguments for joining a network. String
// values are quoted by the supplicant, byte values are passed as raw hex.
func networkArgs(ssid []byte, bssid string, security wifi.Security, creds credentials) (map[string]interface{}, error) {
	args := map[string]interface{}{
		"ssid":      ssid,
		"scan_ssid": int32(1),
	}

	if bssid != "" {
		args["bssid"] = bssid
	}

	switch {
	case security == wifi.SecurityNone:
		args["key_mgmt"] = "NONE"
	case security == wifi.SecurityWEP:
		args["key_mgmt"] = "NONE"
		args["auth_alg"] = "OPEN SHARED"

		staged := false
		for index, key := range creds.wepKeys {
			if key != nil {
				args[wepKeyName(index)] = key
				staged = true
			}
		}

		if creds.password != "" {
			args["wep_key0"] = wepKey(creds.password)
			args["wep_tx_keyidx"] = int32(0)
		} else if staged {
			args["wep_tx_keyidx"] = int32(creds.wepTx)
		} else {
			return nil, wifi.NewError(wifi.InvalidParameterError, "no WEP key given")
		}
	case security == wifi.SecurityDynamicWEP:
		args["key_mgmt"] = "IEEE8021X"
		if err := eapArgs(args, creds); err != nil {
			return nil, err
		}
	case security.Enterprise():
		args["key_mgmt"] = "WPA-EAP"
		if err := eapArgs(args, creds); err != nil {
			return nil, err
		}
	default:
		args["key_mgmt"] = "WPA-PSK"

		switch {
		case creds.password != "":
			psk, err := passphrase(creds.password)
			if err != nil {
				return nil, err
			}
			args["psk"] = psk
		case creds.pmk != nil:
			args["psk"] = creds.pmk
		default:
			return nil, wifi.NewError(wifi.InvalidParameterError, "no passphrase or pairwise master key given")
		}

		switch security {
		case wifi.SecurityWPAPersonal:
			args["proto"] = "WPA"
		case wifi.SecurityWPA2Personal:
			args["proto"] = "RSN"
		}
	}

	return args, nil
}

func eapArgs(args map[string]interface{}, creds credentials) error {
	if creds.eap == nil {
		return wifi.NewError(wifi.InvalidParameterError, "no 802.1X profile for this network")
	}

	password := creds.eap.Password
	if creds.password != "" {
		password = creds.password
	}

	args["eap"] = "PEAP TTLS"
	args["identity"] = creds.eap.Username
	args["password"] = password
	args["phase2"] = "auth=MSCHAPV2"

	return nil
}

// ibssArgs builds the AddNetwork arguments for an ad-hoc network.
func ibssArgs(ssid []byte, security wifi.IBSSModeSecurity, channel wifi.Channel, password string) map[string]interface{} {
	args := map[string]interface{}{
		"ssid":      ssid,
		"mode":      int32(1),
		"frequency": int32(channel.Frequency()),
		"key_mgmt":  "NONE",
	}

	if security != wifi.IBSSModeSecurityNone {
		args["wep_key0"] = wepKey(password)
		args["wep_tx_keyidx"] = int32(0)
	}

	return args
}

// profileArgs builds a disabled network block for a stored profile.
func profileArgs(profile wifi.NetworkProfile, eap *wifi.EAPProfile) map[string]interface{} {
	args := map[string]interface{}{
		"ssid":      profile.SSIDData(),
		"scan_ssid": int32(1),
		"disabled":  int32(1),
	}

	switch security := profile.Security(); {
	case security == wifi.SecurityNone || security == wifi.SecurityWEP:
		args["key_mgmt"] = "NONE"
	case security == wifi.SecurityDynamicWEP:
		args["key_mgmt"] = "IEEE8021X"
	case security.Enterprise():
		args["key_mgmt"] = "WPA-EAP"
	default:
		args["key_mgmt"] = "WPA-PSK"
	}

	if eap != nil {
		args["identity"] = eap.Username
		if eap.Password != "" && !eap.AlwaysPromptForPassword {
			args["password"] = eap.Password
		}
	}

	return args
}

// passphrase returns a 64 digit hex key as raw bytes and anything else as
// the ASCII passphrase.
func passphrase(password string) (interface{}, error) {
	if len(password) == 64 {
		key, err := hex.DecodeString(password)
		if err != nil {
			return nil, wifi.NewError(wifi.InvalidParameterError, "invalid hex key")
		}

		return key, nil
	}

	return password, nil
}

// wepKey returns hex encoded keys as raw bytes and anything else as the
// ASCII key.
func wepKey(password string) interface{} {
	if len(password) == 10 || len(password) == 26 {
		if key, err := hex.DecodeString(password); err == nil {
			return key
		}
	}

	return password
}

func wepKeyName(index int) string {
	return "wep_key" + string(rune('0'+index))
}
