package wpa

import (
	"net"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wlanctl/wifi"
)

// BSS is an access point or ad-hoc peer the supplicant has seen.
type BSS struct {
	obj dbus.BusObject
}

func (b *BSS) String() string {
	return string(b.obj.Path())
}

func (b *BSS) GetAll() (map[string]dbus.Variant, error) {
	call := b.obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, bssName)
	if call.Err != nil {
		return nil, dbusError(call.Err, "could not get all properties")
	}

	props, ok := call.Body[0].(map[string]dbus.Variant)
	if !ok {
		return nil, errors.Errorf("could not convert output")
	}

	return props, nil
}

// Network reads the BSS into a wifi.Network.
func (b *BSS) Network() (wifi.Network, error) {
	props, err := b.GetAll()
	if err != nil {
		return wifi.Network{}, err
	}

	return networkFromProperties(props)
}

func networkFromProperties(props map[string]dbus.Variant) (wifi.Network, error) {
	n := wifi.Network{}

	if val, ok := props["SSID"]; ok {
		if ssid, ok := val.Value().([]byte); ok {
			n.SSIDData = ssid
		} else {
			return n, errors.Errorf("could not convert SSID: %v", val)
		}
	} else {
		return n, errors.Errorf("mandatory property SSID was missing")
	}

	if val, ok := props["BSSID"]; ok {
		if bssid, ok := val.Value().([]byte); ok && len(bssid) == 6 {
			n.BSSID = wifi.FormatMAC(net.HardwareAddr(bssid))
		} else {
			return n, errors.Errorf("could not convert BSSID: %v", val)
		}
	} else {
		return n, errors.Errorf("mandatory property BSSID was missing")
	}

	if val, ok := props["Frequency"]; ok {
		if freq, ok := val.Value().(uint16); ok {
			n.Channel = wifi.ChannelFromFrequency(int(freq), wifi.ChannelWidth20MHz)
		}
	}

	if val, ok := props["Signal"]; ok {
		if signal, ok := val.Value().(int16); ok {
			n.RSSI = int(signal)
		}
	}

	if val, ok := props["Mode"]; ok {
		if mode, ok := val.Value().(string); ok {
			n.IBSS = mode == "ad-hoc"
		}
	}

	if val, ok := props["IEs"]; ok {
		if ies, ok := val.Value().([]byte); ok {
			n.InformationElements = ies

			parsed := parseIEs(ies)
			n.CountryCode = parsed.countryCode()
			n.PHYModes = parsed.phyModes(n.Channel.Band)
		}
	}

	n.Securities = securities(props)

	return n, nil
}

// securities derives the advertised security types from the WPA and RSN
// key management suites and the privacy bit.
func securities(props map[string]dbus.Variant) []wifi.Security {
	var result []wifi.Security

	psk, eap := keyManagement(props["WPA"])
	if psk {
		result = append(result, wifi.SecurityWPAPersonal)
	}
	if eap {
		result = append(result, wifi.SecurityWPAEnterprise)
	}

	rsnPSK, rsnEAP := keyManagement(props["RSN"])
	if rsnPSK {
		result = append(result, wifi.SecurityWPA2Personal)
	}
	if rsnEAP {
		result = append(result, wifi.SecurityWPA2Enterprise)
	}

	if len(result) > 0 {
		return result
	}

	if val, ok := props["Privacy"]; ok {
		if privacy, ok := val.Value().(bool); ok && privacy {
			return []wifi.Security{wifi.SecurityWEP}
		}
	}

	return nil
}

func keyManagement(v dbus.Variant) (psk bool, eap bool) {
	info, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return false, false
	}

	suites, ok := info["KeyMgmt"].Value().([]string)
	if !ok {
		return false, false
	}

	for _, suite := range suites {
		switch suite {
		case "wpa-psk", "wpa-ft-psk", "wpa-psk-sha256", "sae", "ft-sae":
			psk = true
		case "wpa-eap", "wpa-ft-eap", "wpa-eap-sha256", "wpa-eap-suite-b", "wpa-eap-suite-b-192":
			eap = true
		}
	}

	return psk, eap
}
