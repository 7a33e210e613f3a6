package wifi

import (
	"bytes"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	// MaxSSIDLength is the longest SSID in octets.
	MaxSSIDLength = 32
	// PMKLength is the exact length of a pairwise master key.
	PMKLength = 32
)

// Network is a network discovered by a scan. Networks are equal when their
// SSID bytes and BSSID match; radio measurements do not take part.
type Network struct {
	SSIDData            []byte     `json:"ssid_data"`
	BSSID               string     `json:"bssid"`
	Channel             Channel    `json:"channel"`
	RSSI                int        `json:"rssi"`
	Noise               int        `json:"noise"`
	InformationElements []byte     `json:"ies,omitempty"`
	CountryCode         string     `json:"country_code,omitempty"`
	BeaconInterval      int        `json:"beacon_interval"`
	IBSS                bool       `json:"ibss"`
	Securities          []Security `json:"securities"`
	PHYModes            []PHYMode  `json:"phy_modes"`
}

// SSID decodes the SSID as UTF-8, falling back to Windows-1252. ok is false
// when the SSID is empty or decodes under neither.
func (n Network) SSID() (string, bool) {
	return DecodeSSID(n.SSIDData)
}

// Equal reports whether n and other are the same network.
func (n Network) Equal(other Network) bool {
	return bytes.Equal(n.SSIDData, other.SSIDData) && strings.EqualFold(n.BSSID, other.BSSID)
}

// Key identifies the network for de-duplication.
func (n Network) Key() string {
	return fmt.Sprintf("%x/%s", n.SSIDData, strings.ToUpper(n.BSSID))
}

// SupportsSecurity reports whether the network advertises the security type.
// Mixed and generic personal/enterprise types match their members.
func (n Network) SupportsSecurity(security Security) bool {
	for _, s := range n.Securities {
		if s == security {
			return true
		}

		switch security {
		case SecurityPersonal, SecurityWPAPersonalMixed:
			if s == SecurityWPAPersonal || s == SecurityWPA2Personal || s == SecurityWPAPersonalMixed {
				return true
			}
		case SecurityEnterprise, SecurityWPAEnterpriseMixed:
			if s == SecurityWPAEnterprise || s == SecurityWPA2Enterprise || s == SecurityWPAEnterpriseMixed {
				return true
			}
		}
	}

	if security == SecurityNone {
		return len(n.Securities) == 0
	}

	return false
}

// SupportsPHYMode reports whether the network advertises the PHY mode.
func (n Network) SupportsPHYMode(mode PHYMode) bool {
	for _, m := range n.PHYModes {
		if m == mode {
			return true
		}
	}

	return false
}

// Security returns the strongest security type the network advertises.
// SecurityUnknown is returned only when nothing else is advertised.
func (n Network) Security() Security {
	if len(n.Securities) == 0 {
		return SecurityNone
	}

	best := SecurityUnknown
	for _, s := range n.Securities {
		if s == SecurityUnknown {
			continue
		}

		if best == SecurityUnknown || s > best {
			best = s
		}
	}

	return best
}

// RequiresPassword reports whether any advertised security type needs a
// password to join.
func (n Network) RequiresPassword() bool {
	for _, s := range n.Securities {
		if s.RequiresPassword() {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of n.
func (n Network) Clone() Network {
	c := n
	c.SSIDData = append([]byte(nil), n.SSIDData...)
	c.InformationElements = append([]byte(nil), n.InformationElements...)
	c.Securities = append([]Security(nil), n.Securities...)
	c.PHYModes = append([]PHYMode(nil), n.PHYModes...)

	return c
}

// DecodeSSID returns the printable form of raw SSID bytes.
func DecodeSSID(ssid []byte) (string, bool) {
	if len(ssid) == 0 {
		return "", false
	}

	if utf8.Valid(ssid) {
		return string(ssid), true
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(ssid)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}

	return string(decoded), true
}

// ValidSSID reports whether ssid has a legal length.
func ValidSSID(ssid []byte) bool {
	return len(ssid) >= 1 && len(ssid) <= MaxSSIDLength
}

// FormatMAC renders a six octet address as XX:XX:XX:XX:XX:XX.
func FormatMAC(addr net.HardwareAddr) string {
	if len(addr) != 6 {
		return ""
	}

	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])
}

// ParseMAC accepts any notation net.ParseMAC does and returns the canonical
// uppercase six octet form.
func ParseMAC(s string) (string, error) {
	addr, err := net.ParseMAC(s)
	if err != nil || len(addr) != 6 {
		return "", NewError(InvalidFormatError, "invalid MAC address %q", s)
	}

	return FormatMAC(addr), nil
}

// NormalizeCountryCode validates an ISO 3166-1 alpha-2 code and upper-cases
// it. Invalid input yields "".
func NormalizeCountryCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return ""
	}

	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}

	return code
}
