package wifi

import "strings"

// PHYMode is the IEEE 802.11 physical layer mode.
type PHYMode int

const (
	PHYModeNone PHYMode = iota
	PHYMode11a
	PHYMode11b
	PHYMode11g
	PHYMode11n
	PHYMode11ac
)

func (m PHYMode) String() string {
	switch m {
	case PHYModeNone:
		return "none"
	case PHYMode11a:
		return "802.11a"
	case PHYMode11b:
		return "802.11b"
	case PHYMode11g:
		return "802.11g"
	case PHYMode11n:
		return "802.11n"
	case PHYMode11ac:
		return "802.11ac"
	default:
		return "INVALID PHY MODE"
	}
}

// InterfaceMode is the operating mode of an interface.
type InterfaceMode int

const (
	InterfaceModeNone InterfaceMode = iota
	InterfaceModeStation
	InterfaceModeIBSS
	InterfaceModeHostAP
)

func (m InterfaceMode) String() string {
	switch m {
	case InterfaceModeNone:
		return "none"
	case InterfaceModeStation:
		return "station"
	case InterfaceModeIBSS:
		return "ibss"
	case InterfaceModeHostAP:
		return "hostap"
	default:
		return "INVALID INTERFACE MODE"
	}
}

// Security is a Wi-Fi security type.
type Security int

const (
	SecurityNone Security = iota
	SecurityWEP
	SecurityWPAPersonal
	SecurityWPAPersonalMixed
	SecurityWPA2Personal
	SecurityPersonal
	SecurityDynamicWEP
	SecurityWPAEnterprise
	SecurityWPAEnterpriseMixed
	SecurityWPA2Enterprise
	SecurityEnterprise

	SecurityUnknown Security = 1<<31 - 1
)

var securityNames = map[Security]string{
	SecurityNone:               "none",
	SecurityWEP:                "wep",
	SecurityWPAPersonal:        "wpa-personal",
	SecurityWPAPersonalMixed:   "wpa-personal-mixed",
	SecurityWPA2Personal:       "wpa2-personal",
	SecurityPersonal:           "personal",
	SecurityDynamicWEP:         "dynamic-wep",
	SecurityWPAEnterprise:      "wpa-enterprise",
	SecurityWPAEnterpriseMixed: "wpa-enterprise-mixed",
	SecurityWPA2Enterprise:     "wpa2-enterprise",
	SecurityEnterprise:         "enterprise",
	SecurityUnknown:            "unknown",
}

func (s Security) String() string {
	if name, ok := securityNames[s]; ok {
		return name
	}

	return "INVALID SECURITY"
}

// ParseSecurity is the inverse of Security.String. Unrecognized names map to
// SecurityUnknown.
func ParseSecurity(name string) Security {
	name = strings.ToLower(strings.TrimSpace(name))

	for security, n := range securityNames {
		if n == name {
			return security
		}
	}

	return SecurityUnknown
}

// RequiresPassword reports whether joining a network with this security needs a
// passphrase or key from the caller.
func (s Security) RequiresPassword() bool {
	switch s {
	case SecurityWEP, SecurityWPAPersonal, SecurityWPAPersonalMixed, SecurityWPA2Personal, SecurityPersonal:
		return true
	default:
		return false
	}
}

// Enterprise reports whether the security type authenticates through 802.1X.
func (s Security) Enterprise() bool {
	switch s {
	case SecurityDynamicWEP, SecurityWPAEnterprise, SecurityWPAEnterpriseMixed, SecurityWPA2Enterprise, SecurityEnterprise:
		return true
	default:
		return false
	}
}

// IBSSModeSecurity is the security used when creating an ad-hoc network.
type IBSSModeSecurity int

const (
	IBSSModeSecurityNone IBSSModeSecurity = iota
	IBSSModeSecurityWEP40
	IBSSModeSecurityWEP104
)

func (s IBSSModeSecurity) String() string {
	switch s {
	case IBSSModeSecurityNone:
		return "none"
	case IBSSModeSecurityWEP40:
		return "wep40"
	case IBSSModeSecurityWEP104:
		return "wep104"
	default:
		return "INVALID IBSS SECURITY"
	}
}

// ChannelWidth is the width of a radio channel.
type ChannelWidth int

const (
	ChannelWidthUnknown ChannelWidth = iota
	ChannelWidth20MHz
	ChannelWidth40MHz
	ChannelWidth80MHz
	ChannelWidth160MHz
)

func (w ChannelWidth) String() string {
	switch w {
	case ChannelWidthUnknown:
		return "unknown"
	case ChannelWidth20MHz:
		return "20MHz"
	case ChannelWidth40MHz:
		return "40MHz"
	case ChannelWidth80MHz:
		return "80MHz"
	case ChannelWidth160MHz:
		return "160MHz"
	default:
		return "INVALID CHANNEL WIDTH"
	}
}

// ChannelBand is the frequency band of a radio channel.
type ChannelBand int

const (
	ChannelBandUnknown ChannelBand = iota
	ChannelBand2GHz
	ChannelBand5GHz
)

func (b ChannelBand) String() string {
	switch b {
	case ChannelBandUnknown:
		return "unknown"
	case ChannelBand2GHz:
		return "2.4GHz"
	case ChannelBand5GHz:
		return "5GHz"
	default:
		return "INVALID CHANNEL BAND"
	}
}

// CipherKeyFlags selects which traffic a WEP key applies to.
type CipherKeyFlags uint32

const (
	CipherKeyFlagsNone      CipherKeyFlags = 0
	CipherKeyFlagsUnicast   CipherKeyFlags = 1 << 1
	CipherKeyFlagsMulticast CipherKeyFlags = 1 << 2
	CipherKeyFlagsTx        CipherKeyFlags = 1 << 3
	CipherKeyFlagsRx        CipherKeyFlags = 1 << 4

	cipherKeyFlagsAll = CipherKeyFlagsUnicast | CipherKeyFlagsMulticast | CipherKeyFlagsTx | CipherKeyFlagsRx
)

// Valid reports whether only known bits are set.
func (f CipherKeyFlags) Valid() bool {
	return f&^cipherKeyFlagsAll == 0
}

// EventType is a kind of hardware-observed change a client can monitor.
type EventType int

const (
	EventTypeNone EventType = iota
	EventTypePowerDidChange
	EventTypeSSIDDidChange
	EventTypeBSSIDDidChange
	EventTypeCountryCodeDidChange
	EventTypeLinkDidChange
	EventTypeLinkQualityDidChange
	EventTypeModeDidChange
	EventTypeScanCacheUpdated

	EventTypeUnknown EventType = 1<<31 - 1
)

// EventTypes lists every monitorable event type.
var EventTypes = []EventType{
	EventTypePowerDidChange,
	EventTypeSSIDDidChange,
	EventTypeBSSIDDidChange,
	EventTypeCountryCodeDidChange,
	EventTypeLinkDidChange,
	EventTypeLinkQualityDidChange,
	EventTypeModeDidChange,
	EventTypeScanCacheUpdated,
}

var eventTypeNames = map[EventType]string{
	EventTypeNone:                 "none",
	EventTypePowerDidChange:       "power",
	EventTypeSSIDDidChange:        "ssid",
	EventTypeBSSIDDidChange:       "bssid",
	EventTypeCountryCodeDidChange: "country-code",
	EventTypeLinkDidChange:        "link",
	EventTypeLinkQualityDidChange: "link-quality",
	EventTypeModeDidChange:        "mode",
	EventTypeScanCacheUpdated:     "scan-cache",
	EventTypeUnknown:              "unknown",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}

	return "INVALID EVENT TYPE"
}

// Valid reports whether t can be monitored.
func (t EventType) Valid() bool {
	return t > EventTypeNone && t <= EventTypeScanCacheUpdated
}

// ParseEventType is the inverse of EventType.String.
func ParseEventType(name string) EventType {
	for t, n := range eventTypeNames {
		if n == name {
			return t
		}
	}

	return EventTypeUnknown
}

// Entitlements are capabilities granted to a client. Operations that need one
// fail with OperationNotPermittedError when it is missing.
type Entitlements uint8

const (
	EntitlementScan Entitlements = 1 << iota
	EntitlementAssociate
	EntitlementIBSS

	EntitlementsAll = EntitlementScan | EntitlementAssociate | EntitlementIBSS
)

// Has reports whether every bit of e is granted.
func (g Entitlements) Has(e Entitlements) bool {
	return g&e == e
}

// ParseEntitlements turns names like "scan", "associate" and "ibss" into a set.
func ParseEntitlements(names []string) (Entitlements, error) {
	var granted Entitlements

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "scan":
			granted |= EntitlementScan
		case "associate":
			granted |= EntitlementAssociate
		case "ibss":
			granted |= EntitlementIBSS
		case "all":
			granted |= EntitlementsAll
		default:
			return 0, NewError(InvalidParameterError, "unknown entitlement %q", name)
		}
	}

	return granted, nil
}
