package wpa

import "github.com/the-lightning-land/wlanctl/wifi"

// Information element identifiers, IEEE 802.11-2016 9.4.2.
const (
	ieSupportedRates         = 1
	ieCountry                = 7
	ieHTCapabilities         = 45
	ieExtendedSupportedRates = 50
	ieVHTCapabilities        = 191
)

type informationElements map[byte][]byte

// parseIEs splits a raw element list. A truncated trailing element is
// dropped.
func parseIEs(data []byte) informationElements {
	ies := make(informationElements)

	for len(data) >= 2 {
		id, length := data[0], int(data[1])
		if len(data) < 2+length {
			break
		}

		if _, ok := ies[id]; !ok {
			ies[id] = data[2 : 2+length]
		}

		data = data[2+length:]
	}

	return ies
}

// countryCode returns the first two letters of the country element.
func (ies informationElements) countryCode() string {
	country, ok := ies[ieCountry]
	if !ok || len(country) < 2 {
		return ""
	}

	return wifi.NormalizeCountryCode(string(country[:2]))
}

// phyModes infers the PHY modes from rates and capabilities. band is needed
// to tell 802.11a from 802.11g.
func (ies informationElements) phyModes(band wifi.ChannelBand) []wifi.PHYMode {
	var modes []wifi.PHYMode

	rates := append(append([]byte(nil), ies[ieSupportedRates]...), ies[ieExtendedSupportedRates]...)

	switch band {
	case wifi.ChannelBand5GHz:
		modes = append(modes, wifi.PHYMode11a)
	default:
		cck, ofdm := false, false

		for _, r := range rates {
			// rates are in units of 500 kbit/s, the top bit flags basic rates
			switch r & 0x7f {
			case 2, 4, 11, 22:
				cck = true
			case 12, 18, 24, 36, 48, 72, 96, 108:
				ofdm = true
			}
		}

		if cck || len(rates) == 0 {
			modes = append(modes, wifi.PHYMode11b)
		}

		if ofdm {
			modes = append(modes, wifi.PHYMode11g)
		}
	}

	if _, ok := ies[ieHTCapabilities]; ok {
		modes = append(modes, wifi.PHYMode11n)
	}

	if _, ok := ies[ieVHTCapabilities]; ok {
		modes = append(modes, wifi.PHYMode11ac)
	}

	return modes
}

// bestPHYMode returns the newest of modes.
func bestPHYMode(modes []wifi.PHYMode) wifi.PHYMode {
	best := wifi.PHYModeNone

	for _, m := range modes {
		if m > best {
			best = m
		}
	}

	return best
}
