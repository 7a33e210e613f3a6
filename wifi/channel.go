package wifi

import "fmt"

// Channel describes an IEEE 802.11 radio channel. It is a comparable value;
// two channels are equal when number, width and band all match.
type Channel struct {
	Number int          `json:"number"`
	Width  ChannelWidth `json:"width"`
	Band   ChannelBand  `json:"band"`
}

// Equal reports whether c and other describe the same channel.
func (c Channel) Equal(other Channel) bool {
	return c == other
}

func (c Channel) String() string {
	return fmt.Sprintf("%d (%v, %v)", c.Number, c.Band, c.Width)
}

// Frequency returns the centre frequency in MHz of the primary 20MHz channel,
// or zero when the number does not exist in the band.
func (c Channel) Frequency() int {
	switch c.Band {
	case ChannelBand2GHz:
		if c.Number == 14 {
			return 2484
		}

		if c.Number >= 1 && c.Number <= 13 {
			return 2407 + c.Number*5
		}
	case ChannelBand5GHz:
		if c.Number >= 1 && c.Number <= 196 {
			return 5000 + c.Number*5
		}
	}

	return 0
}

// ChannelFromFrequency derives a channel from a centre frequency in MHz.
// Frequencies outside the 2.4GHz and 5GHz bands yield an unknown band and a
// zero number.
func ChannelFromFrequency(mhz int, width ChannelWidth) Channel {
	switch {
	case mhz == 2484:
		return Channel{Number: 14, Width: width, Band: ChannelBand2GHz}
	case mhz >= 2412 && mhz <= 2472:
		return Channel{Number: (mhz - 2407) / 5, Width: width, Band: ChannelBand2GHz}
	case mhz >= 5005 && mhz <= 5980:
		return Channel{Number: (mhz - 5000) / 5, Width: width, Band: ChannelBand5GHz}
	default:
		return Channel{Width: width}
	}
}

// ParseChannelWidth reads widths as reported by drivers, e.g. "20 MHz" or
// "80".
func ParseChannelWidth(s string) ChannelWidth {
	var mhz int

	_, err := fmt.Sscanf(s, "%d", &mhz)
	if err != nil {
		return ChannelWidthUnknown
	}

	switch mhz {
	case 20:
		return ChannelWidth20MHz
	case 40:
		return ChannelWidth40MHz
	case 80:
		return ChannelWidth80MHz
	case 160:
		return ChannelWidth160MHz
	default:
		return ChannelWidthUnknown
	}
}
