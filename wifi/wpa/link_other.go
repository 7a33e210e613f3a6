//go:build !linux

package wpa

import "github.com/the-lightning-land/wlanctl/wifi"

func linkUp(name string) (bool, error) {
	return false, wifi.NewError(wifi.NotSupportedError, "link state is only available on Linux")
}

func setLinkUp(name string, up bool) error {
	return wifi.NewError(wifi.NotSupportedError, "link state is only available on Linux")
}
