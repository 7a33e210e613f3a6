package wpa

import (
	"github.com/the-lightning-land/wlanctl/wifi"
	"golang.org/x/sys/unix"
)

func linkFlags(name string) (int, *unix.Ifreq, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, nil, wifi.Wrap(wifi.IPCFailureError, err, "could not open control socket")
	}

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		_ = unix.Close(fd)
		return -1, nil, wifi.Wrap(wifi.InvalidParameterError, err, "invalid interface name")
	}

	err = unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr)
	if err != nil {
		_ = unix.Close(fd)
		return -1, nil, linkError(err, "could not read flags of "+name)
	}

	return fd, ifr, nil
}

// linkUp reports whether the interface is administratively up.
func linkUp(name string) (bool, error) {
	fd, ifr, err := linkFlags(name)
	if err != nil {
		return false, err
	}
	defer unix.Close(fd)

	return ifr.Uint16()&unix.IFF_UP != 0, nil
}

// setLinkUp brings the interface up or down, which powers the radio on or
// off.
func setLinkUp(name string, up bool) error {
	fd, ifr, err := linkFlags(name)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	flags := ifr.Uint16()
	if up {
		flags |= unix.IFF_UP
	} else {
		flags &^= unix.IFF_UP
	}

	ifr.SetUint16(flags)

	err = unix.IoctlIfreq(fd, unix.SIOCSIFFLAGS, ifr)
	if err != nil {
		return linkError(err, "could not set flags of "+name)
	}

	return nil
}

func linkError(err error, msg string) error {
	switch err {
	case unix.EPERM, unix.EACCES:
		return wifi.Wrap(wifi.OperationNotPermittedError, err, msg)
	case unix.ENODEV, unix.ENXIO:
		return wifi.Wrap(wifi.ReferenceNotBoundError, err, msg)
	case unix.ERFKILL:
		return wifi.Wrap(wifi.OperationNotPermittedError, err, msg)
	default:
		return wifi.Wrap(wifi.GenericError, err, msg)
	}
}
