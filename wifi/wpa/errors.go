package wpa

import (
	"errors"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wlanctl/wifi"
)

// D-Bus error names and the codes they turn into. Names are matched by
// suffix so both the generic freedesktop errors and the supplicant's own
// errors are covered.
var dbusErrorCodes = []struct {
	suffix string
	code   wifi.Code
}{
	{".AccessDenied", wifi.OperationNotPermittedError},
	{".ServiceUnknown", wifi.IPCFailureError},
	{".NameHasNoOwner", wifi.IPCFailureError},
	{".NoReply", wifi.TimeoutError},
	{".Timeout", wifi.TimeoutError},
	{".NoMemory", wifi.NoMemoryError},
	{".InvalidArgs", wifi.InvalidParameterError},
	{".UnknownMethod", wifi.NotSupportedError},
	{".NotSupported", wifi.NotSupportedError},
	{".InterfaceUnknown", wifi.ReferenceNotBoundError},
	{".NetworkUnknown", wifi.ReferenceNotBoundError},
	{".BlobUnknown", wifi.ReferenceNotBoundError},
	{".UnknownObject", wifi.ReferenceNotBoundError},
	{".NotConnected", wifi.GenericError},
	{".Disconnected", wifi.IPCFailureError},
}

// dbusError turns the failure of a D-Bus call into a *wifi.Error.
func dbusError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var e *wifi.Error
	if errors.As(err, &e) {
		return e
	}

	return wifi.Wrap(codeForDBusError(err), err, msg)
}

func codeForDBusError(err error) wifi.Code {
	var name string

	switch e := err.(type) {
	case dbus.Error:
		name = e.Name
	case *dbus.Error:
		name = e.Name
	default:
		// errors of the connection itself
		if strings.Contains(err.Error(), "closed") {
			return wifi.IPCFailureError
		}

		return wifi.GenericError
	}

	for _, c := range dbusErrorCodes {
		if strings.HasSuffix(name, c.suffix) {
			return c.code
		}
	}

	return wifi.IPCFailureError
}
