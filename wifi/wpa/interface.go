package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

// Interface is a network interface controlled by wpa_supplicant.
type Interface struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (i *Interface) Path() dbus.ObjectPath {
	return i.obj.Path()
}

func (i *Interface) property(name string) (dbus.Variant, error) {
	v, err := i.obj.GetProperty(interfaceName + "." + name)
	if err != nil {
		return v, dbusError(err, "could not get "+name)
	}

	return v, nil
}

func (i *Interface) stringProperty(name string) (string, error) {
	v, err := i.property(name)
	if err != nil {
		return "", err
	}

	s, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert %v: %v", name, v)
	}

	return s, nil
}

func (i *Interface) intProperty(name string) (int, error) {
	v, err := i.property(name)
	if err != nil {
		return 0, err
	}

	n, ok := v.Value().(int32)
	if !ok {
		return 0, errors.Errorf("could not convert %v: %v", name, v)
	}

	return int(n), nil
}

func (i *Interface) pathProperty(name string) (dbus.ObjectPath, error) {
	v, err := i.property(name)
	if err != nil {
		return "", err
	}

	path, ok := v.Value().(dbus.ObjectPath)
	if !ok {
		return "", errors.Errorf("could not convert %v: %v", name, v)
	}

	return path, nil
}

func (i *Interface) Ifname() (string, error) {
	return i.stringProperty("Ifname")
}

// State is the supplicant state, e.g. "completed", "scanning" or
// "interface_disabled".
func (i *Interface) State() (string, error) {
	return i.stringProperty("State")
}

func (i *Interface) Country() (string, error) {
	return i.stringProperty("Country")
}

// AssocStatusCode is the IEEE 802.11 status of the last association.
func (i *Interface) AssocStatusCode() (int, error) {
	return i.intProperty("AssocStatusCode")
}

// AuthStatusCode is the IEEE 802.11 status of the last authentication.
func (i *Interface) AuthStatusCode() (int, error) {
	return i.intProperty("AuthStatusCode")
}

// DisconnectReason is the IEEE 802.11 reason of the last disconnect,
// negative when the disconnect was local.
func (i *Interface) DisconnectReason() (int, error) {
	return i.intProperty("DisconnectReason")
}

// CurrentBSS returns the BSS the interface is associated with, nil when
// there is none.
func (i *Interface) CurrentBSS() (*BSS, error) {
	path, err := i.pathProperty("CurrentBSS")
	if err != nil {
		return nil, err
	}

	if !path.IsValid() || path == "/" {
		return nil, nil
	}

	return &BSS{
		obj: i.wpa.conn.Object(service, path),
	}, nil
}

// CurrentNetwork returns the selected network, nil when there is none.
func (i *Interface) CurrentNetwork() (*Network, error) {
	path, err := i.pathProperty("CurrentNetwork")
	if err != nil {
		return nil, err
	}

	if !path.IsValid() || path == "/" {
		return nil, nil
	}

	return &Network{
		wpa: i.wpa,
		obj: i.wpa.conn.Object(service, path),
	}, nil
}

// Scan triggers an active scan. A non-nil ssid is probed for explicitly,
// which finds hidden networks.
func (i *Interface) Scan(ssid []byte) error {
	args := map[string]interface{}{
		"Type": "active",
	}

	if ssid != nil {
		args["SSIDs"] = [][]byte{ssid}
	}

	call := i.obj.Call(interfaceName+".Scan", 0, args)
	if call.Err != nil {
		return dbusError(call.Err, "could not scan")
	}

	return nil
}

func (i *Interface) BSSs() ([]*BSS, error) {
	v, err := i.property("BSSs")
	if err != nil {
		return nil, err
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert BSSs: %v", v)
	}

	var bsss []*BSS

	for _, objectPath := range objectPaths {
		bsss = append(bsss, &BSS{
			obj: i.wpa.conn.Object(service, objectPath),
		})
	}

	return bsss, nil
}

// SignalPoll returns the current link measurements: rssi, linkspeed, noise,
// frequency and width.
func (i *Interface) SignalPoll() (map[string]dbus.Variant, error) {
	var props map[string]dbus.Variant

	err := i.obj.Call(interfaceName+".SignalPoll", 0).Store(&props)
	if err != nil {
		return nil, dbusError(err, "could not poll signal")
	}

	return props, nil
}

func (i *Interface) AddNetwork(args map[string]interface{}) (*Network, error) {
	call := i.obj.Call(interfaceName+".AddNetwork", 0, args)
	if call.Err != nil {
		return nil, dbusError(call.Err, "could not add network")
	}

	var objPath dbus.ObjectPath
	err := call.Store(&objPath)
	if err != nil {
		return nil, errors.Errorf("could not store value: %v", err)
	}

	return &Network{
		wpa: i.wpa,
		obj: i.wpa.conn.Object(service, objPath),
	}, nil
}

func (i *Interface) SelectNetwork(net *Network) error {
	call := i.obj.Call(interfaceName+".SelectNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return dbusError(call.Err, "could not select network")
	}

	return nil
}

func (i *Interface) RemoveNetwork(net *Network) error {
	call := i.obj.Call(interfaceName+".RemoveNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return dbusError(call.Err, "could not remove network")
	}

	return nil
}

func (i *Interface) RemoveAllNetworks() error {
	call := i.obj.Call(interfaceName+".RemoveAllNetworks", 0)
	if call.Err != nil {
		return dbusError(call.Err, "could not remove all networks")
	}

	return nil
}

func (i *Interface) Disconnect() error {
	call := i.obj.Call(interfaceName+".Disconnect", 0)
	if call.Err != nil {
		return dbusError(call.Err, "could not disconnect")
	}

	return nil
}

// SaveConfig writes the network blocks to the supplicant's configuration
// file. It needs update_config=1.
func (i *Interface) SaveConfig() error {
	call := i.obj.Call(interfaceName+".SaveConfig", 0)
	if call.Err != nil {
		return dbusError(call.Err, "could not save configuration")
	}

	return nil
}
