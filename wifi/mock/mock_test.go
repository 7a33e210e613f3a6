package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifidb"
)

func TestDefaultInterface(t *testing.T) {
	h := New(&Config{})
	defer h.Close()

	name, err := h.DefaultInterfaceName()
	require.NoError(t, err)
	assert.Equal(t, "wlan0", name)

	_, err = h.Device("wlan7")
	assert.Equal(t, wifi.ReferenceNotBoundError, wifi.CodeOf(err))
}

func TestEventsOnlyWhenMonitored(t *testing.T) {
	h := New(&Config{})
	defer h.Close()

	h.Emit(wifi.EventTypeSSIDDidChange, "wlan0")
	assert.Len(t, h.Events(), 0)

	require.NoError(t, h.StartMonitoring(wifi.EventTypeSSIDDidChange))
	h.Emit(wifi.EventTypeSSIDDidChange, "wlan0")

	e := <-h.Events()
	assert.Equal(t, wifi.EventTypeSSIDDidChange, e.Type)
	assert.Equal(t, "wlan0", e.Interface)
}

func TestInterruptDropsRegistrations(t *testing.T) {
	h := New(&Config{})
	defer h.Close()

	require.NoError(t, h.StartMonitoring(wifi.EventTypePowerDidChange))

	h.Interrupt()

	e := <-h.Events()
	assert.Equal(t, wifi.ConnectionInterrupted, e.Connection)
	assert.False(t, h.Monitoring(wifi.EventTypePowerDidChange))

	err := h.StartMonitoring(wifi.EventTypePowerDidChange)
	assert.Equal(t, wifi.IPCFailureError, wifi.CodeOf(err))

	h.Restore()
	assert.NoError(t, h.StartMonitoring(wifi.EventTypePowerDidChange))
}

func TestFailNextQueues(t *testing.T) {
	h := New(&Config{})
	defer h.Close()

	dev, err := h.Device("wlan0")
	require.NoError(t, err)

	h.FailNext("RSSI", assert.AnError)
	h.FailNext("RSSI", assert.AnError)

	_, err = dev.RSSI()
	assert.Error(t, err)
	_, err = dev.RSSI()
	assert.Error(t, err)
	_, err = dev.RSSI()
	assert.NoError(t, err)

	assert.Equal(t, 3, h.Calls("RSSI"))
}

func TestCloseFailsCalls(t *testing.T) {
	h := New(&Config{})

	dev, err := h.Device("wlan0")
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, ok := <-h.Events()
	assert.False(t, ok)

	_, err = dev.PowerOn()
	assert.Equal(t, wifi.IPCFailureError, wifi.CodeOf(err))
}

func TestCommitPersists(t *testing.T) {
	dir := t.TempDir()

	db, err := wifidb.Open(dir)
	require.NoError(t, err)
	defer db.Close()

	h := New(&Config{DB: db})

	dev, err := h.Device("wlan0")
	require.NoError(t, err)

	config := wifi.Configuration{
		NetworkProfiles: []wifi.NetworkProfile{wifi.NewNetworkProfile([]byte("home"), wifi.SecurityNone)},
	}
	require.NoError(t, dev.CommitConfiguration(config, wifi.Authorization("token")))
	require.NoError(t, h.Close())

	h = New(&Config{DB: db})
	defer h.Close()

	dev, err = h.Device("wlan0")
	require.NoError(t, err)

	loaded, err := dev.Configuration()
	require.NoError(t, err)
	assert.True(t, config.Equal(loaded))
}
