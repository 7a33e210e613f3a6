package wifi_test

import (
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifi/mock"
)

type testEnv struct {
	hw         *mock.Hardware
	client     *wifi.Client
	privileged bool
}

func newTestEnv(t *testing.T, entitlements wifi.Entitlements) *testEnv {
	env := &testEnv{
		hw:         mock.New(&mock.Config{Interfaces: []string{"wlan0", "wlan1"}}),
		privileged: true,
	}

	client, err := wifi.NewClient(&wifi.ClientConfig{
		Hardware:     env.hw,
		Entitlements: entitlements,
		Privileged:   func() bool { return env.privileged },
		NewBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(5 * time.Millisecond)
		},
	})
	require.NoError(t, err)

	env.client = client

	t.Cleanup(func() {
		_ = client.Close()
	})

	return env
}

func (env *testEnv) iface(t *testing.T, name string) *wifi.Interface {
	iface, err := env.client.Interface(name)
	require.NoError(t, err)

	return iface
}

func network(ssid string, bssid string, rssi int, securities ...wifi.Security) wifi.Network {
	return wifi.Network{
		SSIDData:   []byte(ssid),
		BSSID:      bssid,
		RSSI:       rssi,
		Channel:    wifi.Channel{Number: 11, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand2GHz},
		Securities: securities,
	}
}

func TestNewClientWithoutHardware(t *testing.T) {
	_, err := wifi.NewClient(&wifi.ClientConfig{})
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))
}

func TestClientInterfaces(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)

	names, err := env.client.InterfaceNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"wlan0", "wlan1"}, names)

	def, err := env.client.DefaultInterface()
	require.NoError(t, err)
	assert.Equal(t, "wlan0", def.Name())

	ifaces, err := env.client.Interfaces()
	require.NoError(t, err)
	require.Len(t, ifaces, 2)
	assert.Equal(t, "wlan1", ifaces[1].Name())

	_, err = env.client.Interface("wlan9")
	assert.True(t, errors.Is(err, wifi.ErrReferenceNotBound))
}

func TestClientCachesHandles(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)

	a := env.iface(t, "wlan1")
	b := env.iface(t, "wlan1")
	assert.Same(t, a, b)

	env.hw.RemoveInterface("wlan1")

	_, err := env.client.Interface("wlan1")
	assert.Equal(t, wifi.ReferenceNotBoundError, wifi.CodeOf(err))

	env.hw.AddInterface("wlan1")

	c := env.iface(t, "wlan1")
	assert.NotSame(t, a, c)
}

func TestClientEnumerationFailure(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)

	env.hw.FailNext("InterfaceNames", errors.New("bus gone"))

	_, err := env.client.InterfaceNames()
	assert.Equal(t, wifi.IPCFailureError, wifi.CodeOf(err))
}

func TestNoInterfaces(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	env.hw.RemoveInterface("wlan0")
	env.hw.RemoveInterface("wlan1")

	names, err := env.client.InterfaceNames()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = env.client.DefaultInterface()
	assert.Equal(t, wifi.ReferenceNotBoundError, wifi.CodeOf(err))
}

func TestQueries(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	assert.True(t, iface.PowerOn())
	assert.Equal(t, "02:00:00:00:00:01", iface.HardwareAddress())
	assert.Equal(t, "US", iface.CountryCode())
	assert.Equal(t, wifi.InterfaceModeStation, iface.Mode())
	assert.Equal(t, wifi.PHYMode11n, iface.PHYMode())
	assert.Equal(t, 100, iface.TransmitPower())
	assert.True(t, iface.ServiceActive())
	assert.Len(t, iface.SupportedChannels(), 15)

	require.NotNil(t, iface.Channel())
	assert.Equal(t, 6, iface.Channel().Number)

	assert.Equal(t, "", iface.SSID())
	assert.Nil(t, iface.SSIDData())
	assert.Equal(t, "", iface.BSSID())
}

func TestQueriesReturnZeroValuesOnFailure(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	boom := errors.New("boom")

	env.hw.FailNext("PowerOn", boom)
	assert.False(t, iface.PowerOn())

	env.hw.FailNext("Channel", boom)
	assert.Nil(t, iface.Channel())

	env.hw.FailNext("RSSI", boom)
	assert.Equal(t, 0, iface.RSSI())

	env.hw.FailNext("Security", boom)
	assert.Equal(t, wifi.SecurityUnknown, iface.Security())

	env.hw.FailNext("CountryCode", boom)
	assert.Equal(t, "", iface.CountryCode())

	env.hw.FailNext("Configuration", boom)
	assert.Nil(t, iface.Configuration())

	env.hw.FailNext("CachedScanResults", boom)
	assert.Nil(t, iface.CachedScanResults())
}

func TestSetPowerIsIdempotent(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	require.NoError(t, iface.SetPower(true))
	assert.Equal(t, 0, env.hw.Calls("SetPower"))

	require.NoError(t, iface.SetPower(false))
	assert.Equal(t, 1, env.hw.Calls("SetPower"))
	assert.False(t, iface.PowerOn())

	require.NoError(t, iface.SetPower(false))
	assert.Equal(t, 1, env.hw.Calls("SetPower"))
}

func TestSetPowerFailure(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	env.hw.FailNext("SetPower", errors.New("rfkill"))

	err := iface.SetPower(false)
	assert.Equal(t, wifi.GenericError, wifi.CodeOf(err))
	assert.True(t, iface.PowerOn())
}

func TestSetPowerRequiresAdministrator(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	require.NoError(t, iface.CommitConfiguration(wifi.Configuration{RequireAdministratorForPower: true}, nil))

	env.privileged = false

	err := iface.SetPower(false)
	assert.True(t, errors.Is(err, wifi.ErrOperationNotPermitted))
	assert.Equal(t, 0, env.hw.Calls("SetPower"))

	env.privileged = true
	assert.NoError(t, iface.SetPower(false))
}

func TestSetPairwiseMasterKey(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	for _, n := range []int{0, 1, 31, 33, 64} {
		err := iface.SetPairwiseMasterKey(make([]byte, n))
		assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err), "length %d", n)
	}
	assert.Equal(t, 0, env.hw.Calls("SetPairwiseMasterKey"))

	key := make([]byte, wifi.PMKLength)
	key[0] = 0x42

	require.NoError(t, iface.SetPairwiseMasterKey(key))
	assert.Equal(t, key, env.hw.PairwiseMasterKey("wlan0"))

	require.NoError(t, iface.SetPairwiseMasterKey(nil))
	assert.Nil(t, env.hw.PairwiseMasterKey("wlan0"))
}

func TestSetWEPKeyRejectsIndexFirst(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	keys := [][]byte{nil, []byte("abcde"), []byte("abcdefghijklm"), []byte("abc")}
	flags := []wifi.CipherKeyFlags{
		wifi.CipherKeyFlagsNone,
		wifi.CipherKeyFlagsUnicast | wifi.CipherKeyFlagsTx,
		wifi.CipherKeyFlags(1),
	}

	for _, index := range []int{-1, 0, 5, 100} {
		for _, key := range keys {
			for _, f := range flags {
				err := iface.SetWEPKey(key, f, index)
				require.Error(t, err)
				assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))
				assert.Contains(t, err.Error(), "index")
			}
		}
	}

	assert.Equal(t, 0, env.hw.Calls("SetWEPKey"))
}

func TestSetWEPKey(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	err := iface.SetWEPKey([]byte("abcde"), wifi.CipherKeyFlags(1), 1)
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	err = iface.SetWEPKey([]byte("abcdef"), wifi.CipherKeyFlagsUnicast, 1)
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	require.NoError(t, iface.SetWEPKey([]byte("abcde"), wifi.CipherKeyFlagsUnicast, 1))
	require.NoError(t, iface.SetWEPKey([]byte("abcdefghijklm"), wifi.CipherKeyFlagsMulticast, 4))

	assert.Equal(t, []byte("abcde"), env.hw.WEPKey("wlan0", 1))
	assert.Equal(t, []byte("abcdefghijklm"), env.hw.WEPKey("wlan0", 4))

	require.NoError(t, iface.SetWEPKey(nil, wifi.CipherKeyFlagsNone, 1))
	assert.Nil(t, env.hw.WEPKey("wlan0", 1))
}

func TestSetChannel(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	eleven := wifi.Channel{Number: 11, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand2GHz}

	err := iface.SetChannel(wifi.Channel{Number: 13, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand2GHz})
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	err = iface.SetChannel(wifi.Channel{})
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	err = iface.SetChannel(wifi.Channel{Number: 11, Width: wifi.ChannelWidth40MHz, Band: wifi.ChannelBand2GHz})
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))
	assert.Equal(t, 0, env.hw.Calls("SetChannel"))

	require.NoError(t, iface.SetChannel(eleven))
	assert.Equal(t, eleven, *iface.Channel())
}

func TestSetChannelWhileAssociated(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	home := network("home", "AA:BB:CC:DD:EE:01", -40)
	require.NoError(t, env.hw.AddNetwork("wlan0", home, ""))
	require.NoError(t, iface.Associate(home, ""))

	err := iface.SetChannel(wifi.Channel{Number: 1, Width: wifi.ChannelWidth20MHz, Band: wifi.ChannelBand2GHz})
	assert.True(t, errors.Is(err, wifi.ErrOperationNotPermitted))
	assert.Equal(t, 0, env.hw.Calls("SetChannel"))
}

func TestScanRemovesDuplicates(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	require.NoError(t, env.hw.AddNetwork("wlan0", network("home", "AA:BB:CC:DD:EE:01", -70), ""))
	require.NoError(t, env.hw.AddNetwork("wlan0", network("cafe", "AA:BB:CC:DD:EE:02", -60), ""))
	require.NoError(t, env.hw.AddNetwork("wlan0", network("home", "aa:bb:cc:dd:ee:01", -40), ""))
	require.NoError(t, env.hw.AddNetwork("wlan0", network("home", "AA:BB:CC:DD:EE:03", -80), ""))

	networks, err := iface.Scan(nil)
	require.NoError(t, err)
	require.Len(t, networks, 3)

	assert.Equal(t, -40, networks[0].RSSI)
	assert.Equal(t, "AA:BB:CC:DD:EE:01", networks[0].BSSID)
	assert.Equal(t, -60, networks[1].RSSI)
	assert.Equal(t, -80, networks[2].RSSI)

	for i := range networks {
		for j := range networks {
			if i != j {
				assert.False(t, networks[i].Equal(networks[j]))
			}
		}
	}

	cached := iface.CachedScanResults()
	assert.Len(t, cached, 3)
}

func TestDirectedScanFindsHiddenNetworks(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	require.NoError(t, env.hw.AddNetwork("wlan0", network("home", "AA:BB:CC:DD:EE:01", -70), ""))
	require.NoError(t, env.hw.AddHiddenNetwork("wlan0", network("secret", "AA:BB:CC:DD:EE:02", -50), ""))

	networks, err := iface.Scan(nil)
	require.NoError(t, err)
	assert.Len(t, networks, 1)

	networks, err = iface.ScanForName("secret")
	require.NoError(t, err)
	require.Len(t, networks, 1)

	ssid, ok := networks[0].SSID()
	assert.True(t, ok)
	assert.Equal(t, "secret", ssid)
}

func TestScanValidation(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	_, err := iface.Scan([]byte{})
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	_, err = iface.Scan(make([]byte, 33))
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	assert.Equal(t, 0, env.hw.Calls("Scan"))
}

func TestScanFailure(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	env.hw.FailNext("Scan", wifi.NewError(wifi.TimeoutError, "no scan results"))

	_, err := iface.Scan(nil)
	assert.True(t, errors.Is(err, wifi.ErrTimeout))
}

func TestEntitlements(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementScan)
	iface := env.iface(t, "wlan0")

	_, err := iface.Scan(nil)
	assert.NoError(t, err)

	err = iface.Associate(network("home", "AA:BB:CC:DD:EE:01", -40), "")
	assert.Equal(t, wifi.OperationNotPermittedError, wifi.CodeOf(err))

	err = iface.StartIBSS([]byte("adhoc"), wifi.IBSSModeSecurityNone, 11, "")
	assert.Equal(t, wifi.OperationNotPermittedError, wifi.CodeOf(err))

	env = newTestEnv(t, wifi.EntitlementAssociate)
	iface = env.iface(t, "wlan0")

	_, err = iface.Scan(nil)
	assert.Equal(t, wifi.OperationNotPermittedError, wifi.CodeOf(err))
	assert.Equal(t, 0, env.hw.Calls("Scan"))
}

func TestAssociateRequiresPasswordBeforeHardware(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	for _, security := range []wifi.Security{
		wifi.SecurityWEP,
		wifi.SecurityWPAPersonal,
		wifi.SecurityWPAPersonalMixed,
		wifi.SecurityWPA2Personal,
		wifi.SecurityPersonal,
	} {
		before := env.hw.TotalCalls()

		err := iface.Associate(network("home", "AA:BB:CC:DD:EE:01", -40, security), "")
		assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err), "security %v", security)
		assert.Equal(t, before, env.hw.TotalCalls(), "security %v", security)
	}
}

func TestAssociateRequiresPasswordWithUnknownSecurity(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	for _, securities := range [][]wifi.Security{
		{wifi.SecurityUnknown, wifi.SecurityWPA2Personal},
		{wifi.SecurityWPA2Enterprise, wifi.SecurityWPA2Personal},
	} {
		before := env.hw.TotalCalls()

		err := iface.Associate(network("home", "AA:BB:CC:DD:EE:01", -40, securities...), "")
		assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err), "securities %v", securities)
		assert.Equal(t, before, env.hw.TotalCalls(), "securities %v", securities)

		err = iface.Associate(network("home", "AA:BB:CC:DD:EE:01", -40, securities...), "short")
		assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err), "securities %v", securities)
		assert.Equal(t, before, env.hw.TotalCalls(), "securities %v", securities)
	}
}

func TestAssociatePassphraseRules(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	wpa := network("home", "AA:BB:CC:DD:EE:01", -40, wifi.SecurityWPA2Personal)
	wep := network("old", "AA:BB:CC:DD:EE:02", -40, wifi.SecurityWEP)

	for _, password := range []string{"short", string(make([]byte, 64)), "x" + string(make([]byte, 64))} {
		err := iface.Associate(wpa, password)
		assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))
	}

	err := iface.Associate(wep, "abcdef")
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	assert.Equal(t, 0, env.hw.Calls("Associate"))
}

func TestAssociate(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	home := network("home", "aa:bb:cc:dd:ee:01", -45, wifi.SecurityWPA2Personal)
	require.NoError(t, env.hw.AddNetwork("wlan0", home, "correct horse"))

	err := iface.Associate(home, "wrong horse")
	assert.Equal(t, wifi.SupplicantTimeoutError, wifi.CodeOf(err))
	assert.True(t, wifi.CodeOf(err).Retryable())

	require.NoError(t, iface.Associate(home, "correct horse"))

	assert.Equal(t, "home", iface.SSID())
	assert.Equal(t, []byte("home"), iface.SSIDData())
	assert.Equal(t, "AA:BB:CC:DD:EE:01", iface.BSSID())
	assert.Equal(t, -45, iface.RSSI())
	assert.Equal(t, wifi.SecurityWPA2Personal, iface.Security())

	iface.Disassociate()
	assert.Equal(t, "", iface.BSSID())
}

func TestAssociateOutOfRange(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	err := iface.Associate(network("nowhere", "AA:BB:CC:DD:EE:09", -40), "")
	assert.True(t, errors.Is(err, wifi.ErrTimeout))
}

func TestAssociateRequiresAdministrator(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	home := network("home", "AA:BB:CC:DD:EE:01", -45)
	require.NoError(t, env.hw.AddNetwork("wlan0", home, ""))
	require.NoError(t, iface.CommitConfiguration(wifi.Configuration{RequireAdministratorForAssociation: true}, nil))

	env.privileged = false

	err := iface.Associate(home, "")
	assert.Equal(t, wifi.OperationNotPermittedError, wifi.CodeOf(err))
	assert.Equal(t, 0, env.hw.Calls("Associate"))
}

func TestAssociateRemembersNetworks(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	home := network("home", "AA:BB:CC:DD:EE:01", -45, wifi.SecurityWPA2Personal)
	require.NoError(t, env.hw.AddNetwork("wlan0", home, "correct horse"))
	require.NoError(t, iface.CommitConfiguration(wifi.Configuration{RememberJoinedNetworks: true}, nil))

	require.NoError(t, iface.Associate(home, "correct horse"))

	config := iface.Configuration()
	require.NotNil(t, config)

	profile, ok := config.Profile([]byte("home"))
	assert.True(t, ok)
	assert.Equal(t, wifi.SecurityWPA2Personal, profile.Security())
}

func TestDisassociateIgnoresFailures(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	env.hw.FailNext("Disassociate", errors.New("not associated"))

	assert.NotPanics(t, iface.Disassociate)
	assert.Equal(t, 1, env.hw.Calls("Disassociate"))
}

func TestStartIBSS(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	err := iface.StartIBSS([]byte("adhoc"), wifi.IBSSModeSecurityWEP40, 11, "abcdef")
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	err = iface.StartIBSS([]byte("adhoc"), wifi.IBSSModeSecurityWEP104, 11, "abcde")
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	err = iface.StartIBSS([]byte("adhoc"), wifi.IBSSModeSecurityNone, 0, "")
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))

	assert.Equal(t, 0, env.hw.Calls("StartIBSS"))

	require.NoError(t, iface.StartIBSS([]byte("adhoc"), wifi.IBSSModeSecurityWEP40, 11, "0102030405"))

	assert.Equal(t, wifi.InterfaceModeIBSS, iface.Mode())
	assert.Equal(t, "adhoc", iface.SSID())
	assert.Equal(t, 11, iface.Channel().Number)
}

func TestStartIBSSDefaultsToHostName(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	require.NoError(t, iface.StartIBSS(nil, wifi.IBSSModeSecurityNone, 1, ""))
	assert.NotEmpty(t, iface.SSIDData())
}

func TestCommitConfiguration(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	config := wifi.Configuration{
		NetworkProfiles: []wifi.NetworkProfile{
			wifi.NewNetworkProfile([]byte("home"), wifi.SecurityWPA2Personal),
		},
		RememberJoinedNetworks: true,
	}

	env.privileged = false

	err := iface.CommitConfiguration(config, nil)
	assert.True(t, errors.Is(err, wifi.ErrOperationNotPermitted))
	assert.Equal(t, 0, env.hw.Calls("CommitConfiguration"))

	require.NoError(t, iface.CommitConfiguration(config, wifi.Authorization("token")))

	committed := iface.Configuration()
	require.NotNil(t, committed)
	assert.True(t, config.Equal(*committed))
}

func TestCommitInvalidConfiguration(t *testing.T) {
	env := newTestEnv(t, wifi.EntitlementsAll)
	iface := env.iface(t, "wlan0")

	config := wifi.Configuration{
		NetworkProfiles: []wifi.NetworkProfile{
			wifi.NewNetworkProfile([]byte("home"), wifi.SecurityNone),
			wifi.NewNetworkProfile([]byte("home"), wifi.SecurityWEP),
		},
	}

	err := iface.CommitConfiguration(config, nil)
	assert.Equal(t, wifi.InvalidParameterError, wifi.CodeOf(err))
	assert.Equal(t, 0, env.hw.Calls("CommitConfiguration"))
}
