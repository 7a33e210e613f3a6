package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifi/mock"
)

type testEnv struct {
	hw         *mock.Hardware
	client     *wifi.Client
	api        *Api
	privileged bool
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		hw:         mock.New(&mock.Config{Interfaces: []string{"wlan0"}}),
		privileged: true,
	}

	client, err := wifi.NewClient(&wifi.ClientConfig{
		Hardware:     env.hw,
		Entitlements: wifi.EntitlementsAll,
		Privileged:   func() bool { return env.privileged },
	})
	require.NoError(t, err)

	env.client = client
	env.api = New(&Config{Client: client})

	t.Cleanup(func() {
		env.api.Close()
		_ = client.Close()
	})

	return env
}

func (env *testEnv) do(t *testing.T, method string, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	env.api.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, httpStatus(wifi.InvalidParameterError))
	assert.Equal(t, http.StatusBadRequest, httpStatus(wifi.InvalidFormatError))
	assert.Equal(t, http.StatusForbidden, httpStatus(wifi.OperationNotPermittedError))
	assert.Equal(t, http.StatusNotFound, httpStatus(wifi.ReferenceNotBoundError))
	assert.Equal(t, http.StatusNotImplemented, httpStatus(wifi.NotSupportedError))
	assert.Equal(t, http.StatusGatewayTimeout, httpStatus(wifi.TimeoutError))
	assert.Equal(t, http.StatusInternalServerError, httpStatus(wifi.IPCFailureError))
	assert.Equal(t, http.StatusInternalServerError, httpStatus(wifi.AssociationDeniedError))
}

func TestGetInterfaces(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/interfaces", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := interfacesResponse{}
	decode(t, rec, &res)
	assert.Equal(t, []string{"wlan0"}, res.Interfaces)
}

func TestGetInterface(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/interfaces/wlan0", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := interfaceResponse{}
	decode(t, rec, &res)
	assert.Equal(t, "wlan0", res.Name)
	assert.True(t, res.Power)
	assert.Equal(t, "US", res.CountryCode)
	assert.Equal(t, "02:00:00:00:00:01", res.HardwareAddress)
}

func TestGetUnknownInterface(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/interfaces/wlan9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	res := errorResponse{}
	decode(t, rec, &res)
	assert.Equal(t, int(wifi.ReferenceNotBoundError), res.Code)
	assert.Contains(t, res.Error, "wlan9")
}

func TestPatchPower(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, "/api/v1/interfaces/wlan0", `{"power": false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := interfaceResponse{}
	decode(t, rec, &res)
	assert.False(t, res.Power)

	rec = env.do(t, http.MethodPatch, "/api/v1/interfaces/wlan0", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/interfaces/wlan0", `{"power":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanAndNetworks(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.hw.AddNetwork("wlan0", wifi.Network{
		SSIDData:   []byte("home"),
		BSSID:      "aa:bb:cc:00:00:01",
		RSSI:       -40,
		Securities: []wifi.Security{wifi.SecurityWPA2Personal},
	}, "correct horse"))
	require.NoError(t, env.hw.AddNetwork("wlan0", wifi.Network{
		SSIDData: []byte("cafe"),
		BSSID:    "aa:bb:cc:00:00:02",
		RSSI:     -70,
	}, ""))

	rec := env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/scan", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var networks []networkResponse
	decode(t, rec, &networks)
	require.Len(t, networks, 2)
	assert.Equal(t, "home", networks[0].SSID)
	assert.Equal(t, "AA:BB:CC:00:00:01", networks[0].BSSID)
	assert.Equal(t, "wpa2-personal", networks[0].Security)
	assert.Equal(t, "none", networks[1].Security)

	rec = env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/scan", `{"ssid": "cafe"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	networks = nil
	decode(t, rec, &networks)
	require.Len(t, networks, 1)
	assert.Equal(t, "cafe", networks[0].SSID)

	rec = env.do(t, http.MethodGet, "/api/v1/interfaces/wlan0/networks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	networks = nil
	decode(t, rec, &networks)
	require.Len(t, networks, 1)
	assert.Equal(t, "cafe", networks[0].SSID)
}

func TestAssociation(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.hw.AddNetwork("wlan0", wifi.Network{
		SSIDData:   []byte("home"),
		BSSID:      "AA:BB:CC:00:00:01",
		RSSI:       -40,
		Securities: []wifi.Security{wifi.SecurityWPA2Personal},
	}, "correct horse"))

	rec := env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/association", `{"ssid": "home", "password": "short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/association", `{"ssid": "home", "password": "wrong horse"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	res := errorResponse{}
	decode(t, rec, &res)
	assert.Equal(t, int(wifi.SupplicantTimeoutError), res.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/association", `{"ssid": "home", "bssid": "aa-bb-cc-00-00-01", "password": "correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	iface := interfaceResponse{}
	decode(t, rec, &iface)
	assert.Equal(t, "home", iface.SSID)
	assert.Equal(t, "AA:BB:CC:00:00:01", iface.BSSID)
	assert.Equal(t, "wpa2-personal", iface.Security)

	rec = env.do(t, http.MethodDelete, "/api/v1/interfaces/wlan0/association", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/interfaces/wlan0", "")
	iface = interfaceResponse{}
	decode(t, rec, &iface)
	assert.Empty(t, iface.BSSID)
}

func TestAssociationUnknownNetwork(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/association", `{"ssid": "nowhere"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/association", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/interfaces/wlan0/association", `{"ssid": "home", "bssid": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfiguration(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"network_profiles": [{"ssid": "home", "security": "wpa2-personal"}],
		"remember_joined_networks": true
	}`

	env.privileged = false

	rec := env.do(t, http.MethodPut, "/api/v1/interfaces/wlan0/configuration", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/interfaces/wlan0/configuration", strings.NewReader(body))
	req.Header.Set("Authorization", "token")
	rec = httptest.NewRecorder()
	env.api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/interfaces/wlan0/configuration", "")
	require.Equal(t, http.StatusOK, rec.Code)

	config := wifi.Configuration{}
	decode(t, rec, &config)
	assert.True(t, config.RememberJoinedNetworks)
	require.Len(t, config.NetworkProfiles, 1)

	ssid, _ := config.NetworkProfiles[0].SSID()
	assert.Equal(t, "home", ssid)
	assert.Equal(t, wifi.SecurityWPA2Personal, config.NetworkProfiles[0].Security())

	rec = env.do(t, http.MethodPut, "/api/v1/interfaces/wlan0/configuration", `{"network_profiles": [{"ssid": "home", "security": "bogus"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t)

	env.client.SetObserver(env.api.Observer())
	require.NoError(t, env.client.StartMonitoring(wifi.EventTypePowerDidChange))

	server := httptest.NewServer(env.api)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/events"

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	rec := env.do(t, http.MethodPatch, "/api/v1/interfaces/wlan0", `{"power": false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))

	msg := eventMessage{}
	require.NoError(t, c.ReadJSON(&msg))

	assert.Equal(t, "power", msg.Type)
	assert.Equal(t, "wlan0", msg.Interface)

	_, err = uuid.Parse(msg.Session)
	assert.NoError(t, err)

	env.hw.Interrupt()

	msg = eventMessage{}
	require.NoError(t, c.ReadJSON(&msg))
	assert.Equal(t, "interrupted", msg.Type)
}

func TestEventStreamClosed(t *testing.T) {
	env := newTestEnv(t)

	server := httptest.NewServer(env.api)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/events"

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	env.api.Close()

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "unexpected error: %v", err)

	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}
