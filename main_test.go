package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wlanctl/api"
	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifi/mock"
)

func newTestApi(t *testing.T, adminLocal bool) *api.Api {
	hw := mock.New(&mock.Config{Interfaces: []string{"wlan0"}})

	client, err := newClient(hw, nil, wifi.EntitlementsAll, adminLocal)
	require.NoError(t, err)

	a := api.New(&api.Config{Client: client})

	t.Cleanup(func() {
		a.Close()
		_ = client.Close()
	})

	return a
}

func serve(a *api.Api, method string, target string, body string, auth string) int {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	return rec.Code
}

func TestApiCallersAreNotAdministrators(t *testing.T) {
	a := newTestApi(t, false)

	config := `{"network_profiles": [], "require_admin_power": true}`

	code := serve(a, http.MethodPut, "/api/v1/interfaces/wlan0/configuration", config, "")
	assert.Equal(t, http.StatusForbidden, code)

	code = serve(a, http.MethodPut, "/api/v1/interfaces/wlan0/configuration", config, "token")
	require.Equal(t, http.StatusOK, code)

	code = serve(a, http.MethodPatch, "/api/v1/interfaces/wlan0", `{"power": false}`, "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminLocal(t *testing.T) {
	a := newTestApi(t, true)

	config := `{"network_profiles": [], "require_admin_power": true}`

	code := serve(a, http.MethodPut, "/api/v1/interfaces/wlan0/configuration", config, "")
	require.Equal(t, http.StatusOK, code)

	code = serve(a, http.MethodPatch, "/api/v1/interfaces/wlan0", `{"power": false}`, "")
	assert.Equal(t, http.StatusOK, code)
}
