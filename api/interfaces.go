package api

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wlanctl/wifi"
)

type interfacesResponse struct {
	Interfaces []string `json:"interfaces"`
}

type interfaceResponse struct {
	Name            string        `json:"name"`
	Power           bool          `json:"power"`
	ServiceActive   bool          `json:"service_active"`
	SSID            string        `json:"ssid,omitempty"`
	SSIDData        []byte        `json:"ssid_data,omitempty"`
	BSSID           string        `json:"bssid,omitempty"`
	RSSI            int           `json:"rssi"`
	Noise           int           `json:"noise"`
	TransmitRate    float64       `json:"transmit_rate"`
	TransmitPower   int           `json:"transmit_power"`
	Channel         *wifi.Channel `json:"channel,omitempty"`
	PHYMode         string        `json:"phy_mode"`
	Security        string        `json:"security"`
	Mode            string        `json:"mode"`
	CountryCode     string        `json:"country_code,omitempty"`
	HardwareAddress string        `json:"hardware_address,omitempty"`
}

type patchInterfaceRequest struct {
	Power *bool `json:"power"`
}

type networkResponse struct {
	SSID        string       `json:"ssid,omitempty"`
	SSIDData    []byte       `json:"ssid_data"`
	BSSID       string       `json:"bssid"`
	Channel     wifi.Channel `json:"channel"`
	RSSI        int          `json:"rssi"`
	Noise       int          `json:"noise"`
	CountryCode string       `json:"country_code,omitempty"`
	IBSS        bool         `json:"ibss"`
	Security    string       `json:"security"`
	Securities  []string     `json:"securities"`
	PHYModes    []string     `json:"phy_modes"`
}

type scanRequest struct {
	SSID string `json:"ssid"`
}

type associationRequest struct {
	SSID     string `json:"ssid"`
	BSSID    string `json:"bssid"`
	Password string `json:"password"`
}

func newInterfaceResponse(iface *wifi.Interface) *interfaceResponse {
	return &interfaceResponse{
		Name:            iface.Name(),
		Power:           iface.PowerOn(),
		ServiceActive:   iface.ServiceActive(),
		SSID:            iface.SSID(),
		SSIDData:        iface.SSIDData(),
		BSSID:           iface.BSSID(),
		RSSI:            iface.RSSI(),
		Noise:           iface.Noise(),
		TransmitRate:    iface.TransmitRate(),
		TransmitPower:   iface.TransmitPower(),
		Channel:         iface.Channel(),
		PHYMode:         iface.PHYMode().String(),
		Security:        iface.Security().String(),
		Mode:            iface.Mode().String(),
		CountryCode:     iface.CountryCode(),
		HardwareAddress: iface.HardwareAddress(),
	}
}

func newNetworkResponses(networks []wifi.Network) []*networkResponse {
	res := make([]*networkResponse, 0, len(networks))

	for _, n := range networks {
		ssid, _ := n.SSID()

		securities := make([]string, 0, len(n.Securities))
		for _, s := range n.Securities {
			securities = append(securities, s.String())
		}

		modes := make([]string, 0, len(n.PHYModes))
		for _, m := range n.PHYModes {
			modes = append(modes, m.String())
		}

		res = append(res, &networkResponse{
			SSID:        ssid,
			SSIDData:    n.SSIDData,
			BSSID:       n.BSSID,
			Channel:     n.Channel,
			RSSI:        n.RSSI,
			Noise:       n.Noise,
			CountryCode: n.CountryCode,
			IBSS:        n.IBSS,
			Security:    n.Security().String(),
			Securities:  securities,
			PHYModes:    modes,
		})
	}

	return res
}

func (a *Api) iface(r *http.Request) (*wifi.Interface, error) {
	return a.client.Interface(mux.Vars(r)["name"])
}

func (a *Api) handleGetInterfaces() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := a.client.InterfaceNames()
		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, &interfacesResponse{
			Interfaces: names,
		}, http.StatusOK)
	}
}

func (a *Api) handleGetInterface() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, newInterfaceResponse(iface), http.StatusOK)
	}
}

func (a *Api) handlePatchInterface() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := patchInterfaceRequest{}
		err := decodeBody(r, &req)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		if req.Power == nil {
			a.jsonError(w, wifi.NewError(wifi.InvalidParameterError, "nothing to change"))
			return
		}

		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		err = iface.SetPower(*req.Power)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, newInterfaceResponse(iface), http.StatusOK)
	}
}

func (a *Api) handlePostScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := scanRequest{}
		err := decodeBody(r, &req)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		var networks []wifi.Network

		if req.SSID != "" {
			networks, err = iface.ScanForName(req.SSID)
		} else {
			networks, err = iface.Scan(nil)
		}

		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, newNetworkResponses(networks), http.StatusOK)
	}
}

func (a *Api) handleGetNetworks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, newNetworkResponses(iface.CachedScanResults()), http.StatusOK)
	}
}

func (a *Api) handlePostAssociation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := associationRequest{}
		err := decodeBody(r, &req)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		if req.SSID == "" {
			a.jsonError(w, wifi.NewError(wifi.InvalidParameterError, "no SSID given"))
			return
		}

		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		network, err := a.findNetwork(iface, req.SSID, req.BSSID)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		err = iface.Associate(network, req.Password)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, newInterfaceResponse(iface), http.StatusOK)
	}
}

// findNetwork looks for the network in the scan cache first and scans for it
// when it is not there.
func (a *Api) findNetwork(iface *wifi.Interface, ssid string, bssid string) (wifi.Network, error) {
	if bssid != "" {
		var err error

		bssid, err = wifi.ParseMAC(bssid)
		if err != nil {
			return wifi.Network{}, err
		}
	}

	match := func(networks []wifi.Network) (wifi.Network, bool) {
		for _, n := range networks {
			if !bytes.Equal(n.SSIDData, []byte(ssid)) {
				continue
			}

			if bssid != "" && n.BSSID != bssid {
				continue
			}

			return n, true
		}

		return wifi.Network{}, false
	}

	if n, ok := match(iface.CachedScanResults()); ok {
		return n, nil
	}

	networks, err := iface.ScanForName(ssid)
	if err != nil {
		return wifi.Network{}, err
	}

	if n, ok := match(networks); ok {
		return n, nil
	}

	return wifi.Network{}, wifi.NewError(wifi.ReferenceNotBoundError, "no network %q in range", ssid)
}

func (a *Api) handleDeleteAssociation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		iface.Disassociate()

		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *Api) handleGetConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		config := iface.Configuration()
		if config == nil {
			a.jsonError(w, wifi.NewError(wifi.GenericError, "could not read configuration of %v", iface.Name()))
			return
		}

		a.jsonResponse(w, config, http.StatusOK)
	}
}

// handlePutConfiguration commits a new configuration. Unprivileged callers
// prove their authority with the Authorization header, which is handed to
// the hardware as is.
func (a *Api) handlePutConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		config := wifi.Configuration{}
		err := decodeBody(r, &config)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		iface, err := a.iface(r)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		var auth wifi.Authorization
		if header := r.Header.Get("Authorization"); header != "" {
			auth = wifi.Authorization(header)
		}

		err = iface.CommitConfiguration(config, auth)
		if err != nil {
			a.jsonError(w, err)
			return
		}

		a.jsonResponse(w, &config, http.StatusOK)
	}
}
