package api

import (
	"net"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wlanctl/wifi"
)

type Config struct {
	Client *wifi.Client
	Log    Logger
}

type Api struct {
	client *wifi.Client
	router *mux.Router
	events *Events
	log    Logger
}

func New(config *Config) *Api {
	api := &Api{
		client: config.Client,
		router: mux.NewRouter(),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.events = newEvents(api.log)

	api.router.Handle("/api/v1/interfaces", api.handleGetInterfaces()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/interfaces/{name}", api.handleGetInterface()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/interfaces/{name}", api.handlePatchInterface()).Methods(http.MethodPatch)

	api.router.Handle("/api/v1/interfaces/{name}/scan", api.handlePostScan()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/interfaces/{name}/networks", api.handleGetNetworks()).Methods(http.MethodGet)

	api.router.Handle("/api/v1/interfaces/{name}/association", api.handlePostAssociation()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/interfaces/{name}/association", api.handleDeleteAssociation()).Methods(http.MethodDelete)

	api.router.Handle("/api/v1/interfaces/{name}/configuration", api.handleGetConfiguration()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/interfaces/{name}/configuration", api.handlePutConfiguration()).Methods(http.MethodPut)

	api.router.Handle("/api/v1/events", api.handleGetEvents()).Methods(http.MethodGet)

	return api
}

// Observer returns the observer that streams events to connected websocket
// sessions. It is meant to be set on the client.
func (a *Api) Observer() wifi.Observer {
	return a.events
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *Api) Serve(l net.Listener) error {
	err := http.Serve(l, a.router)
	if err != nil {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}

// Close ends every event session.
func (a *Api) Close() {
	a.events.close()
}
