package main

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/wlanctl/api"
	"github.com/the-lightning-land/wlanctl/wifi"
	"github.com/the-lightning-land/wlanctl/wifi/mock"
	"github.com/the-lightning-land/wlanctl/wifi/wpa"
	"github.com/the-lightning-land/wlanctl/wifidb"
	// Blank import to set up profiling HTTP handlers.
	_ "net/http/pprof"
)

var (
	// commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// hardware is a wireless backend that needs to be started before use.
type hardware interface {
	wifi.Hardware
	Start() error
}

type mockHardware struct {
	*mock.Hardware
}

func (mockHardware) Start() error {
	return nil
}

// newClient creates the client the api serves. Api callers are never
// administrators by virtue of the daemon's own privileges; they need to pass
// an Authorization header unless adminLocal is set.
func newClient(hw wifi.Hardware, logger wifi.Logger, entitlements wifi.Entitlements, adminLocal bool) (*wifi.Client, error) {
	return wifi.NewClient(&wifi.ClientConfig{
		Hardware:     hw,
		Logger:       logger,
		Entitlements: entitlements,
		Privileged:   func() bool { return adminLocal },
	})
}

// wlanctlMain is the true entry point for wlanctl. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func wlanctlMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	entitlements, err := wifi.ParseEntitlements(cfg.Entitle)
	if err != nil {
		return errors.Wrap(err, "invalid entitlements")
	}

	if cfg.Profiling != nil {
		go func() {
			log.Infof("Starting profiling server on %v", cfg.Profiling.Listen)
			// Redirect the root path
			http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
			// All other handlers are registered on DefaultServeMux through the import of pprof
			err := http.ListenAndServe(cfg.Profiling.Listen, nil)
			if err != nil {
				log.Errorf("Could not run profiler: %v", err)
			}
		}()
	}

	// wifi.db persistently stores the configuration of every interface
	wifiDB, err := wifidb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open wifi.db: %v", err)
	}

	log.Infof("Opened %v", wifiDB.Path())

	defer func() {
		err := wifiDB.Close()
		if err != nil {
			log.Errorf("Could not close wifi.db: %v", err)
		} else {
			log.Info("Closed wifi.db.")
		}
	}()

	// The wireless backend every interface is reached through
	var hw hardware

	switch cfg.Hardware {
	case "wpa":
		hw = wpa.New(&wpa.Config{
			Logger:           log.New().WithField("system", "wpa"),
			DB:               wifiDB,
			Interface:        cfg.Interface,
			ScanTimeout:      cfg.ScanTimeout,
			AssociateTimeout: cfg.AssocTimeout,
			PollInterval:     cfg.PollInterval,
		})

		log.Info("Created wpa_supplicant backend.")
	case "mock":
		interfaces := cfg.MockInterfaces
		if cfg.Interface != "" {
			interfaces = append([]string{cfg.Interface}, interfaces...)
		}

		hw = mockHardware{mock.New(&mock.Config{
			Logger:     log.New().WithField("system", "mock"),
			DB:         wifiDB,
			Interfaces: interfaces,
		})}

		log.Info("Created mock backend.")
	default:
		return errors.Errorf("Unknown hardware type %v", cfg.Hardware)
	}

	err = hw.Start()
	if err != nil {
		return errors.Errorf("Could not start hardware: %v", err)
	}

	if cfg.AdminLocal {
		log.Warn("Every api caller is treated as an administrator.")
	}

	client, err := newClient(hw, log.New().WithField("system", "wifi"), entitlements, cfg.AdminLocal)
	if err != nil {
		_ = hw.Close()
		return errors.Errorf("Could not create client: %v", err)
	}

	defer func() {
		err := client.Close()
		if err != nil {
			log.Errorf("Could not properly close client: %v", err)
		} else {
			log.Info("Closed client.")
		}
	}()

	names, err := client.InterfaceNames()
	if err != nil {
		log.Warnf("Could not list interfaces: %v", err)
	} else {
		log.Infof("Found interfaces %v", names)
	}

	a := api.New(&api.Config{
		Client: client,
		Log:    log.New().WithField("system", "api"),
	})

	defer a.Close()

	client.SetObserver(a.Observer())

	for _, t := range wifi.EventTypes {
		err := client.StartMonitoring(t)
		if err != nil {
			log.Warnf("Could not monitor %v events: %v", t, err)
		}
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Errorf("Could not listen on %v: %v", cfg.Listen, err)
	}

	log.Infof("Serving api on %v", listener.Addr())

	done := make(chan error, 1)

	go func() {
		done <- a.Serve(listener)
	}()

	// Handle interrupt signals correctly
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signals:
		log.Info(sig)
		log.Info("Received an interrupt, stopping wlanctl...")

		err := listener.Close()
		if err != nil {
			log.Errorf("Could not close listener: %v", err)
		}
	case err := <-done:
		return errors.Wrap(err, "api stopped")
	}

	// finish with no error
	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := wlanctlMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running wlanctl.")
		}
		os.Exit(1)
	}
}
