package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultHardware     = "wpa"
	defaultDataDirname  = "data"
	defaultListen       = "localhost:9080"
	defaultScanTimeout  = 15 * time.Second
	defaultAssocTimeout = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

var (
	defaultWlanctlDir = "/var/lib/wlanctl"
	defaultDataDir    = filepath.Join(defaultWlanctlDir, defaultDataDirname)
)

type profilingConfig struct {
	Listen string `long:"listen" description:"Address the profiling server listens on"`
}

type config struct {
	ShowVersion bool `short:"v" long:"version" description:"Display version information and exit"`
	Debug       bool `long:"debug" description:"Start in debug mode"`

	Hardware  string `long:"hw" description:"Wireless backend" choice:"wpa" choice:"mock"`
	Interface string `long:"interface" description:"Default Wi-Fi interface, the first one found when empty"`
	DataDir   string `long:"datadir" description:"Directory of the configuration database"`
	Listen    string `long:"listen" description:"Address the HTTP api listens on"`

	Entitle    []string `long:"entitle" description:"Grant an entitlement to the api (scan, associate, ibss or all); can be given more than once"`
	AdminLocal bool     `long:"adminlocal" description:"Treat every api caller as an administrator, skipping the Authorization check"`

	ScanTimeout  time.Duration `long:"scantimeout" description:"How long to wait for a scan to finish"`
	AssocTimeout time.Duration `long:"assoctimeout" description:"How long to wait for an association to complete"`
	PollInterval time.Duration `long:"pollinterval" description:"How often link quality is sampled"`

	MockInterfaces []string `long:"mock.interface" description:"Interface simulated by the mock backend; can be given more than once"`

	Profiling *profilingConfig `group:"Profiling" namespace:"profiling"`
}

// loadConfig parses the command line on top of the defaults.
func loadConfig() (*config, error) {
	cfg := config{
		Hardware:     defaultHardware,
		DataDir:      defaultDataDir,
		Listen:       defaultListen,
		Entitle:      []string{"all"},
		ScanTimeout:  defaultScanTimeout,
		AssocTimeout: defaultAssocTimeout,
		PollInterval: defaultPollInterval,
	}

	_, err := flags.Parse(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Profiling != nil && cfg.Profiling.Listen == "" {
		cfg.Profiling = nil
	}

	if cfg.DataDir == "" {
		return nil, errors.New("no data directory given")
	}

	cfg.DataDir = cleanPath(cfg.DataDir)

	return &cfg, nil
}

// cleanPath expands a leading ~ and environment variables.
func cleanPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}
