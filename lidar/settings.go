package lidar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// Settings is the file form of the client configuration.
//
//	address: 192.168.0.10:10940
//	dial_timeout: 5s
//	time_tolerance: 300ms
//	encoding: 3
//	time_sync:
//	  samples: 10
//	  interval: 100ms
//	startup:
//	  time_sync: true
//	  update_info: true
//	  activate: true
type Settings struct {
	Address       string            `yaml:"address"`
	DialTimeout   time.Duration     `yaml:"dial_timeout"`
	TimeTolerance time.Duration     `yaml:"time_tolerance"`
	Encoding      protocol.Encoding `yaml:"encoding"`
	TimeSync      TimeSyncSettings  `yaml:"time_sync"`
	Startup       StartupSettings   `yaml:"startup"`
}

// TimeSyncSettings configures TimeSync sampling.
type TimeSyncSettings struct {
	Samples  int           `yaml:"samples"`
	Interval time.Duration `yaml:"interval"`
}

// StartupSettings selects the steps Open runs after connecting, in this
// order: time synchronization, parameter update, laser activation.
type StartupSettings struct {
	TimeSync   bool `yaml:"time_sync"`
	UpdateInfo bool `yaml:"update_info"`
	Activate   bool `yaml:"activate"`
}

// DefaultSettings returns the settings used for keys missing from a
// settings document.
func DefaultSettings() Settings {
	cfg := defaultConfig()
	return Settings{
		Address:       DefaultAddress,
		DialTimeout:   cfg.DialTimeout,
		TimeTolerance: cfg.TimeTolerance,
		Encoding:      cfg.Encoding,
		TimeSync: TimeSyncSettings{
			Samples:  cfg.TimeSyncSamples,
			Interval: cfg.TimeSyncInterval,
		},
		Startup: StartupSettings{
			TimeSync:   true,
			UpdateInfo: true,
			Activate:   true,
		},
	}
}

// LoadSettings parses a YAML settings document. Unknown keys are
// rejected. An empty document yields DefaultSettings.
func LoadSettings(r io.Reader) (*Settings, error) {
	s := DefaultSettings()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSettingsFile reads settings from the file at path.
func LoadSettingsFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSettings(f)
}

// Validate checks the settings for values the client cannot use.
func (s *Settings) Validate() error {
	switch {
	case s.Address == "":
		return errors.New("settings: address is required")
	case s.DialTimeout <= 0:
		return fmt.Errorf("settings: dial_timeout must be positive, got %v", s.DialTimeout)
	case s.TimeTolerance <= 0:
		return fmt.Errorf("settings: time_tolerance must be positive, got %v", s.TimeTolerance)
	case s.Encoding != protocol.TwoCharEncoding && s.Encoding != protocol.ThreeCharEncoding:
		return fmt.Errorf("settings: encoding must be 2 or 3, got %d", int(s.Encoding))
	case s.TimeSync.Samples <= 0:
		return fmt.Errorf("settings: time_sync.samples must be positive, got %d", s.TimeSync.Samples)
	case s.TimeSync.Interval < 0:
		return fmt.Errorf("settings: time_sync.interval must not be negative, got %v", s.TimeSync.Interval)
	}
	return nil
}

// Options converts the settings into client options.
func (s *Settings) Options() []Option {
	return []Option{
		WithDialTimeout(s.DialTimeout),
		WithTimeTolerance(s.TimeTolerance),
		WithEncoding(s.Encoding),
		WithTimeSyncSamples(s.TimeSync.Samples),
		WithTimeSyncInterval(s.TimeSync.Interval),
	}
}

// Open dials the configured sensor and runs the enabled startup steps.
// Additional options are applied after the ones derived from s.
func (s *Settings) Open(ctx context.Context, opts ...Option) (*Client, error) {
	c, err := Dial(ctx, s.Address, append(s.Options(), opts...)...)
	if err != nil {
		return nil, err
	}

	if err := s.startup(ctx, c); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (s *Settings) startup(ctx context.Context, c *Client) error {
	if s.Startup.TimeSync {
		if err := c.TimeSync(ctx); err != nil {
			return err
		}
	}
	if s.Startup.UpdateInfo {
		if err := c.UpdateInfo(ctx); err != nil {
			return err
		}
	}
	if s.Startup.Activate {
		if _, err := c.Activate(ctx); err != nil {
			return err
		}
	}
	return nil
}
