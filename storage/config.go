package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/squash/errs"
)

// Pricing is the cost model in USD.
type Pricing struct {
	StoragePerGBMonth float64 `validate:"gte=0"`
	EgressPerGB       float64 `validate:"gte=0"`
	IngressPerGB      float64 `validate:"gte=0"`
}

// DefaultPricing is a cold storage price list.
var DefaultPricing = Pricing{
	StoragePerGBMonth: 0.02,
	EgressPerGB:       0.09,
	IngressPerGB:      0.00,
}

// DefaultConfig is the default configuration of a Simulator.
var DefaultConfig = Config{
	BucketDir:       ".cloud_bucket",
	UploadMbps:      100,
	DownloadMbps:    200,
	Pricing:         DefaultPricing,
	SimulateLatency: true,
	MaxLatency:      2 * time.Second,
	HistorySize:     100,
	CacheSize:       128,
}

// Config is the configuration of a Simulator.
type Config struct {
	BucketDir       string        `validate:"required"`
	UploadMbps      float64       `validate:"gt=0"`
	DownloadMbps    float64       `validate:"gt=0"`
	Pricing         Pricing
	SimulateLatency bool
	MaxLatency      time.Duration `validate:"gte=0"`
	HistorySize     int           `validate:"gte=1"`
	CacheSize       int           `validate:"gte=1"`

	// Registerer receives the simulator metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer `validate:"-"`
}

// Option is an option that can be given to the simulator to configure optional parameters.
type Option func(*Config)

// WithBucket sets the directory holding the stored objects.
func WithBucket(dir string) Option {
	return func(cfg *Config) {
		cfg.BucketDir = dir
	}
}

// WithBandwidth sets the simulated upload and download bandwidth in megabits per second.
func WithBandwidth(uploadMbps, downloadMbps float64) Option {
	return func(cfg *Config) {
		cfg.UploadMbps = uploadMbps
		cfg.DownloadMbps = downloadMbps
	}
}

// WithPricing sets the cost model.
func WithPricing(p Pricing) Option {
	return func(cfg *Config) {
		cfg.Pricing = p
	}
}

// WithLatency enables or disables simulated transfer latency.
func WithLatency(enabled bool) Option {
	return func(cfg *Config) {
		cfg.SimulateLatency = enabled
	}
}

// WithMaxLatency caps the simulated latency of a single transfer.
func WithMaxLatency(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.MaxLatency = d
	}
}

// WithHistorySize sets how many transfers History keeps.
func WithHistorySize(n int) Option {
	return func(cfg *Config) {
		cfg.HistorySize = n
	}
}

// WithCacheSize sets the number of object info records kept in memory.
func WithCacheSize(n int) Option {
	return func(cfg *Config) {
		cfg.CacheSize = n
	}
}

// WithRegisterer registers the simulator metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *Config) {
		cfg.Registerer = reg
	}
}

var validate = validator.New()

// Validate checks every field and reports all failed checks at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	var merr *multierror.Error
	for _, fe := range verrs {
		merr = multierror.Append(merr, fmt.Errorf("%s failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}

	return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, merr)
}
