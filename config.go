package console

import (
	"github.com/roadrunner-server/console/v5/consolelog"
	"github.com/roadrunner-server/console/v5/kafkasink"
	"github.com/roadrunner-server/errors"
)

// Config is the "console" section.
type Config struct {
	FailOnWarning *bool    `mapstructure:"fail_on_warning"`
	FailOnError   *bool    `mapstructure:"fail_on_error"`
	Exclude       []string `mapstructure:"exclude"`
	// LegacyMerge treats fail_on_*: false like an absent value
	LegacyMerge bool `mapstructure:"legacy_merge"`

	Chrome *consolelog.ChromeConfig `mapstructure:"chrome"`
	Report *ReportConfig            `mapstructure:"report"`
	Kafka  *kafkasink.Config        `mapstructure:"kafka"`
}

type ReportConfig struct {
	// Address to serve the run report on, empty disables the endpoint
	Address string `mapstructure:"address"`
}

func (c *Config) InitDefault() error {
	const op = errors.Op("console_config_init_default")

	// fail fast on broken patterns instead of on the first teardown
	_, err := consolelog.ParseRules(c.Exclude)
	if err != nil {
		return errors.E(op, err)
	}

	if c.Chrome != nil {
		c.Chrome.InitDefault()
	}

	if c.Report == nil {
		c.Report = &ReportConfig{}
	}

	return nil
}

func (c *Config) options() *consolelog.Options {
	return &consolelog.Options{
		FailOnWarning: c.FailOnWarning,
		FailOnError:   c.FailOnError,
		Exclude:       c.Exclude,
	}
}
