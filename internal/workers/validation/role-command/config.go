package rolecommand

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled      bool          `mapstructure:"enabled"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ReplyTimeout time.Duration `mapstructure:"reply_timeout"`
	MaxRoles     int           `mapstructure:"max_roles"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		ReplyTimeout: 120 * time.Second,
		Timeout:      270 * time.Second,
		MaxRoles:     25,
	}
}

func (c *Config) Validate() error {
	if c.ReplyTimeout <= 0 {
		return fmt.Errorf("reply_timeout must be positive")
	}
	// both prompts have to fit in one invocation
	if c.Timeout < 2*c.ReplyTimeout {
		return fmt.Errorf("timeout (%s) must cover two reply windows (%s)", c.Timeout, 2*c.ReplyTimeout)
	}
	if c.MaxRoles <= 0 || c.MaxRoles > 25 {
		return fmt.Errorf("max_roles must be between 1 and 25")
	}
	return nil
}
