package welcome

import (
	"fmt"
	"time"

	"role-validation-bot/internal/common/config"
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	ChannelID string        `mapstructure:"channel_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		ChannelID: config.DefaultWelcomeChannelID,
		Timeout:   10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Enabled && c.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
