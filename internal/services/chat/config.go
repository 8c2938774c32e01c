// File: internal/services/chat/config.go
package chat

import (
	"fmt"

	"github.com/iyunix/go-chatstore/internal/domain"
)

type Config struct {
	// Message window for GetChatDetail
	DefaultMessageLimit int
	MinMessageLimit     int
	MaxMessageLimit     int

	MaxTitleLength int
	MaxTextLength  int
}

func (c *Config) Validate() error {
	if c.MinMessageLimit < 1 {
		return fmt.Errorf("min_message_limit must be at least 1")
	}
	if c.MaxMessageLimit < c.MinMessageLimit {
		return fmt.Errorf("max_message_limit must not be below min_message_limit")
	}
	if c.DefaultMessageLimit < c.MinMessageLimit || c.DefaultMessageLimit > c.MaxMessageLimit {
		return fmt.Errorf("default_message_limit must be within [%d, %d]", c.MinMessageLimit, c.MaxMessageLimit)
	}
	if c.MaxTitleLength < 1 || c.MaxTitleLength > domain.MaxChatTitleLength {
		return fmt.Errorf("max_title_length must be within [1, %d]", domain.MaxChatTitleLength)
	}
	if c.MaxTextLength < 1 || c.MaxTextLength > domain.MaxMessageTextLength {
		return fmt.Errorf("max_text_length must be within [1, %d]", domain.MaxMessageTextLength)
	}
	return nil
}

// LimitInRange reports whether limit is an acceptable message window.
func (c *Config) LimitInRange(limit int) bool {
	return limit >= c.MinMessageLimit && limit <= c.MaxMessageLimit
}

func DefaultConfig() *Config {
	return &Config{
		DefaultMessageLimit: 20,
		MinMessageLimit:     1,
		MaxMessageLimit:     100,
		MaxTitleLength:      domain.MaxChatTitleLength,
		MaxTextLength:       domain.MaxMessageTextLength,
	}
}
