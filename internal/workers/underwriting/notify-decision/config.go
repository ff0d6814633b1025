// internal/workers/underwriting/notify-decision/config.go
package notifydecision

import "time"

type Config struct {
	Timeout time.Duration

	// EmailEnabled gates the SES channel; FromEmail must be a verified
	// sender identity when it is on.
	EmailEnabled bool
	FromEmail    string

	// SMSEnabled gates the SNS channel. SMSOnApprovalOnly suppresses SMS
	// for anything but an approved decision.
	SMSEnabled        bool
	SMSOnApprovalOnly bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		EmailEnabled:      true,
		SMSEnabled:        false,
		SMSOnApprovalOnly: true,
	}
}
