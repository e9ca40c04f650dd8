package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
)

// Email is the SMTP account used to send templated replies.
type Email struct {
	SenderEmail string `json:"sender_email"`
	Password    string `json:"email_password"`
	SMTPServer  string `json:"smtp_server"`
	SMTPPort    int    `json:"smtp_port"`
}

// Configured reports whether every field needed for a send is present.
func (e *Email) Configured() bool {
	return e != nil && e.SenderEmail != "" && e.SMTPServer != "" && e.SMTPPort > 0
}

// Validate checks a configuration entered by the user before it is saved.
func (e *Email) Validate() error {
	if e.SenderEmail == "" {
		return apperror.Validation("sender email is required")
	}
	if e.SMTPServer == "" {
		return apperror.Validation("SMTP server is required")
	}
	if e.SMTPPort <= 0 || e.SMTPPort > 65535 {
		return apperror.Validation("SMTP port must be between 1 and 65535")
	}
	return nil
}

// LoadEmail reads the JSON email configuration. A missing file yields ErrEmailNotSetUp.
func LoadEmail(path string) (*Email, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperror.ErrEmailNotSetUp
		}
		return nil, fmt.Errorf("failed to read email config %s: %w", path, err)
	}

	var cfg Email
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse email config %s: %w", path, err)
	}
	if !cfg.Configured() {
		return nil, apperror.ErrEmailNotSetUp
	}

	return &cfg, nil
}

// SaveEmail writes cfg as indented JSON, replacing any previous file.
func SaveEmail(path string, cfg *Email) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode email config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write email config %s: %w", path, err)
	}
	return nil
}
