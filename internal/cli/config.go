package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the CLI's connection and output settings. Flags override the
// environment, which overrides the defaults.
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig reads ARCADE_SERVER, ARCADE_TOKEN and ARCADE_TOKEN_FILE
func DefaultConfig() *Config {
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) *Config {
	c := &Config{
		ServerURL: "http://localhost:8080",
		Token:     getenv("ARCADE_TOKEN"),
		TokenFile: defaultTokenFile(),
		Output:    OutputText,
	}
	if v := getenv("ARCADE_SERVER"); v != "" {
		c.ServerURL = v
	}
	if v := getenv("ARCADE_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	return c
}

// Validate checks the output format and server URL
func (c *Config) Validate() error {
	if c.Output != OutputText && c.Output != OutputJSON {
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.ServerURL)
	}
	return nil
}

// LoadToken fills Token from TokenFile when no token was given. Having no
// token file yet is fine.
func (c *Config) LoadToken() error {
	if c.Token != "" || c.TokenFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.TokenFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read token file: %w", err)
	}
	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken stores token in TokenFile, readable only by the current user
func (c *Config) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	c.Token = token
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".arcade", "token")
}
