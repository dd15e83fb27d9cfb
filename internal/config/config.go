// Package config loads the fsdu configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	ProtocolSFTP = "sftp"
	ProtocolFTP  = "ftp"
	ProtocolFTPS = "ftps"

	DefaultSFTPPort = 22
	DefaultFTPPort  = 21

	DialTimeout = 10 * time.Second

	// PasswordEnv supplies the password of servers that have none configured.
	PasswordEnv = "FSDU_PASSWORD"
)

// ServerConfig describes one remote server.
type ServerConfig struct {
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	KeyPath  string `json:"key_path,omitempty"`
}

// VMapConfig locates the source directory and state file of a virtual tree.
type VMapConfig struct {
	Source string `json:"source"`
	State  string `json:"state"`
}

type Config struct {
	Servers []ServerConfig `json:"servers"`
	VMap    VMapConfig     `json:"vmap"`
}

// DefaultPath returns ~/.config/fsdu/config.json.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fsdu", "config.json")
}

// Load reads the configuration at path. The file must exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyEnv()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// LoadDefault reads the configuration at DefaultPath. A missing file gives
// an empty configuration.
func LoadDefault() (*Config, error) {
	c, err := Load(DefaultPath())
	if errors.Is(err, os.ErrNotExist) {
		c = &Config{}
		c.applyEnv()
		return c, nil
	}
	return c, err
}

// Server returns the server with the given name.
func (c *Config) Server(name string) (ServerConfig, bool) {
	for _, srv := range c.Servers {
		if srv.Name == name {
			return srv, true
		}
	}
	return ServerConfig{}, false
}

func (c *Config) applyEnv() {
	password := os.Getenv(PasswordEnv)
	if password == "" {
		return
	}
	for i := range c.Servers {
		if c.Servers[i].Password == "" {
			c.Servers[i].Password = password
		}
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Servers))
	for _, srv := range c.Servers {
		if srv.Name == "" {
			return errors.New("server without a name")
		}
		if seen[srv.Name] {
			return fmt.Errorf("duplicate server %q", srv.Name)
		}
		seen[srv.Name] = true

		switch srv.Protocol {
		case ProtocolSFTP, ProtocolFTP, ProtocolFTPS:
		default:
			return fmt.Errorf("server %q: unknown protocol %q", srv.Name, srv.Protocol)
		}
		if srv.Host == "" {
			return fmt.Errorf("server %q: missing host", srv.Name)
		}
	}
	return nil
}
