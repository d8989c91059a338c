package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the authority server configuration.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
	// Pass is the shared connection passphrase. Connections are accepted
	// without a token check when empty.
	Pass string `toml:"pass"`
	// Users maps user names to passphrases. When set it takes precedence
	// over the shared passphrase and connections must name their user.
	Users map[string]string `toml:"users"`
	// Cost is the bcrypt cost for token signing, 0 uses the default.
	Cost int `toml:"cost"`
	// Root is the well-known root namespace id served by the authority.
	Root string `toml:"root"`
}

func loadConfig(path string) (*Config, error) {
	conf := &Config{Addr: "localhost:7250", Root: "root"}
	if path == "" {
		path = "gaia.toml"
		if _, err := os.Stat(path); err != nil {
			return conf, nil
		}
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
