package cli

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds harvester defaults loaded from a TOML file. Command-line
// flags the user sets explicitly always win over config values.
type Config struct {
	APIURL    string   `toml:"api_url"`
	SleepTime duration `toml:"sleep_time"`
	Tag       string   `toml:"tag"`
	Output    string   `toml:"output"`

	Storage struct {
		SQLite          string `toml:"sqlite"`
		MongoURI        string `toml:"mongo_uri"`
		MongoDatabase   string `toml:"mongo_database"`
		MongoCollection string `toml:"mongo_collection"`
	} `toml:"storage"`

	State struct {
		Dir           string `toml:"dir"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"state"`
}

// duration lets TOML files spell durations as strings ("300s", "5m").
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
