package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the configuration from viper and returns a Config struct.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	cfg.World.GeoJSONPath = viper.GetString("world.geojson_path")
	cfg.World.RefLat = viper.GetFloat64("world.ref_lat")
	cfg.World.RefLon = viper.GetFloat64("world.ref_lon")
	if v := viper.GetFloat64("world.bounds.min_x"); v != 0 {
		cfg.World.Bounds.MinX = v
	}
	if v := viper.GetFloat64("world.bounds.min_y"); v != 0 {
		cfg.World.Bounds.MinY = v
	}
	if v := viper.GetFloat64("world.bounds.max_x"); v != 0 {
		cfg.World.Bounds.MaxX = v
	}
	if v := viper.GetFloat64("world.bounds.max_y"); v != 0 {
		cfg.World.Bounds.MaxY = v
	}

	if v := viper.GetInt("agents.count"); v != 0 {
		cfg.Agents.Count = v
	}
	if v := viper.GetString("agents.nickname_prefix"); v != "" {
		cfg.Agents.NicknamePrefix = v
	}

	if v := viper.GetInt64("sim.seed"); v != 0 {
		cfg.Sim.Seed = v
	}
	if v := viper.GetFloat64("sim.tick_hz"); v != 0 {
		cfg.Sim.TickHz = v
	}
	cfg.Sim.DurationSeconds = viper.GetFloat64("sim.duration_seconds")

	if v := viper.GetString("sink.type"); v != "" {
		cfg.Sink.Type = v
	}
	cfg.Sink.Path = viper.GetString("sink.path")
	cfg.Sink.Addr = viper.GetString("sink.addr")

	if v := viper.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("logging.format"); v != "" {
		cfg.Logging.Format = v
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Agents.Count <= 0 {
		return fmt.Errorf("agents.count must be positive")
	}
	if c.World.Bounds.MaxX <= c.World.Bounds.MinX || c.World.Bounds.MaxY <= c.World.Bounds.MinY {
		return fmt.Errorf("world.bounds must have max > min on both axes")
	}
	if c.Sim.TickHz <= 0 {
		return fmt.Errorf("sim.tick_hz must be positive")
	}

	switch c.Sink.Type {
	case "stdout":
	case "file":
		if c.Sink.Path == "" {
			return fmt.Errorf("sink.path is required for the file sink")
		}
	case "websocket":
		if c.Sink.Addr == "" {
			return fmt.Errorf("sink.addr is required for the websocket sink")
		}
	default:
		return fmt.Errorf("invalid sink.type: %s (must be stdout, file, or websocket)", c.Sink.Type)
	}

	return nil
}
