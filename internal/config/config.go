// Package config provides configuration types and loading for the
// mesh chat simulator.
package config

// Config represents the complete application configuration.
type Config struct {
	World   WorldConfig   `mapstructure:"world"`
	Agents  AgentsConfig  `mapstructure:"agents"`
	Sim     SimConfig     `mapstructure:"sim"`
	Sink    SinkConfig    `mapstructure:"sink"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WorldConfig describes the simulated physical space.
type WorldConfig struct {
	// GeoJSONPath, if set, loads building polygons from a GeoJSON file
	// (spec §4.2). Leave empty for an open field with no buildings.
	GeoJSONPath string       `mapstructure:"geojson_path"`
	RefLat      float64      `mapstructure:"ref_lat"`
	RefLon      float64      `mapstructure:"ref_lon"`
	Bounds      BoundsConfig `mapstructure:"bounds"`
}

// BoundsConfig is the rectangular area RANDOM_WALK agents roam within,
// in local meters.
type BoundsConfig struct {
	MinX float64 `mapstructure:"min_x"`
	MinY float64 `mapstructure:"min_y"`
	MaxX float64 `mapstructure:"max_x"`
	MaxY float64 `mapstructure:"max_y"`
}

// AgentsConfig controls the simulated population.
type AgentsConfig struct {
	Count          int    `mapstructure:"count"`
	NicknamePrefix string `mapstructure:"nickname_prefix"`
}

// SimConfig controls the simulation clock.
type SimConfig struct {
	Seed            int64   `mapstructure:"seed"`
	TickHz          float64 `mapstructure:"tick_hz"`
	DurationSeconds float64 `mapstructure:"duration_seconds"` // 0 means run until interrupted
}

// SinkConfig controls where simulation events are published.
type SinkConfig struct {
	Type string `mapstructure:"type"` // stdout, file, websocket
	Path string `mapstructure:"path"` // file sink only
	Addr string `mapstructure:"addr"` // websocket sink only, e.g. ":8787"
}

// LoggingConfig defines operational logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults: a 1km
// square open field, 10 agents, realtime 10Hz ticking forever.
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Bounds: BoundsConfig{MinX: -500, MinY: -500, MaxX: 500, MaxY: 500},
		},
		Agents: AgentsConfig{
			Count:          10,
			NicknamePrefix: "person",
		},
		Sim: SimConfig{
			Seed:   1,
			TickHz: 10,
		},
		Sink: SinkConfig{
			Type: "stdout",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
