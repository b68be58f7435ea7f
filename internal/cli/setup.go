package cli

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/callebtc/bitchat-simulator-sub000/internal/config"
	"github.com/callebtc/bitchat-simulator-sub000/internal/engine"
	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
)

// buildEngine constructs an Engine from cfg: it loads the environment
// (from GeoJSON if configured, otherwise an open field) and seeds the
// agent population at uniformly random positions within the bounds.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	bounds := geom.AABB{
		MinX: cfg.World.Bounds.MinX,
		MinY: cfg.World.Bounds.MinY,
		MaxX: cfg.World.Bounds.MaxX,
		MaxY: cfg.World.Bounds.MaxY,
	}

	env, err := loadEnvironment(cfg)
	if err != nil {
		return nil, err
	}

	eng := engine.New(env, engine.Config{
		Bounds: bounds,
		Seed:   cfg.Sim.Seed,
	})

	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	width := bounds.MaxX - bounds.MinX
	height := bounds.MaxY - bounds.MinY
	for i := 0; i < cfg.Agents.Count; i++ {
		pos := geom.Point2D{
			X: bounds.MinX + rng.Float64()*width,
			Y: bounds.MinY + rng.Float64()*height,
		}
		nickname := fmt.Sprintf("%s%d", cfg.Agents.NicknamePrefix, i+1)
		eng.AddAgent(nickname, pos)
	}

	return eng, nil
}

func loadEnvironment(cfg *config.Config) (*geom.Environment, error) {
	if cfg.World.GeoJSONPath == "" {
		return geom.NewEnvironment(nil), nil
	}

	data, err := os.ReadFile(cfg.World.GeoJSONPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson world file: %w", err)
	}

	env, err := geom.LoadGeoJSON(data, cfg.World.RefLat, cfg.World.RefLon)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson world file: %w", err)
	}
	return env, nil
}
