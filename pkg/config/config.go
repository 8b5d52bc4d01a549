package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/engine/explanation"

	"github.com/spf13/viper"
)

// Config is the root configuration of saferoute.
type Config struct {
	Logger      LoggerConfig       `mapstructure:"logger"`
	Server      ServerConfig       `mapstructure:"server"`
	Graph       GraphConfig        `mapstructure:"graph"`
	Store       StoreConfig        `mapstructure:"store"`
	Cost        CostConfig         `mapstructure:"cost"`
	Explanation explanation.Config `mapstructure:"explanation"`
	Engine      EngineConfig       `mapstructure:"engine"`
	Simulation  SimulationConfig   `mapstructure:"simulation"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	ServiceName string `mapstructure:"service_name"`
}

type ServerConfig struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SwaggerURL     string        `mapstructure:"swagger_url"`
}

// GraphConfig names the csv/json inputs of the road network.
type GraphConfig struct {
	NodesFile     string `mapstructure:"nodes_file"`
	EdgesFile     string `mapstructure:"edges_file"`
	UpdatesFile   string `mapstructure:"updates_file"`
	Bidirectional bool   `mapstructure:"bidirectional"`
	WatchUpdates  bool   `mapstructure:"watch_updates"`
}

type StoreConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

type CostConfig struct {
	Weights costmodel.Weights `mapstructure:"weights"`
	QMax    float64           `mapstructure:"q_max"`
}

type EngineConfig struct {
	DefaultK        int `mapstructure:"default_k"`
	MaxK            int `mapstructure:"max_k"`
	MaxSpurSearches int `mapstructure:"max_spur_searches"`
	BatchWorkers    int `mapstructure:"batch_workers"`
}

// SimulationConfig drives the update simulator, ranges follow the field traffic feed.
type SimulationConfig struct {
	Seed             int64         `mapstructure:"seed"`
	Ticks            int           `mapstructure:"ticks"`
	Interval         time.Duration `mapstructure:"interval"`
	EdgesPerTick     int           `mapstructure:"edges_per_tick"`
	TrafficMin       float64       `mapstructure:"traffic_min"`
	TrafficMax       float64       `mapstructure:"traffic_max"`
	QualityAdjMin    float64       `mapstructure:"quality_adjust_min"`
	QualityAdjMax    float64       `mapstructure:"quality_adjust_max"`
	RainMax          float64       `mapstructure:"rain_max"`
	BlockProbability float64       `mapstructure:"block_probability"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "saferoute")

	v.SetDefault("server.listen_addr", ":5000")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.swagger_url", "http://localhost:5000/swagger/doc.json")

	v.SetDefault("graph.nodes_file", "data/nodes.csv")
	v.SetDefault("graph.edges_file", "data/edges.csv")
	v.SetDefault("graph.updates_file", "data/updates.json")
	v.SetDefault("graph.bidirectional", false)
	v.SetDefault("graph.watch_updates", true)

	v.SetDefault("store.path", "saferouteDB")
	v.SetDefault("store.enabled", true)

	w := costmodel.DefaultWeights()
	v.SetDefault("cost.weights.time", w.Time)
	v.SetDefault("cost.weights.traffic", w.Traffic)
	v.SetDefault("cost.weights.quality", w.Quality)
	v.SetDefault("cost.weights.weather", w.Weather)
	v.SetDefault("cost.q_max", costmodel.DefaultQMax)

	ex := explanation.DefaultConfig()
	v.SetDefault("explanation.heavy_floor", ex.HeavyFloor)
	v.SetDefault("explanation.heavy_ratio", ex.HeavyRatio)
	v.SetDefault("explanation.detour_limit", ex.DetourLimit)
	v.SetDefault("explanation.turn_hop_delta", ex.TurnHopDelta)

	v.SetDefault("engine.default_k", 3)
	v.SetDefault("engine.max_k", 50)
	v.SetDefault("engine.max_spur_searches", 20000)
	v.SetDefault("engine.batch_workers", 4)

	v.SetDefault("simulation.seed", 42)
	v.SetDefault("simulation.ticks", 50)
	v.SetDefault("simulation.interval", 3*time.Second)
	v.SetDefault("simulation.edges_per_tick", 3)
	v.SetDefault("simulation.traffic_min", 1.0)
	v.SetDefault("simulation.traffic_max", 3.0)
	v.SetDefault("simulation.quality_adjust_min", -2.0)
	v.SetDefault("simulation.quality_adjust_max", 1.0)
	v.SetDefault("simulation.rain_max", 12.0)
	v.SetDefault("simulation.block_probability", 0.05)
}

// Load reads defaults, then whatever v already knows (file, env, flags), into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := costmodel.NewModel(c.Cost.Weights, c.Cost.QMax); err != nil {
		return err
	}
	if c.Engine.MaxK < 1 {
		return errors.New("engine.max_k must be at least 1")
	}
	if c.Engine.DefaultK < 1 || c.Engine.DefaultK > c.Engine.MaxK {
		return fmt.Errorf("engine.default_k must be within 1..%d", c.Engine.MaxK)
	}
	if c.Engine.MaxSpurSearches < 0 {
		return errors.New("engine.max_spur_searches must not be negative")
	}
	if c.Engine.BatchWorkers < 1 {
		return errors.New("engine.batch_workers must be at least 1")
	}
	ex := c.Explanation
	if ex.HeavyFloor < 0 || ex.HeavyRatio < 0 || math.IsNaN(ex.HeavyFloor) || math.IsNaN(ex.HeavyRatio) {
		return errors.New("explanation heavy thresholds must not be negative")
	}
	if ex.DetourLimit < 0 || ex.TurnHopDelta < 0 {
		return errors.New("explanation limits must not be negative")
	}
	s := c.Simulation
	if s.TrafficMin < 0 || s.TrafficMax < s.TrafficMin || s.QualityAdjMax < s.QualityAdjMin || s.RainMax < 0 {
		return errors.New("simulation ranges are invalid")
	}
	if s.BlockProbability < 0 || s.BlockProbability > 1 {
		return errors.New("simulation.block_probability must be within 0..1")
	}
	return nil
}
