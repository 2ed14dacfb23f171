package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration
type Config struct {
	Port      string `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"` // Empty disables device token checks
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Timezone  string `yaml:"timezone"` // IANA name used to cut subject-days

	Redis RedisConfig `yaml:"redis"`
	MQTT  MQTTConfig  `yaml:"mqtt"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Engine    EngineConfig    `yaml:"engine"`
}

// RedisConfig Redis connection for persisted ingest cursors. Empty Addr keeps cursors in memory.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// MQTTConfig MQTT feed of raw device fixes. Empty Broker disables live tracking.
type MQTTConfig struct {
	Broker          string   `yaml:"broker"`
	ClientID        string   `yaml:"client_id"`
	Username        string   `yaml:"username"`
	Password        string   `yaml:"password"`
	TopicPrefix     string   `yaml:"topic_prefix"`
	TrackedSubjects []string `yaml:"tracked_subjects"`
}

// RateLimitConfig per-subject limit on the fix upload endpoint
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// EngineConfig thresholds of the ingestion, stop and geofence logic
type EngineConfig struct {
	MinDistanceMeters       float64       `yaml:"min_distance_meters"`
	HeartbeatInterval       time.Duration `yaml:"heartbeat_interval"`
	WatchThrottleWindow     time.Duration `yaml:"watch_throttle_window"`
	FixTimeout              time.Duration `yaml:"fix_timeout"`
	StillSpeedMax           float64       `yaml:"still_speed_max"`   // m/s, below is still
	VehicleSpeedMin         float64       `yaml:"vehicle_speed_min"` // m/s, at or above is vehicle
	AccuracyCeilingMeters   float64       `yaml:"accuracy_ceiling_meters"`
	MovementThresholdMeters float64       `yaml:"movement_threshold_meters"`
	MinStopDuration         time.Duration `yaml:"min_stop_duration"`
	GeofenceToleranceMeters float64       `yaml:"geofence_tolerance_meters"`
}

// DefaultEngineConfig returns the stock thresholds
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinDistanceMeters:       50,
		HeartbeatInterval:       5 * time.Minute,
		WatchThrottleWindow:     30 * time.Second,
		FixTimeout:              15 * time.Second,
		StillSpeedMax:           1,
		VehicleSpeedMin:         5,
		AccuracyCeilingMeters:   100,
		MovementThresholdMeters: 100,
		MinStopDuration:         5 * time.Minute,
		GeofenceToleranceMeters: 0,
	}
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Port:      ":8080",
		DBPath:    "./data/fieldtrack.db",
		LogLevel:  "info",
		LogFormat: "json",
		Timezone:  "UTC",
		Redis: RedisConfig{
			KeyPrefix: "fieldtrack:cursor:",
		},
		MQTT: MQTTConfig{
			ClientID:    "fieldtrack-backend",
			TopicPrefix: "fieldtrack/fixes",
		},
		RateLimit: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
		},
		Engine: DefaultEngineConfig(),
	}
}

// Load builds the configuration from defaults, then the optional YAML file at path,
// then environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getenv("PORT", c.Port)
	c.DBPath = getenv("DB_PATH", c.DBPath)
	c.JWTSecret = getenv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)
	c.Timezone = getenv("TIMEZONE", c.Timezone)

	c.Redis.Addr = getenv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getenv("REDIS_PASSWORD", c.Redis.Password)
	c.MQTT.Broker = getenv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getenv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getenv("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getenv("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.TopicPrefix = getenv("MQTT_TOPIC_PREFIX", c.MQTT.TopicPrefix)
	if v := os.Getenv("TRACKED_SUBJECTS"); v != "" {
		c.MQTT.TrackedSubjects = splitAndTrim(v)
	}

	e := &c.Engine
	parsers := []struct {
		key string
		fn  func(string) error
	}{
		{"REDIS_DB", intVar(&c.Redis.DB)},
		{"RATE_LIMIT_REQUESTS", intVar(&c.RateLimit.Requests)},
		{"RATE_LIMIT_WINDOW", durationVar(&c.RateLimit.Window)},
		{"MIN_DISTANCE_METERS", floatVar(&e.MinDistanceMeters)},
		{"HEARTBEAT_INTERVAL", durationVar(&e.HeartbeatInterval)},
		{"WATCH_THROTTLE_WINDOW", durationVar(&e.WatchThrottleWindow)},
		{"FIX_TIMEOUT", durationVar(&e.FixTimeout)},
		{"STILL_SPEED_MAX", floatVar(&e.StillSpeedMax)},
		{"VEHICLE_SPEED_MIN", floatVar(&e.VehicleSpeedMin)},
		{"ACCURACY_CEILING_METERS", floatVar(&e.AccuracyCeilingMeters)},
		{"MOVEMENT_THRESHOLD_METERS", floatVar(&e.MovementThresholdMeters)},
		{"MIN_STOP_DURATION", durationVar(&e.MinStopDuration)},
		{"GEOFENCE_TOLERANCE_METERS", floatVar(&e.GeofenceToleranceMeters)},
	}
	for _, p := range parsers {
		v := os.Getenv(p.key)
		if v == "" {
			continue
		}
		if err := p.fn(v); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}
	return nil
}

// Validate rejects thresholds that would break the engine
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.MinDistanceMeters < 0:
		return errors.New("engine.min_distance_meters must not be negative")
	case e.HeartbeatInterval <= 0:
		return errors.New("engine.heartbeat_interval must be positive")
	case e.WatchThrottleWindow < 0:
		return errors.New("engine.watch_throttle_window must not be negative")
	case e.FixTimeout <= 0:
		return errors.New("engine.fix_timeout must be positive")
	case e.StillSpeedMax <= 0 || e.VehicleSpeedMin < e.StillSpeedMax:
		return errors.New("engine speed thresholds must satisfy 0 < still_speed_max <= vehicle_speed_min")
	case e.AccuracyCeilingMeters <= 0:
		return errors.New("engine.accuracy_ceiling_meters must be positive")
	case e.MovementThresholdMeters <= 0:
		return errors.New("engine.movement_threshold_meters must be positive")
	case e.MinStopDuration <= 0:
		return errors.New("engine.min_stop_duration must be positive")
	case e.GeofenceToleranceMeters < 0:
		return errors.New("engine.geofence_tolerance_meters must not be negative")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit requests and window must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the timezone used to cut subject-days
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intVar(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func floatVar(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func durationVar(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func splitAndTrim(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
