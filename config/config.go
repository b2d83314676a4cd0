package config

import (
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

const (
	DEFAULT_TIMEZONE         = "Europe/Rome"
	DEFAULT_JWT_EXPIRY_HOURS = 7 * 24
	MIN_JWT_SECRET_LENGTH    = 32
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours       int    `mapstructure:"JWT_EXPIRY_HOURS"`
	SecurityKeyAdmin     string `mapstructure:"SECURITY_KEY_ADMIN"`
	SecurityKeyOwner     string `mapstructure:"SECURITY_KEY_OWNER"`
	SecurityKeyOperator  string `mapstructure:"SECURITY_KEY_OPERATOR"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	MetricsEnabled       bool   `mapstructure:"METRICS_ENABLED"`
	Timezone             string `mapstructure:"TIMEZONE"`
}

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS",
		"JWT_SECRET", "JWT_EXPIRY_HOURS",
		"SECURITY_KEY_ADMIN", "SECURITY_KEY_OWNER", "SECURITY_KEY_OPERATOR",
		"SCHEDULER_ENABLED", "METRICS_ENABLED", "TIMEZONE",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetDefault("JWT_EXPIRY_HOURS", DEFAULT_JWT_EXPIRY_HOURS)
	viper.SetDefault("TIMEZONE", DEFAULT_TIMEZONE)
	viper.SetDefault("DB_CACHE_RESET", -1)

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"timezone", config.Timezone,
		"schedulerEnabled", config.SchedulerEnabled,
	)

	return ConfigInstance, nil
}

// Location is the timezone that defines a calendar day for shifts and schedules.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		c.Timezone = DEFAULT_TIMEZONE
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) JWTExpiry() time.Duration {
	if c.JWTExpiryHours <= 0 {
		return DEFAULT_JWT_EXPIRY_HOURS * time.Hour
	}
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if len(config.JWTSecret) < MIN_JWT_SECRET_LENGTH {
		return log.Error(
			"Fatal error: JWT_SECRET must be at least 32 characters",
			"length", len(config.JWTSecret),
		)
	}

	if config.Timezone != "" {
		if _, err := time.LoadLocation(config.Timezone); err != nil {
			return log.Err("Fatal error: invalid TIMEZONE", err, "timezone", config.Timezone)
		}
	}

	ConfigInstance = config
	return nil
}
