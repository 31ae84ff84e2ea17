// This file defines the configuration structure for the application.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	YouTube struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"youtube"`
	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	Sync struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
		FreshnessDays   int `mapstructure:"freshness_days"`
		MaxVideos       int `mapstructure:"max_videos"`
	} `mapstructure:"sync"`
	Processing struct {
		IntervalMinutes int      `mapstructure:"interval_minutes"`
		BatchSize       int      `mapstructure:"batch_size"`
		Languages       []string `mapstructure:"languages"`
	} `mapstructure:"processing"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// --- Environment Variable Overrides ---
	// e.g. YTDIGEST_GEMINI_API_KEY overrides the `gemini.api_key` key.
	viper.SetEnvPrefix("YTDIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./ytdigest.db")
	viper.SetDefault("youtube.api_key", "")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("sync.interval_minutes", 360)
	viper.SetDefault("sync.freshness_days", 3)
	viper.SetDefault("sync.max_videos", 50)
	viper.SetDefault("processing.interval_minutes", 15)
	viper.SetDefault("processing.batch_size", 10)
	viper.SetDefault("processing.languages", []string{"pl", "en"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
