package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Shopping ShoppingConfig `mapstructure:"shopping"`
	Photos   PhotosConfig   `mapstructure:"photos"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type LLMConfig struct {
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type WeatherConfig struct {
	GeocodingURL   string `mapstructure:"geocoding_url"`
	ForecastURL    string `mapstructure:"forecast_url"`
	ForecastDays   int    `mapstructure:"forecast_days"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ShoppingConfig struct {
	APIKey         string `mapstructure:"api_key"`
	CSEID          string `mapstructure:"cse_id"`
	Endpoint       string `mapstructure:"endpoint"`
	MaxProducts    int    `mapstructure:"max_products"`
	ResultCount    int    `mapstructure:"result_count"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PhotosConfig struct {
	AccessKey      string `mapstructure:"access_key"`
	BaseURL        string `mapstructure:"base_url"`
	FallbackURL    string `mapstructure:"fallback_url"`
	PerPage        int    `mapstructure:"per_page"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("weather.geocoding_url", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("weather.forecast_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.forecast_days", 14)
	v.SetDefault("weather.timeout_seconds", 15)
	v.SetDefault("shopping.endpoint", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("shopping.max_products", 6)
	v.SetDefault("shopping.result_count", 10)
	v.SetDefault("shopping.timeout_seconds", 15)
	v.SetDefault("photos.base_url", "https://api.unsplash.com")
	v.SetDefault("photos.fallback_url", "https://source.unsplash.com/400x600")
	v.SetDefault("photos.per_page", 5)
	v.SetDefault("photos.timeout_seconds", 10)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("shopping.api_key", "GOOGLE_API_KEY")
	v.BindEnv("shopping.cse_id", "GOOGLE_CSE_ID")
	v.BindEnv("photos.access_key", "UNSPLASH_ACCESS_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
