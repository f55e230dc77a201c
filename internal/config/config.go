package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// v is kept so Watch can attach the hot-reload callback after the logger,
// which itself needs the loaded config, exists.
var v *viper.Viper

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Email    EmailConfig    `mapstructure:"email"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Vision   VisionConfig   `mapstructure:"vision"`
	Media    MediaConfig    `mapstructure:"media"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	BaseURL       string `mapstructure:"base_url"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// EmailConfig holds settings for outbound transactional email.
type EmailConfig struct {
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
}

// BillingConfig holds payment-processor settings.
type BillingConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// SpeechConfig holds text-to-speech settings.
type SpeechConfig struct {
	APIKey       string  `mapstructure:"api_key"`
	VoiceName    string  `mapstructure:"voice_name"`
	SpeakingRate float64 `mapstructure:"speaking_rate"`
}

// VisionConfig holds generative image-analysis settings.
type VisionConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MediaConfig holds object-storage and transcode settings.
type MediaConfig struct {
	Directory  string `mapstructure:"directory"`
	PublicBase string `mapstructure:"public_base"`
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "change-me-in-production")
	v.SetDefault("server.base_url", "http://localhost:5050")

	// Database defaults
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "remap-db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Email defaults
	v.SetDefault("email.from_address", "Reconsolidator <no-reply@reconsolidator.app>")

	// Billing defaults
	v.SetDefault("billing.success_url", "http://localhost:5050/payment-success")
	v.SetDefault("billing.cancel_url", "http://localhost:5050/payment-cancelled")

	// Speech defaults
	v.SetDefault("speech.voice_name", "en-US-Neural2-C")
	v.SetDefault("speech.speaking_rate", 0.9)

	// Vision defaults
	v.SetDefault("vision.model", "gemini-2.0-flash")

	// Media defaults
	v.SetDefault("media.directory", "media")
	v.SetDefault("media.public_base", "/media")
	v.SetDefault("media.ffmpeg_path", "ffmpeg")
}

// Init initializes the configuration with Viper. It runs before the logger
// so the logging section can configure the logger itself; call Watch once a
// logger exists to enable hot reloading.
func Init(projectRoot string) error {
	v = viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("REMAP") // e.g., REMAP_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return nil
}

// Watch starts hot reloading of the configuration file.
func Watch(log *zap.Logger) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})
}
