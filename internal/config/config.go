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

// ConfigPath is the default YAML config location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	JWTSecret  string `yaml:"jwtSecret"`
	SessionTTL string `yaml:"sessionTTL"`

	AIBaseURL    string `yaml:"aiBaseURL"`
	AIAPIKey     string `yaml:"aiAPIKey"`
	WhisperModel string `yaml:"whisperModel"`
	ChatModel    string `yaml:"chatModel"`

	TTSBaseURL      string            `yaml:"ttsBaseURL"`
	TTSAPIKey       string            `yaml:"ttsAPIKey"`
	TTSModel        string            `yaml:"ttsModel"`
	TTSDefaultVoice string            `yaml:"ttsDefaultVoice"`
	TTSVoices       map[string]string `yaml:"ttsVoices"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	TwilioAccountSID string `yaml:"twilioAccountSid"`
	TwilioAuthToken  string `yaml:"twilioAuthToken"`
	TwilioFromNumber string `yaml:"twilioFromNumber"`

	NotifyStream      string `yaml:"notifyStream"`
	NotifyGroup       string `yaml:"notifyGroup"`
	NotifyConcurrency int    `yaml:"notifyConcurrency"`

	VoiceRateLimitPerMinute int `yaml:"voiceRateLimitPerMinute"`
	OTPRateLimitPerMinute   int `yaml:"otpRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("AI_BASE_URL"); v != "" {
		cfg.AIBaseURL = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AIAPIKey = v
	}
	if v := os.Getenv("WHISPER_MODEL"); v != "" {
		cfg.WhisperModel = v
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.ChatModel = v
	}
	if v := os.Getenv("TTS_BASE_URL"); v != "" {
		cfg.TTSBaseURL = v
	}
	if v := os.Getenv("TTS_API_KEY"); v != "" {
		cfg.TTSAPIKey = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.TwilioAccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.TwilioAuthToken = v
	}
	if v := os.Getenv("TWILIO_FROM_NUMBER"); v != "" {
		cfg.TwilioFromNumber = v
	}
	if v := os.Getenv("VOICE_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VoiceRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("OTP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OTPRateLimitPerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.AIBaseURL) == "" {
		return errors.New("config: aiBaseURL is required (set AI_BASE_URL)")
	}
	if strings.TrimSpace(cfg.AIAPIKey) == "" {
		return errors.New("config: aiAPIKey is required (set AI_API_KEY)")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return errors.New("config: jwtSecret is required (set JWT_SECRET)")
	}
	if len(cfg.JWTSecret) < 16 {
		return errors.New("config: jwtSecret must be at least 16 bytes")
	}
	if cfg.TTSBaseURL != "" && cfg.TTSAPIKey == "" {
		return errors.New("config: ttsAPIKey is required when ttsBaseURL is set")
	}
	if cfg.VoiceRateLimitPerMinute < 0 || cfg.OTPRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.NotifyConcurrency < 0 {
		return errors.New("config: notifyConcurrency must be >= 0")
	}
	return nil
}

// ParseSessionTTL parses the optional session TTL duration string.
func ParseSessionTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	return dur, nil
}
