package config

import (
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ProviderEndpoint pairs a provider policy with its HTTP endpoint
type ProviderEndpoint struct {
	model.ProviderConfig `yaml:",inline"`
	BaseURL              string `yaml:"base_url" env:"TRANSLATION_PROVIDER_URL"`
	APIKey               string `yaml:"api_key" env:"TRANSLATION_PROVIDER_KEY"`
}

type Config struct {
	Postgres struct {
		DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
	} `yaml:"postgres"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
		Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`

	RabbitMQ struct {
		URL string `yaml:"url" env:"RABBITMQ_URL"`
	} `yaml:"rabbitmq"`

	S3 struct {
		Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
		AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
		SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
		Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
		Region    string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	} `yaml:"s3"`

	STT struct {
		BaseURL     string        `yaml:"base_url" env:"STT_BASE_URL"`
		APIKey      string        `yaml:"api_key" env:"STT_API_KEY"`
		CallTimeout time.Duration `yaml:"call_timeout" env:"STT_CALL_TIMEOUT" env-default:"30s"`
	} `yaml:"stt"`

	Translation struct {
		CallTimeout   time.Duration      `yaml:"call_timeout" env:"TRANSLATION_CALL_TIMEOUT" env-default:"10s"`
		MaxBatchSize  int                `yaml:"max_batch_size" env:"TRANSLATION_MAX_BATCH" env-default:"100"`
		MemoryEnabled bool               `yaml:"memory_enabled" env:"TRANSLATION_MEMORY_ENABLED" env-default:"true"`
		MemoryTTL     time.Duration      `yaml:"memory_ttl" env:"TRANSLATION_MEMORY_TTL" env-default:"720h"`
		Providers     []ProviderEndpoint `yaml:"providers"`
	} `yaml:"translation"`

	Spam struct {
		Threshold    float64  `yaml:"threshold" env:"SPAM_THRESHOLD" env-default:"0.5"`
		KnownNumbers []string `yaml:"known_numbers" env:"SPAM_KNOWN_NUMBERS"`
	} `yaml:"spam"`

	Pipeline struct {
		SummaryThreshold int           `yaml:"summary_threshold" env:"SUMMARY_THRESHOLD" env-default:"200"`
		MinConfidence    float64       `yaml:"min_confidence" env:"TRANSCRIPT_MIN_CONFIDENCE" env-default:"0.7"`
		ProcessTimeout   time.Duration `yaml:"process_timeout" env:"PROCESS_TIMEOUT" env-default:"10m"`
	} `yaml:"pipeline"`

	Worker struct {
		Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"4"`
	} `yaml:"worker"`
}

func LoadConfig() (*Config, error) {
	// Load .env file
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadConfig("configs/config.yaml", &cfg); err != nil {
		return nil, err
	}

	if err := cleanenv.UpdateEnv(&cfg); err != nil {
		return nil, err
	}

	logger.Info("Config loaded successfully")
	return &cfg, nil
}
