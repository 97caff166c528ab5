package config

import (
	"time"

	"github.com/customeros/docingest/internal/enum"
)

const (
	EnvironmentProduction = "production"
	AppSourceWorker       = "docingest-worker"
	AppSourceAPI          = "docingest-api"
	AppSourceCLI          = "docingest-cli"
)

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"12222"`
	APIKey      string `env:"API_KEY"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

type IngestionConfig struct {
	CredentialEncryptionKey    string        `env:"CREDENTIAL_ENCRYPTION_KEY"`
	RunTimeout                 time.Duration `env:"INGEST_RUN_TIMEOUT" envDefault:"60s"`
	ImapConnectTimeout         time.Duration `env:"IMAP_CONNECT_TIMEOUT" envDefault:"10s"`
	ImapAuthTimeout            time.Duration `env:"IMAP_AUTH_TIMEOUT" envDefault:"10s"`
	ImapCommandTimeout         time.Duration `env:"IMAP_COMMAND_TIMEOUT" envDefault:"30s"`
	UploadTimeout              time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"30s"`
	DefaultFolderName          string        `env:"DEFAULT_FOLDER_NAME" envDefault:"Email Attachments"`
	DefaultAllowedContentTypes []string      `env:"DEFAULT_ALLOWED_CONTENT_TYPES" envSeparator:"," envDefault:"application/pdf,image,text/plain,application/msword,application/vnd.openxmlformats-officedocument,application/vnd.ms-excel,application/vnd.ms-powerpoint"`
	DefaultMaxAttachmentBytes  int64         `env:"DEFAULT_MAX_ATTACHMENT_BYTES" envDefault:"10485760"`
	MaxConcurrentRuns          int           `env:"MAX_CONCURRENT_RUNS" envDefault:"4"`
	ClaimTTL                   time.Duration `env:"CLAIM_TTL" envDefault:"5m"`
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN" envDefault:"25"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"0"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE" envDefault:"require"`
}

type StorageConfig struct {
	Provider        enum.StorageProvider `env:"STORAGE_PROVIDER" envDefault:"r2"`
	Bucket          string               `env:"STORAGE_BUCKET" envDefault:"documents"`
	PublicBaseURL   string               `env:"STORAGE_PUBLIC_BASE_URL"`
	R2AccountID     string               `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string               `env:"STORAGE_ACCESS_KEY_ID"`
	AccessKeySecret string               `env:"STORAGE_ACCESS_KEY_SECRET"`
	Region          string               `env:"STORAGE_REGION" envDefault:"auto"`
	Endpoint        string               `env:"STORAGE_ENDPOINT"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}
