package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Nomes de backend aceitos em SESSION_BACKEND e BLOB_BACKEND
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendS3     = "s3"
)

// Config armazena a configuração da aplicação
type Config struct {
	Port int `envconfig:"PORT" default:"5000"`

	// DatabaseURL vazio mantém os metadados na memória do processo
	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisURL            string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisRetryAttempts  int           `envconfig:"REDIS_RETRY_ATTEMPTS" default:"3"`
	RedisRetryInterval  time.Duration `envconfig:"REDIS_RETRY_INTERVAL" default:"2s"`
	RedisConnectTimeout time.Duration `envconfig:"REDIS_CONNECT_TIMEOUT" default:"30s"`

	// SESSION_BACKEND=memory guarda apenas as sessões no processo; o Redis
	// continua obrigatório porque a fila de thumbnails depende dele.
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"redis"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionPrefix  string        `envconfig:"SESSION_PREFIX" default:"auth_"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"10"`

	BlobBackend string `envconfig:"BLOB_BACKEND" default:"local"`
	BlobRoot    string `envconfig:"BLOB_ROOT" default:"/tmp/files_manager"`

	AWSBucketName     string `envconfig:"AWS_BUCKET_NAME"`
	AWSRegion         string `envconfig:"AWS_REGION"`
	AWSKeyPrefix      string `envconfig:"AWS_KEY_PREFIX"`
	AWSAccessKeyID    string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey      string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint       string `envconfig:"AWS_ENDPOINT"`
	AWSForcePathStyle bool   `envconfig:"AWS_FORCE_PATH_STYLE" default:"false"`

	ThumbnailQueue string `envconfig:"THUMBNAIL_QUEUE" default:"queue:thumbnails"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoadDotEnv carrega variáveis dos arquivos .env informados (".env" se
// nenhum for passado) sem sobrescrever as que já existem.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load carrega a configuração das variáveis de ambiente e a valida
func Load(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate verifica as combinações que as tags do envconfig não expressam
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.SessionBackend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q: must be %q or %q", c.SessionBackend, BackendRedis, BackendMemory)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}

	switch c.BlobBackend {
	case BackendLocal:
		if c.BlobRoot == "" {
			return fmt.Errorf("BLOB_ROOT is required when BLOB_BACKEND=%s", BackendLocal)
		}
	case BackendS3:
		if c.AWSBucketName == "" || c.AWSRegion == "" {
			return fmt.Errorf("AWS_BUCKET_NAME and AWS_REGION are required when BLOB_BACKEND=%s", BackendS3)
		}
	default:
		return fmt.Errorf("invalid BLOB_BACKEND %q: must be %q or %q", c.BlobBackend, BackendLocal, BackendS3)
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required: the thumbnail queue uses Redis with every SESSION_BACKEND")
	}
	return nil
}
