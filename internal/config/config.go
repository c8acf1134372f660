package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env-default:"production"`
	PGSQL      PQSQL      `yaml:"pgsql"`
	HTTPServer HTTPServer `yaml:"http_server"`
	JWTSecret  string     `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Admin      Admin      `yaml:"admin"`
	Redis      Redis      `yaml:"redis"`
	Storage    Storage    `yaml:"storage"`
	Media      Media      `yaml:"media"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Worker     Worker     `yaml:"worker"`
}

type HTTPServer struct {
	Address string `yaml:"address" env-default:"localhost:8080"`
}

type PQSQL struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-default:"postgres"`
	Password string `yaml:"password" env-default:"password"`
	DBName   string `yaml:"dbname" env-default:"marketplace_db"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

// Admin lists the users allowed on /admin routes. Empty means nobody.
type Admin struct {
	UserIDs []string `yaml:"user_ids" env:"ADMIN_USER_IDS"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

// Storage describes the bucket that receives direct uploads.
type Storage struct {
	Endpoint        string        `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"s3.amazonaws.com"`
	Region          string        `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string        `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	BucketName      string        `yaml:"bucket_name" env:"S3_BUCKET_NAME"`
	UseSSL          bool          `yaml:"use_ssl" env-default:"true"`
	PublicBaseURL   string        `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	UploadURLTTL    time.Duration `yaml:"upload_url_ttl" env-default:"60s"`
	NGOPrefix       string        `yaml:"ngo_prefix" env-default:"items/ngocampaign"`
	DefaultPrefix   string        `yaml:"default_prefix" env-default:"items"`
}

type Media struct {
	AllowedMimeTypes []string `yaml:"allowed_mime_types" env-default:"image/jpeg,image/png,image/gif,image/webp,image/bmp,image/svg+xml"`
	DefaultMimeType  string   `yaml:"default_mime_type" env-default:"image/png"`
}

type RateLimit struct {
	TicketCapacity int64 `yaml:"ticket_capacity" env-default:"30"`
	TicketRefill   int64 `yaml:"ticket_refill" env-default:"30"`

	// Per client address, across every userId it sends.
	TicketAddrCapacity int64 `yaml:"ticket_addr_capacity" env-default:"120"`
	TicketAddrRefill   int64 `yaml:"ticket_addr_refill" env-default:"120"`
}

type Worker struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval" env-default:"10m"`
	PageSize          int           `yaml:"page_size" env-default:"200"`
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return cfg
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
