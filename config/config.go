// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	CatalogPostgres = "postgres"
	CatalogSupabase = "supabase"

	RecallServer = "server"
	RecallClient = "client"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`
	Env  string `envconfig:"ENV" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`

	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	AdminAPIKey string `envconfig:"ADMIN_API_KEY" required:"true"`

	CatalogBackend string `envconfig:"CATALOG_BACKEND" default:"postgres"`
	SupabaseURL    string `envconfig:"SUPABASE_URL"`
	SupabaseKey    string `envconfig:"SUPABASE_KEY"`

	PaystackSecretKey   string `envconfig:"PAYSTACK_SECRET_KEY"`
	PaystackPublicKey   string `envconfig:"PAYSTACK_PUBLIC_KEY"`
	PaystackBaseURL     string `envconfig:"PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	PaystackCallbackURL string `envconfig:"PAYSTACK_CALLBACK_URL"`
	Currency            string `envconfig:"CURRENCY" default:"NGN"`

	UploadsDir      string        `envconfig:"UPLOADS_DIR" default:"./uploads"`
	BackupDir       string        `envconfig:"BACKUP_DIR" default:"./backup/uploads"`
	BackupRetention time.Duration `envconfig:"BACKUP_RETENTION" default:"96h"`
	PublicBaseURL   string        `envconfig:"PUBLIC_BASE_URL"`

	SearchResultLimit    int    `envconfig:"SEARCH_RESULT_LIMIT" default:"15"`
	SearchCandidateLimit int    `envconfig:"SEARCH_CANDIDATE_LIMIT" default:"200"`
	SearchRecall         string `envconfig:"SEARCH_RECALL" default:"server"`

	CartCacheSize int `envconfig:"CART_CACHE_SIZE" default:"10000"`

	// Event publishing is off unless AMQP_URL is set.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"storefront.events"`
}

// Load reads .env (outside production) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from
// the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func (c *Config) validate() error {
	if c.JWTSecret == "" || c.AdminAPIKey == "" {
		return errors.New("JWT_SECRET and ADMIN_API_KEY must not be empty")
	}
	switch c.CatalogBackend {
	case CatalogPostgres:
	case CatalogSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase catalog")
		}
	default:
		return errors.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}
	if c.SearchRecall != RecallServer && c.SearchRecall != RecallClient {
		return errors.Errorf("unknown SEARCH_RECALL %q", c.SearchRecall)
	}
	if c.IsProduction() && c.PaystackSecretKey == "" {
		return errors.New("PAYSTACK_SECRET_KEY is required in production")
	}
	return nil
}
