package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"HAIRMANAGER_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"HAIRMANAGER_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"HAIRMANAGER_SERVER_SECRET_KEY"`
	JWTSecret string `json:"jwt_secret" envconfig:"HAIRMANAGER_SERVER_JWT_SECRET"`
	Domain    string `json:"domain" envconfig:"HAIRMANAGER_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"HAIRMANAGER_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"HAIRMANAGER_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"HAIRMANAGER_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"HAIRMANAGER_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"HAIRMANAGER_REDIS_SKIP_TLS_VERIFY"`
}

type TypeSenseConfig struct {
	Dns string `json:"dns" envconfig:"HAIRMANAGER_TYPESENSE_DNS"`
}

// SendGridConfig points the provider client at the delivery provider's API.
// The per-tenant API key lives on the tenant profile, not here.
type SendGridConfig struct {
	ApiUrl     string `json:"api_url" envconfig:"HAIRMANAGER_SENDGRID_API_URL"`
	FromEmail  string `json:"from_email" envconfig:"HAIRMANAGER_SENDGRID_FROM_EMAIL"`
	WebhookUrl string `json:"webhook_url" envconfig:"HAIRMANAGER_SENDGRID_WEBHOOK_URL"`
}

// MapsConfig configures the external mapping API used for travel-distance
// lookups.
type MapsConfig struct {
	ApiUrl string `json:"api_url" envconfig:"HAIRMANAGER_MAPS_API_URL"`
	ApiKey string `json:"api_key" envconfig:"HAIRMANAGER_MAPS_API_KEY"`
}

type QueueConfig struct {
	EmailSendQueue   string `json:"email_send_queue" envconfig:"HAIRMANAGER_QUEUE_EMAIL_SEND"`
	IndexQueue       string `json:"index_queue" envconfig:"HAIRMANAGER_QUEUE_INDEX"`
	MaxRetryAttempts int    `json:"max_retry_attempts" envconfig:"HAIRMANAGER_QUEUE_MAX_RETRY_ATTEMPTS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"HAIRMANAGER_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"HAIRMANAGER_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"HAIRMANAGER_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName        string           `json:"project_name" envconfig:"HAIRMANAGER_PROJECT_NAME"`
	AttachmentsDir     string           `json:"attachments_dir" envconfig:"HAIRMANAGER_ATTACHMENTS_DIR"`
	BackupDir          string           `json:"backup_dir" envconfig:"HAIRMANAGER_BACKUP_DIR"`
	AwsAccessKeyId     string           `json:"aws_access_key_id"`
	AwsSecretAccessKey string           `json:"aws_secret_access_key"`
	S3BucketName       string           `json:"s3_bucket_name"`
	S3Region           string           `json:"s3_region"`
	Server             ServerConfig     `json:"server"`
	DataSource         DataSourceConfig `json:"data_source"`
	Redis              RedisConfig      `json:"redis"`
	TypeSense          TypeSenseConfig  `json:"typesense"`
	TypeSenseKey       string           `json:"type_sense_key"`
	SendGrid           SendGridConfig   `json:"sendgrid"`
	Maps               MapsConfig       `json:"maps"`
	Queue              QueueConfig      `json:"queue"`
	Notification       Notification     `json:"notification"`
	RateLimit          RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("hairmanager", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called hairmanager.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "HairManager Server"
	}

	if cnf.TypeSense.Dns == "" {
		cnf.TypeSense.Dns = "http://typesense:8108"
	}

	if cnf.SendGrid.ApiUrl == "" {
		cnf.SendGrid.ApiUrl = "https://api.sendgrid.com"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.AttachmentsDir == "" {
		cnf.AttachmentsDir = "attachments"
	}

	if cnf.BackupDir == "" {
		cnf.BackupDir = "backups"
	}

	if cnf.Queue.EmailSendQueue == "" {
		cnf.Queue.EmailSendQueue = "email_send"
	}
	if cnf.Queue.IndexQueue == "" {
		cnf.Queue.IndexQueue = "index_data"
	}
	if cnf.Queue.MaxRetryAttempts == 0 {
		cnf.Queue.MaxRetryAttempts = 3
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
