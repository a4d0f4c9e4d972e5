package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName                  string   `mapstructure:"SERVICE_NAME"`
	HTTPServerAddress            string   `mapstructure:"HTTP_SERVER_ADDRESS"`
	LogDevelopment               bool     `mapstructure:"LOG_DEVELOPMENT"`
	WorkerPoolSize               int      `mapstructure:"WORKER_POOL_SIZE"`
	EnabledSources               []string `mapstructure:"ENABLED_SOURCES"`
	WatchedTypes                 []string `mapstructure:"WATCHED_TYPES"`
	MongoURI                     string   `mapstructure:"MONGO_URI"`
	MongoDatabase                string   `mapstructure:"MONGO_DATABASE"`
	MongoTimeoutSeconds          int      `mapstructure:"MONGO_TIMEOUT_SECONDS"`
	MongoUsersCollection         string   `mapstructure:"MONGO_USERS_COLLECTION"`
	MongoGroupsCollection        string   `mapstructure:"MONGO_GROUPS_COLLECTION"`
	MongoCommentsCollection      string   `mapstructure:"MONGO_COMMENTS_COLLECTION"`
	MongoNotificationsCollection string   `mapstructure:"MONGO_NOTIFICATIONS_COLLECTION"`
	KafkaBrokers                 []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic                   string   `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID                 string   `mapstructure:"KAFKA_GROUP_ID"`
	KafkaDLQTopic                string   `mapstructure:"KAFKA_DLQ_TOPIC"`
	FirebaseProjectID            string   `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile      string   `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	RateLimitRPS                 float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst               int      `mapstructure:"RATE_LIMIT_BURST"`
	OtelEndpoint                 string   `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelInsecure                 bool     `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelServiceName              string   `mapstructure:"OTEL_SERVICE_NAME"`
}

// MongoConf groups the settings needed by the MongoDB-backed directories and trigger.
type MongoConf struct {
	URI                string
	Database           string
	TimeoutSeconds     int
	UsersCollection    string
	GroupsCollection   string
	CommentsCollection string
}

// KafkaConf groups the settings needed by the Kafka trigger source.
type KafkaConf struct {
	Brokers  []string
	Topic    string
	GroupID  string
	DLQTopic string
}

type ConsumerConfig struct {
	WorkerPoolSize int
	EnabledSources []string
	WatchedTypes   []string
}

var cfg *Config

var envKeys = []string{
	"SERVICE_NAME",
	"HTTP_SERVER_ADDRESS",
	"LOG_DEVELOPMENT",
	"WORKER_POOL_SIZE",
	"ENABLED_SOURCES",
	"WATCHED_TYPES",
	"MONGO_URI",
	"MONGO_DATABASE",
	"MONGO_TIMEOUT_SECONDS",
	"MONGO_USERS_COLLECTION",
	"MONGO_GROUPS_COLLECTION",
	"MONGO_COMMENTS_COLLECTION",
	"MONGO_NOTIFICATIONS_COLLECTION",
	"KAFKA_BROKERS",
	"KAFKA_TOPIC",
	"KAFKA_GROUP_ID",
	"KAFKA_DLQ_TOPIC",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_CREDENTIALS_FILE",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_SERVICE_NAME",
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("SERVICE_NAME", "push-notification-service")
	vip.SetDefault("HTTP_SERVER_ADDRESS", ":8080")
	vip.SetDefault("WORKER_POOL_SIZE", 16)
	vip.SetDefault("ENABLED_SOURCES", []string{"mongo"})
	vip.SetDefault("WATCHED_TYPES", []string{"friend", "groupInvitation", "reaction", "comment"})
	vip.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	vip.SetDefault("MONGO_DATABASE", "app")
	vip.SetDefault("MONGO_TIMEOUT_SECONDS", 10)
	vip.SetDefault("MONGO_USERS_COLLECTION", "users")
	vip.SetDefault("MONGO_GROUPS_COLLECTION", "groups")
	vip.SetDefault("MONGO_COMMENTS_COLLECTION", "comments")
	vip.SetDefault("MONGO_NOTIFICATIONS_COLLECTION", "notifications")
	vip.SetDefault("KAFKA_GROUP_ID", "push-notification-service")
	vip.SetDefault("RATE_LIMIT_BURST", 20)
	vip.SetDefault("OTEL_SERVICE_NAME", "push-notification-service")
}

func NewConfig(path string) (*Config, error) {
	relativeUrl, err := GetBasePath(path)
	if err != nil {
		return nil, fmt.Errorf("error getting base path: %v", err)
	}

	vip := viper.New()
	vip.SetConfigType("env")
	vip.SetConfigName(".env")
	vip.AddConfigPath(relativeUrl)
	vip.AutomaticEnv()
	setDefaults(vip)

	if err := vip.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for _, key := range envKeys {
		vip.BindEnv(key)
	}

	var loaded Config
	if err := vip.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %v", err)
	}

	if !vip.IsSet("OTEL_EXPORTER_OTLP_INSECURE") {
		loaded.OtelInsecure = false
	}

	cfg = &loaded
	return cfg, nil
}

func GetBasePath(path string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return filepath.Join(cwd, path), nil
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			return "", errors.New("go.mod not found")
		}
		cwd = parent
	}
}

func GetConfig() *Config {
	return cfg
}

// SetTestConfig allows tests to set the global config variable directly.
func SetTestConfig(testCfg *Config) {
	cfg = testCfg
}

func (c *Config) Mongo() MongoConf {
	return MongoConf{
		URI:                c.MongoURI,
		Database:           c.MongoDatabase,
		TimeoutSeconds:     c.MongoTimeoutSeconds,
		UsersCollection:    c.MongoUsersCollection,
		GroupsCollection:   c.MongoGroupsCollection,
		CommentsCollection: c.MongoCommentsCollection,
	}
}

func (c *Config) Kafka() KafkaConf {
	return KafkaConf{
		Brokers:  c.KafkaBrokers,
		Topic:    c.KafkaTopic,
		GroupID:  c.KafkaGroupID,
		DLQTopic: c.KafkaDLQTopic,
	}
}

func (c *Config) Consumer() ConsumerConfig {
	return ConsumerConfig{
		WorkerPoolSize: c.WorkerPoolSize,
		EnabledSources: c.EnabledSources,
		WatchedTypes:   c.WatchedTypes,
	}
}
