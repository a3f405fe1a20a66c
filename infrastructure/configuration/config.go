package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"socialflow/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	OAuth       OAuth       `json:"oauth"`
	Delivery    Delivery    `json:"delivery"`
	Scheduler   Scheduler   `json:"scheduler"`
	Cloudinary  Cloudinary  `json:"cloudinary"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
	// Timezone is the IANA zone used to read schedule date/time pairs.
	Timezone       string   `json:"timezone"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type Database struct {
	// Vendor selects the connection store: "postgres" (default) or "mssql".
	Vendor string `json:"vendor"`
	Psql   Db     `json:"psql"`
	MySql  Db     `json:"mysql"`
	Mongo  Db     `json:"mongo"`
	Mssql  Db     `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

// OAuth holds the client credentials of every supported platform.
type OAuth struct {
	Instagram OAuthClient `json:"instagram"`
	TikTok    OAuthClient `json:"tiktok"`
	YouTube   OAuthClient `json:"youtube"`
	// HandshakeTTLSeconds bounds how long an issued nonce stays valid.
	HandshakeTTLSeconds int `json:"handshakeTTLSeconds"`
}

type OAuthClient struct {
	ClientID     string   `json:"clientId"`
	ClientSecret string   `json:"clientSecret"`
	RedirectURI  string   `json:"redirectURI"`
	Scopes       []string `json:"scopes"`
}

type Delivery struct {
	// Mode is "mock" (accept locally) or "live" (hand off over Pub/Sub).
	Mode  string `json:"mode"`
	Topic string `json:"topic"`
}

type Scheduler struct {
	// Spec is a robfig/cron expression for the due-post sweep.
	Spec      string `json:"spec"`
	BatchSize int    `json:"batchSize"`
	// SessionIdleMinutes evicts per-user sessions unused for this long.
	SessionIdleMinutes int `json:"sessionIdleMinutes"`
}

type Cloudinary struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

type Pubsub struct {
	ProjectID   string `json:"projectID"`
	EventsTopic string `json:"eventsTopic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initOAuth(&C)
	initIntegrations(&C)
}

// configPaths are searched in order so binaries and package tests find the same file.
var configPaths = []string{".", "../", "../../"}

func LoadConfig() {
	name := configName()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	for _, p := range configPaths {
		viper.AddConfigPath(p)
	}
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		logger.GetLogger().WithField("config", name).Warn("No config file, running on defaults and environment")
	case err != nil:
		logger.GetLogger().WithField("config", name).WithField("error", err).Error("Config file could not be read")
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Config could not be decoded")
		return
	}
	logger.GetLogger().WithField("config", name).Info("Config loaded")
}

// configName resolves config.json or config-<ENV>.json.
func configName() string {
	if env := os.Getenv("ENV"); env != "" {
		return fmt.Sprintf("config-%s", env)
	}
	return "config"
}

func initDatabase(C *Config) {
	setFromEnv(&C.Database.Vendor, "DB_VENDOR")
	if C.Database.Vendor == "" {
		C.Database.Vendor = "postgres"
	}

	setFromEnv(&C.Database.Psql.Name, "DB_NAME")
	setFromEnv(&C.Database.Psql.Host, "DB_HOST")
	setFromEnv(&C.Database.Psql.Port, "DB_PORT")
	setFromEnv(&C.Database.Psql.User, "DB_USER")
	setFromEnv(&C.Database.Psql.Password, "DB_PASSWORD")

	setFromEnv(&C.Database.Mssql.Name, "MSSQL_DB_NAME")
	setFromEnv(&C.Database.Mssql.Host, "MSSQL_HOST")
	setFromEnv(&C.Database.Mssql.Port, "MSSQL_PORT")
	setFromEnv(&C.Database.Mssql.User, "MSSQL_USER")
	setFromEnv(&C.Database.Mssql.Password, "MSSQL_PASSWORD")
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = "1433"
	}

	setFromEnv(&C.Database.MySql.Name, "MYSQL_DB_NAME")
	setFromEnv(&C.Database.MySql.Host, "MYSQL_HOST")
	setFromEnv(&C.Database.MySql.Port, "MYSQL_PORT")
	setFromEnv(&C.Database.MySql.User, "MYSQL_USER")
	setFromEnv(&C.Database.MySql.Password, "MYSQL_PASSWORD")

	setFromEnv(&C.Database.Mongo.Name, "MONGO_DB_NAME")
	setFromEnv(&C.Database.Mongo.Host, "MONGO_HOST")
	setFromEnv(&C.Database.Mongo.Port, "MONGO_PORT")

	setFromEnv(&C.RedisClient.Host, "REDIS_HOST")
	setFromEnv(&C.RedisClient.Port, "REDIS_PORT")
	setFromEnv(&C.RedisClient.Password, "REDIS_PASSWORD")
	setFromEnv(&C.RedisClient.DatabaseName, "REDIS_DB")
}

func initApp(C *Config) {
	setFromEnv(&C.App.SecretKey, "SECRET_KEY")
	if !setIntFromEnv(&C.App.Port, "APP_PORT") {
		setIntFromEnv(&C.App.Port, "PORT")
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}

	setBoolFromEnv(&C.App.TLSEnabled, "TLS_ENABLED")
	setFromEnv(&C.App.TLSCertFile, "TLS_CERT_FILE")
	setFromEnv(&C.App.TLSKeyFile, "TLS_KEY_FILE")
	if C.App.TLSEnabled {
		C.App.TLSCertFile = defaultFile(C.App.TLSCertFile, "certs/server.crt")
		C.App.TLSKeyFile = defaultFile(C.App.TLSKeyFile, "certs/server.key")
		logger.GetLogger().WithField("cert", C.App.TLSCertFile).WithField("key", C.App.TLSKeyFile).Info("Serving over TLS")
	}

	setFromEnv(&C.App.Timezone, "APP_TIMEZONE")
	if C.App.Timezone == "" {
		C.App.Timezone = "UTC"
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		C.App.AllowedOrigins = splitList(v)
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("SECRET_KEY is empty, every authenticated request will be rejected")
	}
}

func initIntegrations(C *Config) {
	setFromEnv(&C.Delivery.Mode, "DELIVERY_MODE")
	if C.Delivery.Mode == "" {
		C.Delivery.Mode = "mock"
	}
	if C.Delivery.Topic == "" {
		C.Delivery.Topic = "post-delivery"
	}
	if C.Scheduler.Spec == "" {
		C.Scheduler.Spec = "@every 1m"
	}
	if C.Scheduler.BatchSize <= 0 {
		C.Scheduler.BatchSize = 50
	}
	if C.Scheduler.SessionIdleMinutes <= 0 {
		C.Scheduler.SessionIdleMinutes = 60
	}
	setFromEnv(&C.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	setFromEnv(&C.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	setFromEnv(&C.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")
	setFromEnv(&C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID")
	if C.Pubsub.EventsTopic == "" {
		C.Pubsub.EventsTopic = "post-events"
	}
	setFromEnv(&C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE")
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "post-dispatch"
	}
	setFromEnv(&C.Logger.Level, "LOG_LEVEL")
}

// setFromEnv overrides *dst with the value of key when the variable is set.
func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setIntFromEnv reports whether key held a valid integer.
func setIntFromEnv(dst *int, key string) bool {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return false
	}
	*dst = v
	return true
}

func setBoolFromEnv(dst *bool, key string) {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = b
	}
}

// defaultFile returns path, or fallback when path is empty and fallback exists on disk.
func defaultFile(path, fallback string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return path
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasHTTPS(u string) bool { return strings.HasPrefix(u, "https://") }

func toHTTPSCallback(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
