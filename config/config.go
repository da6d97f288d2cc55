package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerBasePath     string        `mapstructure:"server_base_path"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	ServerCorsOrigins  string        `mapstructure:"server_cors_origins"`
	ServerMaxInFlight  int64         `mapstructure:"server_max_in_flight"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`
	DBLogQueries      bool   `mapstructure:"db_log_queries"`

	// 会话配置
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// 上传配置
	UploadMaxSizeMB    int           `mapstructure:"upload_max_size_mb"`
	UploadMaxFiles     int           `mapstructure:"upload_max_files"`
	UploadConcurrency  int           `mapstructure:"upload_concurrency"`
	UploadMaxInFlight  int64         `mapstructure:"upload_max_in_flight"`
	UploadQueueTimeout time.Duration `mapstructure:"upload_queue_timeout"`

	// 存储配置
	StorageType          string `mapstructure:"storage_type"`
	StorageLocalPath     string `mapstructure:"storage_local_path"`
	StoragePublicBaseURL string `mapstructure:"storage_public_base_url"`

	StorageMinioEndpoint  string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccessKey string `mapstructure:"storage_minio_access_key"`
	StorageMinioSecretKey string `mapstructure:"storage_minio_secret_key"`
	StorageMinioBucket    string `mapstructure:"storage_minio_bucket"`
	StorageMinioUseSSL    bool   `mapstructure:"storage_minio_use_ssl"`

	StorageS3Endpoint  string `mapstructure:"storage_s3_endpoint"`
	StorageS3Region    string `mapstructure:"storage_s3_region"`
	StorageS3AccessKey string `mapstructure:"storage_s3_access_key"`
	StorageS3SecretKey string `mapstructure:"storage_s3_secret_key"`
	StorageS3Bucket    string `mapstructure:"storage_s3_bucket"`

	StorageWebDAVURL      string        `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername string        `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword string        `mapstructure:"storage_webdav_password"`
	StorageWebDAVRootPath string        `mapstructure:"storage_webdav_root_path"`
	StorageWebDAVTimeout  time.Duration `mapstructure:"storage_webdav_timeout"`

	// 日志配置
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	envFile := viper.GetString("env_file_path")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not loaded, using defaults and environment variables\n", envFile)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded environment from %s\n", envFile)
	}

	if path := viper.GetString("config_file_path"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: Unable to read config file %s, %v\n", path, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", path)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key, strings.ToUpper(key))
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	globalConfig.ServerBasePath = normalizeBasePath(globalConfig.ServerBasePath)
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 4001)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_base_path", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "60s")
	viper.SetDefault("server_idle_timeout", "120s")
	viper.SetDefault("server_cors_origins", "http://localhost:5173")
	viper.SetDefault("server_max_in_flight", 100)

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "memory-lane")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 50)
	viper.SetDefault("db_max_idle_conns", 10)
	viper.SetDefault("db_conn_max_lifetime", 3600)
	viper.SetDefault("db_log_queries", false)

	// 会话配置默认值
	viper.SetDefault("session_secret", "")
	viper.SetDefault("session_ttl", "168h")

	// 限流配置默认值
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_auth_rps", 0.5)
	viper.SetDefault("rate_limit_auth_burst", 5)
	viper.SetDefault("rate_limit_expire_time", "10m")

	// 上传配置默认值
	viper.SetDefault("upload_max_size_mb", 32)
	viper.SetDefault("upload_max_files", 4)
	viper.SetDefault("upload_concurrency", 4)
	viper.SetDefault("upload_max_in_flight", 8)
	viper.SetDefault("upload_queue_timeout", "30s")

	// 存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/uploads")
	viper.SetDefault("storage_public_base_url", "")
	viper.SetDefault("storage_minio_endpoint", "")
	viper.SetDefault("storage_minio_access_key", "")
	viper.SetDefault("storage_minio_secret_key", "")
	viper.SetDefault("storage_minio_bucket", "memory-lane")
	viper.SetDefault("storage_minio_use_ssl", false)
	viper.SetDefault("storage_s3_endpoint", "")
	viper.SetDefault("storage_s3_region", "auto")
	viper.SetDefault("storage_s3_access_key", "")
	viper.SetDefault("storage_s3_secret_key", "")
	viper.SetDefault("storage_s3_bucket", "")
	viper.SetDefault("storage_webdav_url", "")
	viper.SetDefault("storage_webdav_username", "")
	viper.SetDefault("storage_webdav_password", "")
	viper.SetDefault("storage_webdav_root_path", "memory-lane")
	viper.SetDefault("storage_webdav_timeout", "30s")

	// 日志配置默认值
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 4001
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于生成文件链接
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return strings.TrimRight(c.ServerDomain, "/")
	}
	host := c.ServerHost
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// CorsOrigins 解析逗号分隔的跨域来源
func (c *Config) CorsOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ServerCorsOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// UploadMaxBytes 单文件上传上限（字节）
func (c *Config) UploadMaxBytes() int64 {
	if c.UploadMaxSizeMB <= 0 {
		return 32 << 20
	}
	return int64(c.UploadMaxSizeMB) << 20
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
