package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Minio    MinioConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Storage  StorageConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        int
	WriteTimeout       int
	BodyLimit          int
	AllowedOrigins     []string
	RateLimitPerMinute int
	Development        bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLHours int
}

type MinioConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type LLMConfig struct {
	APIKey         string
	BaseURL        string
	AnalysisModel  string
	FeedbackModel  string
	ProofreadModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
}

type AnalysisConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MaxQuestions   int
	DefaultPersona string
}

type StorageConfig struct {
	UploadDir     string
	ExportDir     string
	QuestionsFile string
	MaxUploadMB   int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/proposal-analyzer")

	viper.SetEnvPrefix("PROPOSAL_ANALYZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 300)
	viper.SetDefault("server.bodyLimit", 52428800)
	viper.SetDefault("server.allowedOrigins", []string{"*"})
	viper.SetDefault("server.rateLimitPerMinute", 120)
	viper.SetDefault("server.development", false)

	viper.SetDefault("sqlite.path", "./data/proposals.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlHours", 24)

	viper.SetDefault("minio.enabled", false)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.bucket", "proposal-reports")
	viper.SetDefault("minio.useSSL", false)

	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.analysisModel", "gpt-4.1-mini")
	viper.SetDefault("llm.feedbackModel", "gpt-4.1-mini")
	viper.SetDefault("llm.proofreadModel", "gpt-4.1-nano")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 2048)
	viper.SetDefault("llm.timeoutSec", 120)

	viper.SetDefault("analysis.chunkSize", 6000)
	viper.SetDefault("analysis.chunkOverlap", 600)
	viper.SetDefault("analysis.maxQuestions", 100)
	viper.SetDefault("analysis.defaultPersona", "senior_scientist")

	viper.SetDefault("storage.uploadDir", "./data/uploads")
	viper.SetDefault("storage.exportDir", "./data/exports")
	viper.SetDefault("storage.questionsFile", "./data/questions.txt")
	viper.SetDefault("storage.maxUploadMB", 25)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
