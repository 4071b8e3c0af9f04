package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Merge policies for adding a position in a symbol that is already held.
const (
	MergeAverage = "average"
	MergeReject  = "reject"
)

// News providers that can back the news service.
const (
	NewsProviderNewsAPI    = "newsapi"
	NewsProviderGoogleNews = "googlenews"
)

// Summarizer backends.
const (
	SummarizerHuggingFace = "huggingface"
	SummarizerGemini      = "gemini"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	Upstream  UpstreamConfig
	Market    MarketConfig
	News      NewsConfig
	Inference InferenceConfig
	Portfolio PortfolioConfig
	Scheduler SchedulerConfig
	Security  SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig controls the process-wide slog handler.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// UpstreamConfig holds settings shared by every outbound HTTP client.
type UpstreamConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	BreakerTimeout time.Duration
}

// MarketConfig holds market-data provider settings.
type MarketConfig struct {
	YahooBaseURL string
}

// NewsConfig holds news provider settings.
type NewsConfig struct {
	Provider          string
	NewsAPIKey        string
	NewsAPIBaseURL    string
	GoogleNewsBaseURL string
	QueryDelay        time.Duration
	CompareDelay      time.Duration
}

// InferenceConfig holds hosted model settings.
type InferenceConfig struct {
	HuggingFaceToken   string
	HuggingFaceBaseURL string
	SentimentModel     string
	SummaryModel       string
	Summarizer         string
	GeminiAPIKey       string
	GeminiModel        string
}

// PortfolioConfig holds valuation and position behaviour.
type PortfolioConfig struct {
	MergePolicy          string
	ValuationConcurrency int
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	Enabled      bool
	PriceRefresh string // cron spec
}

// SecurityConfig holds the credential store key.
type SecurityConfig struct {
	EncryptionKey  string // base64 fernet key, empty disables the credential store
	InternalAPIKey string // guards credential writes when set
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	timeout, err := getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	collect(err)
	retries, err := getEnvInt("UPSTREAM_MAX_RETRIES", 2)
	collect(err)
	breakerTimeout, err := getEnvDuration("BREAKER_TIMEOUT", 30*time.Second)
	collect(err)
	queryDelay, err := getEnvDuration("NEWS_QUERY_DELAY", time.Second)
	collect(err)
	compareDelay, err := getEnvDuration("NEWS_COMPARE_DELAY", 2*time.Second)
	collect(err)
	concurrency, err := getEnvInt("VALUATION_CONCURRENCY", 4)
	collect(err)
	schedulerEnabled, err := getEnvBool("SCHEDULER_ENABLED", true)
	collect(err)

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		Upstream: UpstreamConfig{
			Timeout:        timeout,
			MaxRetries:     retries,
			BreakerTimeout: breakerTimeout,
		},
		Market: MarketConfig{
			YahooBaseURL: getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
		},
		News: NewsConfig{
			Provider:          strings.ToLower(getEnv("NEWS_PROVIDER", NewsProviderNewsAPI)),
			NewsAPIKey:        os.Getenv("API_NEWS_KEY"),
			NewsAPIBaseURL:    getEnv("NEWSAPI_BASE_URL", "https://newsapi.org/v2"),
			GoogleNewsBaseURL: getEnv("GOOGLE_NEWS_BASE_URL", "https://news.google.com/rss/search"),
			QueryDelay:        queryDelay,
			CompareDelay:      compareDelay,
		},
		Inference: InferenceConfig{
			HuggingFaceToken:   os.Getenv("HUGGINGFACE_TOKEN"),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", "https://router.huggingface.co/hf-inference/models"),
			SentimentModel:     getEnv("HF_SENTIMENT_MODEL", "mrm8488/distilroberta-finetuned-financial-news-sentiment-analysis"),
			SummaryModel:       getEnv("HF_SUMMARY_MODEL", "facebook/bart-large-cnn"),
			Summarizer:         strings.ToLower(getEnv("SUMMARIZER", SummarizerHuggingFace)),
			GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
			GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Portfolio: PortfolioConfig{
			MergePolicy:          strings.ToLower(getEnv("POSITION_MERGE_POLICY", MergeAverage)),
			ValuationConcurrency: concurrency,
		},
		Scheduler: SchedulerConfig{
			Enabled:      schedulerEnabled,
			PriceRefresh: getEnv("SCHEDULER_PRICE_REFRESH", "0 22 * * 1-5"),
		},
		Security: SecurityConfig{
			EncryptionKey:  os.Getenv("SECURITY_ENCRYPTION_KEY"),
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
		},
	}

	collect(config.validate())
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

func (c *Config) validate() error {
	var problems []string

	switch c.Portfolio.MergePolicy {
	case MergeAverage, MergeReject:
	default:
		problems = append(problems, fmt.Sprintf("POSITION_MERGE_POLICY must be %q or %q", MergeAverage, MergeReject))
	}
	switch c.News.Provider {
	case NewsProviderNewsAPI, NewsProviderGoogleNews:
	default:
		problems = append(problems, fmt.Sprintf("NEWS_PROVIDER must be %q or %q", NewsProviderNewsAPI, NewsProviderGoogleNews))
	}
	switch c.Inference.Summarizer {
	case SummarizerHuggingFace, SummarizerGemini:
	default:
		problems = append(problems, fmt.Sprintf("SUMMARIZER must be %q or %q", SummarizerHuggingFace, SummarizerGemini))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		problems = append(problems, "LOG_FORMAT must be json or text")
	}
	if c.Portfolio.ValuationConcurrency < 1 {
		problems = append(problems, "VALUATION_CONCURRENCY must be at least 1")
	}
	if c.Upstream.MaxRetries < 0 {
		problems = append(problems, "UPSTREAM_MAX_RETRIES cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
