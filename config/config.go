package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	AdminToken  string `mapstructure:"ADMIN_TOKEN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisTrackingDB int    `mapstructure:"REDIS_TRACKING_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`

	// Dispatch configuration.
	SearchRadiusKm        float64 `mapstructure:"SEARCH_RADIUS_KM"`
	MaxSearchRadiusKm     float64 `mapstructure:"MAX_SEARCH_RADIUS_KM"`
	SearchRadiusStepKm    float64 `mapstructure:"SEARCH_RADIUS_STEP_KM"`
	MaxSearchAttempts     int     `mapstructure:"MAX_SEARCH_ATTEMPTS"`
	SearchRetryDelaySec   int     `mapstructure:"SEARCH_RETRY_DELAY_SEC"`
	MaxCandidates         int     `mapstructure:"MAX_CANDIDATES"`
	OfferResponseTimeout  int     `mapstructure:"OFFER_RESPONSE_TIMEOUT_SEC"` // 0 disables offer expiry; exhaustion is then bounded by attempts/radius only.
	DispatchConcurrency   int     `mapstructure:"DISPATCH_CONCURRENCY"`
	NearbyThresholdMeters float64 `mapstructure:"NEARBY_THRESHOLD_METERS"`
	CancellationFeeRate   float64 `mapstructure:"CANCELLATION_FEE_RATE"`
	AverageSpeedKmph      float64 `mapstructure:"AVERAGE_SPEED_KMPH"`

	// Firebase (push delivery).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_TRACKING_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SEARCH_RADIUS_KM", 5.0)
	viper.SetDefault("MAX_SEARCH_RADIUS_KM", 20.0)
	viper.SetDefault("SEARCH_RADIUS_STEP_KM", 5.0)
	viper.SetDefault("MAX_SEARCH_ATTEMPTS", 3)
	viper.SetDefault("SEARCH_RETRY_DELAY_SEC", 30)
	viper.SetDefault("MAX_CANDIDATES", 10)
	viper.SetDefault("OFFER_RESPONSE_TIMEOUT_SEC", 0)
	viper.SetDefault("DISPATCH_CONCURRENCY", 10)
	viper.SetDefault("NEARBY_THRESHOLD_METERS", 500.0)
	viper.SetDefault("CANCELLATION_FEE_RATE", 0.20)
	viper.SetDefault("AVERAGE_SPEED_KMPH", 40.0)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// DispatchConfig is the subset of knobs the dispatch engine consumes,
// extracted so tests can construct it without touching viper. The initial
// and maximum radius live on the request document itself.
type DispatchConfig struct {
	SearchRadiusStepKm   float64
	MaxSearchAttempts    int
	SearchRetryDelaySec  int
	MaxCandidates        int
	OfferResponseTimeout int
}

// Dispatch builds the dispatch knobs from the loaded configuration.
func (c Config) Dispatch() DispatchConfig {
	return DispatchConfig{
		SearchRadiusStepKm:   c.SearchRadiusStepKm,
		MaxSearchAttempts:    c.MaxSearchAttempts,
		SearchRetryDelaySec:  c.SearchRetryDelaySec,
		MaxCandidates:        c.MaxCandidates,
		OfferResponseTimeout: c.OfferResponseTimeout,
	}
}
