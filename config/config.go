package config

import (
	"log"
	"os"
	"path/filepath"

	"booking-server/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Redis defaults
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// Ponorez defaults
const PONOREZ_ENDPOINT = "https://ponorez.online/reservation/ws/ReservationService"
const PONOREZ_REQUESTS_PER_SECOND = 5
const PONOREZ_TIMEOUT_SECONDS = 10

// Availability defaults
const CALENDAR_CACHE_TTL_SECONDS = 300
const SEAT_CHECK_CACHE_TTL_SECONDS = 60
const FALLBACK_CALENDAR_DAYS = 14
const LIMITED_SEAT_THRESHOLD = 4
const CALENDAR_REFRESH_INTERVAL_MINUTES = 30

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const AVAILABLE_DATES_RESOURCE = "ponorez_available_dates.json"
const ACTIVITIES_RESOURCE = "ponorez_activities.json"

// Config holds all configuration values.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	Env     string `mapstructure:"ENV"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	UseMockGateway           bool    `mapstructure:"USE_MOCK_GATEWAY"`
	PonorezEndpoint          string  `mapstructure:"PONOREZ_ENDPOINT"`
	PonorezRequestsPerSecond float64 `mapstructure:"PONOREZ_REQUESTS_PER_SECOND"`
	PonorezTimeoutSeconds    int     `mapstructure:"PONOREZ_TIMEOUT_SECONDS"`

	CalendarCacheTTLSeconds        int `mapstructure:"CALENDAR_CACHE_TTL_SECONDS"`
	SeatCheckCacheTTLSeconds       int `mapstructure:"SEAT_CHECK_CACHE_TTL_SECONDS"`
	FallbackCalendarDays           int `mapstructure:"FALLBACK_CALENDAR_DAYS"`
	LimitedSeatThreshold           int `mapstructure:"LIMITED_SEAT_THRESHOLD"`
	CalendarRefreshIntervalMinutes int `mapstructure:"CALENDAR_REFRESH_INTERVAL_MINUTES"`
	MaxRequestsPerMin              int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	DefaultSupplier string `mapstructure:"DEFAULT_SUPPLIER"`
	DefaultActivity string `mapstructure:"DEFAULT_ACTIVITY"`

	Suppliers []models.Supplier `mapstructure:"suppliers"`
}

var AppConfig Config

// LoadConfig reads .env, config.yaml and the environment, in that order of
// increasing precedence.
func LoadConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("REDIS_ADDR", REDIS_DB_ADDRESS)
	v.SetDefault("REDIS_PASSWORD", REDIS_DB_PASSWORD)
	v.SetDefault("REDIS_DB", REDIS_DB)
	v.SetDefault("USE_MOCK_GATEWAY", false)
	v.SetDefault("PONOREZ_ENDPOINT", PONOREZ_ENDPOINT)
	v.SetDefault("PONOREZ_REQUESTS_PER_SECOND", PONOREZ_REQUESTS_PER_SECOND)
	v.SetDefault("PONOREZ_TIMEOUT_SECONDS", PONOREZ_TIMEOUT_SECONDS)
	v.SetDefault("CALENDAR_CACHE_TTL_SECONDS", CALENDAR_CACHE_TTL_SECONDS)
	v.SetDefault("SEAT_CHECK_CACHE_TTL_SECONDS", SEAT_CHECK_CACHE_TTL_SECONDS)
	v.SetDefault("FALLBACK_CALENDAR_DAYS", FALLBACK_CALENDAR_DAYS)
	v.SetDefault("LIMITED_SEAT_THRESHOLD", LIMITED_SEAT_THRESHOLD)
	v.SetDefault("CALENDAR_REFRESH_INTERVAL_MINUTES", CALENDAR_REFRESH_INTERVAL_MINUTES)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	v.SetDefault("DEFAULT_SUPPLIER", "")
	v.SetDefault("DEFAULT_ACTIVITY", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}
