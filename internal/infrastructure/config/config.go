// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB (append-only logs: occupancy history, error log,
	// reservations, report snapshot)
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (reference catalogs: facilities, events)
	PostgresURI string

	// Redis prediction cache (optional, disabled when addr is empty)
	RedisAddr     string
	RedisPassword string
	PredictionTTL time.Duration

	// Model service
	ModelServiceURL string

	// Weather
	WeatherAPIKey  string
	WeatherLat     float64
	WeatherLon     float64
	WeatherTimeout time.Duration

	// Reference point for distance scoring (Bursa city center)
	ReferenceLat float64
	ReferenceLon float64

	// Ranking weights, must sum to 1.0
	WeightOccupancy    float64
	WeightDistance     float64
	WeightType         float64
	WeightEvent        float64
	WeightSatisfaction float64

	// Retraining trigger: every Nth new ground-truth record
	RetrainEvery int

	// Background compare loop (0 disables it)
	CompareInterval time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "occupancy"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=occupancy dbname=occupancy port=5432 sslmode=disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PredictionTTL: time.Duration(getEnvAsInt("PREDICTION_CACHE_TTL", 300)) * time.Second,

		ModelServiceURL: getEnv("MODEL_SERVICE_URL", "http://localhost:5001"),

		WeatherAPIKey:  getEnv("WEATHER_API_KEY", ""),
		WeatherLat:     getEnvAsFloat("WEATHER_LAT", 40.1885),
		WeatherLon:     getEnvAsFloat("WEATHER_LON", 29.0610),
		WeatherTimeout: time.Duration(getEnvAsInt("WEATHER_TIMEOUT", 5)) * time.Second,

		ReferenceLat: getEnvAsFloat("REFERENCE_LAT", 40.1885),
		ReferenceLon: getEnvAsFloat("REFERENCE_LON", 29.0610),

		WeightOccupancy:    getEnvAsFloat("WEIGHT_OCCUPANCY", 0.40),
		WeightDistance:     getEnvAsFloat("WEIGHT_DISTANCE", 0.20),
		WeightType:         getEnvAsFloat("WEIGHT_TYPE", 0.15),
		WeightEvent:        getEnvAsFloat("WEIGHT_EVENT", 0.15),
		WeightSatisfaction: getEnvAsFloat("WEIGHT_SATISFACTION", 0.10),

		RetrainEvery: getEnvAsInt("RETRAIN_EVERY", 100),

		CompareInterval: time.Duration(getEnvAsInt("COMPARE_INTERVAL", 0)) * time.Second,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
