package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
)

// ModelServiceRepository talks to the external occupancy model
// service over HTTP. The service owns training (OLS with feature
// scaling) and serving; this client only consumes predictions and
// fires retraining runs.
type ModelServiceRepository struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

// NewModelServiceRepository creates a new model service client
func NewModelServiceRepository(baseURL string, logger logger.Logger) repository.Predictor {
	return &ModelServiceRepository{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Predict fetches a live occupancy prediction for one facility.
// Returns entity.ErrModelUnavailable when the service reports that no
// trained model exists yet.
func (r *ModelServiceRepository) Predict(ctx context.Context, facilityID int, reservationCount int, examWeek int) (*entity.Prediction, error) {
	url := fmt.Sprintf("%s/predict?id=%d&reservations=%d&exam_week=%d", r.baseURL, facilityID, reservationCount, examWeek)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach model service: %w", err)
	}
	defer resp.Body.Close()

	var response struct {
		Status string `json:"status"`
		Data   struct {
			Facility    string `json:"facility"`
			Occupancy   string `json:"occupancy"`   // e.g. "%62"
			Temperature string `json:"temperature"` // e.g. "4.2°C"
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || response.Status != "success" {
		if strings.Contains(response.Message, "no trained model") || resp.StatusCode == http.StatusServiceUnavailable {
			return nil, entity.ErrModelUnavailable
		}
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, response.Message)
	}

	rate, err := parsePercent(response.Data.Occupancy)
	if err != nil {
		return nil, fmt.Errorf("unparseable occupancy %q: %w", response.Data.Occupancy, err)
	}
	temp, _ := strconv.ParseFloat(strings.TrimSuffix(response.Data.Temperature, "°C"), 64)

	return &entity.Prediction{
		FacilityID:    facilityID,
		FacilityName:  response.Data.Facility,
		OccupancyRate: rate,
		Temperature:   temp,
	}, nil
}

// Retrain kicks off a training run on the model service.
func (r *ModelServiceRepository) Retrain(ctx context.Context) error {
	url := fmt.Sprintf("%s/train", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create retrain request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach model service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("model service returned status %d for retrain", resp.StatusCode)
	}

	r.logger.Info("Retraining triggered on model service")
	return nil
}

// parsePercent accepts "%62", "62%" or "62".
func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "%")
	s = strings.TrimSuffix(s, "%")
	return strconv.ParseFloat(s, 64)
}
