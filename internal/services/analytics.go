package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"autosales-dashboard/internal/models"
)

var ErrDatasetNotLoaded = errors.New("dataset not loaded")

// Analytics owns the loaded sales dataset and answers report queries over it.
type Analytics struct {
	mu           sync.RWMutex
	dataset      *Dataset
	origin       string
	loadedAt     time.Time
	loadDuration time.Duration
	logger       *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		logger: slog.Default(),
	}
}

// SetData replaces the dataset with in-memory records.
func (a *Analytics) SetData(records []models.SalesRecord) error {
	ds, err := NewDataset(records)
	if err != nil {
		return fmt.Errorf("build dataset: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset = ds
	a.origin = "memory"
	a.loadedAt = time.Now()
	a.loadDuration = 0
	return nil
}

// Load fetches and parses the dataset from src.
func (a *Analytics) Load(ctx context.Context, src *Source) error {
	start := time.Now()
	a.logger.Info("loading dataset", "source", src.Origin())

	body, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	ds, err := ParseDataset(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}

	duration := time.Since(start)

	a.mu.Lock()
	a.dataset = ds
	a.origin = src.Origin()
	a.loadedAt = time.Now()
	a.loadDuration = duration
	a.mu.Unlock()

	a.logger.Info("dataset loaded",
		"records", ds.Len(),
		"duration", duration,
	)
	return nil
}

func (a *Analytics) Dataset() *Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

func (a *Analytics) Ready() bool {
	return a.Dataset() != nil
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.dataset == nil {
		return map[string]any{
			"record_count": 0,
			"loaded":       false,
		}
	}

	years := a.dataset.Years()
	return map[string]any{
		"record_count":   a.dataset.Len(),
		"loaded":         true,
		"source":         a.origin,
		"loaded_at":      a.loadedAt,
		"load_duration":  a.loadDuration.String(),
		"first_year":     years[0],
		"last_year":      years[len(years)-1],
		"years":          len(years),
		"vehicle_types":  a.dataset.VehicleTypes(),
		"recession_rows": a.dataset.RecessionPeriods().Len(),
	}
}
