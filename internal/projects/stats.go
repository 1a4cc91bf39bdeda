package projects

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/status"
)

type StatusCount struct {
	Status     string          `json:"status"`
	Color      string          `json:"color"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Stats struct {
	Total    int           `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
	// Other counts projects outside the pipeline, such as those in
	// customization.
	Other int `json:"other"`
}

var hundred = decimal.NewFromInt(100)

// Stats counts projects per pipeline status with the count-only query.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if s.store == nil {
		return nil, models.ErrGatewayNotReady
	}

	total, err := s.store.CountProjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	stats := &Stats{Total: total, ByStatus: make([]StatusCount, 0, len(status.All()))}
	inPipeline := 0
	for _, entry := range status.All() {
		n, err := s.store.CountProjects(ctx, entry.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to load stats: %w", err)
		}
		inPipeline += n
		stats.ByStatus = append(stats.ByStatus, StatusCount{
			Status:     entry.Value,
			Color:      entry.Color,
			Count:      n,
			Percentage: Share(n, total),
		})
	}
	if other := total - inPipeline; other > 0 {
		stats.Other = other
	}
	return stats, nil
}

// Share is part/total as a percentage rounded to two places. Zero total
// gives zero.
func Share(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}
