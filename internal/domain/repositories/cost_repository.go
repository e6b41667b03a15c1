package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// APICallFilter narrows usage ledger listings
type APICallFilter struct {
	UserID    *uuid.UUID
	MeetingID *uuid.UUID
	Provider  string
	Model     string
	Since     *time.Time
	Limit     int
	Offset    int
}

// CostRepository defines persistence for the usage ledger and budgets
type CostRepository interface {
	// CreateAPICall appends a usage ledger entry
	CreateAPICall(ctx context.Context, call *entities.APICall) error

	// ListAPICalls returns ledger entries matching the filter, newest first
	ListAPICalls(ctx context.Context, filter APICallFilter) ([]*entities.APICall, int64, error)

	// SumCostSince returns a user's total spend since the given time.
	// Failed and cached calls cost nothing but still appear in listings.
	SumCostSince(ctx context.Context, userID uuid.UUID, since time.Time) (float64, error)

	// DailyTotals returns per-day aggregates for a user over the window
	DailyTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.DailyUsage, error)

	// ModelTotals returns per-model aggregates for a user over the window
	ModelTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.ModelUsage, error)

	// UpsertBudget creates or replaces a user's budget for a period
	UpsertBudget(ctx context.Context, budget *entities.CostBudget) error

	// GetBudget returns a user's budget for a period
	GetBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) (*entities.CostBudget, error)

	// ListBudgets returns all budgets for a user
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]*entities.CostBudget, error)

	// DeleteBudget removes a user's budget for a period
	DeleteBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) error
}
