package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
)

// CostRepository implements usage ledger and budget persistence using GORM
type CostRepository struct {
	db *gorm.DB
}

// NewCostRepository creates a new cost repository
func NewCostRepository(db *gorm.DB) *CostRepository {
	return &CostRepository{
		db: db,
	}
}

// CreateAPICall appends a usage ledger entry
func (r *CostRepository) CreateAPICall(ctx context.Context, call *entities.APICall) error {
	if err := r.db.WithContext(ctx).Create(call).Error; err != nil {
		return fmt.Errorf("failed to record api call: %w", err)
	}
	return nil
}

// ListAPICalls returns ledger entries matching the filter, newest first
func (r *CostRepository) ListAPICalls(ctx context.Context, filter repositories.APICallFilter) ([]*entities.APICall, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.APICall{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.MeetingID != nil {
		query = query.Where("meeting_id = ?", *filter.MeetingID)
	}
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}
	if filter.Model != "" {
		query = query.Where("model = ?", filter.Model)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count api calls: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var calls []*entities.APICall
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&calls).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list api calls: %w", err)
	}
	return calls, total, nil
}

// SumCostSince returns a user's total spend since the given time
func (r *CostRepository) SumCostSince(ctx context.Context, userID uuid.UUID, since time.Time) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&entities.APICall{}).
		Select("COALESCE(SUM(cost_usd), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum cost: %w", err)
	}
	return total, nil
}

// DailyTotals returns per-day aggregates for a user over the window
func (r *CostRepository) DailyTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.DailyUsage, error) {
	var rows []entities.DailyUsage
	if err := r.db.WithContext(ctx).
		Model(&entities.APICall{}).
		Select(`date_trunc('day', created_at) AS day,
			COUNT(*) AS calls,
			COALESCE(SUM(input_tokens + output_tokens), 0) AS tokens,
			COALESCE(SUM(cost_usd), 0) AS cost_usd,
			COUNT(*) FILTER (WHERE cached) AS cache_hits,
			COUNT(*) FILTER (WHERE NOT success) AS failures`).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate daily usage: %w", err)
	}
	return rows, nil
}

// ModelTotals returns per-model aggregates for a user over the window
func (r *CostRepository) ModelTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.ModelUsage, error) {
	var rows []entities.ModelUsage
	if err := r.db.WithContext(ctx).
		Model(&entities.APICall{}).
		Select(`provider,
			model,
			COUNT(*) AS calls,
			COALESCE(SUM(input_tokens + output_tokens), 0) AS tokens,
			COALESCE(SUM(cost_usd), 0) AS cost_usd`).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("provider, model").
		Order("cost_usd DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate model usage: %w", err)
	}
	return rows, nil
}

// UpsertBudget creates or replaces a user's budget for a period
func (r *CostRepository) UpsertBudget(ctx context.Context, budget *entities.CostBudget) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"limit_usd", "enforce", "alert_thresholds", "alert_state", "updated_at",
			}),
		}).
		Create(budget).Error; err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

// GetBudget returns a user's budget for a period
func (r *CostRepository) GetBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) (*entities.CostBudget, error) {
	var budget entities.CostBudget
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		First(&budget).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	return &budget, nil
}

// ListBudgets returns all budgets for a user
func (r *CostRepository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]*entities.CostBudget, error) {
	var budgets []*entities.CostBudget
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period ASC").
		Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a user's budget for a period
func (r *CostRepository) DeleteBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		Delete(&entities.CostBudget{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrBudgetNotFound
	}
	return nil
}
