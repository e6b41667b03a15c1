package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
)

// CostManager writes the usage ledger, enforces budgets and computes the
// spend analytics surfaced in the dashboard
type CostManager struct {
	costRepo repositories.CostRepository
	logger   *zap.Logger

	defaultDailyUSD float64
	enforce         bool
}

// NewCostManager creates a cost manager. defaultDailyUSD applies to users
// without an explicit budget when enforcement is on; zero disables it.
func NewCostManager(costRepo repositories.CostRepository, defaultDailyUSD float64, enforce bool, logger *zap.Logger) *CostManager {
	return &CostManager{
		costRepo:        costRepo,
		logger:          logger,
		defaultDailyUSD: defaultDailyUSD,
		enforce:         enforce,
	}
}

// CheckBudget verifies the projected spend fits every enforced budget the
// user has. Advisory budgets never block.
func (c *CostManager) CheckBudget(ctx context.Context, userID uuid.UUID, projectedUSD float64) error {
	if !c.enforce {
		return nil
	}

	budgets, err := c.costRepo.ListBudgets(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list budgets: %w", err)
	}

	if len(budgets) == 0 && c.defaultDailyUSD > 0 {
		budgets = append(budgets, entities.NewCostBudget(userID, entities.BudgetPeriodDaily, c.defaultDailyUSD))
		budgets[0].Enforce = true
	}

	now := time.Now()
	for _, budget := range budgets {
		if !budget.Enforce {
			continue
		}
		spent, err := c.costRepo.SumCostSince(ctx, userID, budget.WindowStart(now))
		if err != nil {
			return fmt.Errorf("failed to sum spend: %w", err)
		}
		if spent+projectedUSD > budget.LimitUSD {
			if c.logger != nil {
				c.logger.Warn("⚠️ Budget would be exceeded",
					zap.String("user_id", userID.String()),
					zap.String("period", string(budget.Period)),
					zap.Float64("spent_usd", spent),
					zap.Float64("projected_usd", projectedUSD),
					zap.Float64("limit_usd", budget.LimitUSD),
				)
			}
			return errors.ErrBudgetExceeded(string(budget.Period), budget.LimitUSD)
		}
	}

	return nil
}

// RecordCall appends a ledger entry and fires any newly crossed budget
// alerts. Ledger writes always land even when alert processing fails.
func (c *CostManager) RecordCall(ctx context.Context, call *entities.APICall) error {
	if err := c.costRepo.CreateAPICall(ctx, call); err != nil {
		return fmt.Errorf("failed to record API call: %w", err)
	}

	if call.CostUSD > 0 {
		if err := c.fireAlerts(ctx, call.UserID); err != nil && c.logger != nil {
			c.logger.Error("failed to process budget alerts", zap.Error(err))
		}
	}

	return nil
}

// fireAlerts latches any threshold the user's spend has newly crossed in
// the current window. A threshold fires at most once per window.
func (c *CostManager) fireAlerts(ctx context.Context, userID uuid.UUID) error {
	budgets, err := c.costRepo.ListBudgets(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, budget := range budgets {
		windowStart := budget.WindowStart(now)
		spent, err := c.costRepo.SumCostSince(ctx, userID, windowStart)
		if err != nil {
			return err
		}

		fraction := 0.0
		if budget.LimitUSD > 0 {
			fraction = spent / budget.LimitUSD
		}

		dirty := false
		for _, threshold := range budget.AlertThresholds {
			if fraction < threshold {
				continue
			}
			key := fmt.Sprintf("%.2f", threshold)
			if fired, ok := budget.AlertState[key]; ok && fired.Equal(windowStart) {
				continue // already latched this window
			}
			if budget.AlertState == nil {
				budget.AlertState = make(map[string]time.Time)
			}
			budget.AlertState[key] = windowStart
			dirty = true

			if c.logger != nil {
				c.logger.Warn("⚠️ Budget alert threshold crossed",
					zap.String("user_id", userID.String()),
					zap.String("period", string(budget.Period)),
					zap.String("threshold", key),
					zap.Float64("spent_usd", spent),
					zap.Float64("limit_usd", budget.LimitUSD),
				)
			}
		}

		if dirty {
			if err := c.costRepo.UpsertBudget(ctx, budget); err != nil {
				return err
			}
		}
	}

	return nil
}

// SetBudget creates or replaces a user's budget for a period
func (c *CostManager) SetBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod, limitUSD float64, enforce bool) (*entities.CostBudget, error) {
	if !period.IsValid() {
		return nil, entities.ErrInvalidRequest
	}
	if limitUSD <= 0 {
		return nil, entities.ErrInvalidRequest
	}

	budget := entities.NewCostBudget(userID, period, limitUSD)
	budget.Enforce = enforce

	if err := c.costRepo.UpsertBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	return budget, nil
}

// DeleteBudget removes a user's budget for a period
func (c *CostManager) DeleteBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) error {
	return c.costRepo.DeleteBudget(ctx, userID, period)
}

// GetBudgetStatus computes the current-window state of one budget
func (c *CostManager) GetBudgetStatus(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) (*entities.BudgetStatus, error) {
	budget, err := c.costRepo.GetBudget(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	windowStart := budget.WindowStart(time.Now())
	spent, err := c.costRepo.SumCostSince(ctx, userID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spend: %w", err)
	}

	fraction := 0.0
	if budget.LimitUSD > 0 {
		fraction = spent / budget.LimitUSD
	}

	return &entities.BudgetStatus{
		Budget:       budget,
		SpentUSD:     spent,
		RemainingUSD: budget.LimitUSD - spent,
		Fraction:     fraction,
		WindowStart:  windowStart,
		Exceeded:     spent > budget.LimitUSD,
	}, nil
}

// ListBudgetStatuses computes the current-window state of all budgets
func (c *CostManager) ListBudgetStatuses(ctx context.Context, userID uuid.UUID) ([]*entities.BudgetStatus, error) {
	budgets, err := c.costRepo.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	statuses := make([]*entities.BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		windowStart := budget.WindowStart(now)
		spent, err := c.costRepo.SumCostSince(ctx, userID, windowStart)
		if err != nil {
			return nil, fmt.Errorf("failed to sum spend: %w", err)
		}
		fraction := 0.0
		if budget.LimitUSD > 0 {
			fraction = spent / budget.LimitUSD
		}
		statuses = append(statuses, &entities.BudgetStatus{
			Budget:       budget,
			SpentUSD:     spent,
			RemainingUSD: budget.LimitUSD - spent,
			Fraction:     fraction,
			WindowStart:  windowStart,
			Exceeded:     spent > budget.LimitUSD,
		})
	}
	return statuses, nil
}

// SpendTrend returns the per-day spend series for the last N days
func (c *CostManager) SpendTrend(ctx context.Context, userID uuid.UUID, days int) ([]entities.DailyUsage, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return c.costRepo.DailyTotals(ctx, userID, since)
}

// ModelBreakdown returns per-model spend aggregates for the window
func (c *CostManager) ModelBreakdown(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.ModelUsage, error) {
	return c.costRepo.ModelTotals(ctx, userID, since)
}

// EfficiencyReport grades a user's spend against the cheapest capable model
type EfficiencyReport struct {
	Grade            string  `json:"grade"`
	CostPer1KTokens  float64 `json:"cost_per_1k_tokens"`
	FloorPer1KTokens float64 `json:"floor_per_1k_tokens"`
	Ratio            float64 `json:"ratio"`
	TotalCalls       int64   `json:"total_calls"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
}

// Efficiency computes the A-F grade from the user's realized
// cost-per-1k-tokens against the catalog floor price
func (c *CostManager) Efficiency(ctx context.Context, userID uuid.UUID, since time.Time) (*EfficiencyReport, error) {
	rows, err := c.costRepo.ModelTotals(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate model usage: %w", err)
	}

	report := &EfficiencyReport{
		Grade:            "A",
		FloorPer1KTokens: pkgai.FloorCostPer1K(pkgai.CapabilityChat),
	}

	var totalTokens int64
	var totalCost float64
	for _, row := range rows {
		report.TotalCalls += row.Calls
		totalTokens += row.Tokens
		totalCost += row.CostUSD
	}
	report.TotalTokens = totalTokens
	report.TotalCostUSD = totalCost

	if totalTokens == 0 || report.FloorPer1KTokens == 0 {
		return report, nil
	}

	report.CostPer1KTokens = totalCost / float64(totalTokens) * 1000
	report.Ratio = report.CostPer1KTokens / report.FloorPer1KTokens
	report.Grade = gradeForRatio(report.Ratio)
	return report, nil
}

// gradeForRatio maps realized-cost/floor-cost to a letter grade
func gradeForRatio(ratio float64) string {
	switch {
	case ratio <= 1.5:
		return "A"
	case ratio <= 3:
		return "B"
	case ratio <= 6:
		return "C"
	case ratio <= 12:
		return "D"
	default:
		return "F"
	}
}

var codeFencePattern = regexp.MustCompile("(?s)```.*?```")

// ComplexityFactor scores a prompt from 0 (trivial) to 1 (complex) using
// length, code fences and question density. Simple prompts can usually be
// served by a cheaper model.
func ComplexityFactor(prompt string) float64 {
	if prompt == "" {
		return 0
	}

	score := 0.0

	// Length: saturates around 8k characters
	score += minFloat(float64(len(prompt))/8000, 1.0) * 0.4

	// Code fences indicate structured reasoning work
	fences := len(codeFencePattern.FindAllString(prompt, -1))
	score += minFloat(float64(fences)/2, 1.0) * 0.35

	// Question density: many distinct questions need a stronger model
	questions := strings.Count(prompt, "?")
	score += minFloat(float64(questions)/5, 1.0) * 0.25

	return score
}

// SuggestStrategy recommends a routing strategy for the prompt. Low
// complexity prompts route cost-optimized; high complexity routes for
// performance.
func SuggestStrategy(prompt string) RoutingStrategy {
	factor := ComplexityFactor(prompt)
	switch {
	case factor < 0.25:
		return StrategyCostOptimized
	case factor > 0.6:
		return StrategyPerformance
	default:
		return StrategyBalanced
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
