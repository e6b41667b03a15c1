package entities

import (
	"time"

	"github.com/google/uuid"
)

// BudgetPeriod is the window a budget limit applies to
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
)

// IsValid checks if the budget period is known
func (p BudgetPeriod) IsValid() bool {
	switch p {
	case BudgetPeriodDaily, BudgetPeriodWeekly, BudgetPeriodMonthly:
		return true
	}
	return false
}

// DefaultAlertThresholds are the spend fractions at which alerts fire
var DefaultAlertThresholds = []float64{0.5, 0.8, 0.95}

// CostBudget is a per-user spend limit for one period. Alert thresholds
// latch per window: once a threshold fires it stays fired until the
// window rolls over.
type CostBudget struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_budget_user_period"`

	Period   BudgetPeriod `json:"period" gorm:"type:varchar(20);not null;uniqueIndex:idx_budget_user_period"`
	LimitUSD float64      `json:"limit_usd" gorm:"type:numeric(12,4);not null"`

	// Enforce rejects calls that would exceed the limit; advisory
	// budgets only alert
	Enforce bool `json:"enforce" gorm:"default:false;not null"`

	AlertThresholds []float64 `json:"alert_thresholds" gorm:"type:jsonb;serializer:json"`

	// AlertState maps a threshold (formatted "0.80") to the window start
	// it last fired in
	AlertState map[string]time.Time `json:"alert_state,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewCostBudget creates a budget with the default alert thresholds
func NewCostBudget(userID uuid.UUID, period BudgetPeriod, limitUSD float64) *CostBudget {
	now := time.Now()
	thresholds := make([]float64, len(DefaultAlertThresholds))
	copy(thresholds, DefaultAlertThresholds)

	return &CostBudget{
		ID:              uuid.New(),
		UserID:          userID,
		Period:          period,
		LimitUSD:        limitUSD,
		AlertThresholds: thresholds,
		AlertState:      make(map[string]time.Time),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// WindowStart returns the start of the budget window containing t.
// Weekly windows start Monday; all windows use UTC.
func (b *CostBudget) WindowStart(t time.Time) time.Time {
	t = t.UTC()
	switch b.Period {
	case BudgetPeriodWeekly:
		day := t.Truncate(24 * time.Hour)
		offset := (int(day.Weekday()) + 6) % 7 // Monday == 0
		return day.AddDate(0, 0, -offset)
	case BudgetPeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(24 * time.Hour)
	}
}

// TableName specifies the table name for GORM
func (CostBudget) TableName() string {
	return "cost_budgets"
}

// BudgetStatus is the computed state of a budget for the current window
type BudgetStatus struct {
	Budget       *CostBudget `json:"budget"`
	SpentUSD     float64     `json:"spent_usd"`
	RemainingUSD float64     `json:"remaining_usd"`
	Fraction     float64     `json:"fraction"`
	WindowStart  time.Time   `json:"window_start"`
	Exceeded     bool        `json:"exceeded"`
}
