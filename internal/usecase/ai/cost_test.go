package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
)

// fakeCostRepo is an in-memory CostRepository for manager tests
type fakeCostRepo struct {
	calls   []*entities.APICall
	budgets map[string]*entities.CostBudget
}

func newFakeCostRepo() *fakeCostRepo {
	return &fakeCostRepo{budgets: make(map[string]*entities.CostBudget)}
}

func budgetKey(userID uuid.UUID, period entities.BudgetPeriod) string {
	return userID.String() + "/" + string(period)
}

func (f *fakeCostRepo) CreateAPICall(ctx context.Context, call *entities.APICall) error {
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeCostRepo) ListAPICalls(ctx context.Context, filter repositories.APICallFilter) ([]*entities.APICall, int64, error) {
	return f.calls, int64(len(f.calls)), nil
}

func (f *fakeCostRepo) SumCostSince(ctx context.Context, userID uuid.UUID, since time.Time) (float64, error) {
	var sum float64
	for _, c := range f.calls {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			sum += c.CostUSD
		}
	}
	return sum, nil
}

func (f *fakeCostRepo) DailyTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.DailyUsage, error) {
	byDay := make(map[time.Time]*entities.DailyUsage)
	for _, c := range f.calls {
		if c.UserID != userID || c.CreatedAt.Before(since) {
			continue
		}
		day := c.CreatedAt.UTC().Truncate(24 * time.Hour)
		agg, ok := byDay[day]
		if !ok {
			agg = &entities.DailyUsage{Day: day}
			byDay[day] = agg
		}
		agg.Calls++
		agg.Tokens += int64(c.TotalTokens())
		agg.CostUSD += c.CostUSD
	}
	var out []entities.DailyUsage
	for _, agg := range byDay {
		out = append(out, *agg)
	}
	return out, nil
}

func (f *fakeCostRepo) ModelTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]entities.ModelUsage, error) {
	byModel := make(map[string]*entities.ModelUsage)
	for _, c := range f.calls {
		if c.UserID != userID || c.CreatedAt.Before(since) {
			continue
		}
		key := c.Provider + "/" + c.Model
		agg, ok := byModel[key]
		if !ok {
			agg = &entities.ModelUsage{Provider: c.Provider, Model: c.Model}
			byModel[key] = agg
		}
		agg.Calls++
		agg.Tokens += int64(c.TotalTokens())
		agg.CostUSD += c.CostUSD
	}
	var out []entities.ModelUsage
	for _, agg := range byModel {
		out = append(out, *agg)
	}
	return out, nil
}

func (f *fakeCostRepo) UpsertBudget(ctx context.Context, budget *entities.CostBudget) error {
	f.budgets[budgetKey(budget.UserID, budget.Period)] = budget
	return nil
}

func (f *fakeCostRepo) GetBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) (*entities.CostBudget, error) {
	b, ok := f.budgets[budgetKey(userID, period)]
	if !ok {
		return nil, entities.ErrBudgetNotFound
	}
	return b, nil
}

func (f *fakeCostRepo) ListBudgets(ctx context.Context, userID uuid.UUID) ([]*entities.CostBudget, error) {
	var out []*entities.CostBudget
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeCostRepo) DeleteBudget(ctx context.Context, userID uuid.UUID, period entities.BudgetPeriod) error {
	delete(f.budgets, budgetKey(userID, period))
	return nil
}

func TestCheckBudgetBlocksEnforcedBudget(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 0, true, nil)
	userID := uuid.New()

	budget := entities.NewCostBudget(userID, entities.BudgetPeriodDaily, 1.0)
	budget.Enforce = true
	repo.budgets[budgetKey(userID, budget.Period)] = budget

	repo.calls = append(repo.calls, &entities.APICall{
		UserID:    userID,
		CostUSD:   0.90,
		Success:   true,
		CreatedAt: time.Now(),
	})

	if err := mgr.CheckBudget(context.Background(), userID, 0.05); err != nil {
		t.Errorf("spend within budget should pass: %v", err)
	}
	if err := mgr.CheckBudget(context.Background(), userID, 0.20); err == nil {
		t.Error("spend exceeding the enforced budget should be rejected")
	}
}

func TestCheckBudgetIgnoresAdvisoryBudget(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 0, true, nil)
	userID := uuid.New()

	budget := entities.NewCostBudget(userID, entities.BudgetPeriodDaily, 0.10)
	repo.budgets[budgetKey(userID, budget.Period)] = budget

	if err := mgr.CheckBudget(context.Background(), userID, 5.0); err != nil {
		t.Errorf("advisory budget should never block: %v", err)
	}
}

func TestCheckBudgetDisabledEnforcement(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 1.0, false, nil)

	if err := mgr.CheckBudget(context.Background(), uuid.New(), 100.0); err != nil {
		t.Errorf("disabled enforcement should pass everything: %v", err)
	}
}

func TestCheckBudgetAppliesDefaultDailyLimit(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 2.0, true, nil)
	userID := uuid.New()

	repo.calls = append(repo.calls, &entities.APICall{
		UserID:    userID,
		CostUSD:   1.95,
		Success:   true,
		CreatedAt: time.Now(),
	})

	if err := mgr.CheckBudget(context.Background(), userID, 0.50); err == nil {
		t.Error("default daily budget should apply to users without explicit budgets")
	}
}

func TestRecordCallLatchesAlerts(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 0, true, nil)
	userID := uuid.New()

	budget := entities.NewCostBudget(userID, entities.BudgetPeriodDaily, 1.0)
	repo.budgets[budgetKey(userID, budget.Period)] = budget

	err := mgr.RecordCall(context.Background(), &entities.APICall{
		UserID:  userID,
		CostUSD: 0.85,
		Success: true,
	})
	if err != nil {
		t.Fatalf("RecordCall returned error: %v", err)
	}

	stored := repo.budgets[budgetKey(userID, budget.Period)]
	if _, ok := stored.AlertState["0.50"]; !ok {
		t.Error("50%% threshold should have fired")
	}
	if _, ok := stored.AlertState["0.80"]; !ok {
		t.Error("80%% threshold should have fired")
	}
	if _, ok := stored.AlertState["0.95"]; ok {
		t.Error("95%% threshold should not have fired at 85%% spend")
	}

	// Crossing 95% fires the last one; the earlier latches stay put
	firstFired := stored.AlertState["0.80"]
	err = mgr.RecordCall(context.Background(), &entities.APICall{
		UserID:  userID,
		CostUSD: 0.12,
		Success: true,
	})
	if err != nil {
		t.Fatalf("RecordCall returned error: %v", err)
	}

	stored = repo.budgets[budgetKey(userID, budget.Period)]
	if _, ok := stored.AlertState["0.95"]; !ok {
		t.Error("95%% threshold should fire once spend crosses it")
	}
	if !stored.AlertState["0.80"].Equal(firstFired) {
		t.Error("latched threshold should not re-fire within the window")
	}
}

func TestGetBudgetStatus(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 0, true, nil)
	userID := uuid.New()

	budget := entities.NewCostBudget(userID, entities.BudgetPeriodDaily, 2.0)
	repo.budgets[budgetKey(userID, budget.Period)] = budget
	repo.calls = append(repo.calls, &entities.APICall{
		UserID:    userID,
		CostUSD:   0.50,
		Success:   true,
		CreatedAt: time.Now(),
	})

	status, err := mgr.GetBudgetStatus(context.Background(), userID, entities.BudgetPeriodDaily)
	if err != nil {
		t.Fatalf("GetBudgetStatus returned error: %v", err)
	}
	if status.SpentUSD != 0.50 {
		t.Errorf("expected spent 0.50, got %f", status.SpentUSD)
	}
	if status.RemainingUSD != 1.50 {
		t.Errorf("expected remaining 1.50, got %f", status.RemainingUSD)
	}
	if status.Fraction != 0.25 {
		t.Errorf("expected fraction 0.25, got %f", status.Fraction)
	}
	if status.Exceeded {
		t.Error("budget should not be exceeded")
	}
}

func TestSetBudgetValidation(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 0, true, nil)

	if _, err := mgr.SetBudget(context.Background(), uuid.New(), "hourly", 1.0, true); err == nil {
		t.Error("unknown period should be rejected")
	}
	if _, err := mgr.SetBudget(context.Background(), uuid.New(), entities.BudgetPeriodDaily, 0, true); err == nil {
		t.Error("non-positive limit should be rejected")
	}
	if _, err := mgr.SetBudget(context.Background(), uuid.New(), entities.BudgetPeriodWeekly, 10.0, true); err != nil {
		t.Errorf("valid budget should save: %v", err)
	}
}

func TestEfficiencyGrades(t *testing.T) {
	cases := []struct {
		ratio float64
		grade string
	}{
		{1.0, "A"},
		{1.5, "A"},
		{2.9, "B"},
		{5.0, "C"},
		{10.0, "D"},
		{20.0, "F"},
	}
	for _, tc := range cases {
		if got := gradeForRatio(tc.ratio); got != tc.grade {
			t.Errorf("ratio %.1f: expected grade %s, got %s", tc.ratio, tc.grade, got)
		}
	}
}

func TestEfficiencyReportFromLedger(t *testing.T) {
	repo := newFakeCostRepo()
	mgr := NewCostManager(repo, 0, true, nil)
	userID := uuid.New()

	// 10k tokens at $1 → $100/1M tokens, far above the floor
	repo.calls = append(repo.calls, &entities.APICall{
		UserID:       userID,
		Provider:     "openai",
		Model:        "gpt-4-turbo",
		InputTokens:  8_000,
		OutputTokens: 2_000,
		CostUSD:      1.0,
		Success:      true,
		CreatedAt:    time.Now(),
	})

	report, err := mgr.Efficiency(context.Background(), userID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Efficiency returned error: %v", err)
	}
	if report.TotalTokens != 10_000 {
		t.Errorf("expected 10000 tokens, got %d", report.TotalTokens)
	}
	if report.Grade != "F" {
		t.Errorf("expected grade F for expensive usage, got %s", report.Grade)
	}

	empty, err := mgr.Efficiency(context.Background(), uuid.New(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Efficiency returned error: %v", err)
	}
	if empty.Grade != "A" {
		t.Errorf("no usage should grade A, got %s", empty.Grade)
	}
}

func TestComplexityFactor(t *testing.T) {
	if got := ComplexityFactor(""); got != 0 {
		t.Errorf("empty prompt should score 0, got %f", got)
	}

	simple := ComplexityFactor("What time is it?")
	complex := ComplexityFactor(fmt.Sprintf(
		"Review this code:\n```go\n%s\n```\nWhy does it leak? How would you fix it? What about the error path? Is the lock needed? Can this deadlock?",
		"func leak() { ch := make(chan int); go func() { ch <- 1 }() }",
	))
	if simple >= complex {
		t.Errorf("code-heavy multi-question prompt should score higher: simple=%f complex=%f", simple, complex)
	}
}

func TestSuggestStrategy(t *testing.T) {
	if got := SuggestStrategy("hi"); got != StrategyCostOptimized {
		t.Errorf("trivial prompt should route cost-optimized, got %s", got)
	}

	var heavy string
	for i := 0; i < 50; i++ {
		heavy += "Explain the tradeoffs? Why? How? What breaks? When does it fail? "
	}
	heavy += "```go\ncode\n```\n```go\nmore\n```"
	if got := SuggestStrategy(heavy); got != StrategyPerformance {
		t.Errorf("complex prompt should route for performance, got %s", got)
	}
}
