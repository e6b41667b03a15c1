package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/common"
	costdto "github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/cost"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	aiusecase "github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/ai"
)

// Cost handles budget and usage analytics endpoints
type Cost struct {
	manager  *aiusecase.CostManager
	costRepo repositories.CostRepository
	logger   *zap.Logger
}

// NewCost creates a new cost handler
func NewCost(manager *aiusecase.CostManager, costRepo repositories.CostRepository, logger *zap.Logger) *Cost {
	return &Cost{manager: manager, costRepo: costRepo, logger: logger}
}

// SetBudget handles PUT /v1/costs/budgets/:period
func (h *Cost) SetBudget(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req costdto.SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if period := c.Param("period"); period != "" {
		req.Period = period
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	budget, err := h.manager.SetBudget(c.Request().Context(), userID, entities.BudgetPeriod(req.Period), req.LimitUSD, req.Enforce)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, budget)
}

// DeleteBudget handles DELETE /v1/costs/budgets/:period
func (h *Cost) DeleteBudget(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	period := entities.BudgetPeriod(c.Param("period"))
	if !period.IsValid() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid budget period"))
	}

	if err := h.manager.DeleteBudget(c.Request().Context(), userID, period); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "deleted"})
}

// GetBudget handles GET /v1/costs/budgets/:period
func (h *Cost) GetBudget(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	period := entities.BudgetPeriod(c.Param("period"))
	if !period.IsValid() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid budget period"))
	}

	status, err := h.manager.GetBudgetStatus(c.Request().Context(), userID, period)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, status)
}

// ListBudgets handles GET /v1/costs/budgets
func (h *Cost) ListBudgets(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	statuses, err := h.manager.ListBudgetStatuses(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, statuses)
}

// Usage handles GET /v1/costs/usage
func (h *Cost) Usage(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req costdto.UsageQuery
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}

	filter := repositories.APICallFilter{
		UserID: &userID,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Days > 0 {
		since := time.Now().AddDate(0, 0, -req.Days)
		filter.Since = &since
	}

	calls, total, err := h.costRepo.ListAPICalls(c.Request().Context(), filter)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, common.ListResponse{
		Items: calls,
		Pagination: common.Pagination{
			Limit:  req.Limit,
			Offset: req.Offset,
			Total:  total,
		},
	})
}

// DailyTrend handles GET /v1/costs/usage/daily
func (h *Cost) DailyTrend(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req costdto.UsageQuery
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	trend, err := h.manager.SpendTrend(c.Request().Context(), userID, req.Days)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, trend)
}

// ModelBreakdown handles GET /v1/costs/usage/models
func (h *Cost) ModelBreakdown(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	since := sinceFromQuery(c, 30)
	rows, err := h.manager.ModelBreakdown(c.Request().Context(), userID, since)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, rows)
}

// Efficiency handles GET /v1/costs/efficiency
func (h *Cost) Efficiency(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	since := sinceFromQuery(c, 30)
	report, err := h.manager.Efficiency(c.Request().Context(), userID, since)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// sinceFromQuery reads ?days= and converts it to a window start
func sinceFromQuery(c echo.Context, defaultDays int) time.Time {
	var req costdto.UsageQuery
	days := defaultDays
	if err := c.Bind(&req); err == nil && req.Days > 0 && req.Days <= 365 {
		days = req.Days
	}
	return time.Now().AddDate(0, 0, -days)
}
