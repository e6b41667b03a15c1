package cost

// SetBudgetRequest creates or replaces a budget for a period
type SetBudgetRequest struct {
	Period   string  `json:"period" validate:"required,oneof=daily weekly monthly"`
	LimitUSD float64 `json:"limit_usd" validate:"required,gt=0"`
	Enforce  bool    `json:"enforce"`
}

// UsageQuery filters usage analytics
type UsageQuery struct {
	Days   int `query:"days" validate:"omitempty,min=1,max=365"`
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
