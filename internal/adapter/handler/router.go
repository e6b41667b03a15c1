package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	httpmw "github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// Router holds all handlers and cross-cutting middleware
type Router struct {
	cfg     *config.Config
	auth    *Auth
	meeting *Meeting
	ai      *AI
	cost    *Cost
	voice   *Voice
	webhook *Webhook

	authMW      echo.MiddlewareFunc
	rateLimitMW echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	authHandler *Auth,
	meetingHandler *Meeting,
	aiHandler *AI,
	costHandler *Cost,
	voiceHandler *Voice,
	webhookHandler *Webhook,
	authMW echo.MiddlewareFunc,
	rateLimitMW echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:         cfg,
		auth:        authHandler,
		meeting:     meetingHandler,
		ai:          aiHandler,
		cost:        costHandler,
		voice:       voiceHandler,
		webhook:     webhookHandler,
		authMW:      authMW,
		rateLimitMW: rateLimitMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	if rt.rateLimitMW != nil {
		v1.Use(rt.rateLimitMW)
	}

	rt.setupAuthRoutes(v1)
	rt.setupMeetingRoutes(v1)
	rt.setupAIRoutes(v1)
	rt.setupCostRoutes(v1)
	rt.setupVoiceRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.POST("/signup", rt.auth.SignUp)
	authGroup.POST("/signin", rt.auth.SignIn)
	authGroup.GET("/google", rt.auth.GoogleAuthURL)
	authGroup.POST("/google/callback", rt.auth.GoogleCallback)
	authGroup.POST("/refresh", rt.auth.Refresh)
	authGroup.POST("/logout", rt.auth.Logout)
	authGroup.POST("/password-reset", rt.auth.RequestPasswordReset)
	authGroup.POST("/password-reset/confirm", rt.auth.ConfirmPasswordReset)

	// Routes below need a valid access token
	authGroup.POST("/logout-all", rt.auth.LogoutAll, rt.authMW)
	authGroup.GET("/me", rt.auth.Me, rt.authMW)
	authGroup.PATCH("/me", rt.auth.UpdateProfile, rt.authMW)
	authGroup.DELETE("/me", rt.auth.DeactivateAccount, rt.authMW)
}

// setupMeetingRoutes configures meeting lifecycle routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings", rt.authMW)

	meetings.POST("", rt.meeting.Create)
	meetings.GET("", rt.meeting.List)
	meetings.GET("/:id", rt.meeting.Get)
	meetings.POST("/:id/start", rt.meeting.Start)
	meetings.POST("/:id/join", rt.meeting.Join)
	meetings.POST("/:id/complete", rt.meeting.Complete)
	meetings.POST("/:id/cancel", rt.meeting.Cancel)
	meetings.GET("/:id/transcript", rt.meeting.Transcript)
}

// setupAIRoutes configures model access and job routes
func (rt *Router) setupAIRoutes(g *echo.Group) {
	aiGroup := g.Group("/ai", rt.authMW)

	aiGroup.POST("/complete", rt.ai.Complete)
	aiGroup.POST("/speak", rt.ai.Speak)
	aiGroup.POST("/transcribe", rt.ai.Transcribe)
	aiGroup.GET("/models", rt.ai.ListModels)
	aiGroup.GET("/jobs/:id", rt.ai.GetJob)
	aiGroup.POST("/jobs/:id/cancel", rt.ai.CancelJob)
}

// setupCostRoutes configures budget and usage analytics routes
func (rt *Router) setupCostRoutes(g *echo.Group) {
	costs := g.Group("/costs", rt.authMW)

	costs.GET("/budgets", rt.cost.ListBudgets)
	costs.GET("/budgets/:period", rt.cost.GetBudget)
	costs.PUT("/budgets/:period", rt.cost.SetBudget)
	costs.DELETE("/budgets/:period", rt.cost.DeleteBudget)
	costs.GET("/usage", rt.cost.Usage)
	costs.GET("/usage/daily", rt.cost.DailyTrend)
	costs.GET("/usage/models", rt.cost.ModelBreakdown)
	costs.GET("/efficiency", rt.cost.Efficiency)
}

// setupVoiceRoutes configures voice profile routes. Listing all profiles,
// confirming and merging are admin operations.
func (rt *Router) setupVoiceRoutes(g *echo.Group) {
	voices := g.Group("/voices", rt.authMW)

	voices.GET("/me", rt.voice.Mine)
	voices.GET("", rt.voice.List, httpmw.RequireAdmin())
	voices.GET("/:id", rt.voice.Get, httpmw.RequireAdmin())
	voices.POST("/:id/confirm", rt.voice.Confirm, httpmw.RequireAdmin())
	voices.POST("/:id/merge", rt.voice.Merge, httpmw.RequireAdmin())
	voices.POST("/:id/samples", rt.voice.AddSample, httpmw.RequireAdmin())
	voices.GET("/:id/samples/url", rt.voice.SampleURL, httpmw.RequireAdmin())
}

// setupWebhookRoutes configures external webhook routes. These are signed
// by their senders, not by user tokens.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhooks := g.Group("/webhooks")

	webhooks.POST("/livekit", rt.webhook.HandleLiveKit)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
