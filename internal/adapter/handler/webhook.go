package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
	lkauth "github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/meeting"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// Webhook handles LiveKit webhook events
type Webhook struct {
	meetingService *meeting.Service
	keyProvider    lkauth.KeyProvider
	logger         *zap.Logger
}

// NewWebhook creates a new webhook handler. LiveKit Cloud signs webhooks
// with a dedicated key when one is configured in the dashboard; self-hosted
// servers sign with the API secret.
func NewWebhook(meetingService *meeting.Service, cfg *config.LiveKitConfig, logger *zap.Logger) *Webhook {
	secret := cfg.APISecret
	if cfg.WebhookSecret != "" {
		secret = cfg.WebhookSecret
	}
	return &Webhook{
		meetingService: meetingService,
		keyProvider:    lkauth.NewSimpleKeyProvider(cfg.APIKey, secret),
		logger:         logger,
	}
}

// HandleLiveKit processes POST /v1/webhooks/livekit. Events are signed by
// the LiveKit server; unsigned requests are rejected.
func (h *Webhook) HandleLiveKit(c echo.Context) error {
	event, err := webhook.ReceiveWebhookEvent(c.Request(), h.keyProvider)
	if err != nil {
		h.logger.Warn("❌ Webhook signature validation failed", zap.Error(err))
		return HandleError(h.logger, c, errors.ErrWebhookInvalidSource(err))
	}

	h.logger.Info("📥 LiveKit webhook received", zap.String("event", event.Event))

	ctx := c.Request().Context()
	switch event.Event {
	case webhook.EventEgressEnded:
		if err := h.handleEgressEnded(c, event); err != nil {
			return HandleError(h.logger, c, err)
		}
	case webhook.EventRoomFinished:
		if event.Room == nil {
			h.logger.Warn("room missing in room_finished event")
			break
		}
		if err := h.meetingService.HandleRoomFinished(ctx, event.Room.Name); err != nil {
			// Room cleanup failing must not make LiveKit retry forever
			h.logger.Error("failed to handle room_finished", zap.String("room", event.Room.Name), zap.Error(err))
		}
	default:
		h.logger.Debug("unhandled webhook event", zap.String("event", event.Event))
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "ok"})
}

// handleEgressEnded extracts the recording location and hands it to the
// meeting service, which enqueues AI processing
func (h *Webhook) handleEgressEnded(c echo.Context, event *livekit.WebhookEvent) error {
	info := event.EgressInfo
	if info == nil {
		h.logger.Warn("egress info missing in egress_ended event")
		return nil
	}

	fileURL := recordingLocation(info)
	if fileURL == "" {
		h.logger.Warn("❌ No recording file in egress result",
			zap.String("egress_id", info.EgressId),
			zap.String("status", info.Status.String()))
		return nil
	}

	h.logger.Info("🎬 Egress ended",
		zap.String("egress_id", info.EgressId),
		zap.String("room", info.RoomName),
		zap.String("file_url", fileURL))

	return h.meetingService.HandleEgressEnded(c.Request().Context(), info.EgressId, fileURL)
}

// recordingLocation picks the recording URL out of an egress result,
// preferring file results over the deprecated single-file field
func recordingLocation(info *livekit.EgressInfo) string {
	for _, result := range info.GetFileResults() {
		if loc := strings.TrimSpace(result.GetLocation()); loc != "" {
			return loc
		}
	}
	if file := info.GetFile(); file != nil {
		return strings.TrimSpace(file.GetLocation())
	}
	return ""
}
