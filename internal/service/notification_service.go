package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/config"
	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
)

const webhookTimeout = 5 * time.Second

// UrgentRecordPayload is posted to the webhook for records flagged urgent.
type UrgentRecordPayload struct {
	Table    domain.Kind `json:"table"`
	Op       string      `json:"op"`
	RecordID int64       `json:"record_id"`
	Username string      `json:"username"`
	Flag     domain.Flag `json:"flag"`
	At       time.Time   `json:"at"`
}

// NotificationService logs change-feed traffic and forwards urgent records
// to an optional webhook. Failures are logged only.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	inflight   sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRecordInserted, n.handleRecordChanged)
	n.dispatcher.Subscribe(events.EventRecordUpdated, n.handleRecordChanged)
}

// Wait blocks until pending webhook deliveries finish.
func (n *NotificationService) Wait() {
	n.inflight.Wait()
}

func (n *NotificationService) handleRecordChanged(_ context.Context, event events.Event) error {
	summary, err := event.Summary()
	if err != nil {
		n.logger.Warn("undecodable change row", zap.String("table", string(event.Table)), zap.Error(err))
		return nil
	}
	n.logger.Info("record changed",
		zap.String("op", string(event.Type)),
		zap.String("table", string(event.Table)),
		zap.Int64("record_id", event.RecordID),
		zap.String("username", summary.Username),
		zap.String("flag", string(summary.Flag)))

	if summary.Flag != domain.FlagUrgent || strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	payload := UrgentRecordPayload{
		Table:    event.Table,
		Op:       string(event.Type),
		RecordID: event.RecordID,
		Username: summary.Username,
		Flag:     summary.Flag,
		At:       event.Timestamp,
	}
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		n.sendWebhook(payload)
	}()
	return nil
}

func (n *NotificationService) sendWebhook(payload UrgentRecordPayload) {
	status, body, errs := fiber.Post(n.cfg.WebhookURL).
		JSON(payload).
		Timeout(webhookTimeout).
		Bytes()
	if len(errs) > 0 {
		n.logger.Warn("urgent webhook failed", zap.Errors("errors", errs))
		return
	}
	if status >= fiber.StatusBadRequest {
		n.logger.Warn("urgent webhook rejected", zap.Int("status", status), zap.ByteString("body", body))
		return
	}
	n.logger.Debug("urgent webhook delivered", zap.Int64("record_id", payload.RecordID))
}
