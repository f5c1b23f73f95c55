package inventory

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert represents a reorder alert sent to purchasing
type StockAlert struct {
	MaterialID   string `json:"material_id"`
	MaterialCode string `json:"material_code"`
	Balance      string `json:"balance"`
	ReorderPoint string `json:"reorder_point"`
	AlertType    string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockAlertNotifier sends stock alerts over some channel
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// AlertPolicy decides whether reorder alerts are currently enabled
type AlertPolicy interface {
	AlertsEnabled(ctx context.Context) bool
}

// StockAlertHandler turns StockBelowReorderPoint events into alerts
type StockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
	policy   AlertPolicy
}

// NewStockAlertHandler creates a new handler for reorder point events
func NewStockAlertHandler(logger *zap.Logger) *StockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAlertHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockAlertHandler) WithNotifier(notifier StockAlertNotifier) *StockAlertHandler {
	h.notifier = notifier
	return h
}

// WithPolicy sets the policy consulted before each alert
func (h *StockAlertHandler) WithPolicy(policy AlertPolicy) *StockAlertHandler {
	h.policy = policy
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderPoint}
}

// Handle processes a StockBelowReorderPointEvent
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowReorderPointEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowReorderPoint, event.EventType())
	}

	if h.policy != nil && !h.policy.AlertsEnabled(ctx) {
		h.logger.Debug("reorder alerts disabled", zap.String("material_id", e.MaterialID.String()))
		return nil
	}

	alertType := "low_stock"
	if e.OutOfStock {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		MaterialID:   e.MaterialID.String(),
		MaterialCode: e.MaterialCode,
		Balance:      e.Balance.String(),
		ReorderPoint: e.ReorderPoint.String(),
		AlertType:    alertType,
	}

	h.logger.Warn("stock below reorder point",
		zap.String("material_id", alert.MaterialID),
		zap.String("code", alert.MaterialCode),
		zap.String("balance", alert.Balance),
		zap.String("reorder_point", alert.ReorderPoint),
		zap.String("alert_type", alertType),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// Notification failure doesn't fail event handling
			h.logger.Error("failed to send stock alert", zap.String("material_id", alert.MaterialID), zap.Error(err))
		}
	}
	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)

// LoggingStockAlertNotifier logs alerts. Useful for development.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("material_code", alert.MaterialCode),
		zap.String("balance", alert.Balance),
		zap.String("reorder_point", alert.ReorderPoint),
	)
	return nil
}
