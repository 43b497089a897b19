package usecase

import "app/internal/domain/model"

// 前進遷移の表。Pending → Confirmed → Preparing → Completed。
// Cancelled はこの表を通らず CancelOrder 専用。
var forwardTransitions = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:   model.OrderStatusConfirmed,
	model.OrderStatusPreparing: model.OrderStatusCompleted,
	model.OrderStatusConfirmed: model.OrderStatusPreparing,
}

func canTransition(from, to model.OrderStatus) bool {
	next, ok := forwardTransitions[from]
	return ok && next == to
}

// Completed / Cancelled からはもう動けない
func isTerminalStatus(s model.OrderStatus) bool {
	return s == model.OrderStatusCompleted || s == model.OrderStatusCancelled
}

func parseOrderStatus(s string) (model.OrderStatus, bool) {
	switch model.OrderStatus(s) {
	case model.OrderStatusPending,
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusCompleted,
		model.OrderStatusCancelled:
		return model.OrderStatus(s), true
	default:
		return "", false
	}
}
