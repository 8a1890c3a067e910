package enum

// ── Group A: State machines (enum type in DB) ──

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// ── Group B: Borderline (CHECK constrained in DB) ──

const (
	UserRoleAdmin = "ADMIN"
	UserRoleStaff = "STAFF"
)

// ── Group C: Labels (no DB constraint) ──

// OrderStatusLabel returns the Japanese label printed on order sheets.
func OrderStatusLabel(s string) string {
	switch s {
	case OrderStatusPending:
		return "未処理"
	case OrderStatusPreparing:
		return "準備中"
	case OrderStatusReady:
		return "準備完了"
	case OrderStatusCompleted:
		return "受け取り完了"
	case OrderStatusCancelled:
		return "キャンセル"
	}
	return s
}

// WS event types broadcast to staff dashboards.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)
