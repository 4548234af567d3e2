package enum

// ── Group A: State machines ──

const (
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"
)

// ── Group C: Borderline (checked at the administration boundary) ──

const (
	UserRoleManager    = "manager"
	UserRoleSupervisor = "supervisor"
	UserRoleCashier    = "cashier"
)

// ── Group B: Configurable labels ──

// CategoryAll is the pseudo-category that selects every product.
const CategoryAll = "All"

const (
	EventOrderSettled   = "order.settled"
	EventOrderRefunded  = "order.refunded"
	EventCatalogChanged = "catalog.changed"
)

const (
	ReportRangeAll   = "all"
	ReportRangeToday = "today"
	ReportRangeWeek  = "week"
	ReportRangeMonth = "month"
)
