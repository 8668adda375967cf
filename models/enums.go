package models

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type DependencyType string

const (
	// DependencyTypeFinish: the predecessor must complete before the
	// dependent step starts.
	DependencyTypeFinish DependencyType = "finish"
	// DependencyTypeStart: the predecessor must have started before the
	// dependent step starts.
	DependencyTypeStart DependencyType = "start"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)
