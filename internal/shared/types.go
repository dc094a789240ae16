package shared

// Task types processed by the worker
const (
	TypeClearCart         = "cart:clear"
	TypeSendPasswordReset = "email:password_reset"
)

// Queue names, highest priority first
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
