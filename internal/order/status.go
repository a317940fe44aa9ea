package order

type Status string

const (
	StatusPending Status = "pending"
	// Transitions beyond pending are driven by downstream consumers, not by
	// the checkout path.
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)
