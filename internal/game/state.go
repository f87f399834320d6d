package game

// RoundStatus represents the current state of a golf round
type RoundStatus string

const (
	StatusWaiting    RoundStatus = "WAITING"
	StatusInProgress RoundStatus = "IN_PROGRESS"
	StatusCompleted  RoundStatus = "COMPLETED"
	StatusCancelled  RoundStatus = "CANCELLED"
)
