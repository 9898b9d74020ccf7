package constant

// ReminderStatus defines the lifecycle states of a reminder.
type ReminderStatus int

const (
	// StatusPending means the reminder is scheduled and waiting for its due time.
	StatusPending ReminderStatus = iota // 0
	// StatusAwaitingTime means a date was parsed but the time of day is still unknown.
	StatusAwaitingTime // 1
	// StatusNotified means the reminder was delivered and is waiting for acknowledgment.
	StatusNotified // 2
	// StatusSnoozed means the user deferred the reminder to a later due time.
	StatusSnoozed // 3
	// StatusDone means the user acknowledged the reminder. Terminal.
	StatusDone // 4
	// StatusCancelled means the reminder was deleted before completion. Terminal.
	StatusCancelled // 5
)

func (s ReminderStatus) Int() int {
	return int(s)
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s ReminderStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

func (s ReminderStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAwaitingTime:
		return "awaiting_time"
	case StatusNotified:
		return "notified"
	case StatusSnoozed:
		return "snoozed"
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
