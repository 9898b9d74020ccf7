package service

import (
	"context"
	"time"
)

// Dispatch timing. The scan pass pulls its whole working set from the store,
// so a restart between passes loses nothing.
const (
	// ScanSpec runs the due-set scan every 20 seconds.
	ScanSpec = "*/20 * * * * *"
	// HousekeepingSpec purges old finalized rows once a night.
	HousekeepingSpec = "0 0 4 * * *"
	// RetryInterval is how long an unacknowledged delivery waits before
	// being sent again.
	RetryInterval = 15 * time.Minute
	// DeliveryTimeout bounds a single notifier call.
	DeliveryTimeout = 10 * time.Second
	// FinalizedRetention is how long done and cancelled rows are kept.
	FinalizedRetention = 30 * 24 * time.Hour
)

// Dispatcher drives due reminders through delivery.
type Dispatcher interface {
	// Start registers the scan and housekeeping jobs with the scheduler.
	Start() error
	// Stop deregisters the jobs.
	Stop()
	// Scan runs one dispatch pass: finds the due-set, delivers each record
	// and persists the outcome. Returns when every delivery in the pass has
	// finished.
	Scan(ctx context.Context)
	// Housekeeping purges finalized rows older than the retention window.
	Housekeeping(ctx context.Context)
}
