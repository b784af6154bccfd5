package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCommandsReceived(command string)
	IncCommandErrors(command string)
	IncStoreConflicts()
	IncSnapshotRefreshes()
	ObserveHandlingDuration(duration float64)
	IncSlackResponseSent()
	IncSlackResponseFailed()
	SetStartupTime(duration float64)
}
