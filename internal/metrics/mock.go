package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	commandsReceived    map[string]int
	commandErrors       map[string]int
	storeConflicts      int
	snapshotRefreshes   int
	handlingDurations   []float64
	slackResponseSent   int
	slackResponseFailed int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		commandsReceived:  make(map[string]int),
		commandErrors:     make(map[string]int),
		handlingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncCommandsReceived(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandsReceived[command]++
}

func (m *Mock) IncCommandErrors(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandErrors[command]++
}

func (m *Mock) IncStoreConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeConflicts++
}

func (m *Mock) IncSnapshotRefreshes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotRefreshes++
}

func (m *Mock) ObserveHandlingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlingDurations = append(m.handlingDurations, duration)
}

func (m *Mock) IncSlackResponseSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackResponseSent++
}

func (m *Mock) IncSlackResponseFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackResponseFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// CommandsReceived returns the number of times IncCommandsReceived was called
// for the command.
func (m *Mock) CommandsReceived(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commandsReceived[command]
}

// CommandErrors returns the number of times IncCommandErrors was called for
// the command.
func (m *Mock) CommandErrors(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commandErrors[command]
}

// SnapshotRefreshes returns the number of times IncSnapshotRefreshes was called.
func (m *Mock) SnapshotRefreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotRefreshes
}

// SlackResponseSent returns the number of times IncSlackResponseSent was called.
func (m *Mock) SlackResponseSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackResponseSent
}

// SlackResponseFailed returns the number of times IncSlackResponseFailed was called.
func (m *Mock) SlackResponseFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackResponseFailed
}
