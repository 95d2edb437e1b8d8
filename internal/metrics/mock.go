package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	operations          map[string]int
	durations           map[string][]float64
	notificationsSent   map[string]int
	notificationsFailed map[string]int
	slackNotifSent      int
	slackNotifFailed    int
	eventsPublished     map[string]int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		operations:          make(map[string]int),
		durations:           make(map[string][]float64),
		notificationsSent:   make(map[string]int),
		notificationsFailed: make(map[string]int),
		eventsPublished:     make(map[string]int),
	}
}

func (m *Mock) IncWorkflowOperation(operation, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[operation+"/"+result]++
}

func (m *Mock) ObserveOperationDuration(operation string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[operation] = append(m.durations[operation], seconds)
}

func (m *Mock) IncNotificationSent(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent[kind]++
}

func (m *Mock) IncNotificationFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed[kind]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) IncEventsPublished(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished[eventType]++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Operations returns how often an operation finished with the given result.
func (m *Mock) Operations(operation, result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operations[operation+"/"+result]
}

// NotificationsSent returns the number of sent notifications of a kind.
func (m *Mock) NotificationsSent(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent[kind]
}

// NotificationsFailed returns the number of failed notifications of a kind.
func (m *Mock) NotificationsFailed(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed[kind]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// EventsPublished returns the number of published events of a type.
func (m *Mock) EventsPublished(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublished[eventType]
}

var _ MetricsStore = (*MockStore)(nil)

// MockStore is an in-memory MetricsStore.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewMockStore() *MockStore {
	return &MockStore{counters: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockStore) Get(key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}
