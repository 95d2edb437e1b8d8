package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/slot-matcher/internal/slot"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	NotifyFunc func(ctx context.Context, n Notification) error

	// Call records, failed sends included.
	NotifyCalls []Notification
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyCalls = nil
}

func (m *Mock) Notify(ctx context.Context, n Notification) error {
	m.mu.Lock()
	m.NotifyCalls = append(m.NotifyCalls, n)
	fn := m.NotifyFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, n)
	}
	return nil
}

// Sent returns the recorded notifications of one kind, in call order.
func (m *Mock) Sent(kind Kind) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Notification
	for _, n := range m.NotifyCalls {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Kinds returns the kinds of all recorded notifications, in call order.
func (m *Mock) Kinds() []Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Kind, len(m.NotifyCalls))
	for i, n := range m.NotifyCalls {
		out[i] = n.Kind
	}
	return out
}

var _ Alerter = (*MockAlerter)(nil)

// MockAlerter records alerts and slot boards. It is safe for concurrent use.
type MockAlerter struct {
	mu sync.Mutex

	SendAlertFunc               func(ctx context.Context, alert Alert) error
	FormatSlotBoardResponseFunc func(date string, slots []slot.Slot) (any, error)

	SendAlertCalls     []Alert
	SendSlotBoardCalls []SlotBoardCall
}

type SlotBoardCall struct {
	Date  string
	Slots []slot.Slot
}

func NewMockAlerter() *MockAlerter {
	return &MockAlerter{}
}

func (m *MockAlerter) SendAlert(ctx context.Context, alert Alert) error {
	m.mu.Lock()
	m.SendAlertCalls = append(m.SendAlertCalls, alert)
	fn := m.SendAlertFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, alert)
	}
	return nil
}

func (m *MockAlerter) SendSlotBoard(ctx context.Context, date string, slots []slot.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSlotBoardCalls = append(m.SendSlotBoardCalls, SlotBoardCall{Date: date, Slots: slots})
	return nil
}

func (m *MockAlerter) FormatSlotBoardResponse(date string, slots []slot.Slot) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatSlotBoardResponseFunc != nil {
		return m.FormatSlotBoardResponseFunc(date, slots)
	}
	return "formatted_slot_board", nil
}
