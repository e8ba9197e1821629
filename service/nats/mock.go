package nats

import (
	"context"
	"sync"
)

// MockPublisher is a mock implementation of Publisher for testing.
type MockPublisher struct {
	mu                sync.RWMutex
	transactionEvents []*EnrichedTransactionEvent
	signatureEvents   []*EnrichedSignatureRequestEvent
	typedDataEvents   []*EnrichedTypedDataEvent
	publishError      error
	closed            bool
}

// NewMockPublisher creates a new mock publisher for testing.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishEnrichedTransaction records the event and returns any configured error.
func (m *MockPublisher) PublishEnrichedTransaction(ctx context.Context, event *EnrichedTransactionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishError != nil {
		return m.publishError
	}
	m.transactionEvents = append(m.transactionEvents, event)
	return nil
}

// PublishEnrichedSignatureRequest records the event and returns any configured error.
func (m *MockPublisher) PublishEnrichedSignatureRequest(ctx context.Context, event *EnrichedSignatureRequestEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishError != nil {
		return m.publishError
	}
	m.signatureEvents = append(m.signatureEvents, event)
	return nil
}

// PublishEnrichedTypedData records the event and returns any configured error.
func (m *MockPublisher) PublishEnrichedTypedData(ctx context.Context, event *EnrichedTypedDataEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishError != nil {
		return m.publishError
	}
	m.typedDataEvents = append(m.typedDataEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// TransactionEvents returns all published enriched transaction events.
func (m *MockPublisher) TransactionEvents() []*EnrichedTransactionEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*EnrichedTransactionEvent, len(m.transactionEvents))
	copy(events, m.transactionEvents)
	return events
}

// SignatureEvents returns all published enriched signature-request events.
func (m *MockPublisher) SignatureEvents() []*EnrichedSignatureRequestEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*EnrichedSignatureRequestEvent, len(m.signatureEvents))
	copy(events, m.signatureEvents)
	return events
}

// TypedDataEvents returns all published enriched typed-data events.
func (m *MockPublisher) TypedDataEvents() []*EnrichedTypedDataEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*EnrichedTypedDataEvent, len(m.typedDataEvents))
	copy(events, m.typedDataEvents)
	return events
}

// SetPublishError configures the mock to return an error on publishes.
func (m *MockPublisher) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishError = err
}

// IsClosed returns whether the publisher has been closed.
func (m *MockPublisher) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Reset clears all recorded events and errors.
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactionEvents = nil
	m.signatureEvents = nil
	m.typedDataEvents = nil
	m.publishError = nil
	m.closed = false
}
