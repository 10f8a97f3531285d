package changefeed

import (
	"context"
	"sync"
)

// Memory is an in-process Feed for single-instance deployments.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[chan struct{}]struct{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[chan struct{}]struct{})}
}

func (m *Memory) Publish(_ context.Context, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ch := range m.subs[topic] {
		signal(ch)
	}
	return nil
}

func (m *Memory) Subscribe(topic string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, ErrClosed
	}
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[chan struct{}]struct{})
	}
	m.subs[topic][ch] = struct{}{}

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[topic], ch)
		if len(m.subs[topic]) == 0 {
			delete(m.subs, topic)
		}
	}
	return ch, cancel, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs = make(map[string]map[chan struct{}]struct{})
	return nil
}
