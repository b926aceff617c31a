package journal

import "sync"

// Memory keeps records in slices. Used by tests and short replay runs
// that only need the end-of-run summary.
type Memory struct {
	mu     sync.Mutex
	Trades []TradeRecord
	Equity []EquitySnapshot
	Guards []GuardEvent
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Trades = append(m.Trades, t)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Equity = append(m.Equity, e)
	return nil
}

func (m *Memory) RecordGuard(g GuardEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Guards = append(m.Guards, g)
	return nil
}

func (m *Memory) Close() error { return nil }
