// Package workflow implements the Workflow Manager (spec §4.C10): an
// in-process, thread-safe state machine tracking each order from Pending
// through to a terminal state.
package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is one of the six order lifecycle states.
type State string

const (
	StatePending    State = "pending"
	StateValidated  State = "validated"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// IsTerminal reports whether no further transition is ever allowed from
// this state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// transitions is the table from spec §4.C10.
var transitions = map[State]map[State]bool{
	StatePending:    {StateValidated: true, StateFailed: true, StateCancelled: true},
	StateValidated:  {StateProcessing: true, StateCancelled: true},
	StateProcessing: {StateCompleted: true, StateFailed: true},
}

func canTransition(from, to State) bool {
	return transitions[from][to]
}

// InvalidTransitionError is returned when a requested transition is not in
// the table; the workflow is left unmodified.
type InvalidTransitionError struct {
	From, To State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// NotFoundError is returned when an order id has no workflow entry.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow not found: %s", e.OrderID)
}

// Entry is one order's lifecycle record.
type Entry struct {
	OrderID      string
	TenantID     string
	State        State
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ErrorMessage string
	InventoryID  *int
}

// Manager is the thread-safe order_id -> Entry store.
type Manager struct {
	mu     sync.RWMutex
	orders map[string]Entry
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{orders: make(map[string]Entry)}
}

// Create opens a new workflow in StatePending for tenantID and returns its
// generated order id.
func (m *Manager) Create(tenantID string) string {
	orderID := uuid.NewString()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[orderID] = Entry{
		OrderID:   orderID,
		TenantID:  tenantID,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return orderID
}

// Get returns a copy of the workflow entry for orderID.
func (m *Manager) Get(orderID string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.orders[orderID]
	if !ok {
		return Entry{}, &NotFoundError{OrderID: orderID}
	}
	return entry, nil
}

// Transition moves orderID's workflow to newState if the table allows it.
// An invalid transition leaves the entry unmodified.
func (m *Manager) Transition(orderID string, newState State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.orders[orderID]
	if !ok {
		return &NotFoundError{OrderID: orderID}
	}
	if !canTransition(entry.State, newState) {
		return &InvalidTransitionError{From: entry.State, To: newState}
	}

	entry.State = newState
	entry.UpdatedAt = time.Now()
	m.orders[orderID] = entry
	return nil
}

// MarkFailed transitions orderID to Failed and stamps the error message.
func (m *Manager) MarkFailed(orderID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.orders[orderID]
	if !ok {
		return &NotFoundError{OrderID: orderID}
	}
	if !canTransition(entry.State, StateFailed) {
		return &InvalidTransitionError{From: entry.State, To: StateFailed}
	}

	entry.State = StateFailed
	entry.ErrorMessage = message
	entry.UpdatedAt = time.Now()
	m.orders[orderID] = entry
	return nil
}

// MarkCompleted transitions orderID to Completed and stamps the inventory
// id the order materialized.
func (m *Manager) MarkCompleted(orderID string, inventoryID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.orders[orderID]
	if !ok {
		return &NotFoundError{OrderID: orderID}
	}
	if !canTransition(entry.State, StateCompleted) {
		return &InvalidTransitionError{From: entry.State, To: StateCompleted}
	}

	entry.State = StateCompleted
	entry.InventoryID = &inventoryID
	entry.UpdatedAt = time.Now()
	m.orders[orderID] = entry
	return nil
}

// ListByTenant returns every workflow entry belonging to tenantID.
func (m *Manager) ListByTenant(tenantID string) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for _, e := range m.orders {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out
}

// ListByState returns every workflow entry currently in state.
func (m *Manager) ListByState(state State) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for _, e := range m.orders {
		if e.State == state {
			out = append(out, e)
		}
	}
	return out
}
