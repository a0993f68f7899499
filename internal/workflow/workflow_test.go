package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStartsPending(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")

	entry, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatePending, entry.State)
	assert.Equal(t, "t1", entry.TenantID)
	assert.NotEmpty(t, entry.OrderID)
}

func TestGetUnknownOrderReturnsNotFound(t *testing.T) {
	m := NewManager()
	_, err := m.Get("does-not-exist")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestValidTransitions(t *testing.T) {
	cases := []struct {
		from, to State
	}{
		{StatePending, StateValidated},
		{StatePending, StateFailed},
		{StatePending, StateCancelled},
		{StateValidated, StateProcessing},
		{StateValidated, StateCancelled},
		{StateProcessing, StateCompleted},
		{StateProcessing, StateFailed},
	}

	for _, c := range cases {
		m := NewManager()
		id := m.Create("t1")

		if c.from != StatePending {
			require.NoError(t, m.Transition(id, c.from))
		}
		err := m.Transition(id, c.to)
		assert.NoError(t, err, "%s -> %s should be valid", c.from, c.to)

		entry, _ := m.Get(id)
		assert.Equal(t, c.to, entry.State)
	}
}

// TestValidatedCannotSkipToFailed asserts the asymmetry that Validated can
// only reach Processing or Cancelled, never Failed directly.
func TestValidatedCannotSkipToFailed(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")
	require.NoError(t, m.Transition(id, StateValidated))

	err := m.Transition(id, StateFailed)
	require.Error(t, err)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, StateValidated, ite.From)
	assert.Equal(t, StateFailed, ite.To)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	for _, terminal := range []State{StateCompleted, StateFailed, StateCancelled} {
		m := NewManager()
		id := m.Create("t1")

		switch terminal {
		case StateCompleted:
			require.NoError(t, m.Transition(id, StateValidated))
			require.NoError(t, m.Transition(id, StateProcessing))
			require.NoError(t, m.Transition(id, StateCompleted))
		case StateFailed:
			require.NoError(t, m.Transition(id, StateFailed))
		case StateCancelled:
			require.NoError(t, m.Transition(id, StateCancelled))
		}

		for _, attempt := range []State{StatePending, StateValidated, StateProcessing, StateCompleted, StateFailed, StateCancelled} {
			err := m.Transition(id, attempt)
			if attempt == terminal {
				continue
			}
			assert.Error(t, err, "%s should not accept transition to %s", terminal, attempt)
		}

		entry, _ := m.Get(id)
		assert.Equal(t, terminal, entry.State)
		assert.True(t, entry.State.IsTerminal())
	}
}

func TestInvalidTransitionLeavesEntryUnmodified(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")
	require.NoError(t, m.Transition(id, StateValidated))
	require.NoError(t, m.Transition(id, StateProcessing))
	require.NoError(t, m.Transition(id, StateCompleted))

	before, _ := m.Get(id)
	err := m.Transition(id, StateProcessing)
	require.Error(t, err)

	after, _ := m.Get(id)
	assert.Equal(t, before, after)
}

func TestMarkFailedSetsErrorMessage(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")
	require.NoError(t, m.Transition(id, StateValidated))
	require.NoError(t, m.Transition(id, StateProcessing))

	require.NoError(t, m.MarkFailed(id, "upstream unavailable"))

	entry, _ := m.Get(id)
	assert.Equal(t, StateFailed, entry.State)
	assert.Equal(t, "upstream unavailable", entry.ErrorMessage)
}

func TestMarkFailedFromPendingIsValid(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")
	require.NoError(t, m.MarkFailed(id, "validation failed"))

	entry, _ := m.Get(id)
	assert.Equal(t, StateFailed, entry.State)
}

func TestMarkFailedFromValidatedIsInvalid(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")
	require.NoError(t, m.Transition(id, StateValidated))

	err := m.MarkFailed(id, "too late")
	require.Error(t, err)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
}

func TestMarkCompletedSetsInventoryID(t *testing.T) {
	m := NewManager()
	id := m.Create("t1")
	require.NoError(t, m.Transition(id, StateValidated))
	require.NoError(t, m.Transition(id, StateProcessing))

	require.NoError(t, m.MarkCompleted(id, 42))

	entry, _ := m.Get(id)
	assert.Equal(t, StateCompleted, entry.State)
	require.NotNil(t, entry.InventoryID)
	assert.Equal(t, 42, *entry.InventoryID)
}

func TestMarkOperationsOnUnknownOrderReturnNotFound(t *testing.T) {
	m := NewManager()

	err := m.MarkFailed("missing", "x")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	err = m.MarkCompleted("missing", 1)
	require.ErrorAs(t, err, &nf)

	err = m.Transition("missing", StateValidated)
	require.ErrorAs(t, err, &nf)
}

func TestListByTenant(t *testing.T) {
	m := NewManager()
	idA1 := m.Create("tenant-a")
	idA2 := m.Create("tenant-a")
	m.Create("tenant-b")

	got := m.ListByTenant("tenant-a")
	assert.Len(t, got, 2)

	ids := map[string]bool{idA1: false, idA2: false}
	for _, e := range got {
		ids[e.OrderID] = true
	}
	assert.True(t, ids[idA1])
	assert.True(t, ids[idA2])
}

func TestListByState(t *testing.T) {
	m := NewManager()
	pending := m.Create("t1")
	validated := m.Create("t1")
	require.NoError(t, m.Transition(validated, StateValidated))

	gotPending := m.ListByState(StatePending)
	require.Len(t, gotPending, 1)
	assert.Equal(t, pending, gotPending[0].OrderID)

	gotValidated := m.ListByState(StateValidated)
	require.Len(t, gotValidated, 1)
	assert.Equal(t, validated, gotValidated[0].OrderID)
}

func TestListByTenantAndStateReturnEmptyWhenNothingMatches(t *testing.T) {
	m := NewManager()
	assert.Empty(t, m.ListByTenant("nobody"))
	assert.Empty(t, m.ListByState(StateCompleted))
}
