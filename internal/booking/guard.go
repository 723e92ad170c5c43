package booking

import "context"

// slotCounter is the one repository capability the guard needs.
type slotCounter interface {
	CountBySlot(ctx context.Context, doctorID, timeSlot string) (int, error)
}

// SlotCapacityGuard decides whether one more appointment can be admitted
// into a SlotKey. The count is always evaluated against live store state;
// nothing is cached, so a cancellation is visible to the very next check.
type SlotCapacityGuard struct {
	counter  slotCounter
	capacity int
}

func NewSlotCapacityGuard(counter slotCounter, capacity int) *SlotCapacityGuard {
	return &SlotCapacityGuard{counter: counter, capacity: capacity}
}

func (g *SlotCapacityGuard) Capacity() int {
	return g.capacity
}

// CanAdmit reports whether the slot has a free seat. Callers must hold the
// slot's exclusivity while acting on the answer; on its own the check is
// only a snapshot.
func (g *SlotCapacityGuard) CanAdmit(ctx context.Context, doctorID, timeSlot string) (bool, error) {
	count, err := g.counter.CountBySlot(ctx, doctorID, timeSlot)
	if err != nil {
		return false, err
	}
	return count < g.capacity, nil
}
