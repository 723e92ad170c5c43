package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotFull            = errors.New("time slot is at full capacity")
	ErrStoreUnavailable    = errors.New("appointment store unavailable")

	// ErrIdempotencyConflict signals that another attempt with the same
	// idempotency key already created a record; callers should fetch it.
	ErrIdempotencyConflict = errors.New("idempotency key already used")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// CreateAppointment inserts conditionally: the row is written only if
	// the slot's current count is below capacity, in one statement,
	// closing the window between a stale guard check and the write.
	// Serialization of concurrent writers on a SlotKey rests on the slot
	// lock; under read committed two unlocked writers could each pass the
	// count condition. Returns ErrSlotFull when the condition fails.
	CreateAppointment(ctx context.Context, appt *Appointment, capacity int) (*Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentByIdempotencyKey(ctx context.Context, key string) (*Appointment, error)
	ListAppointments(ctx context.Context, doctorID string, limit, offset int) ([]Appointment, error)

	// DeleteAppointment reports ErrAppointmentNotFound when the id is
	// already absent; callers treat that as idempotent completion.
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// CountBySlot evaluates the authoritative live count for one SlotKey.
	CountBySlot(ctx context.Context, doctorID, timeSlot string) (int, error)

	// SlotCounts tallies bookings per time slot for one doctor.
	SlotCounts(ctx context.Context, doctorID string) (map[string]int, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
	ListEvents(ctx context.Context, limit int) ([]EventLog, error)
}
