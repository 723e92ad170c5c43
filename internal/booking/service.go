package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medislot/medislot-server/internal/catalog"
	"github.com/medislot/medislot-server/internal/logger"
	redisclient "github.com/medislot/medislot-server/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

var (
	// ErrSlotBusy means the slot's lock was held by another booking
	// attempt. The caller can retry shortly; no state was written.
	ErrSlotBusy = errors.New("slot is currently being booked, please retry")
)

// ValidationError rejects a malformed request before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service orchestrates guard check and store write as one logical
// operation. All appointment mutation in the system goes through it.
type Service struct {
	repo           Repository
	guard          *SlotCapacityGuard
	locker         redisclient.Locker
	bookingTimeout time.Duration
}

func NewService(repo Repository, guard *SlotCapacityGuard, locker redisclient.Locker, bookingTimeout time.Duration) *Service {
	return &Service{
		repo:           repo,
		guard:          guard,
		locker:         locker,
		bookingTimeout: bookingTimeout,
	}
}

// BookAppointment validates the request, then runs the capacity check and
// the conditional insert inside the slot's distributed lock. Two
// concurrent attempts at the last seat of a slot resolve to exactly one
// success; the loser gets ErrSlotFull, never a second row.
func (s *Service) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	doctor, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.GetAppointmentByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.bookingTimeout)
	defer cancel()

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, doctor.ID, req.TimeSlot, func(lockCtx context.Context) error {
		ok, err := s.guard.CanAdmit(lockCtx, doctor.ID, req.TimeSlot)
		if err != nil {
			return fmt.Errorf("capacity check: %w", err)
		}
		if !ok {
			return ErrSlotFull
		}

		id := uuid.New()
		appt := &Appointment{
			ID:          id,
			PatientName: strings.TrimSpace(req.PatientName),
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			Address:     strings.TrimSpace(req.Address),
			CategoryID:  doctor.Category,
			DoctorID:    doctor.ID,
			DoctorName:  doctor.Name,
			TimeSlot:    req.TimeSlot,
			Amount:      doctor.ConsultationFee,
			BookingDate: time.Now().UTC().Truncate(24 * time.Hour),
			QRPayload:   EncodeQRPayload(id, strings.TrimSpace(req.PatientName), doctor.Name, req.TimeSlot),
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			appt.IdempotencyKey = &key
		}

		created, err = s.repo.CreateAppointment(lockCtx, appt, s.guard.Capacity())
		if err != nil {
			return err
		}

		s.logEvent(lockCtx, created.ID, EventAppointmentBooked, map[string]any{
			"doctor_id": doctor.ID,
			"time_slot": req.TimeSlot,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		if errors.Is(err, redisclient.ErrLockUnavailable) {
			return nil, fmt.Errorf("acquire slot exclusivity: %w: %w", ErrStoreUnavailable, err)
		}
		if errors.Is(err, ErrIdempotencyConflict) && req.IdempotencyKey != "" {
			// A concurrent retry with the same key won the insert.
			return s.repo.GetAppointmentByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		return nil, err
	}

	return created, nil
}

// CancelAppointment removes the record. The freed seat becomes visible to
// any booking whose capacity check runs after the delete; no counter is
// adjusted because counts are always recomputed live.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	s.logEvent(ctx, id, EventAppointmentCancelled, map[string]any{})
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) ListAppointments(ctx context.Context, doctorID string, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 50 // default
	}
	if limit > 500 {
		limit = 500 // max
	}
	if offset < 0 {
		offset = 0
	}

	appts, err := s.repo.ListAppointments(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// SlotAvailability reports booked and remaining seats for each of the
// doctor's advertised timings.
func (s *Service) SlotAvailability(ctx context.Context, doctorID string) ([]SlotAvailability, error) {
	doctor, ok := catalog.DoctorByID(doctorID)
	if !ok {
		return nil, &ValidationError{Field: "doctorId", Reason: "unknown doctor"}
	}

	counts, err := s.repo.SlotCounts(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("slot availability: %w", err)
	}

	capacity := s.guard.Capacity()
	out := make([]SlotAvailability, 0, len(doctor.AvailableTimings))
	for _, slot := range doctor.AvailableTimings {
		booked := counts[slot]
		remaining := capacity - booked
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, SlotAvailability{
			TimeSlot:  slot,
			Booked:    booked,
			Remaining: remaining,
		})
	}
	return out, nil
}

// RecentEvents returns the latest audit entries for the dashboard.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]EventLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListEvents(ctx, limit)
}

// PruneEvents deletes audit entries older than the cutoff and is called
// by the retention worker.
func (s *Service) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.PruneEvents(ctx, before)
}

func (s *Service) validate(req BookingRequest) (*catalog.Doctor, error) {
	if strings.TrimSpace(req.PatientName) == "" {
		return nil, &ValidationError{Field: "patientName", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, &ValidationError{Field: "phoneNumber", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, &ValidationError{Field: "address", Reason: "must not be empty"}
	}

	doctor, ok := catalog.DoctorByID(req.DoctorID)
	if !ok {
		return nil, &ValidationError{Field: "doctorId", Reason: "unknown doctor"}
	}
	if !doctor.OffersSlot(req.TimeSlot) {
		return nil, &ValidationError{Field: "timeSlot", Reason: "not offered by this doctor"}
	}

	return doctor, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.L().Warn("marshal event payload",
			zap.String("event_type", eventType),
			zap.Error(err))
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		logger.L().Warn("insert event log",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err))
	}
}
