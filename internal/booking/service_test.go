package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/medislot/medislot-server/internal/redis"
)

// -- Mock repository --

type mockRepo struct {
	mu      sync.Mutex
	appts   map[uuid.UUID]*Appointment
	events  []EventLog
	failAll error
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) CreateAppointment(_ context.Context, appt *Appointment, capacity int) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return nil, m.failAll
	}

	count := 0
	for _, a := range m.appts {
		if a.DoctorID == appt.DoctorID && a.TimeSlot == appt.TimeSlot {
			count++
		}
	}
	if count >= capacity {
		return nil, ErrSlotFull
	}

	if appt.IdempotencyKey != nil {
		for _, a := range m.appts {
			if a.IdempotencyKey != nil && *a.IdempotencyKey == *appt.IdempotencyKey {
				return nil, ErrIdempotencyConflict
			}
		}
	}

	stored := *appt
	stored.CreatedAt = time.Now()
	m.appts[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *mockRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return nil, m.failAll
	}

	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (m *mockRepo) GetAppointmentByIdempotencyKey(_ context.Context, key string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.appts {
		if a.IdempotencyKey != nil && *a.IdempotencyKey == key {
			out := *a
			return &out, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (m *mockRepo) ListAppointments(_ context.Context, doctorID string, limit, offset int) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Appointment
	for _, a := range m.appts {
		if doctorID == "" || a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return m.failAll
	}

	if _, ok := m.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) CountBySlot(_ context.Context, doctorID, timeSlot string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return 0, m.failAll
	}

	count := 0
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.TimeSlot == timeSlot {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) SlotCounts(_ context.Context, doctorID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			counts[a.TimeSlot]++
		}
	}
	return counts, nil
}

func (m *mockRepo) InsertEvent(_ context.Context, ev EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return nil
}

func (m *mockRepo) PruneEvents(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []EventLog
	var pruned int64
	for _, ev := range m.events {
		if ev.CreatedAt.Before(before) {
			pruned++
			continue
		}
		kept = append(kept, ev)
	}
	m.events = kept
	return pruned, nil
}

func (m *mockRepo) ListEvents(_ context.Context, limit int) ([]EventLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]EventLog, len(m.events))
	copy(out, m.events)
	return out, nil
}

// -- Lockers --

// blockingLocker serializes critical sections per slot key with plain
// mutexes so contending attempts wait instead of failing.
type blockingLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBlockingLocker() *blockingLocker {
	return &blockingLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *blockingLocker) WithSlotLock(ctx context.Context, doctorID, timeSlot string, fn func(ctx context.Context) error) error {
	key := doctorID + "|" + timeSlot

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// deniedLocker simulates lock contention: acquisition always fails.
type deniedLocker struct{ err error }

func (l *deniedLocker) WithSlotLock(ctx context.Context, doctorID, timeSlot string, fn func(ctx context.Context) error) error {
	return l.err
}

// -- Helpers --

const testCapacity = 30

func newTestService(repo Repository) *Service {
	guard := NewSlotCapacityGuard(repo, testCapacity)
	return NewService(repo, guard, newBlockingLocker(), 5*time.Second)
}

func validRequest(doctorID, slot string) BookingRequest {
	return BookingRequest{
		PatientName: gofakeit.Name(),
		PhoneNumber: gofakeit.Phone(),
		Address:     gofakeit.Address().Address,
		DoctorID:    doctorID,
		TimeSlot:    slot,
	}
}

func fillSlot(t *testing.T, svc *Service, doctorID, slot string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.BookAppointment(context.Background(), validRequest(doctorID, slot))
		require.NoError(t, err)
	}
}

// -- Tests --

func TestBookAppointment_Success(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	req := validRequest("dr1", "09:00 AM")
	appt, err := svc.BookAppointment(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Equal(t, req.PatientName, appt.PatientName)
	assert.Equal(t, "dr1", appt.DoctorID)
	assert.Equal(t, "Dr. Sarah Johnson", appt.DoctorName)
	assert.Equal(t, "09:00 AM", appt.TimeSlot)
	assert.Equal(t, 500, appt.Amount) // dr1's consultation fee
	assert.Contains(t, appt.QRPayload, appt.ID.String())
	assert.Contains(t, appt.QRPayload, req.PatientName)
}

func TestBookAppointment_Validation(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	cases := []struct {
		name  string
		mut   func(*BookingRequest)
		field string
	}{
		{"empty patient name", func(r *BookingRequest) { r.PatientName = "  " }, "patientName"},
		{"empty phone", func(r *BookingRequest) { r.PhoneNumber = "" }, "phoneNumber"},
		{"empty address", func(r *BookingRequest) { r.Address = "" }, "address"},
		{"unknown doctor", func(r *BookingRequest) { r.DoctorID = "dr999" }, "doctorId"},
		{"slot not offered", func(r *BookingRequest) { r.TimeSlot = "03:33 AM" }, "timeSlot"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest("dr1", "09:00 AM")
			tc.mut(&req)

			_, err := svc.BookAppointment(context.Background(), req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			assert.Empty(t, repo.appts, "nothing may be written on validation failure")
		})
	}
}

func TestBookAppointment_CapacityBoundary(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	// 29 existing appointments: the 30th succeeds.
	fillSlot(t, svc, "dr1", "09:00 AM", testCapacity-1)

	appt, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	require.NoError(t, err)
	require.NotNil(t, appt)

	count, err := repo.CountBySlot(context.Background(), "dr1", "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, testCapacity, count)

	// The 31st attempt is rejected and the count stays put.
	_, err = svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	assert.ErrorIs(t, err, ErrSlotFull)

	count, err = repo.CountBySlot(context.Background(), "dr1", "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, testCapacity, count)
}

func TestBookAppointment_OtherSlotsUnaffected(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	fillSlot(t, svc, "dr1", "09:00 AM", testCapacity)

	// Same doctor, different slot still admits.
	_, err := svc.BookAppointment(context.Background(), validRequest("dr1", "10:30 AM"))
	assert.NoError(t, err)

	// Different doctor, same slot label still admits.
	_, err = svc.BookAppointment(context.Background(), validRequest("dr7", "09:00 AM"))
	assert.NoError(t, err)
}

func TestBookAppointment_LastSeatRace(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	fillSlot(t, svc, "dr1", "09:00 AM", testCapacity-1)

	const attempts = 8
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
			results <- err
		}()
	}
	start.Done()

	successes, fulls := 0, 0
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrSlotFull):
			fulls++
		}
	}

	assert.Equal(t, 1, successes, "exactly one attempt may win the last seat")
	assert.Equal(t, attempts-1, fulls)

	count, err := repo.CountBySlot(context.Background(), "dr1", "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, testCapacity, count)
}

func TestBookAppointment_LockContention(t *testing.T) {
	repo := newMockRepo()
	guard := NewSlotCapacityGuard(repo, testCapacity)
	svc := NewService(repo, guard, &deniedLocker{err: redisclient.ErrLockNotAcquired}, 5*time.Second)

	_, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	assert.ErrorIs(t, err, ErrSlotBusy)
	assert.Empty(t, repo.appts)
}

func TestBookAppointment_LockBackendUnreachable(t *testing.T) {
	repo := newMockRepo()
	guard := NewSlotCapacityGuard(repo, testCapacity)

	// The locker fails the way the Redis implementation does when the
	// backend cannot be dialed.
	dialErr := fmt.Errorf("acquire slot lock: %w: %w",
		redisclient.ErrLockUnavailable, fmt.Errorf("dial tcp 127.0.0.1:1: i/o timeout"))
	svc := NewService(repo, guard, &deniedLocker{err: dialErr}, 5*time.Second)

	_, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrSlotBusy)
	assert.Empty(t, repo.appts)
}

func TestBookAppointment_IdempotencyReplay(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	req := validRequest("dr1", "09:00 AM")
	req.IdempotencyKey = uuid.NewString()

	first, err := svc.BookAppointment(context.Background(), req)
	require.NoError(t, err)

	// A blind retry of the same attempt returns the same record.
	second, err := svc.BookAppointment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := repo.CountBySlot(context.Background(), "dr1", "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetAppointment_RoundTrip(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	created, err := svc.BookAppointment(context.Background(), validRequest("dr3", "10:00 AM"))
	require.NoError(t, err)

	fetched, err := svc.GetAppointment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCancelAppointment_Idempotence(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	created, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	require.NoError(t, err)

	require.NoError(t, svc.CancelAppointment(context.Background(), created.ID))

	err = svc.CancelAppointment(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancelAppointment_FreesSeat(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	fillSlot(t, svc, "dr1", "09:00 AM", testCapacity)

	_, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	require.ErrorIs(t, err, ErrSlotFull)

	// Cancel one of the thirty; the very next booking succeeds.
	var victim uuid.UUID
	for id := range repo.appts {
		victim = id
		break
	}
	require.NoError(t, svc.CancelAppointment(context.Background(), victim))

	count, err := repo.CountBySlot(context.Background(), "dr1", "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, testCapacity-1, count)

	_, err = svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	assert.NoError(t, err)
}

func TestSlotAvailability(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	fillSlot(t, svc, "dr1", "09:00 AM", 4)
	fillSlot(t, svc, "dr1", "02:00 PM", testCapacity)

	slots, err := svc.SlotAvailability(context.Background(), "dr1")
	require.NoError(t, err)
	require.Len(t, slots, 4) // dr1 advertises four timings

	byLabel := make(map[string]SlotAvailability, len(slots))
	for _, s := range slots {
		byLabel[s.TimeSlot] = s
	}

	assert.Equal(t, 4, byLabel["09:00 AM"].Booked)
	assert.Equal(t, testCapacity-4, byLabel["09:00 AM"].Remaining)
	assert.Equal(t, 0, byLabel["02:00 PM"].Remaining)
	assert.Equal(t, 0, byLabel["10:30 AM"].Booked)
	assert.Equal(t, testCapacity, byLabel["10:30 AM"].Remaining)
}

func TestSlotAvailability_UnknownDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	_, err := svc.SlotAvailability(context.Background(), "dr999")

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestBookAppointment_StoreUnavailable(t *testing.T) {
	repo := newMockRepo()
	repo.failAll = fmt.Errorf("create appointment: %w", ErrStoreUnavailable)
	svc := newTestService(repo)

	_, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestEventLog_BookAndCancel(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	created, err := svc.BookAppointment(context.Background(), validRequest("dr1", "09:00 AM"))
	require.NoError(t, err)
	require.NoError(t, svc.CancelAppointment(context.Background(), created.ID))

	events, err := svc.RecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventAppointmentBooked, events[0].EventType)
	assert.Equal(t, EventAppointmentCancelled, events[1].EventType)
}
