package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medislot/medislot-server/internal/catalog"
)

// DB is the subset of pgxpool.Pool the repository uses. Narrowing it to
// an interface lets tests substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const appointmentColumns = `id, patient_name, phone_number, address, category_id, doctor_id, doctor_name, time_slot, amount, booking_date, qr_payload, idempotency_key, created_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var category string
	var idemKey *string

	err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.PhoneNumber,
		&a.Address,
		&category,
		&a.DoctorID,
		&a.DoctorName,
		&a.TimeSlot,
		&a.Amount,
		&a.BookingDate,
		&a.QRPayload,
		&idemKey,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.CategoryID = catalog.Category(category)
	a.IdempotencyKey = idemKey
	return &a, nil
}

// storeErr classifies a failure: an error the server actually produced is
// wrapped as-is, everything else (connection refused, timeouts, pool
// exhaustion) becomes ErrStoreUnavailable so callers can offer a retry.
func storeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Interface methods

func (r *PgRepository) CreateAppointment(ctx context.Context, appt *Appointment, capacity int) (*Appointment, error) {
	// Single-statement conditional insert: the count subquery and the
	// write share a snapshot, which keeps a stale caller-side check from
	// writing past capacity. Writers still must hold the slot lock; read
	// committed does not serialize two of these statements against each
	// other.
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now()
		WHERE (
			SELECT count(*) FROM appointments
			WHERE doctor_id = $6 AND time_slot = $8
		) < $13
		RETURNING `+appointmentColumns+`
	`,
		appt.ID,
		appt.PatientName,
		appt.PhoneNumber,
		appt.Address,
		string(appt.CategoryID),
		appt.DoctorID,
		appt.DoctorName,
		appt.TimeSlot,
		appt.Amount,
		appt.BookingDate,
		appt.QRPayload,
		appt.IdempotencyKey,
		capacity,
	)

	created, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Condition failed, nothing inserted.
			return nil, ErrSlotFull
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrIdempotencyConflict
		}
		return nil, storeErr("create appointment", err)
	}

	return created, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, storeErr("get appointment", err)
	}
	return appt, nil
}

func (r *PgRepository) GetAppointmentByIdempotencyKey(ctx context.Context, key string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE idempotency_key = $1
	`, key)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, storeErr("get appointment by idempotency key", err)
	}
	return appt, nil
}

func (r *PgRepository) ListAppointments(ctx context.Context, doctorID string, limit, offset int) ([]Appointment, error) {
	var rows pgx.Rows
	var err error

	if doctorID != "" {
		rows, err = r.db.Query(ctx, `
			SELECT `+appointmentColumns+`
			FROM appointments
			WHERE doctor_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, doctorID, limit, offset)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+appointmentColumns+`
			FROM appointments
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, storeErr("list appointments", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, storeErr("list appointments", err)
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list appointments", err)
	}

	return result, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1
	`, id)
	if err != nil {
		return storeErr("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) CountBySlot(ctx context.Context, doctorID, timeSlot string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE doctor_id = $1 AND time_slot = $2
	`, doctorID, timeSlot).Scan(&count)
	if err != nil {
		return 0, storeErr("count slot", err)
	}
	return count, nil
}

func (r *PgRepository) SlotCounts(ctx context.Context, doctorID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time_slot, count(*) FROM appointments
		WHERE doctor_id = $1
		GROUP BY time_slot
	`, doctorID)
	if err != nil {
		return nil, storeErr("slot counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slot string
		var n int
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, storeErr("slot counts", err)
		}
		counts[slot] = n
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("slot counts", err)
	}

	return counts, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return storeErr("insert event log", err)
	}
	return nil
}

func (r *PgRepository) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM event_logs WHERE created_at < $1
	`, before)
	if err != nil {
		return 0, storeErr("prune event logs", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) ListEvents(ctx context.Context, limit int) ([]EventLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, event_type, appointment_id, payload, created_at
		FROM event_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, storeErr("list event logs", err)
	}
	defer rows.Close()

	var result []EventLog
	for rows.Next() {
		var ev EventLog
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.AppointmentID, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, storeErr("list event logs", err)
		}
		result = append(result, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list event logs", err)
	}

	return result, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
