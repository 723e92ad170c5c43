package booking

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/medislot/medislot-server/internal/catalog"
)

// SlotKey is the unit of capacity accounting: one doctor paired with one
// of their advertised time labels.
type SlotKey struct {
	DoctorID string
	TimeSlot string
}

// Appointment is one confirmed booking. Records are immutable after
// creation; cancellation removes them outright.
type Appointment struct {
	ID             uuid.UUID
	PatientName    string
	PhoneNumber    string
	Address        string
	CategoryID     catalog.Category
	DoctorID       string
	DoctorName     string
	TimeSlot       string
	Amount         int
	BookingDate    time.Time
	QRPayload      string
	IdempotencyKey *string
	CreatedAt      time.Time
}

func (a *Appointment) SlotKey() SlotKey {
	return SlotKey{DoctorID: a.DoctorID, TimeSlot: a.TimeSlot}
}

// qrPayload is the subset of the record embedded in the confirmation QR
// code. Consumers scanning it must tolerate unknown fields, so it only
// ever grows.
type qrPayload struct {
	ID      string `json:"id"`
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Slot    string `json:"slot"`
}

// EncodeQRPayload serializes the display subset of an appointment.
func EncodeQRPayload(id uuid.UUID, patient, doctor, slot string) string {
	data, err := json.Marshal(qrPayload{
		ID:      id.String(),
		Patient: patient,
		Doctor:  doctor,
		Slot:    slot,
	})
	if err != nil {
		return ""
	}
	return string(data)
}

// BookingRequest carries the caller-supplied fields of a booking attempt.
// IdempotencyKey is optional; when present, a retried attempt with the
// same key returns the already-created appointment instead of a duplicate.
type BookingRequest struct {
	PatientName    string
	PhoneNumber    string
	Address        string
	DoctorID       string
	TimeSlot       string
	IdempotencyKey string
}

// EventLog is one append-only audit record.
type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// SlotAvailability reports occupancy for one advertised timing.
type SlotAvailability struct {
	TimeSlot  string `json:"timeSlot"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}
