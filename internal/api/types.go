package api

import (
	"time"

	"github.com/medislot/medislot-server/internal/booking"
)

type BookAppointmentRequest struct {
	PatientName string `json:"patientName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	DoctorID    string `json:"doctorId"`
	TimeSlot    string `json:"timeSlot"`
}

type AppointmentResponse struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	CategoryID  string    `json:"categoryId"`
	DoctorID    string    `json:"doctorId"`
	DoctorName  string    `json:"doctorName"`
	TimeSlot    string    `json:"timeSlot"`
	Amount      int       `json:"amount"`
	BookingDate string    `json:"bookingDate"`
	QRCodeData  string    `json:"qrCodeData"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID.String(),
		PatientName: a.PatientName,
		PhoneNumber: a.PhoneNumber,
		Address:     a.Address,
		CategoryID:  string(a.CategoryID),
		DoctorID:    a.DoctorID,
		DoctorName:  a.DoctorName,
		TimeSlot:    a.TimeSlot,
		Amount:      a.Amount,
		BookingDate: a.BookingDate.Format("2006-01-02"),
		QRCodeData:  a.QRPayload,
		CreatedAt:   a.CreatedAt,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type EventResponse struct {
	ID            int64     `json:"id"`
	EventType     string    `json:"eventType"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type DashboardResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
	TotalRevenue int                   `json:"totalRevenue"`
	Events       []EventResponse       `json:"events"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
