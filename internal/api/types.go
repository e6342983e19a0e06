package api

import "time"

// Role identifies the kind of signed-in account.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// AppointmentStatus is the server-owned appointment state. Valid transitions
// are PENDING -> SCHEDULED|CANCELLED and SCHEDULED -> COMPLETED; the client
// never changes status except as an optimistic echo of a server response.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	Role   Role   `json:"role"`
	UserID *int64 `json:"userId"`
}

type RegisterPatientRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender,omitempty"`
}

type RegisterDoctorRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// Doctor is a directory entry. Read-only from the client's perspective.
type Doctor struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Specialization string  `json:"specialization"`
	Gender         string  `json:"gender,omitempty"`
	AverageRating  float64 `json:"averageRating"`
}

type PatientProfile struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

type UpdateProfileRequest struct {
	FullName       string `json:"fullName,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// TimeSlot is a bookable window computed server-side per doctor. The
// availability flag is authoritative only at fetch time; the server remains
// the final arbiter on submit.
type TimeSlot struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Available bool      `json:"available"`
}

type Appointment struct {
	ID          int64             `json:"id"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Status      AppointmentStatus `json:"status"`
	DoctorID    int64             `json:"doctorId,omitempty"`
	DoctorName  string            `json:"doctorName,omitempty"`
	PatientID   int64             `json:"patientId,omitempty"`
	PatientName string            `json:"patientName,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

type BookAppointmentRequest struct {
	DoctorID  int64     `json:"doctorId"`
	PatientID int64     `json:"patientId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Notes     string    `json:"notes,omitempty"`
}

type DoctorDashboard struct {
	DoctorID              int64  `json:"doctorId"`
	FullName              string `json:"fullName"`
	Specialization        string `json:"specialization"`
	Status                string `json:"status"`
	TodaysAppointments    int    `json:"todaysAppointments"`
	PendingAppointments   int    `json:"pendingAppointments"`
	CompletedAppointments int    `json:"completedAppointments"`
}

// ChatMessage is one entry in an appointment-scoped conversation.
// Append-only; the server orders by sent timestamp.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SenderType Role      `json:"senderType"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sentAt"`
}

// HelpMessage is one entry in the help-desk channel.
type HelpMessage struct {
	ID          int64     `json:"id"`
	SenderEmail string    `json:"senderEmail"`
	SenderType  Role      `json:"senderType"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sentAt"`
}

// HelpChatUser identifies a non-admin participant an admin can reply to.
type HelpChatUser struct {
	Email string `json:"email"`
	Type  Role   `json:"type"`
}

type SendMessageRequest struct {
	Message        string `json:"message"`
	RecipientEmail string `json:"recipientEmail,omitempty"`
}

type Rating struct {
	ID          int64     `json:"id"`
	Stars       int       `json:"stars"`
	Comment     string    `json:"comment,omitempty"`
	PatientName string    `json:"patientName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SubmitRatingRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment,omitempty"`
}

// AdminUser is the moderation view of an account; Type selects which of the
// trailing fields are meaningful.
type AdminUser struct {
	ID             int64  `json:"id"`
	Type           Role   `json:"type"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

type AdminUserList struct {
	Patients []AdminUser `json:"patients"`
	Doctors  []AdminUser `json:"doctors"`
}

type AdminUserUpdate struct {
	FullName       string `json:"fullName,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}
