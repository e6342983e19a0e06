package api

import (
	"context"
	"fmt"
	"net/http"
)

// BookAppointment submits a booking request; the created appointment comes
// back in PENDING status with its server-assigned id.
func (c *Client) BookAppointment(ctx context.Context, req BookAppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, "book_appointment", http.MethodPost, "/appointments/book", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DoctorPendingAppointments lists booking requests awaiting the doctor's
// accept/reject decision.
func (c *Client) DoctorPendingAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.doList(ctx, "doctor_pending", "/doctors/me/appointments/pending", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DoctorTodayAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.doList(ctx, "doctor_today", "/doctors/me/appointments/today", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DoctorAllAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.doList(ctx, "doctor_all", "/doctors/me/appointments/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DoctorAppointmentHistory(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.doList(ctx, "doctor_history", "/doctors/me/appointments/history", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatientAppointmentHistory lists the signed-in patient's appointments.
func (c *Client) PatientAppointmentHistory(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.doList(ctx, "patient_history", "/patients/me/appointments/history", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptAppointment moves a PENDING appointment to SCHEDULED.
func (c *Client) AcceptAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, "accept_appointment", http.MethodPut, fmt.Sprintf("/doctors/appointments/%d/accept", id), nil, nil)
}

// RejectAppointment moves a PENDING appointment to CANCELLED.
func (c *Client) RejectAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, "reject_appointment", http.MethodPut, fmt.Sprintf("/doctors/appointments/%d/reject", id), nil, nil)
}

// CompleteAppointment moves a SCHEDULED appointment to COMPLETED.
func (c *Client) CompleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, "complete_appointment", http.MethodPut, fmt.Sprintf("/doctors/appointments/%d/complete", id), nil, nil)
}
