package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token and role.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterPatient forwards raw registration fields; field validation is the
// caller's job (see internal/forms).
func (c *Client) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, "register_patient", http.MethodPost, "/auth/register-patient", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, "register_doctor", http.MethodPost, "/auth/register-doctor", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatientMe returns the signed-in patient's profile. Doctors and admins get
// a server rejection; callers that only probe for a patient profile treat
// that as "not a patient".
func (c *Client) PatientMe(ctx context.Context) (*PatientProfile, error) {
	var out PatientProfile
	if err := c.do(ctx, "patient_me", http.MethodGet, "/patients/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePatientMe(ctx context.Context, req UpdateProfileRequest) (*PatientProfile, error) {
	var out PatientProfile
	if err := c.do(ctx, "update_patient_me", http.MethodPut, "/patients/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DoctorMe returns the signed-in doctor's directory profile.
func (c *Client) DoctorMe(ctx context.Context) (*Doctor, error) {
	var out Doctor
	if err := c.do(ctx, "doctor_me", http.MethodGet, "/doctors/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDoctorMe(ctx context.Context, req UpdateProfileRequest) (*Doctor, error) {
	var out Doctor
	if err := c.do(ctx, "update_doctor_me", http.MethodPut, "/doctors/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
