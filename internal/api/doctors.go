package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Doctors lists the full doctor directory.
func (c *Client) Doctors(ctx context.Context) ([]Doctor, error) {
	var out []Doctor
	if err := c.doList(ctx, "doctors", "/doctors", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchDoctors filters the directory server-side by name or specialization.
func (c *Client) SearchDoctors(ctx context.Context, term string) ([]Doctor, error) {
	var out []Doctor
	path := "/doctors?search=" + url.QueryEscape(term)
	if err := c.doList(ctx, "search_doctors", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DoctorByID(ctx context.Context, id int64) (*Doctor, error) {
	var out Doctor
	if err := c.do(ctx, "doctor_by_id", http.MethodGet, fmt.Sprintf("/doctors/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableSlots fetches the doctor's bookable windows. Slots are ephemeral:
// the server recomputes them per fetch and may reject a selection that went
// stale between fetch and submit.
func (c *Client) AvailableSlots(ctx context.Context, doctorID int64) ([]TimeSlot, error) {
	var out []TimeSlot
	if err := c.doList(ctx, "available_slots", fmt.Sprintf("/doctors/%d/available-slots", doctorID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DoctorDashboard returns the signed-in doctor's summary counters.
func (c *Client) DoctorDashboard(ctx context.Context) (*DoctorDashboard, error) {
	var out DoctorDashboard
	if err := c.do(ctx, "doctor_dashboard", http.MethodGet, "/doctors/me/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
