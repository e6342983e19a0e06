package api

import (
	"context"
	"fmt"
	"net/http"
)

// AdminUsers lists all patient and doctor accounts for moderation.
func (c *Client) AdminUsers(ctx context.Context) (*AdminUserList, error) {
	var out AdminUserList
	if err := c.do(ctx, "admin_users", http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, userType Role, id int64, req AdminUserUpdate) error {
	return c.do(ctx, "admin_update_user", http.MethodPut, fmt.Sprintf("/admin/users/%s/%d", userType, id), req, nil)
}

func (c *Client) AdminDeleteUser(ctx context.Context, userType Role, id int64) error {
	return c.do(ctx, "admin_delete_user", http.MethodDelete, fmt.Sprintf("/admin/users/%s/%d", userType, id), nil, nil)
}

// AdminAppointments returns the clinic-wide appointment overview.
func (c *Client) AdminAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.doList(ctx, "admin_appointments", "/admin/appointments", &out); err != nil {
		return nil, err
	}
	return out, nil
}
