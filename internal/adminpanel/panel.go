// Package adminpanel implements the moderation view: account listing with
// inline edit and delete, plus the clinic-wide appointment overview.
package adminpanel

import (
	"context"
	"fmt"
	"sync"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// Gateway is the slice of the API client the admin panel needs.
type Gateway interface {
	AdminUsers(ctx context.Context) (*api.AdminUserList, error)
	AdminUpdateUser(ctx context.Context, userType api.Role, id int64, req api.AdminUserUpdate) error
	AdminDeleteUser(ctx context.Context, userType api.Role, id int64) error
	AdminAppointments(ctx context.Context) ([]api.Appointment, error)
}

// Panel holds the admin account lists. Edits and deletes apply locally
// first and roll back if the server refuses, so the table never waits on a
// round trip to show the result.
type Panel struct {
	gw     Gateway
	logger *logging.Logger

	mu           sync.Mutex
	patients     []api.AdminUser
	doctors      []api.AdminUser
	appointments []api.Appointment
	errMsg       string
}

func NewPanel(gw Gateway, logger *logging.Logger) *Panel {
	if logger == nil {
		logger = logging.Default()
	}
	return &Panel{gw: gw, logger: logger.WithComponent("adminpanel")}
}

func (p *Panel) Load(ctx context.Context) error {
	users, err := p.gw.AdminUsers(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.errMsg = api.Message(err, "Failed to load users")
		return err
	}
	p.patients = users.Patients
	p.doctors = users.Doctors
	p.errMsg = ""
	return nil
}

// LoadAppointments fetches the clinic-wide appointment overview.
func (p *Panel) LoadAppointments(ctx context.Context) error {
	appointments, err := p.gw.AdminAppointments(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.errMsg = api.Message(err, "Failed to load appointments")
		return err
	}
	p.appointments = appointments
	p.errMsg = ""
	return nil
}

// UpdateUser applies the edit to the local row immediately, then confirms
// with the server; a refusal restores the previous row.
func (p *Panel) UpdateUser(ctx context.Context, userType api.Role, id int64, upd api.AdminUserUpdate) error {
	p.mu.Lock()
	list := p.listForLocked(userType)
	idx := indexOf(list, id)
	if list == nil || idx < 0 {
		p.mu.Unlock()
		return fmt.Errorf("adminpanel: no %s with id %d", userType, id)
	}
	prev := list[idx]
	list[idx] = applyUpdate(prev, upd)
	p.mu.Unlock()

	if err := p.gw.AdminUpdateUser(ctx, userType, id, upd); err != nil {
		p.mu.Lock()
		if idx := indexOf(p.listForLocked(userType), id); idx >= 0 {
			p.listForLocked(userType)[idx] = prev
		}
		p.errMsg = api.Message(err, "Failed to update user")
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.errMsg = ""
	p.mu.Unlock()
	return nil
}

// DeleteUser removes the row immediately and restores it at its old
// position if the server refuses.
func (p *Panel) DeleteUser(ctx context.Context, userType api.Role, id int64) error {
	p.mu.Lock()
	list := p.listForLocked(userType)
	idx := indexOf(list, id)
	if list == nil || idx < 0 {
		p.mu.Unlock()
		return fmt.Errorf("adminpanel: no %s with id %d", userType, id)
	}
	removed := list[idx]
	p.setListLocked(userType, append(list[:idx:idx], list[idx+1:]...))
	p.mu.Unlock()

	if err := p.gw.AdminDeleteUser(ctx, userType, id); err != nil {
		p.mu.Lock()
		list := p.listForLocked(userType)
		if idx > len(list) {
			idx = len(list)
		}
		restored := make([]api.AdminUser, 0, len(list)+1)
		restored = append(restored, list[:idx]...)
		restored = append(restored, removed)
		restored = append(restored, list[idx:]...)
		p.setListLocked(userType, restored)
		p.errMsg = api.Message(err, "Failed to delete user")
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.errMsg = ""
	p.mu.Unlock()
	return nil
}

func (p *Panel) listForLocked(userType api.Role) []api.AdminUser {
	switch userType {
	case api.RolePatient:
		return p.patients
	case api.RoleDoctor:
		return p.doctors
	}
	return nil
}

func (p *Panel) setListLocked(userType api.Role, list []api.AdminUser) {
	switch userType {
	case api.RolePatient:
		p.patients = list
	case api.RoleDoctor:
		p.doctors = list
	}
}

func indexOf(list []api.AdminUser, id int64) int {
	for i, u := range list {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func applyUpdate(u api.AdminUser, upd api.AdminUserUpdate) api.AdminUser {
	if upd.FullName != "" {
		u.FullName = upd.FullName
	}
	if upd.Email != "" {
		u.Email = upd.Email
	}
	if upd.Phone != "" {
		u.Phone = upd.Phone
	}
	if upd.Gender != "" {
		u.Gender = upd.Gender
	}
	if upd.Specialization != "" {
		u.Specialization = upd.Specialization
	}
	return u
}

func (p *Panel) Patients() []api.AdminUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.AdminUser(nil), p.patients...)
}

func (p *Panel) Doctors() []api.AdminUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.AdminUser(nil), p.doctors...)
}

func (p *Panel) Appointments() []api.Appointment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.Appointment(nil), p.appointments...)
}

func (p *Panel) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}
