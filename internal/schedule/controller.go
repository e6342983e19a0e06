// Package schedule is the doctor-side appointment queue: pending requests,
// today's scheduled visits, and history, with the accept/reject/complete
// transitions. The server owns the status graph; the controller only offers
// transitions that are legal from the locally known status and reconciles
// optimistic edits with the server's answer.
package schedule

import (
	"context"
	"errors"
	"sync"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// MutationState tracks one in-flight transition so optimistic edits can be
// reconciled: applied locally, then confirmed or rolled back.
type MutationState int

const (
	MutationNone MutationState = iota
	MutationPending
	MutationConfirmed
	MutationRolledBack
)

// Gateway is the slice of the API client the controller needs.
type Gateway interface {
	DoctorPendingAppointments(ctx context.Context) ([]api.Appointment, error)
	DoctorTodayAppointments(ctx context.Context) ([]api.Appointment, error)
	DoctorAllAppointments(ctx context.Context) ([]api.Appointment, error)
	AcceptAppointment(ctx context.Context, id int64) error
	RejectAppointment(ctx context.Context, id int64) error
	CompleteAppointment(ctx context.Context, id int64) error
}

type Controller struct {
	mu     sync.Mutex
	gw     Gateway
	logger *logging.Logger

	pending   []api.Appointment
	today     []api.Appointment
	history   []api.Appointment
	mutations map[int64]MutationState
	errMsg    string
}

func NewController(gw Gateway, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		gw:        gw,
		logger:    logger.WithComponent("schedule"),
		mutations: make(map[int64]MutationState),
	}
}

// Load fetches the three collections, each exactly once.
func (c *Controller) Load(ctx context.Context) error {
	pending, err := c.gw.DoctorPendingAppointments(ctx)
	if err != nil {
		return c.loadFailed(err)
	}
	today, err := c.gw.DoctorTodayAppointments(ctx)
	if err != nil {
		return c.loadFailed(err)
	}
	history, err := c.gw.DoctorAllAppointments(ctx)
	if err != nil {
		return c.loadFailed(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = pending
	c.today = today
	c.history = history
	c.errMsg = ""
	return nil
}

func (c *Controller) loadFailed(err error) error {
	c.mu.Lock()
	c.errMsg = api.Message(err, "Failed to load appointments")
	c.mu.Unlock()
	return err
}

// CanAccept reports whether the accept control may be offered. Only PENDING
// appointments qualify.
func (c *Controller) CanAccept(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findStatus(c.pending, id) == api.StatusPending
}

func (c *Controller) CanReject(id int64) bool {
	return c.CanAccept(id)
}

// CanComplete reports whether the complete control may be offered. Only
// SCHEDULED appointments qualify.
func (c *Controller) CanComplete(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findStatus(c.today, id) == api.StatusScheduled
}

func (c *Controller) findStatus(list []api.Appointment, id int64) api.AppointmentStatus {
	for i := range list {
		if list[i].ID == id {
			return list[i].Status
		}
	}
	return ""
}

// Accept confirms a pending request. On success the row leaves the pending
// queue and today's queue is refreshed to pick up the server-assigned entry;
// on failure the pending queue is untouched.
func (c *Controller) Accept(ctx context.Context, id int64) error {
	if !c.CanAccept(id) {
		return errors.New("appointment is not pending")
	}
	c.setMutation(id, MutationPending)

	if err := c.gw.AcceptAppointment(ctx, id); err != nil {
		c.setMutation(id, MutationRolledBack)
		c.setError(api.Message(err, "Failed to accept appointment"))
		return err
	}
	c.setMutation(id, MutationConfirmed)

	c.mu.Lock()
	c.pending = removeByID(c.pending, id)
	c.errMsg = ""
	c.mu.Unlock()

	today, err := c.gw.DoctorTodayAppointments(ctx)
	if err != nil {
		// The accept itself succeeded; a failed refresh just leaves the
		// queue one poll behind.
		c.logger.Warn("today refresh after accept failed", "appointment_id", id, "error", err)
		return nil
	}
	c.mu.Lock()
	c.today = today
	c.mu.Unlock()
	return nil
}

// Reject declines a pending request. Other collections are unaffected.
func (c *Controller) Reject(ctx context.Context, id int64) error {
	if !c.CanReject(id) {
		return errors.New("appointment is not pending")
	}
	c.setMutation(id, MutationPending)

	if err := c.gw.RejectAppointment(ctx, id); err != nil {
		c.setMutation(id, MutationRolledBack)
		c.setError(api.Message(err, "Failed to reject appointment"))
		return err
	}
	c.setMutation(id, MutationConfirmed)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = removeByID(c.pending, id)
	c.errMsg = ""
	return nil
}

// Complete marks a scheduled visit done. The status flips optimistically so
// the row stays grouped under today with a completed badge; if the server
// rejects the transition the flip is rolled back.
func (c *Controller) Complete(ctx context.Context, id int64) error {
	if !c.CanComplete(id) {
		return errors.New("appointment is not scheduled")
	}

	c.mu.Lock()
	c.setStatusLocked(id, api.StatusCompleted)
	c.mutations[id] = MutationPending
	c.mu.Unlock()

	if err := c.gw.CompleteAppointment(ctx, id); err != nil {
		c.mu.Lock()
		c.setStatusLocked(id, api.StatusScheduled)
		c.mutations[id] = MutationRolledBack
		c.errMsg = api.Message(err, "Failed to complete appointment")
		c.mu.Unlock()
		return err
	}

	c.setMutation(id, MutationConfirmed)
	return nil
}

func (c *Controller) setStatusLocked(id int64, status api.AppointmentStatus) {
	for i := range c.today {
		if c.today[i].ID == id {
			c.today[i].Status = status
			return
		}
	}
}

func (c *Controller) setMutation(id int64, state MutationState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutations[id] = state
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

// Mutation reports the reconciliation state of the last transition on id.
func (c *Controller) Mutation(id int64) MutationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutations[id]
}

func (c *Controller) Pending() []api.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Appointment(nil), c.pending...)
}

func (c *Controller) Today() []api.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Appointment(nil), c.today...)
}

func (c *Controller) History() []api.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Appointment(nil), c.history...)
}

func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func removeByID(list []api.Appointment, id int64) []api.Appointment {
	out := list[:0]
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
