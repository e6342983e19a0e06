// Package history implements the patient-side appointment history view,
// including rating submission for appointments that have been confirmed.
package history

import (
	"context"
	"fmt"
	"sync"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// Gateway is the slice of the API client the history view needs.
type Gateway interface {
	PatientAppointmentHistory(ctx context.Context) ([]api.Appointment, error)
	SubmitRating(ctx context.Context, appointmentID int64, req api.SubmitRatingRequest) error
}

// View lists the patient's own appointments and tracks which ones have been
// rated in this session. The server enforces one rating per appointment;
// the local rated set just hides the control after a successful submit.
type View struct {
	gw     Gateway
	logger *logging.Logger

	mu           sync.Mutex
	appointments []api.Appointment
	rated        map[int64]bool
	errMsg       string
}

func NewView(gw Gateway, logger *logging.Logger) *View {
	if logger == nil {
		logger = logging.Default()
	}
	return &View{
		gw:     gw,
		logger: logger.WithComponent("history"),
		rated:  make(map[int64]bool),
	}
}

func (v *View) Load(ctx context.Context) error {
	appointments, err := v.gw.PatientAppointmentHistory(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.errMsg = api.Message(err, "Failed to load appointments")
		return err
	}
	v.appointments = appointments
	v.errMsg = ""
	return nil
}

// CanRate reports whether the rating control shows for an appointment:
// it must be confirmed or finished and not already rated this session.
func (v *View) CanRate(appointmentID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canRateLocked(appointmentID)
}

func (v *View) canRateLocked(appointmentID int64) bool {
	if v.rated[appointmentID] {
		return false
	}
	for _, a := range v.appointments {
		if a.ID == appointmentID {
			return a.Status == api.StatusScheduled || a.Status == api.StatusCompleted
		}
	}
	return false
}

// Rate submits a star rating with an optional comment. Invalid stars and
// non-ratable appointments are refused locally before any network call.
func (v *View) Rate(ctx context.Context, appointmentID int64, stars int, comment string) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("history: stars must be between 1 and 5, got %d", stars)
	}

	v.mu.Lock()
	if !v.canRateLocked(appointmentID) {
		v.mu.Unlock()
		return fmt.Errorf("history: appointment %d cannot be rated", appointmentID)
	}
	v.mu.Unlock()

	err := v.gw.SubmitRating(ctx, appointmentID, api.SubmitRatingRequest{Stars: stars, Comment: comment})

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.errMsg = api.Message(err, "Failed to submit rating")
		return err
	}
	v.rated[appointmentID] = true
	v.errMsg = ""
	return nil
}

func (v *View) Appointments() []api.Appointment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]api.Appointment(nil), v.appointments...)
}

func (v *View) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}
