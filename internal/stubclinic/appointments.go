package stubclinic

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"clinicdesk/internal/api"
)

var (
	errSlotTaken      = errors.New("Time slot is not available")
	errNotPending     = errors.New("Appointment is not pending")
	errNotScheduled   = errors.New("Appointment is not scheduled")
	errNoAppointment  = errors.New("Appointment not found")
	errAlreadyRated   = errors.New("Appointment already rated")
	errNotRatable     = errors.New("Only confirmed appointments can be rated")
	errNotParticipant = errors.New("Not a participant in this conversation")
	errPastSlot       = errors.New("Cannot book a slot in the past")
	errUnknownDoctor  = errors.New("Doctor not found")
	errUnknownPatient = errors.New("Patient not found")
	errUserNotFound   = errors.New("User not found")
	errEmailTaken     = errors.New("Email already in use")
)

var (
	slotStartHours = []int{9, 11, 13, 15, 17, 19}
	slotEndHours   = []int{11, 13, 15, 17, 19, 20}
)

// AvailableSlots computes the bookable grid for a doctor: fixed two-hour
// windows today and tomorrow, minus windows already past and windows
// overlapping a live booking.
func (s *Store) AvailableSlots(doctorID int64) ([]api.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByIDLocked(api.RoleDoctor, doctorID) == nil {
		return nil, errUnknownDoctor
	}

	now := s.now()
	var slots []api.TimeSlot
	for dayOffset := 0; dayOffset <= 1; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		label := "Tomorrow"
		if dayOffset == 0 {
			label = "Today"
		}
		for i := range slotStartHours {
			start := time.Date(day.Year(), day.Month(), day.Day(), slotStartHours[i], 0, 0, 0, now.Location())
			end := time.Date(day.Year(), day.Month(), day.Day(), slotEndHours[i], 0, 0, 0, now.Location())
			if dayOffset == 0 && start.Before(now) {
				continue
			}
			slots = append(slots, api.TimeSlot{
				Date:      fmt.Sprintf("%s (%s)", label, day.Format("2006-01-02")),
				Time:      fmt.Sprintf("%02d:00 - %02d:00", slotStartHours[i], slotEndHours[i]),
				StartTime: start,
				EndTime:   end,
				Available: !s.doctorBookedLocked(doctorID, start, end),
			})
		}
	}
	return slots, nil
}

// doctorBookedLocked reports whether a live booking overlaps [start, end).
func (s *Store) doctorBookedLocked(doctorID int64, start, end time.Time) bool {
	for _, a := range s.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if a.Status != api.StatusPending && a.Status != api.StatusScheduled {
			continue
		}
		if a.StartTime.Before(end) && start.Before(a.EndTime) {
			return true
		}
	}
	return false
}

// Book creates a PENDING appointment after re-checking availability.
func (s *Store) Book(req api.BookAppointmentRequest) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByIDLocked(api.RoleDoctor, req.DoctorID) == nil {
		return 0, errUnknownDoctor
	}
	if s.accountByIDLocked(api.RolePatient, req.PatientID) == nil {
		return 0, errUnknownPatient
	}
	if req.StartTime.Before(s.now()) {
		return 0, errPastSlot
	}
	if s.doctorBookedLocked(req.DoctorID, req.StartTime, req.EndTime) {
		return 0, errSlotTaken
	}
	a := &appointment{
		ID:        s.nextID(&s.nextApptID),
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    api.StatusPending,
		Notes:     req.Notes,
	}
	s.appointments = append(s.appointments, a)
	return a.ID, nil
}

// Transition moves an appointment along the status graph on behalf of its
// doctor. Action is one of accept, reject, complete.
func (s *Store) Transition(doctorID, appointmentID int64, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var target *appointment
	for _, a := range s.appointments {
		if a.ID == appointmentID && a.DoctorID == doctorID {
			target = a
			break
		}
	}
	if target == nil {
		return errNoAppointment
	}
	switch action {
	case "accept":
		if target.Status != api.StatusPending {
			return errNotPending
		}
		target.Status = api.StatusScheduled
	case "reject":
		if target.Status != api.StatusPending {
			return errNotPending
		}
		target.Status = api.StatusCancelled
	case "complete":
		if target.Status != api.StatusScheduled {
			return errNotScheduled
		}
		target.Status = api.StatusCompleted
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func (s *Store) appointmentByIDLocked(id int64) *appointment {
	for _, a := range s.appointments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Store) toAPILocked(a *appointment) api.Appointment {
	out := api.Appointment{
		ID:        a.ID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    a.Status,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Notes:     a.Notes,
	}
	if d := s.accountByIDLocked(api.RoleDoctor, a.DoctorID); d != nil {
		out.DoctorName = d.FullName
	}
	if p := s.accountByIDLocked(api.RolePatient, a.PatientID); p != nil {
		out.PatientName = p.FullName
	}
	return out
}

// DoctorAppointments lists a doctor's appointments filtered by view:
// pending, today (scheduled today), history (completed or cancelled), all.
func (s *Store) DoctorAppointments(doctorID int64, view string) []api.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := []api.Appointment{}
	for _, a := range s.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		switch view {
		case "pending":
			if a.Status != api.StatusPending {
				continue
			}
		case "today":
			sameDay := a.StartTime.Year() == now.Year() && a.StartTime.YearDay() == now.YearDay()
			if !sameDay || (a.Status != api.StatusScheduled && a.Status != api.StatusCompleted) {
				continue
			}
		case "history":
			if a.Status != api.StatusCompleted && a.Status != api.StatusCancelled {
				continue
			}
		}
		out = append(out, s.toAPILocked(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// PatientAppointments lists all of a patient's appointments, newest first.
func (s *Store) PatientAppointments(patientID int64) []api.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Appointment{}
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, s.toAPILocked(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

// AllAppointments is the admin overview, ordered by start time.
func (s *Store) AllAppointments() []api.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Appointment{}
	for _, a := range s.appointments {
		out = append(out, s.toAPILocked(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Dashboard summarizes a doctor's queues.
func (s *Store) Dashboard(doctorID int64) (api.DoctorDashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.accountByIDLocked(api.RoleDoctor, doctorID)
	if d == nil {
		return api.DoctorDashboard{}, false
	}
	now := s.now()
	dash := api.DoctorDashboard{
		DoctorID:       d.ID,
		FullName:       d.FullName,
		Specialization: d.Specialization,
		Status:         "ACTIVE",
	}
	for _, a := range s.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		switch a.Status {
		case api.StatusPending:
			dash.PendingAppointments++
		case api.StatusCompleted:
			dash.CompletedAppointments++
		}
		sameDay := a.StartTime.Year() == now.Year() && a.StartTime.YearDay() == now.YearDay()
		if sameDay && a.Status == api.StatusScheduled {
			dash.TodaysAppointments++
		}
	}
	return dash, true
}
