package stubclinic

import (
	"sort"
	"strings"

	"clinicdesk/internal/api"
)

// AppointmentMessages returns a conversation in sent order. The caller must
// be the appointment's patient, its doctor, or an admin.
func (s *Store) AppointmentMessages(appointmentID int64, viewer *Account) ([]api.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkParticipantLocked(appointmentID, viewer); err != nil {
		return nil, err
	}
	out := []api.ChatMessage{}
	for _, m := range s.chat {
		if m.AppointmentID != appointmentID {
			continue
		}
		name := ""
		if a, ok := s.accounts[m.SenderEmail]; ok {
			name = a.FullName
		}
		out = append(out, api.ChatMessage{
			ID:         m.ID,
			SenderType: m.SenderType,
			SenderName: name,
			Message:    m.Message,
			SentAt:     m.SentAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func (s *Store) SendAppointmentMessage(appointmentID int64, sender *Account, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkParticipantLocked(appointmentID, sender); err != nil {
		return err
	}
	s.chat = append(s.chat, &chatMessage{
		ID:            s.nextID(&s.nextMsgID),
		AppointmentID: appointmentID,
		SenderEmail:   sender.Email,
		SenderType:    sender.Role,
		Message:       body,
		SentAt:        s.now(),
	})
	return nil
}

func (s *Store) checkParticipantLocked(appointmentID int64, viewer *Account) error {
	a := s.appointmentByIDLocked(appointmentID)
	if a == nil {
		return errNoAppointment
	}
	if viewer.Role == api.RoleAdmin {
		return nil
	}
	if viewer.Role == api.RoleDoctor && a.DoctorID == viewer.ID {
		return nil
	}
	if viewer.Role == api.RolePatient && a.PatientID == viewer.ID {
		return nil
	}
	return errNotParticipant
}

// HelpThread returns the messages a non-admin sees: everything they sent or
// that an admin addressed to them.
func (s *Store) HelpThread(email string) []api.HelpMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	out := []api.HelpMessage{}
	for _, m := range s.help {
		if m.SenderEmail == email || m.RecipientEmail == email {
			out = append(out, helpToAPI(m))
		}
	}
	return out
}

// HelpConversation is the admin view of one user's thread.
func (s *Store) HelpConversation(email string) []api.HelpMessage {
	return s.HelpThread(email)
}

// HelpAll is the admin view before a conversation is selected.
func (s *Store) HelpAll() []api.HelpMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.HelpMessage{}
	for _, m := range s.help {
		out = append(out, helpToAPI(m))
	}
	return out
}

func (s *Store) SendHelpMessage(sender *Account, body, recipientEmail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.help = append(s.help, &helpMessage{
		ID:             s.nextID(&s.nextMsgID),
		SenderEmail:    sender.Email,
		RecipientEmail: strings.ToLower(recipientEmail),
		SenderType:     sender.Role,
		Message:        body,
		SentAt:         s.now(),
	})
}

// HelpChatUsers lists distinct non-admin senders, for the admin reply picker.
func (s *Store) HelpChatUsers() []api.HelpChatUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]api.Role)
	var order []string
	for _, m := range s.help {
		if m.SenderType == api.RoleAdmin {
			continue
		}
		if _, ok := seen[m.SenderEmail]; !ok {
			order = append(order, m.SenderEmail)
		}
		seen[m.SenderEmail] = m.SenderType
	}
	out := []api.HelpChatUser{}
	for _, email := range order {
		out = append(out, api.HelpChatUser{Email: email, Type: seen[email]})
	}
	return out
}

func helpToAPI(m *helpMessage) api.HelpMessage {
	return api.HelpMessage{
		ID:          m.ID,
		SenderEmail: m.SenderEmail,
		SenderType:  m.SenderType,
		Message:     m.Message,
		SentAt:      m.SentAt,
	}
}

// SubmitRating records one rating per appointment, by its patient, once the
// appointment has been confirmed or finished.
func (s *Store) SubmitRating(appointmentID, patientID int64, stars int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.appointmentByIDLocked(appointmentID)
	if a == nil || a.PatientID != patientID {
		return errNoAppointment
	}
	if a.Status != api.StatusScheduled && a.Status != api.StatusCompleted {
		return errNotRatable
	}
	for _, r := range s.ratings {
		if r.AppointmentID == appointmentID {
			return errAlreadyRated
		}
	}
	s.ratings = append(s.ratings, &rating{
		ID:            s.nextID(&s.nextRatingID),
		AppointmentID: appointmentID,
		DoctorID:      a.DoctorID,
		PatientID:     patientID,
		Stars:         stars,
		Comment:       comment,
		CreatedAt:     s.now(),
	})
	return nil
}

// DoctorRatings lists a doctor's reviews, newest first.
func (s *Store) DoctorRatings(doctorID int64) []api.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Rating{}
	for _, r := range s.ratings {
		if r.DoctorID != doctorID {
			continue
		}
		name := ""
		if p := s.accountByIDLocked(api.RolePatient, r.PatientID); p != nil {
			name = p.FullName
		}
		out = append(out, api.Rating{
			ID:          r.ID,
			Stars:       r.Stars,
			Comment:     r.Comment,
			PatientName: name,
			CreatedAt:   r.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// AverageRating is 0 when the doctor has no reviews yet.
func (s *Store) AverageRating(doctorID int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, n := 0, 0
	for _, r := range s.ratings {
		if r.DoctorID == doctorID {
			sum += r.Stars
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
