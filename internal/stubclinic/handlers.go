package stubclinic

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"clinicdesk/internal/api"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	account, ok := s.store.Authenticate(req.Email, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.mintToken(account)
	if err != nil {
		s.logger.Error("token mint failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to issue token")
		return
	}
	id := account.ID
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: token, Role: account.Role, UserID: &id})
}

func (s *Server) handleRegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterPatientRequest
	if !decode(w, r, &req) {
		return
	}
	id, ok := s.store.AddAccount(Account{
		Email:       req.Email,
		Password:    req.Password,
		Role:        api.RolePatient,
		FullName:    req.FullName,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	if !ok {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	writeJSON(w, http.StatusCreated, api.RegisterResponse{Message: "Patient registered successfully", UserID: id})
}

func (s *Server) handleRegisterDoctor(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterDoctorRequest
	if !decode(w, r, &req) {
		return
	}
	id, ok := s.store.AddAccount(Account{
		Email:          req.Email,
		Password:       req.Password,
		Role:           api.RoleDoctor,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Specialization: req.Specialization,
	})
	if !ok {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	writeJSON(w, http.StatusCreated, api.RegisterResponse{Message: "Doctor registered successfully", UserID: id})
}

func (s *Server) handlePatientMe(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RolePatient {
		writeError(w, http.StatusForbidden, "Not a patient account")
		return
	}
	writeJSON(w, http.StatusOK, patientProfile(a))
}

func (s *Server) handleUpdatePatientMe(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RolePatient {
		writeError(w, http.StatusForbidden, "Not a patient account")
		return
	}
	var req api.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	updated, err := s.store.UpdateAccount(api.RolePatient, a.ID, api.AdminUserUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   req.Gender,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patientProfile(updated))
}

func (s *Server) handleDoctorMe(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RoleDoctor {
		writeError(w, http.StatusForbidden, "Not a doctor account")
		return
	}
	writeJSON(w, http.StatusOK, s.doctorEntry(a))
}

func (s *Server) handleUpdateDoctorMe(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RoleDoctor {
		writeError(w, http.StatusForbidden, "Not a doctor account")
		return
	}
	var req api.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	updated, err := s.store.UpdateAccount(api.RoleDoctor, a.ID, api.AdminUserUpdate{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Gender:         req.Gender,
		Specialization: req.Specialization,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.doctorEntry(updated))
}

func (s *Server) handleDoctors(w http.ResponseWriter, r *http.Request) {
	doctors := s.store.Doctors(r.URL.Query().Get("search"))
	out := []api.Doctor{}
	for _, d := range doctors {
		out = append(out, s.doctorEntry(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDoctorByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid doctor id")
		return
	}
	d, found := s.store.DoctorByID(id)
	if !found {
		storeError(w, errUnknownDoctor)
		return
	}
	writeJSON(w, http.StatusOK, s.doctorEntry(d))
}

func (s *Server) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid doctor id")
		return
	}
	slots, err := s.store.AvailableSlots(id)
	if err != nil {
		storeError(w, err)
		return
	}
	if slots == nil {
		slots = []api.TimeSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RoleDoctor {
		writeError(w, http.StatusForbidden, "Not a doctor account")
		return
	}
	dash, ok := s.store.Dashboard(a.ID)
	if !ok {
		storeError(w, errUnknownDoctor)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) doctorAppointments(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := accountFrom(r)
		if a.Role != api.RoleDoctor {
			writeError(w, http.StatusForbidden, "Not a doctor account")
			return
		}
		writeJSON(w, http.StatusOK, s.store.DoctorAppointments(a.ID, view))
	}
}

func (s *Server) handlePatientHistory(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RolePatient {
		writeError(w, http.StatusForbidden, "Not a patient account")
		return
	}
	writeJSON(w, http.StatusOK, s.store.PatientAppointments(a.ID))
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RolePatient {
		writeError(w, http.StatusForbidden, "Only patients can book appointments")
		return
	}
	var req api.BookAppointmentRequest
	if !decode(w, r, &req) {
		return
	}
	req.PatientID = a.ID
	id, err := s.store.Book(req)
	if err != nil {
		storeError(w, err)
		return
	}
	doctorName := ""
	if doctor, found := s.store.DoctorByID(req.DoctorID); found {
		doctorName = doctor.FullName
	}
	writeJSON(w, http.StatusCreated, api.Appointment{
		ID:          id,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      api.StatusPending,
		DoctorID:    req.DoctorID,
		DoctorName:  doctorName,
		PatientID:   a.ID,
		PatientName: a.FullName,
		Notes:       req.Notes,
	})
}

func (s *Server) transition(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := accountFrom(r)
		if a.Role != api.RoleDoctor {
			writeError(w, http.StatusForbidden, "Not a doctor account")
			return
		}
		id, ok := pathID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid appointment id")
			return
		}
		if err := s.store.Transition(a.ID, id, action); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment updated"})
	}
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid appointment id")
		return
	}
	messages, err := s.store.AppointmentMessages(id, accountFrom(r))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid appointment id")
		return
	}
	var req api.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if err := s.store.SendAppointmentMessage(id, accountFrom(r), req.Message); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Message sent"})
}

func (s *Server) handleHelpThread(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role == api.RoleAdmin {
		writeJSON(w, http.StatusOK, s.store.HelpAll())
		return
	}
	writeJSON(w, http.StatusOK, s.store.HelpThread(a.Email))
}

func (s *Server) handleHelpSend(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	var req api.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if a.Role == api.RoleAdmin && req.RecipientEmail == "" {
		writeError(w, http.StatusBadRequest, "Recipient is required")
		return
	}
	s.store.SendHelpMessage(a, req.Message, req.RecipientEmail)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Message sent"})
}

func (s *Server) handleHelpUsers(w http.ResponseWriter, r *http.Request) {
	if accountFrom(r).Role != api.RoleAdmin {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	writeJSON(w, http.StatusOK, s.store.HelpChatUsers())
}

func (s *Server) handleHelpConversation(w http.ResponseWriter, r *http.Request) {
	if accountFrom(r).Role != api.RoleAdmin {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	writeJSON(w, http.StatusOK, s.store.HelpConversation(email))
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r)
	if a.Role != api.RolePatient {
		writeError(w, http.StatusForbidden, "Only patients can rate appointments")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid appointment id")
		return
	}
	var req api.SubmitRatingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		writeError(w, http.StatusBadRequest, "Stars must be between 1 and 5")
		return
	}
	if err := s.store.SubmitRating(id, a.ID, req.Stars, req.Comment); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Rating submitted"})
}

func (s *Server) handleDoctorRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid doctor id")
		return
	}
	writeJSON(w, http.StatusOK, s.store.DoctorRatings(id))
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	out := api.AdminUserList{Patients: []api.AdminUser{}, Doctors: []api.AdminUser{}}
	for _, a := range s.store.AccountsByRole(api.RolePatient) {
		out.Patients = append(out.Patients, adminEntry(a))
	}
	for _, a := range s.store.AccountsByRole(api.RoleDoctor) {
		out.Doctors = append(out.Doctors, adminEntry(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func userTypeParam(r *http.Request) (api.Role, bool) {
	switch strings.ToUpper(chi.URLParam(r, "type")) {
	case string(api.RolePatient):
		return api.RolePatient, true
	case string(api.RoleDoctor):
		return api.RoleDoctor, true
	}
	return "", false
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	role, ok := userTypeParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user type")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req api.AdminUserUpdate
	if !decode(w, r, &req) {
		return
	}
	updated, err := s.store.UpdateAccount(role, id, req)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminEntry(updated))
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	role, ok := userTypeParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user type")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if !s.store.DeleteAccount(role, id) {
		storeError(w, errUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (s *Server) handleAdminAppointments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.AllAppointments())
}

func patientProfile(a *Account) api.PatientProfile {
	return api.PatientProfile{
		ID:          a.ID,
		FullName:    a.FullName,
		Email:       a.Email,
		Phone:       a.Phone,
		DateOfBirth: a.DateOfBirth,
		Gender:      a.Gender,
	}
}

func (s *Server) doctorEntry(a *Account) api.Doctor {
	return api.Doctor{
		ID:             a.ID,
		FullName:       a.FullName,
		Email:          a.Email,
		Phone:          a.Phone,
		Specialization: a.Specialization,
		Gender:         a.Gender,
		AverageRating:  s.store.AverageRating(a.ID),
	}
}

func adminEntry(a *Account) api.AdminUser {
	return api.AdminUser{
		ID:             a.ID,
		Type:           a.Role,
		FullName:       a.FullName,
		Email:          a.Email,
		Phone:          a.Phone,
		DateOfBirth:    a.DateOfBirth,
		Gender:         a.Gender,
		Specialization: a.Specialization,
	}
}
