package stubclinic

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// harness wires a stub server to a real api.Client, one client per signed-in
// identity.
type harness struct {
	t     *testing.T
	store *Store
	ts    *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := NewStore()
	// Fixed morning clock so the slot grid is deterministic.
	store.now = func() time.Time {
		return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	}
	SeedDemo(store)
	srv := NewServer(store, "test-secret", time.Hour, logging.New("error"))
	ts := httptest.NewServer(srv.Routes(nil))
	t.Cleanup(ts.Close)
	return &harness{t: t, store: store, ts: ts}
}

func (h *harness) anonymous() *api.Client {
	return api.NewClient(h.ts.URL+"/api", nil, logging.New("error"))
}

func (h *harness) signIn(email, password string) *api.Client {
	h.t.Helper()
	resp, err := h.anonymous().Login(context.Background(), email, password)
	require.NoError(h.t, err)
	return api.NewClient(h.ts.URL+"/api", api.StaticToken(resp.Token), logging.New("error"))
}

func TestLoginIssuesUsableToken(t *testing.T) {
	h := newHarness(t)

	resp, err := h.anonymous().Login(context.Background(), "jane@clinicdesk.local", "patient")
	require.NoError(t, err)
	assert.Equal(t, api.RolePatient, resp.Role)
	require.NotNil(t, resp.UserID)

	client := api.NewClient(h.ts.URL+"/api", api.StaticToken(resp.Token), logging.New("error"))
	me, err := client.PatientMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", me.FullName)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)

	_, err := h.anonymous().Login(context.Background(), "jane@clinicdesk.local", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", api.Message(err, ""))
}

func TestRegisterPatientThenLogin(t *testing.T) {
	h := newHarness(t)

	resp, err := h.anonymous().RegisterPatient(context.Background(), api.RegisterPatientRequest{
		Email:       "new@example.com",
		Password:    "secret1",
		FullName:    "New Patient",
		Phone:       "+1 555 0300",
		DateOfBirth: "1985-06-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)

	_, err = h.anonymous().Login(context.Background(), "new@example.com", "secret1")
	require.NoError(t, err)
}

func TestRegisterDuplicateEmailRefused(t *testing.T) {
	h := newHarness(t)

	_, err := h.anonymous().RegisterPatient(context.Background(), api.RegisterPatientRequest{
		Email: "jane@clinicdesk.local", Password: "x", FullName: "Dup", Phone: "1",
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", api.Message(err, ""))
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.anonymous().Doctors(context.Background())
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestDoctorSearch(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")

	all, err := patient.Doctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	derm, err := patient.SearchDoctors(context.Background(), "derma")
	require.NoError(t, err)
	require.Len(t, derm, 1)
	assert.Equal(t, "Dr. Bob Brown", derm[0].FullName)
}

func TestSlotGridShape(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")

	doctors, err := patient.Doctors(context.Background())
	require.NoError(t, err)
	slots, err := patient.AvailableSlots(context.Background(), doctors[0].ID)
	require.NoError(t, err)

	// 08:00 clock: all six windows today plus six tomorrow.
	require.Len(t, slots, 12)
	assert.Equal(t, "Today (2026-09-01)", slots[0].Date)
	assert.Equal(t, "09:00 - 11:00", slots[0].Time)
	assert.Equal(t, "Tomorrow (2026-09-02)", slots[6].Date)
	assert.Equal(t, "19:00 - 20:00", slots[11].Time)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestSlotGridSkipsPastWindows(t *testing.T) {
	h := newHarness(t)
	h.store.now = func() time.Time {
		return time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	}
	patient := h.signIn("jane@clinicdesk.local", "patient")

	doctors, err := patient.Doctors(context.Background())
	require.NoError(t, err)
	slots, err := patient.AvailableSlots(context.Background(), doctors[0].ID)
	require.NoError(t, err)

	// 14:00 clock: 15/17/19 remain today, all six tomorrow.
	require.Len(t, slots, 9)
	assert.Equal(t, "15:00 - 17:00", slots[0].Time)
}

func bookFirstSlot(t *testing.T, patient *api.Client, doctorID int64) *api.Appointment {
	t.Helper()
	slots, err := patient.AvailableSlots(context.Background(), doctorID)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	appt, err := patient.BookAppointment(context.Background(), api.BookAppointmentRequest{
		DoctorID:  doctorID,
		StartTime: slots[0].StartTime,
		EndTime:   slots[0].EndTime,
		Notes:     "first visit",
	})
	require.NoError(t, err)
	return appt
}

func TestBookingLifecycle(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	doctor := h.signIn("adams@clinicdesk.local", "doctor")

	me, err := doctor.DoctorMe(context.Background())
	require.NoError(t, err)

	appt := bookFirstSlot(t, patient, me.ID)
	assert.Equal(t, api.StatusPending, appt.Status)
	assert.Equal(t, "Dr. Alice Adams", appt.DoctorName)
	assert.Equal(t, "Jane Doe", appt.PatientName)

	// Booked window disappears from the grid.
	slots, err := patient.AvailableSlots(context.Background(), me.ID)
	require.NoError(t, err)
	assert.False(t, slots[0].Available)

	pending, err := doctor.DoctorPendingAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, doctor.AcceptAppointment(context.Background(), appt.ID))

	today, err := doctor.DoctorTodayAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, api.StatusScheduled, today[0].Status)

	require.NoError(t, doctor.CompleteAppointment(context.Background(), appt.ID))

	history, err := doctor.DoctorAppointmentHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, api.StatusCompleted, history[0].Status)
}

func TestDoubleBookingRefused(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	doctors, err := patient.Doctors(context.Background())
	require.NoError(t, err)

	appt := bookFirstSlot(t, patient, doctors[0].ID)
	_, err = patient.BookAppointment(context.Background(), api.BookAppointmentRequest{
		DoctorID:  doctors[0].ID,
		StartTime: appt.StartTime,
		EndTime:   appt.EndTime,
	})
	require.Error(t, err)
	assert.Equal(t, "Time slot is not available", api.Message(err, ""))
}

func TestAcceptTwiceRefused(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	doctor := h.signIn("adams@clinicdesk.local", "doctor")
	me, err := doctor.DoctorMe(context.Background())
	require.NoError(t, err)

	appt := bookFirstSlot(t, patient, me.ID)
	require.NoError(t, doctor.AcceptAppointment(context.Background(), appt.ID))

	err = doctor.AcceptAppointment(context.Background(), appt.ID)
	require.Error(t, err)
	assert.Equal(t, "Appointment is not pending", api.Message(err, ""))
}

func TestDashboardCounts(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	doctor := h.signIn("adams@clinicdesk.local", "doctor")
	me, err := doctor.DoctorMe(context.Background())
	require.NoError(t, err)

	appt := bookFirstSlot(t, patient, me.ID)

	dash, err := doctor.DoctorDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.PendingAppointments)
	assert.Equal(t, 0, dash.TodaysAppointments)

	require.NoError(t, doctor.AcceptAppointment(context.Background(), appt.ID))
	dash, err = doctor.DoctorDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dash.PendingAppointments)
	assert.Equal(t, 1, dash.TodaysAppointments)
}

func TestAppointmentChatParticipantsOnly(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	doctor := h.signIn("adams@clinicdesk.local", "doctor")
	other := h.signIn("brown@clinicdesk.local", "doctor")
	me, err := doctor.DoctorMe(context.Background())
	require.NoError(t, err)

	appt := bookFirstSlot(t, patient, me.ID)

	require.NoError(t, patient.SendAppointmentMessage(context.Background(), appt.ID, "Hi doctor"))
	require.NoError(t, doctor.SendAppointmentMessage(context.Background(), appt.ID, "Hello Jane"))

	msgs, err := doctor.AppointmentMessages(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Jane Doe", msgs[0].SenderName)
	assert.Equal(t, api.RolePatient, msgs[0].SenderType)

	_, err = other.AppointmentMessages(context.Background(), appt.ID)
	require.Error(t, err)
	assert.Equal(t, "Not a participant in this conversation", api.Message(err, ""))
}

func TestHelpChatRoundTrip(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	admin := h.signIn("admin@clinicdesk.local", "admin")

	require.NoError(t, patient.SendHelpMessage(context.Background(), "I cannot log in on my phone", ""))

	users, err := admin.HelpChatUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "jane@clinicdesk.local", users[0].Email)

	require.NoError(t, admin.SendHelpMessage(context.Background(), "Try resetting your password", users[0].Email))

	conv, err := admin.HelpConversation(context.Background(), users[0].Email)
	require.NoError(t, err)
	require.Len(t, conv, 2)

	// The patient's own thread includes the admin reply.
	thread, err := patient.HelpMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, api.RoleAdmin, thread[1].SenderType)
}

func TestHelpChatUsersForbiddenForPatients(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")

	_, err := patient.HelpChatUsers(context.Background())
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
}

func TestRatingOncePerAppointment(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	doctor := h.signIn("adams@clinicdesk.local", "doctor")
	me, err := doctor.DoctorMe(context.Background())
	require.NoError(t, err)

	appt := bookFirstSlot(t, patient, me.ID)

	// PENDING appointments cannot be rated yet.
	err = patient.SubmitRating(context.Background(), appt.ID, api.SubmitRatingRequest{Stars: 5})
	require.Error(t, err)
	assert.Equal(t, "Only confirmed appointments can be rated", api.Message(err, ""))

	require.NoError(t, doctor.AcceptAppointment(context.Background(), appt.ID))
	require.NoError(t, patient.SubmitRating(context.Background(), appt.ID, api.SubmitRatingRequest{Stars: 4, Comment: "Very kind"}))

	err = patient.SubmitRating(context.Background(), appt.ID, api.SubmitRatingRequest{Stars: 5})
	require.Error(t, err)
	assert.Equal(t, "Appointment already rated", api.Message(err, ""))

	ratings, err := patient.DoctorRatings(context.Background(), me.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, "Jane Doe", ratings[0].PatientName)

	doctors, err := patient.SearchDoctors(context.Background(), "adams")
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.InDelta(t, 4.0, doctors[0].AverageRating, 0.001)
}

func TestAdminUserModeration(t *testing.T) {
	h := newHarness(t)
	admin := h.signIn("admin@clinicdesk.local", "admin")

	users, err := admin.AdminUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users.Patients, 1)
	require.Len(t, users.Doctors, 2)

	doctorID := users.Doctors[0].ID
	require.NoError(t, admin.AdminUpdateUser(context.Background(), api.RoleDoctor, doctorID, api.AdminUserUpdate{Specialization: "Neurology"}))

	users, err = admin.AdminUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Neurology", users.Doctors[0].Specialization)

	require.NoError(t, admin.AdminDeleteUser(context.Background(), api.RolePatient, users.Patients[0].ID))
	users, err = admin.AdminUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users.Patients)
}

func TestAdminEndpointsForbiddenForOthers(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")

	_, err := patient.AdminUsers(context.Background())
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
}

func TestAdminAppointmentsOverview(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")
	admin := h.signIn("admin@clinicdesk.local", "admin")
	doctors, err := patient.Doctors(context.Background())
	require.NoError(t, err)

	bookFirstSlot(t, patient, doctors[0].ID)

	appts, err := admin.AdminAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "Jane Doe", appts[0].PatientName)
}

func TestProfileUpdateRoundTrip(t *testing.T) {
	h := newHarness(t)
	patient := h.signIn("jane@clinicdesk.local", "patient")

	updated, err := patient.UpdatePatientMe(context.Background(), api.UpdateProfileRequest{Phone: "+1 555 0999"})
	require.NoError(t, err)
	assert.Equal(t, "+1 555 0999", updated.Phone)

	me, err := patient.PatientMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+1 555 0999", me.Phone)
}
