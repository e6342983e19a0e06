package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Doctor{})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, StaticToken("tok-123"), nil)
	if _, err := c.Doctors(context.Background()); err != nil {
		t.Fatalf("Doctors error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
}

func TestNoBearerWhenTokenEmpty(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Doctor{})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, StaticToken(""), nil)
	if _, err := c.Doctors(context.Background()); err != nil {
		t.Fatalf("Doctors error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestServerRejectionCarriesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Slot already booked"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	_, err := c.BookAppointment(context.Background(), BookAppointmentRequest{DoctorID: 1, PatientID: 2})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := Message(err, "Failed to book"); got != "Slot already booked" {
		t.Fatalf("expected server message verbatim, got %q", got)
	}
}

func TestMessageFallsBackWhenNoEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	_, err := c.Doctors(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := Message(err, "Failed to load doctors"); got != "Failed to load doctors" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestMessageFallsBackOnTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil, nil)
	_, err := c.Doctors(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if got := Message(err, "Failed to load doctors"); got != "Failed to load doctors" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestListNormalization(t *testing.T) {
	bodies := map[string]string{
		"bare array":     `[{"id":1,"status":"PENDING"}]`,
		"items envelope": `{"items":[{"id":1,"status":"PENDING"}]}`,
		"data envelope":  `{"data":[{"id":1,"status":"PENDING"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer ts.Close()

			c := NewClient(ts.URL, nil, nil)
			appts, err := c.DoctorPendingAppointments(context.Background())
			if err != nil {
				t.Fatalf("DoctorPendingAppointments error: %v", err)
			}
			if len(appts) != 1 || appts[0].ID != 1 || appts[0].Status != StatusPending {
				t.Fatalf("unexpected appointments: %+v", appts)
			}
		})
	}
}

func TestListNormalizationNull(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	appts, err := c.DoctorPendingAppointments(context.Background())
	if err != nil {
		t.Fatalf("DoctorPendingAppointments error: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("expected empty list, got %+v", appts)
	}
}

func TestAvailableSlotsDecoding(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doctors/7/available-slots" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]TimeSlot{{
			Date:      "Today (2026-09-01)",
			Time:      "09:00 - 11:00",
			StartTime: start,
			EndTime:   start.Add(2 * time.Hour),
			Available: true,
		}})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	slots, err := c.AvailableSlots(context.Background(), 7)
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	if len(slots) != 1 || !slots[0].Available || !slots[0].StartTime.Equal(start) {
		t.Fatalf("unexpected slots: %+v", slots)
	}
}

func TestBookAppointmentPayload(t *testing.T) {
	var got BookAppointmentRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/appointments/book" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Appointment{ID: 42, Status: StatusPending})
	}))
	defer ts.Close()

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	c := NewClient(ts.URL, StaticToken("tok"), nil)
	appt, err := c.BookAppointment(context.Background(), BookAppointmentRequest{
		DoctorID:  7,
		PatientID: 3,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Notes:     "first visit",
	})
	if err != nil {
		t.Fatalf("BookAppointment error: %v", err)
	}
	if appt.ID != 42 {
		t.Fatalf("unexpected appointment id: %d", appt.ID)
	}
	if got.DoctorID != 7 || got.PatientID != 3 || got.Notes != "first visit" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestLifecycleTransitionPaths(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("expected PUT, got %s", r.Method)
		}
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, StaticToken("tok"), nil)
	ctx := context.Background()
	if err := c.AcceptAppointment(ctx, 5); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := c.RejectAppointment(ctx, 6); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := c.CompleteAppointment(ctx, 7); err != nil {
		t.Fatalf("complete: %v", err)
	}

	want := []string{
		"/doctors/appointments/5/accept",
		"/doctors/appointments/6/reject",
		"/doctors/appointments/7/complete",
	}
	if len(paths) != len(want) {
		t.Fatalf("unexpected paths: %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("path[%d]=%s want=%s", i, paths[i], want[i])
		}
	}
}

func TestHelpConversationEscapesEmail(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode([]HelpMessage{})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, StaticToken("tok"), nil)
	if _, err := c.HelpConversation(context.Background(), "pat ient@example.com"); err != nil {
		t.Fatalf("HelpConversation error: %v", err)
	}
	if gotPath != "/help-chat/conversation/pat%20ient@example.com" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}
