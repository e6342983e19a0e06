package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

type fakeGateway struct {
	pending []api.Appointment
	today   []api.Appointment
	all     []api.Appointment

	pendingCalls int
	todayCalls   int
	allCalls     int

	acceptErr   error
	rejectErr   error
	completeErr error
	acceptIDs   []int64
}

func (f *fakeGateway) DoctorPendingAppointments(ctx context.Context) ([]api.Appointment, error) {
	f.pendingCalls++
	return append([]api.Appointment(nil), f.pending...), nil
}

func (f *fakeGateway) DoctorTodayAppointments(ctx context.Context) ([]api.Appointment, error) {
	f.todayCalls++
	return append([]api.Appointment(nil), f.today...), nil
}

func (f *fakeGateway) DoctorAllAppointments(ctx context.Context) ([]api.Appointment, error) {
	f.allCalls++
	return append([]api.Appointment(nil), f.all...), nil
}

func (f *fakeGateway) AcceptAppointment(ctx context.Context, id int64) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.acceptIDs = append(f.acceptIDs, id)
	return nil
}

func (f *fakeGateway) RejectAppointment(ctx context.Context, id int64) error {
	return f.rejectErr
}

func (f *fakeGateway) CompleteAppointment(ctx context.Context, id int64) error {
	return f.completeErr
}

func appt(id int64, status api.AppointmentStatus) api.Appointment {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	return api.Appointment{ID: id, Status: status, StartTime: start, EndTime: start.Add(2 * time.Hour), PatientName: "Jane Doe"}
}

func newLoaded(t *testing.T, gw *fakeGateway) *Controller {
	t.Helper()
	c := NewController(gw, logging.New("error"))
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestLoadFetchesEachCollectionOnce(t *testing.T) {
	gw := &fakeGateway{
		pending: []api.Appointment{appt(1, api.StatusPending)},
		today:   []api.Appointment{appt(2, api.StatusScheduled)},
		all:     []api.Appointment{appt(3, api.StatusCompleted)},
	}
	c := newLoaded(t, gw)

	assert.Equal(t, 1, gw.pendingCalls)
	assert.Equal(t, 1, gw.todayCalls)
	assert.Equal(t, 1, gw.allCalls)
	assert.Len(t, c.Pending(), 1)
	assert.Len(t, c.Today(), 1)
	assert.Len(t, c.History(), 1)
}

func TestControlsFollowStatusGraph(t *testing.T) {
	gw := &fakeGateway{
		pending: []api.Appointment{appt(1, api.StatusPending)},
		today: []api.Appointment{
			appt(2, api.StatusScheduled),
			appt(3, api.StatusCompleted),
		},
	}
	c := newLoaded(t, gw)

	assert.True(t, c.CanAccept(1))
	assert.True(t, c.CanReject(1))
	assert.False(t, c.CanAccept(2), "no accept control on a non-pending appointment")
	assert.False(t, c.CanAccept(3))
	assert.True(t, c.CanComplete(2))
	assert.False(t, c.CanComplete(3), "no complete control on a completed appointment")
	assert.False(t, c.CanComplete(1))
}

func TestAcceptRemovesFromPendingAndRefreshesToday(t *testing.T) {
	gw := &fakeGateway{
		pending: []api.Appointment{appt(1, api.StatusPending), appt(4, api.StatusPending)},
	}
	c := newLoaded(t, gw)

	gw.today = []api.Appointment{appt(1, api.StatusScheduled)}
	require.NoError(t, c.Accept(context.Background(), 1))

	assert.Equal(t, []int64{1}, gw.acceptIDs)
	require.Len(t, c.Pending(), 1)
	assert.Equal(t, int64(4), c.Pending()[0].ID)
	require.Len(t, c.Today(), 1)
	assert.Equal(t, api.StatusScheduled, c.Today()[0].Status)
	assert.Equal(t, 2, gw.todayCalls, "accept refreshes today's queue")
	assert.Equal(t, MutationConfirmed, c.Mutation(1))
}

func TestAcceptFailureLeavesPendingUntouched(t *testing.T) {
	gw := &fakeGateway{
		pending:   []api.Appointment{appt(1, api.StatusPending)},
		acceptErr: &api.Error{StatusCode: 409, Message: "Appointment is not pending"},
	}
	c := newLoaded(t, gw)

	err := c.Accept(context.Background(), 1)
	require.Error(t, err)
	assert.Len(t, c.Pending(), 1, "failed accept must not remove the row")
	assert.Equal(t, "Appointment is not pending", c.ErrorMessage())
	assert.Equal(t, MutationRolledBack, c.Mutation(1))
}

func TestAcceptInvalidStatusRefusedWithoutNetwork(t *testing.T) {
	gw := &fakeGateway{today: []api.Appointment{appt(2, api.StatusScheduled)}}
	c := newLoaded(t, gw)

	err := c.Accept(context.Background(), 2)
	require.Error(t, err)
	assert.Empty(t, gw.acceptIDs)
}

func TestRejectRemovesFromPendingOnly(t *testing.T) {
	gw := &fakeGateway{
		pending: []api.Appointment{appt(1, api.StatusPending)},
		today:   []api.Appointment{appt(2, api.StatusScheduled)},
	}
	c := newLoaded(t, gw)

	require.NoError(t, c.Reject(context.Background(), 1))
	assert.Empty(t, c.Pending())
	assert.Len(t, c.Today(), 1, "reject must not touch today's queue")
	assert.Equal(t, 1, gw.todayCalls, "reject must not refresh today")
}

func TestCompleteFlipsStatusInPlace(t *testing.T) {
	gw := &fakeGateway{today: []api.Appointment{appt(2, api.StatusScheduled)}}
	c := newLoaded(t, gw)

	require.NoError(t, c.Complete(context.Background(), 2))

	today := c.Today()
	require.Len(t, today, 1, "completed row stays in today's queue")
	assert.Equal(t, api.StatusCompleted, today[0].Status)
	assert.Equal(t, MutationConfirmed, c.Mutation(2))
	assert.False(t, c.CanComplete(2), "complete is SCHEDULED -> COMPLETED only")
}

func TestCompleteFailureRollsBack(t *testing.T) {
	gw := &fakeGateway{
		today:       []api.Appointment{appt(2, api.StatusScheduled)},
		completeErr: &api.Error{StatusCode: 500, Message: "boom"},
	}
	c := newLoaded(t, gw)

	err := c.Complete(context.Background(), 2)
	require.Error(t, err)

	today := c.Today()
	require.Len(t, today, 1)
	assert.Equal(t, api.StatusScheduled, today[0].Status, "optimistic flip must roll back")
	assert.Equal(t, MutationRolledBack, c.Mutation(2))
	assert.True(t, c.CanComplete(2), "rolled-back row is actionable again")
}

func TestFailureScopedToSingleAppointment(t *testing.T) {
	gw := &fakeGateway{
		pending:   []api.Appointment{appt(1, api.StatusPending), appt(4, api.StatusPending)},
		rejectErr: &api.Error{StatusCode: 500, Message: "boom"},
	}
	c := newLoaded(t, gw)

	require.Error(t, c.Reject(context.Background(), 1))

	// Other rows stay actionable after one failed action.
	assert.True(t, c.CanAccept(4))
	gw.rejectErr = nil
	require.NoError(t, c.Reject(context.Background(), 4))
}
