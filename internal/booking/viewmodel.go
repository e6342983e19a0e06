// Package booking is the patient-side booking flow: pick a doctor, pick an
// available slot, submit. All slot computation and conflict detection stay
// server-side; this view-model only tracks selection state and refuses
// submissions that cannot succeed.
package booking

import (
	"context"
	"errors"
	"sync"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// State is the booking session's position in its flow.
type State int

const (
	StateNoDoctor State = iota
	StateLoadingSlots
	StateSlotsLoaded
	StateSlotSelected
	StateSubmitting
	StateSucceeded
)

// Gateway is the slice of the API client the booking flow needs.
type Gateway interface {
	Doctors(ctx context.Context) ([]api.Doctor, error)
	PatientMe(ctx context.Context) (*api.PatientProfile, error)
	AvailableSlots(ctx context.Context, doctorID int64) ([]api.TimeSlot, error)
	BookAppointment(ctx context.Context, req api.BookAppointmentRequest) (*api.Appointment, error)
}

// ViewModel holds one booking session. Methods may be called from timer or
// completion callbacks; the mutex plus the slot generation counter keep a
// late slot response from clobbering a newer doctor selection.
type ViewModel struct {
	mu     sync.Mutex
	gw     Gateway
	logger *logging.Logger

	doctors  []api.Doctor
	patient  *api.PatientProfile
	doctorID int64
	slots    []api.TimeSlot
	selected *api.TimeSlot
	notes    string

	state         State
	errMsg        string
	slotGen       uint64
	appointmentID int64
}

func NewViewModel(gw Gateway, logger *logging.Logger) *ViewModel {
	if logger == nil {
		logger = logging.Default()
	}
	return &ViewModel{
		gw:     gw,
		logger: logger.WithComponent("booking"),
		state:  StateNoDoctor,
	}
}

// Load fetches the doctor directory and probes for a patient profile. The
// probe failing just means the signed-in account is not a patient; booking
// stays visible but Submit will refuse.
func (vm *ViewModel) Load(ctx context.Context) error {
	doctors, err := vm.gw.Doctors(ctx)
	if err != nil {
		vm.setError(api.Message(err, "Failed to load doctors"))
		return err
	}

	patient, err := vm.gw.PatientMe(ctx)
	if err != nil {
		vm.logger.Debug("no patient profile for booking session", "error", err)
		patient = nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.doctors = doctors
	vm.patient = patient
	return nil
}

// SelectDoctor clears any slot selection and fetches availability for the
// chosen doctor. Responses are fenced: if another SelectDoctor call started
// after this one, this response is discarded (last selected doctor wins).
func (vm *ViewModel) SelectDoctor(ctx context.Context, doctorID int64) error {
	vm.mu.Lock()
	vm.doctorID = doctorID
	vm.selected = nil
	vm.slots = nil
	vm.errMsg = ""
	vm.slotGen++
	gen := vm.slotGen
	if doctorID == 0 {
		vm.state = StateNoDoctor
		vm.mu.Unlock()
		return nil
	}
	vm.state = StateLoadingSlots
	vm.mu.Unlock()

	slots, err := vm.gw.AvailableSlots(ctx, doctorID)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.slotGen {
		// A newer selection superseded this fetch.
		vm.logger.Debug("discarding stale slot response", "doctor_id", doctorID)
		return nil
	}
	if err != nil {
		vm.state = StateSlotsLoaded
		vm.errMsg = api.Message(err, "Failed to load available slots")
		return err
	}
	vm.slots = slots
	vm.state = StateSlotsLoaded
	return nil
}

// SelectSlot picks one of the loaded slots. Unavailable slots are refused
// outright, not merely warned about.
func (vm *ViewModel) SelectSlot(slot api.TimeSlot) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state != StateSlotsLoaded && vm.state != StateSlotSelected {
		return errors.New("Please select a doctor")
	}
	if !slot.Available {
		return errors.New("Selected slot is not available")
	}
	vm.selected = &slot
	vm.state = StateSlotSelected
	vm.errMsg = ""
	return nil
}

func (vm *ViewModel) SetNotes(notes string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.notes = notes
}

// Submit books the selected slot. Precondition failures are reported without
// any network call. A server rejection reverts to SlotSelected with the
// selection intact so the user can retry.
func (vm *ViewModel) Submit(ctx context.Context) (int64, error) {
	vm.mu.Lock()
	if vm.doctorID == 0 {
		vm.mu.Unlock()
		return 0, vm.fail("Please select a doctor")
	}
	if vm.patient == nil {
		vm.mu.Unlock()
		return 0, vm.fail("Only patients can book appointments")
	}
	if vm.selected == nil {
		vm.mu.Unlock()
		return 0, vm.fail("Please select a time slot")
	}
	if !vm.selected.Available {
		vm.mu.Unlock()
		return 0, vm.fail("Selected slot is not available")
	}

	req := api.BookAppointmentRequest{
		DoctorID:  vm.doctorID,
		PatientID: vm.patient.ID,
		StartTime: vm.selected.StartTime,
		EndTime:   vm.selected.EndTime,
		Notes:     vm.notes,
	}
	vm.state = StateSubmitting
	vm.errMsg = ""
	vm.mu.Unlock()

	appt, err := vm.gw.BookAppointment(ctx, req)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if err != nil {
		vm.state = StateSlotSelected
		vm.errMsg = api.Message(err, "Failed to book")
		return 0, errors.New(vm.errMsg)
	}
	vm.state = StateSucceeded
	vm.appointmentID = appt.ID
	vm.logger.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", req.DoctorID)
	return appt.ID, nil
}

func (vm *ViewModel) fail(msg string) error {
	vm.mu.Lock()
	vm.errMsg = msg
	vm.mu.Unlock()
	return errors.New(msg)
}

func (vm *ViewModel) setError(msg string) {
	vm.mu.Lock()
	vm.errMsg = msg
	vm.mu.Unlock()
}

func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

func (vm *ViewModel) Doctors() []api.Doctor {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.doctors
}

func (vm *ViewModel) Slots() []api.TimeSlot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.slots
}

func (vm *ViewModel) SelectedSlot() *api.TimeSlot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selected
}

func (vm *ViewModel) ErrorMessage() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.errMsg
}

func (vm *ViewModel) AppointmentID() int64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.appointmentID
}
