// Package stubclinic is an in-memory clinic backend for local development
// and integration tests. It serves the same REST surface the real backend
// does, with data held in process and reset on restart.
package stubclinic

import (
	"sort"
	"strings"
	"sync"
	"time"

	"clinicdesk/internal/api"
)

// Account is one stored user. Role selects which optional fields apply.
type Account struct {
	ID             int64
	Email          string
	Password       string
	Role           api.Role
	FullName       string
	Phone          string
	DateOfBirth    string
	Gender         string
	Specialization string
}

type appointment struct {
	ID        int64
	DoctorID  int64
	PatientID int64
	StartTime time.Time
	EndTime   time.Time
	Status    api.AppointmentStatus
	Notes     string
}

type chatMessage struct {
	ID            int64
	AppointmentID int64
	SenderEmail   string
	SenderType    api.Role
	Message       string
	SentAt        time.Time
}

type helpMessage struct {
	ID             int64
	SenderEmail    string
	RecipientEmail string
	SenderType     api.Role
	Message        string
	SentAt         time.Time
}

type rating struct {
	ID            int64
	AppointmentID int64
	DoctorID      int64
	PatientID     int64
	Stars         int
	Comment       string
	CreatedAt     time.Time
}

// Store holds all stub state behind one mutex. Handlers do little work per
// request, so a single lock is fine at this scale.
type Store struct {
	mu sync.Mutex

	accounts     map[string]*Account // keyed by lowercase email
	appointments []*appointment
	chat         []*chatMessage
	help         []*helpMessage
	ratings      []*rating

	nextUserID   int64
	nextApptID   int64
	nextMsgID    int64
	nextRatingID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*Account),
		now:      time.Now,
	}
}

func (s *Store) nextID(counter *int64) int64 {
	*counter++
	return *counter
}

// AddAccount registers a user. Returns false when the email is taken.
func (s *Store) AddAccount(a Account) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, exists := s.accounts[key]; exists {
		return 0, false
	}
	a.ID = s.nextID(&s.nextUserID)
	a.Email = key
	s.accounts[key] = &a
	return a.ID, true
}

func (s *Store) Authenticate(email, password string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok || a.Password != password {
		return nil, false
	}
	copied := *a
	return &copied, true
}

func (s *Store) AccountByEmail(email string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, false
	}
	copied := *a
	return &copied, true
}

func (s *Store) accountByIDLocked(role api.Role, id int64) *Account {
	for _, a := range s.accounts {
		if a.Role == role && a.ID == id {
			return a
		}
	}
	return nil
}

// UpdateAccount applies non-empty fields from upd to the stored account.
func (s *Store) UpdateAccount(role api.Role, id int64, upd api.AdminUserUpdate) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByIDLocked(role, id)
	if a == nil {
		return nil, errUserNotFound
	}
	if upd.Email != "" && strings.ToLower(upd.Email) != a.Email {
		key := strings.ToLower(upd.Email)
		if _, taken := s.accounts[key]; taken {
			return nil, errEmailTaken
		}
		delete(s.accounts, a.Email)
		a.Email = key
		s.accounts[key] = a
	}
	if upd.FullName != "" {
		a.FullName = upd.FullName
	}
	if upd.Phone != "" {
		a.Phone = upd.Phone
	}
	if upd.Gender != "" {
		a.Gender = upd.Gender
	}
	if upd.Specialization != "" {
		a.Specialization = upd.Specialization
	}
	copied := *a
	return &copied, nil
}

func (s *Store) DeleteAccount(role api.Role, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByIDLocked(role, id)
	if a == nil {
		return false
	}
	delete(s.accounts, a.Email)
	return true
}

// Doctors lists doctor accounts, optionally filtered by a case-insensitive
// substring match on name or specialization.
func (s *Store) Doctors(search string) []*Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*Account
	for _, a := range s.accounts {
		if a.Role != api.RoleDoctor {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.FullName), search) &&
			!strings.Contains(strings.ToLower(a.Specialization), search) {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) DoctorByID(id int64) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByIDLocked(api.RoleDoctor, id)
	if a == nil {
		return nil, false
	}
	copied := *a
	return &copied, true
}

func (s *Store) PatientByID(id int64) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByIDLocked(api.RolePatient, id)
	if a == nil {
		return nil, false
	}
	copied := *a
	return &copied, true
}

// AccountsByRole lists all accounts with the given role, ordered by id.
func (s *Store) AccountsByRole(role api.Role) []*Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Account
	for _, a := range s.accounts {
		if a.Role == role {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
