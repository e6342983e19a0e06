package stubclinic

import "clinicdesk/internal/api"

// SeedDemo loads a small data set so a fresh stub is usable immediately:
// one admin, two doctors, one patient. Passwords are dev-only.
func SeedDemo(s *Store) {
	s.AddAccount(Account{
		Email:    "admin@clinicdesk.local",
		Password: "admin",
		Role:     api.RoleAdmin,
		FullName: "Admin",
	})
	s.AddAccount(Account{
		Email:          "adams@clinicdesk.local",
		Password:       "doctor",
		Role:           api.RoleDoctor,
		FullName:       "Dr. Alice Adams",
		Phone:          "+1 555 0101",
		Specialization: "Cardiology",
	})
	s.AddAccount(Account{
		Email:          "brown@clinicdesk.local",
		Password:       "doctor",
		Role:           api.RoleDoctor,
		FullName:       "Dr. Bob Brown",
		Phone:          "+1 555 0102",
		Specialization: "Dermatology",
	})
	s.AddAccount(Account{
		Email:       "jane@clinicdesk.local",
		Password:    "patient",
		Role:        api.RolePatient,
		FullName:    "Jane Doe",
		Phone:       "+1 555 0201",
		DateOfBirth: "1990-04-12",
		Gender:      "FEMALE",
	})
}
