// Package forms holds pure form-field validators. Each returns a
// user-visible failure message, or "" when the value is acceptable.
// Validation runs client-side before any network call.
package forms

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneChars   = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// Earliest accepted birth date. Dates on or before this are rejected; the
// backend stores birth years, not historical records.
var minBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

func Email(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email"
	}
	return ""
}

func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters"
	}
	return ""
}

// Phone accepts permissive separator formatting but requires at least ten
// digits underneath.
func Phone(phone string) string {
	if phone == "" {
		return "Phone number is required"
	}
	if !phoneChars.MatchString(phone) {
		return "Please enter a valid phone number"
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 10 {
		return "Please enter a valid phone number"
	}
	return ""
}

func Name(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Name is required"
	}
	if len(trimmed) < 2 {
		return "Name must be at least 2 characters"
	}
	return ""
}

// BirthDate expects YYYY-MM-DD, strictly in the past, and after 1900-01-01.
func BirthDate(date string) string {
	if date == "" {
		return "Date is required"
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Please enter a valid date"
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !parsed.Before(today) {
		return "Date cannot be in the future"
	}
	if !parsed.After(minBirthDate) {
		return "Please enter a valid birth date"
	}
	return ""
}

// Errors maps field name to failure message for every failed field.
type Errors map[string]string

func (e Errors) Any() bool { return len(e) > 0 }

// PatientRegistration validates all patient signup fields at once; every
// failure is reported, not just the first.
func PatientRegistration(email, password, fullName, phone, dateOfBirth string) Errors {
	errs := Errors{}
	put(errs, "email", Email(email))
	put(errs, "password", Password(password))
	put(errs, "fullName", Name(fullName))
	put(errs, "phone", Phone(phone))
	put(errs, "dateOfBirth", BirthDate(dateOfBirth))
	return errs
}

// DoctorRegistration validates all doctor signup fields at once.
func DoctorRegistration(email, password, fullName, phone, specialization string) Errors {
	errs := Errors{}
	put(errs, "email", Email(email))
	put(errs, "password", Password(password))
	put(errs, "fullName", Name(fullName))
	put(errs, "phone", Phone(phone))
	if strings.TrimSpace(specialization) == "" {
		errs["specialization"] = "Specialization is required"
	}
	return errs
}

func put(errs Errors, field, msg string) {
	if msg != "" {
		errs[field] = msg
	}
}
