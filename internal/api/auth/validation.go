package auth

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

// Field limits match the signup form.
const (
	nameMinLen = 3
	nameMaxLen = 20
)

// ValidateSignup checks a registration payload.
func ValidateSignup(firstName, lastName, email, password string) error {
	if strings.TrimSpace(firstName) == "" {
		return errors.New("First name is required.")
	}
	if len(firstName) < nameMinLen || len(firstName) > nameMaxLen {
		return errors.New("First name must be between 3 and 20 characters.")
	}
	if strings.TrimSpace(lastName) == "" {
		return errors.New("Last name is required.")
	}
	if !validEmail(email) {
		return errors.New("Enter a valid email.")
	}
	if !strongPassword(password) {
		return errors.New("Password must be at least 8 characters long, containing at least 1 uppercase, 1 lowercase, 1 number, and 1 special character.")
	}
	return nil
}

// ValidateLogin checks a login payload.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return errors.New("Enter credentials.")
	}
	if !validEmail(email) {
		return errors.New("Invalid email credentials.")
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// strongPassword requires length >= 8 with at least one uppercase letter,
// one lowercase letter, one digit, and one symbol.
func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
