package identity

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// AuthErrorKind enumerates the provider rejections the forms know about.
type AuthErrorKind string

const (
	KindEmailAlreadyInUse   AuthErrorKind = "email-already-in-use"
	KindInvalidEmail        AuthErrorKind = "invalid-email"
	KindWeakPassword        AuthErrorKind = "weak-password"
	KindOperationNotAllowed AuthErrorKind = "operation-not-allowed"
	KindUnknown             AuthErrorKind = "unknown"
)

const MinPasswordLength = 6

var messages = map[AuthErrorKind]string{
	KindEmailAlreadyInUse:   "This email is already registered",
	KindInvalidEmail:        "Please enter a valid email address",
	KindWeakPassword:        "Password should be at least 6 characters",
	KindOperationNotAllowed: "Email/password accounts are not enabled",
	KindUnknown:             "Registration failed. Please try again",
}

// AuthError is a classified provider rejection.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth/%s: %v", e.Kind, e.Err)
	}
	return "auth/" + string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the fixed user-facing text for the error kind.
func (e *AuthError) Message() string {
	return MessageFor(e.Kind)
}

func MessageFor(kind AuthErrorKind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindUnknown]
}

// KindOf returns the AuthErrorKind carried by err, or KindUnknown.
func KindOf(err error) AuthErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// ValidateCredentials applies the checks the provider would otherwise reject
// with invalid-email or weak-password.
func ValidateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return NewAuthError(KindInvalidEmail, err)
	}
	if len(password) < MinPasswordLength {
		return NewAuthError(KindWeakPassword, nil)
	}
	return nil
}
