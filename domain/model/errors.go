package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPlatform          = errors.New("unknown platform")
	ErrHandshakeAlreadyInFlight = errors.New("handshake already in flight")
	ErrNoPendingHandshake       = errors.New("no pending handshake")
	ErrNonceMismatch            = errors.New("nonce mismatch")
	ErrTokenExchangeFailed      = errors.New("token exchange failed")
	ErrPlatformNotConnected     = errors.New("platform not connected")
	ErrScheduleInPast           = errors.New("schedule in past")
	ErrInvalidDraft             = errors.New("invalid draft")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrPostNotFound             = errors.New("post not found")
	ErrDeliveryFailed           = errors.New("delivery failed")
	ErrInvalidSchedule          = errors.New("invalid schedule")
	ErrInvalidEmail             = errors.New("invalid email")
	ErrAlreadySubscribed        = errors.New("already subscribed")
	ErrMediaNotConfigured       = errors.New("media storage not configured")
	ErrProviderNotConfigured    = errors.New("oauth provider not configured")
)

// ViolationKind names one reason a draft cannot be submitted.
type ViolationKind string

const (
	ViolationEmptyContent                       ViolationKind = "EmptyContent"
	ViolationNoPlatformSelected                 ViolationKind = "NoPlatformSelected"
	ViolationPlatformDisconnectedSinceSelection ViolationKind = "PlatformDisconnectedSinceSelection"
	ViolationOverLimit                          ViolationKind = "OverLimit"
)

// Violation is a single validation problem. Platform is set for per-platform kinds.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	Platform Platform      `json:"platform,omitempty"`
}

func (v Violation) String() string {
	if v.Platform != "" {
		return fmt.Sprintf("%s(%s)", v.Kind, v.Platform)
	}
	return string(v.Kind)
}

// InvalidDraftError carries the violations that blocked a submission.
type InvalidDraftError struct {
	Violations []Violation
}

func (e *InvalidDraftError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: [%s]", ErrInvalidDraft, strings.Join(parts, ", "))
}

func (e *InvalidDraftError) Unwrap() error { return ErrInvalidDraft }
