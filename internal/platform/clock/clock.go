// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package clock centralizes campus-local time handling.
//
// Attendance dates are calendar days in the institute's timezone, not UTC.
// Every date stamp, off-day decision, and work-duration calculation flows
// through this package so services and tests share one notion of "today".
package clock

import (
	"fmt"
	"time"
)

// Layouts for the wire-level date and time stamps.
const (
	// DateLayout renders days like "02 Jan, 2006". The same string is used
	// both for display and as the date component of attendance keys.
	DateLayout = "02 Jan, 2006"

	// TimeLayout renders clock times like "09:05 AM".
	TimeLayout = "03:04 PM"
)

// Clock supplies the current time. Services take it instead of calling
// time.Now directly so tests can pin the day.
type Clock interface {
	Now() time.Time
}

// Campus is the production [Clock]; it reports time in a fixed location.
type Campus struct {
	location *time.Location
}

// NewCampus loads the named IANA timezone, e.g. "Asia/Dhaka".
func NewCampus(timezone string) (*Campus, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("clock: load timezone %q: %w", timezone, err)
	}
	return &Campus{location: location}, nil
}

// Now returns the current campus-local time.
func (campus *Campus) Now() time.Time {
	return time.Now().In(campus.location)
}

// Fixed is a [Clock] pinned to a single instant. Test helper.
type Fixed struct {
	Instant time.Time
}

// Now returns the pinned instant.
func (fixed Fixed) Now() time.Time {
	return fixed.Instant
}

// FormatDate renders t as a campus calendar day, e.g. "28 Aug, 2026".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as a 12-hour clock time, e.g. "09:05 AM".
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseDate parses a value produced by [FormatDate].
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("clock: parse date %q: %w", value, err)
	}
	return t, nil
}

// IsOffDay reports whether t falls on the institute's weekend
// (Friday and Saturday).
func IsOffDay(t time.Time) bool {
	weekday := t.Weekday()
	return weekday == time.Friday || weekday == time.Saturday
}

// WorkDuration renders the span between check-in and check-out as "7h 32m".
// Negative spans collapse to "0h 0m".
func WorkDuration(checkIn, checkOut time.Time) string {
	span := checkOut.Sub(checkIn)
	if span < 0 {
		span = 0
	}
	hours := int(span.Hours())
	minutes := int(span.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
