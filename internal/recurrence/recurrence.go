// Package recurrence decides what happens to a reminder once it is due:
// recurring reminders move to their next occurrence, one-time reminders are
// switched off.
package recurrence

import (
	"errors"
	"time"
)

type Pattern string

const (
	Daily   Pattern = "daily"
	Weekly  Pattern = "weekly"
	Monthly Pattern = "monthly"
	Yearly  Pattern = "yearly"
)

func (p Pattern) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

var ErrInvalidPattern = errors.New("invalid recurring pattern")

// Reminder is the state the engine needs from a stored reminder.
type Reminder struct {
	Date      time.Time
	Active    bool
	Recurring bool
	Pattern   Pattern
}

type Action int

const (
	// ActionNone means the caller must leave the reminder as it is.
	ActionNone Action = iota
	ActionAdvance
	ActionDeactivate
)

func (a Action) String() string {
	switch a {
	case ActionAdvance:
		return "advance"
	case ActionDeactivate:
		return "deactivate"
	}
	return "none"
}

// Outcome tells the caller which mutation to persist. NextDate is set only
// for ActionAdvance; Err explains an ActionNone when there is a reason.
type Outcome struct {
	Action   Action
	NextDate time.Time
	Err      error
}

// Next adds one period of p to date. Month and year overflow normalise the
// way time.AddDate does, so Jan 31 plus a month lands on Mar 2 or Mar 3.
func Next(date time.Time, p Pattern) (time.Time, bool) {
	switch p {
	case Daily:
		return date.AddDate(0, 0, 1), true
	case Weekly:
		return date.AddDate(0, 0, 7), true
	case Monthly:
		return date.AddDate(0, 1, 0), true
	case Yearly:
		return date.AddDate(1, 0, 0), true
	}
	return time.Time{}, false
}

// Advance moves a recurring reminder to its next occurrence. An unknown
// pattern yields ActionNone with ErrInvalidPattern.
func Advance(r Reminder) Outcome {
	next, ok := Next(r.Date, r.Pattern)
	if !ok {
		return Outcome{Action: ActionNone, Err: ErrInvalidPattern}
	}
	return Outcome{Action: ActionAdvance, NextDate: next}
}

// FireOneTime switches off a one-time reminder. Firing an inactive reminder
// again changes nothing.
func FireOneTime(r Reminder) Outcome {
	if !r.Active {
		return Outcome{Action: ActionNone}
	}
	return Outcome{Action: ActionDeactivate}
}

// Resolve picks Advance or FireOneTime for a due reminder.
func Resolve(r Reminder) Outcome {
	if r.Recurring {
		return Advance(r)
	}
	return FireOneTime(r)
}
