package model

import "time"

// EventStatus is the lifecycle status of an Event.
type EventStatus string

const (
	EventCreated   EventStatus = "created"
	EventRetrying  EventStatus = "retrying"
	EventSucceeded EventStatus = "succeeded"
)

// Event is a durable submission unit gated by a trigger script's exit
// code. It transitions Created -> {Retrying <-> Retrying} -> Succeeded
// (terminal); Succeeded is never revisited by the poller.
type Event struct {
	UID         int32
	Name        *string
	Description *string
	Trigger     string
	Status      EventStatus
	Stdout      string
	Stderr      string
	CreatedAt   time.Time
	TriggeredAt *time.Time
	DeletedAt   *time.Time
}
