package audit

import "time"

// WorkflowEvent records one finished workflow operation on a slot.
type WorkflowEvent struct {
	ID        string    `msgpack:"id" json:"id"`
	Type      string    `msgpack:"type" json:"type"`
	Date      string    `msgpack:"date" json:"date"`
	Time      string    `msgpack:"time" json:"time"`
	TeamIDs   []string  `msgpack:"team_ids" json:"team_ids"`
	Message   string    `msgpack:"message" json:"message"`
	Warnings  []string  `msgpack:"warnings" json:"warnings"`
	Error     string    `msgpack:"error" json:"error,omitempty"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at"`
}

// NeedsAttention reports whether an admin should be alerted about the event.
func (e WorkflowEvent) NeedsAttention() bool {
	return e.Error != "" || len(e.Warnings) > 0
}
