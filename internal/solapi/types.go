package solapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	sendPath   = "/messages/v4/send"
	groupsPath = "/messages/v4/groups"
)

// Message is one templated message to a single recipient.
type Message struct {
	To         string            `json:"to" validate:"required,phone"`
	TemplateID string            `json:"templateId" validate:"required"`
	Variables  map[string]string `json:"variables"`
	// ScheduledAt defers delivery through a scheduled message group when set.
	ScheduledAt *time.Time `json:"scheduledTime,omitempty"`
}

// Result is what the gateway reports back to callers.
type Result struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	TestMode bool            `json:"isTestMode,omitempty"`
	GroupID  string          `json:"groupId,omitempty"`
	Debug    *Debug          `json:"debug,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Debug echoes what would have been sent in test mode.
type Debug struct {
	TemplateID string            `json:"templateId"`
	To         string            `json:"to"`
	Variables  map[string]string `json:"variables"`
}

// Sender delivers templated messages.
type Sender interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// httpDoer is the part of *http.Client the gateway uses.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the messaging API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messaging api returned %d: %s", e.StatusCode, e.Body)
}

type kakaoOptions struct {
	PFID       string            `json:"pfId"`
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
}

type outboundMessage struct {
	To           string       `json:"to"`
	From         string       `json:"from"`
	KakaoOptions kakaoOptions `json:"kakaoOptions"`
}

type sendRequest struct {
	Message outboundMessage `json:"message"`
}

type groupMessagesRequest struct {
	Messages []outboundMessage `json:"messages"`
}

type scheduleRequest struct {
	ScheduledDate string `json:"scheduledDate"`
}

type groupResponse struct {
	GroupID string `json:"groupId"`
}
