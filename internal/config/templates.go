package config

import (
	"fmt"
	"strings"
)

// PlaceholderPrefix marks a template id that was never configured.
const PlaceholderPrefix = "template_"

type templateField struct {
	key string
	ptr func(*TemplateConfig) *string
}

// templateFields lists every kind in catalogue order. The env var is TEMPLATE_<key>.
var templateFields = []templateField{
	{"HOST_REGISTERED", func(t *TemplateConfig) *string { return &t.HostRegistered }},
	{"GUEST_APPLIED", func(t *TemplateConfig) *string { return &t.GuestApplied }},
	{"HOST_NEW_APPLICANT", func(t *TemplateConfig) *string { return &t.HostNewApplicant }},
	{"FIRST_MATCH_COMPLETE", func(t *TemplateConfig) *string { return &t.FirstMatchComplete }},
	{"PUBLIC_ROOM_FIRST_MATCH", func(t *TemplateConfig) *string { return &t.PublicRoomFirstMatch }},
	{"NOT_SELECTED", func(t *TemplateConfig) *string { return &t.NotSelected }},
	{"PAYMENT_REQUEST", func(t *TemplateConfig) *string { return &t.PaymentRequest }},
	{"INFO_DELIVERED", func(t *TemplateConfig) *string { return &t.InfoDelivered }},
	{"INFO_DENIED_CONTINUE", func(t *TemplateConfig) *string { return &t.InfoDeniedContinue }},
	{"WAIT_OTHER_TEAM", func(t *TemplateConfig) *string { return &t.WaitOtherTeam }},
	{"FINAL_PAYMENT_REQUEST", func(t *TemplateConfig) *string { return &t.FinalPaymentRequest }},
	{"FINAL_MATCH_COMPLETE", func(t *TemplateConfig) *string { return &t.FinalMatchComplete }},
	{"PROCESS_CANCELLED", func(t *TemplateConfig) *string { return &t.ProcessCancelled }},
	{"HOST_CANCELLED_ALL", func(t *TemplateConfig) *string { return &t.HostCancelledAll }},
	{"GUEST_CANCELLED_AFTER_FIRST", func(t *TemplateConfig) *string { return &t.GuestCancelledAfterFirst }},
	{"GUEST_CANCELLED_HOST_NOTIFY", func(t *TemplateConfig) *string { return &t.GuestCancelledHostNotify }},
	{"GUEST_CANCELLED_BEFORE_FIRST", func(t *TemplateConfig) *string { return &t.GuestCancelledBeforeFirst }},
	{"GUEST_CANCELLED_BEFORE_HOST_NOTIFY", func(t *TemplateConfig) *string { return &t.GuestCancelledBeforeHostNotify }},
	{"REFUND_GUIDE", func(t *TemplateConfig) *string { return &t.RefundGuide }},
	{"NO_REFUND_NOTICE", func(t *TemplateConfig) *string { return &t.NoRefundNotice }},
	{"MATCH_REMINDER", func(t *TemplateConfig) *string { return &t.MatchReminder }},
	{"STUDENT_ID_REJECTED", func(t *TemplateConfig) *string { return &t.StudentIDRejected }},
	{"DECISION_TIME", func(t *TemplateConfig) *string { return &t.DecisionTime }},
}

// DefaultTemplates returns a TemplateConfig where every kind holds its placeholder id.
func DefaultTemplates() TemplateConfig {
	var t TemplateConfig
	for i, f := range templateFields {
		*f.ptr(&t) = fmt.Sprintf("%s%02d", PlaceholderPrefix, i+1)
	}
	return t
}

// TemplateKeys returns the kind keys in catalogue order.
func TemplateKeys() []string {
	keys := make([]string, len(templateFields))
	for i, f := range templateFields {
		keys[i] = f.key
	}
	return keys
}

// ByKey returns the template ids keyed by kind.
func (t TemplateConfig) ByKey() map[string]string {
	out := make(map[string]string, len(templateFields))
	for _, f := range templateFields {
		out[f.key] = *f.ptr(&t)
	}
	return out
}

// With returns a copy of t where the kind named key uses id.
func (t TemplateConfig) With(key, id string) (TemplateConfig, error) {
	for _, f := range templateFields {
		if f.key == strings.ToUpper(key) {
			*f.ptr(&t) = id
			return t, nil
		}
	}
	return t, fmt.Errorf("unknown template kind %q", key)
}

// Validate rejects empty ids and real ids that are shared between kinds.
func (t TemplateConfig) Validate() error {
	seen := make(map[string]string)
	for _, f := range templateFields {
		id := *f.ptr(&t)
		if id == "" {
			return fmt.Errorf("template %s is empty", f.key)
		}
		if strings.HasPrefix(id, PlaceholderPrefix) {
			continue
		}
		if other, ok := seen[id]; ok {
			return fmt.Errorf("template id %q used by both %s and %s", id, other, f.key)
		}
		seen[id] = f.key
	}
	return nil
}
