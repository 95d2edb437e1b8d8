package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Location      *time.Location
	AllowedOrigin string
	ProjectID     string
	RedisURL      string
	Turso         TursoConfig
	Slack         SlackConfig
	Admin         AdminConfig
	Solapi        SolapiConfig
	Pricing       PricingConfig
	Templates     TemplateConfig
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type AdminConfig struct {
	// PasswordHash is a bcrypt hash. An admin_settings row overrides it.
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type SolapiConfig struct {
	APIKey    string
	APISecret string
	Sender    string
	PFID      string
	BaseURL   string
}

// TestMode reports whether messages should only be logged.
func (s SolapiConfig) TestMode() bool {
	return s.APIKey == "" || s.APISecret == ""
}

type PricingConfig struct {
	DefaultMaxApplicants        int
	DefaultMalePrice            int
	DefaultFemalePrice          int
	DefaultPublicRoomExtraPrice int
	PaymentAmountFirst          int
	PaymentAmountFinal          int
	PaymentLinkFirst            string
	PaymentLinkFinal            string
}

// TemplateConfig carries one messaging template id per notification kind.
// Unset kinds keep their template_NN placeholder, which the gateway treats as test mode.
type TemplateConfig struct {
	HostRegistered                 string
	GuestApplied                   string
	HostNewApplicant               string
	FirstMatchComplete             string
	PublicRoomFirstMatch           string
	NotSelected                    string
	PaymentRequest                 string
	InfoDelivered                  string
	InfoDeniedContinue             string
	WaitOtherTeam                  string
	FinalPaymentRequest            string
	FinalMatchComplete             string
	ProcessCancelled               string
	HostCancelledAll               string
	GuestCancelledAfterFirst       string
	GuestCancelledHostNotify       string
	GuestCancelledBeforeFirst      string
	GuestCancelledBeforeHostNotify string
	RefundGuide                    string
	NoRefundNotice                 string
	MatchReminder                  string
	StudentIDRejected              string
	DecisionTime                   string
}
