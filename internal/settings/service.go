package settings

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var _ Provider = (*Service)(nil)

// Service merges environment defaults with stored admin settings.
type Service struct {
	store SettingsStore
	base  SystemConfig
}

func NewService(store SettingsStore, cfg config.Config) *Service {
	return &Service{
		store: store,
		base: SystemConfig{
			PaymentLinkFirst:   cfg.Pricing.PaymentLinkFirst,
			PaymentLinkFinal:   cfg.Pricing.PaymentLinkFinal,
			PaymentAmountFirst: cfg.Pricing.PaymentAmountFirst,
			PaymentAmountFinal: cfg.Pricing.PaymentAmountFinal,
			Templates:          cfg.Templates,
			AdminPasswordHash:  cfg.Admin.PasswordHash,
		},
	}
}

// Load returns the effective configuration. A stored row with an unknown key or an
// invalid value is an error rather than being skipped.
func (s *Service) Load(ctx context.Context) (SystemConfig, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return SystemConfig{}, err
	}
	cfg := s.base
	for _, key := range sortedKeys(rows) {
		if err := apply(&cfg, key, rows[key]); err != nil {
			return SystemConfig{}, err
		}
	}
	if err := cfg.Templates.Validate(); err != nil {
		return SystemConfig{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return cfg, nil
}

// Set validates and stores one setting.
func (s *Service) Set(ctx context.Context, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	probe := s.base
	if err := apply(&probe, key, value); err != nil {
		return err
	}
	if err := s.store.Set(ctx, key, value); err != nil {
		return err
	}
	log.Info("Admin setting updated", "key", key)
	return nil
}

// List returns the stored rows with secrets masked.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Setting, 0, len(rows))
	for _, key := range sortedKeys(rows) {
		value := rows[key]
		if key == KeyAdminPasswordHash {
			value = "********"
		}
		out = append(out, Setting{Key: key, Value: value})
	}
	return out, nil
}

func apply(cfg *SystemConfig, key, value string) error {
	switch key {
	case KeyAdminPasswordHash:
		if _, err := bcrypt.Cost([]byte(value)); err != nil {
			return fmt.Errorf("%w: %s must be a bcrypt hash", ErrInvalidValue, key)
		}
		cfg.AdminPasswordHash = value
	case KeyPaymentLinkFirst, KeyPaymentLinkFinal:
		if value != "" {
			if u, err := url.Parse(value); err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("%w: %s must be an absolute URL", ErrInvalidValue, key)
			}
		}
		if key == KeyPaymentLinkFirst {
			cfg.PaymentLinkFirst = value
		} else {
			cfg.PaymentLinkFinal = value
		}
	case KeyPaymentAmountFirst, KeyPaymentAmountFinal:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidValue, key)
		}
		if key == KeyPaymentAmountFirst {
			cfg.PaymentAmountFirst = n
		} else {
			cfg.PaymentAmountFinal = n
		}
	default:
		kind, ok := strings.CutPrefix(key, TemplatePrefix)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidValue, key)
		}
		tpl, err := cfg.Templates.With(kind, value)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		cfg.Templates = tpl
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
