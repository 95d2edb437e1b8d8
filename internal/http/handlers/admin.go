package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/audit"
	"github.com/mauv0809/slot-matcher/internal/auth"
	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
)

const defaultEventLimit = 50

// SlotService is the slot configuration surface the admin endpoint drives.
type SlotService interface {
	Slots(ctx context.Context, date string) ([]slot.Slot, error)
	DailyConfig(ctx context.Context, date string) (*slot.DailyConfig, error)
	UpsertDailyConfig(ctx context.Context, cfg slot.DailyConfig) (*slot.DailyConfig, error)
	ToggleOpen(ctx context.Context, date, clock string) (*slot.DailyConfig, error)
	SetPrice(ctx context.Context, date, clock string, gender team.Gender, price int) (*slot.DailyConfig, error)
	SetMaxApplicants(ctx context.Context, date, clock string, limit int) (*slot.DailyConfig, error)
	SetPublicRoomExtraPrice(ctx context.Context, date, clock string, price int) (*slot.DailyConfig, error)
	GuestNotificationData(ctx context.Context, guestID string) (*slot.GuestNotificationData, error)
}

// SettingsService lists and stores admin settings.
type SettingsService interface {
	List(ctx context.Context) ([]settings.Setting, error)
	Set(ctx context.Context, key, value string) error
}

type AdminDeps struct {
	Teams    team.TeamStore
	Slots    SlotService
	Settings SettingsService
	Events   audit.EventStore
	Alerter  notifier.Alerter
	Workflow matching.Workflow
}

// AdminRequest is the body of POST /api/admin. Which fields are read depends on Action.
type AdminRequest struct {
	Action        string                     `json:"action"`
	TeamID        string                     `json:"teamId"`
	TeamIDs       []string                   `json:"teamIds"`
	Updates       *team.Update               `json:"updates"`
	DateStr       string                     `json:"dateStr"`
	Time          string                     `json:"time"`
	SlotConfigs   map[string]slot.SlotConfig `json:"slotConfigs"`
	OpenTimes     []string                   `json:"openTimes"`
	MaxApplicants *int                       `json:"maxApplicants"`
	Gender        team.Gender                `json:"gender"`
	Price         *int                       `json:"price"`
	Key           string                     `json:"key"`
	Value         string                     `json:"value"`
	Limit         int                        `json:"limit"`
}

type loginRequest struct {
	Password string `json:"password"`
}

func LoginHandler(authenticator auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Password == "" {
			respondError(w, required("password"))
			return
		}
		tok, err := authenticator.Login(r.Context(), req.Password)
		if err != nil {
			respondError(w, err)
			return
		}
		log.Info("Admin logged in")
		respondOK(w, tok)
	}
}

// AdminHandler dispatches the data management actions of the back office.
func AdminHandler(d AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminRequest
		if !decode(w, r, &req) {
			return
		}
		log.Debug("Admin action", "action", req.Action)
		data, err := d.dispatch(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, data)
	}
}

func (d AdminDeps) dispatch(ctx context.Context, req AdminRequest) (any, error) {
	switch req.Action {
	case "update-team":
		if req.TeamID == "" || req.Updates == nil {
			return nil, required("teamId", "updates")
		}
		return d.Teams.Update(ctx, req.TeamID, *req.Updates)

	case "update-teams-bulk":
		if len(req.TeamIDs) == 0 || req.Updates == nil {
			return nil, required("teamIds", "updates")
		}
		return d.Teams.UpdateMany(ctx, req.TeamIDs, *req.Updates)

	case "delete-team":
		if req.TeamID == "" {
			return nil, required("teamId")
		}
		return nil, d.Teams.Delete(ctx, req.TeamID)

	case "delete-teams-bulk":
		if len(req.TeamIDs) == 0 {
			return nil, required("teamIds")
		}
		n, err := d.Teams.DeleteMany(ctx, req.TeamIDs)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": n}, nil

	case "upsert-daily-config":
		if req.DateStr == "" {
			return nil, required("dateStr")
		}
		cfg := slot.DailyConfig{Date: req.DateStr, OpenTimes: req.OpenTimes, SlotConfigs: req.SlotConfigs}
		if req.MaxApplicants != nil {
			cfg.MaxApplicants = *req.MaxApplicants
		}
		if cfg.OpenTimes == nil {
			cfg.OpenTimes = []string{}
		}
		if cfg.SlotConfigs == nil {
			cfg.SlotConfigs = map[string]slot.SlotConfig{}
		}
		return d.Slots.UpsertDailyConfig(ctx, cfg)

	case "get-daily-config":
		if req.DateStr == "" {
			return nil, required("dateStr")
		}
		return d.Slots.DailyConfig(ctx, req.DateStr)

	case "get-teams-by-date":
		if req.DateStr == "" {
			return nil, required("dateStr")
		}
		if err := slot.ValidateDate(req.DateStr); err != nil {
			return nil, err
		}
		return d.Teams.ListByDate(ctx, req.DateStr)

	case "get-guest-notification-data":
		if req.TeamID == "" {
			return nil, required("teamId")
		}
		return d.Slots.GuestNotificationData(ctx, req.TeamID)

	case "get-slots":
		if req.DateStr == "" {
			return nil, required("dateStr")
		}
		return d.Slots.Slots(ctx, req.DateStr)

	case "toggle-slot-open":
		if req.DateStr == "" || req.Time == "" {
			return nil, required("dateStr", "time")
		}
		return d.Slots.ToggleOpen(ctx, req.DateStr, req.Time)

	case "update-slot-price":
		if req.DateStr == "" || req.Time == "" || req.Gender == "" || req.Price == nil {
			return nil, required("dateStr", "time", "gender", "price")
		}
		return d.Slots.SetPrice(ctx, req.DateStr, req.Time, req.Gender, *req.Price)

	case "update-max-applicants":
		if req.DateStr == "" || req.Time == "" || req.MaxApplicants == nil {
			return nil, required("dateStr", "time", "maxApplicants")
		}
		return d.Slots.SetMaxApplicants(ctx, req.DateStr, req.Time, *req.MaxApplicants)

	case "update-public-room-extra-price":
		if req.DateStr == "" || req.Time == "" || req.Price == nil {
			return nil, required("dateStr", "time", "price")
		}
		return d.Slots.SetPublicRoomExtraPrice(ctx, req.DateStr, req.Time, *req.Price)

	case "get-settings":
		return d.Settings.List(ctx)

	case "upsert-setting":
		if req.Key == "" {
			return nil, required("key")
		}
		return nil, d.Settings.Set(ctx, req.Key, req.Value)

	case "get-events":
		limit := req.Limit
		if limit <= 0 {
			limit = defaultEventLimit
		}
		return d.Events.List(ctx, req.DateStr, limit)

	case "get-request-state":
		if req.DateStr == "" || req.Time == "" {
			return nil, required("dateStr", "time")
		}
		return d.Workflow.RequestState(req.DateStr, req.Time), nil

	case "post-slot-board":
		if req.DateStr == "" {
			return nil, required("dateStr")
		}
		slots, err := d.Slots.Slots(ctx, req.DateStr)
		if err != nil {
			return nil, err
		}
		if err := d.Alerter.SendSlotBoard(ctx, req.DateStr, slots); err != nil {
			return nil, fmt.Errorf("failed to post slot board: %w", err)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
}
