package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/slack-go/slack"
)

// SlotLister derives the slots of one date.
type SlotLister interface {
	Slots(ctx context.Context, date string) ([]slot.Slot, error)
}

// respondWithSlackMsg writes a Slack message payload as the HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func ephemeral(text string) slack.Msg {
	return slack.Msg{ResponseType: slack.ResponseTypeEphemeral, Text: text}
}

// verifySlackRequest checks the signing secret and leaves r.Body readable again.
// An empty secret disables the check.
func verifySlackRequest(r *http.Request, signingSecret string) bool {
	if signingSecret == "" {
		log.Warn("Slack signing secret not configured, skipping verification")
		return true
	}
	verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
	if err != nil {
		log.Warn("Slack request without valid signature headers", "error", err)
		return false
	}
	body, err := io.ReadAll(io.TeeReader(r.Body, &verifier))
	if err != nil {
		log.Error("Failed to read slack request body", "error", err)
		return false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err := verifier.Ensure(); err != nil {
		log.Warn("Slack signature mismatch", "error", err)
		return false
	}
	return true
}

// SlotBoardCommandHandler answers "/slots [YYYY-MM-DD]" with the admin board of
// that date, today in loc when no date is given.
func SlotBoardCommandHandler(slots SlotLister, alerter notifier.Alerter, signingSecret string, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !verifySlackRequest(r, signingSecret) {
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			log.Error("Failed to parse slash command", "error", err)
			http.Error(w, "Invalid command payload", http.StatusBadRequest)
			return
		}
		log.Info("Received slash command", "command", cmd.Command, "text", cmd.Text, "user", cmd.UserName)

		date := strings.TrimSpace(cmd.Text)
		if date == "" {
			date = time.Now().In(loc).Format("2006-01-02")
		}
		if err := slot.ValidateDate(date); err != nil {
			respondWithSlackMsg(w, ephemeral("날짜 형식은 YYYY-MM-DD 입니다: "+date))
			return
		}

		list, err := slots.Slots(r.Context(), date)
		if err != nil {
			log.Error("Failed to load slots", "date", date, "error", err)
			respondWithSlackMsg(w, ephemeral("슬롯을 불러오지 못했습니다."))
			return
		}
		msg, err := alerter.FormatSlotBoardResponse(date, list)
		if err != nil {
			log.Error("Failed to format slot board", "date", date, "error", err)
			respondWithSlackMsg(w, ephemeral("슬롯 보드를 만들지 못했습니다."))
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
