package solapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/config"
	"github.com/mauv0809/slot-matcher/internal/validation"
)

var _ Sender = (*Client)(nil)

// Client talks to the Solapi messaging API to send Kakao Alimtalk messages.
type Client struct {
	http    httpDoer
	cfg     config.SolapiConfig
	timeout time.Duration
	now     func() time.Time
	salt    func() (string, error)
}

// NewClient creates a new Client.
func NewClient(cfg config.SolapiConfig) *Client {
	return NewClientWithHTTP(&http.Client{}, cfg)
}

// NewClientWithHTTP creates a Client with a specific HTTP implementation.
// Useful for tests that need to intercept API calls.
func NewClientWithHTTP(doer httpDoer, cfg config.SolapiConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.solapi.com"
	}
	return &Client{
		http:    doer,
		cfg:     cfg,
		timeout: 10 * time.Second,
		now:     time.Now,
		salt:    randomSalt,
	}
}

// TestMode reports whether a message with this template would only be logged.
func (c *Client) TestMode(templateID string) bool {
	return c.cfg.TestMode() || strings.HasPrefix(templateID, config.PlaceholderPrefix)
}

// Send delivers msg immediately, or schedules it when msg.ScheduledAt is set.
func (c *Client) Send(ctx context.Context, msg Message) (*Result, error) {
	msg.To = validation.NormalizePhone(msg.To)
	if err := validation.Struct(ctx, msg); err != nil {
		return nil, err
	}

	if c.TestMode(msg.TemplateID) {
		log.Info("[Test Mode] Would send templated message",
			"templateId", msg.TemplateID, "to", msg.To, "variables", msg.Variables, "scheduledAt", msg.ScheduledAt)
		return &Result{
			Success:  true,
			Message:  "테스트 모드: 알림톡 발송 시뮬레이션",
			TestMode: true,
			Debug:    &Debug{TemplateID: msg.TemplateID, To: msg.To, Variables: msg.Variables},
		}, nil
	}

	out := outboundMessage{
		To:   msg.To,
		From: c.cfg.Sender,
		KakaoOptions: kakaoOptions{
			PFID:       c.cfg.PFID,
			TemplateID: msg.TemplateID,
			Variables:  templateVariables(msg.Variables),
		},
	}
	if msg.ScheduledAt != nil {
		return c.schedule(ctx, out, *msg.ScheduledAt)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, sendPath, sendRequest{Message: out}, &raw); err != nil {
		return nil, err
	}
	log.Info("Templated message sent", "templateId", msg.TemplateID, "to", msg.To)
	return &Result{Success: true, Message: "발송 성공", Data: raw}, nil
}

// schedule creates a message group, attaches the message and schedules the group.
func (c *Client) schedule(ctx context.Context, out outboundMessage, at time.Time) (*Result, error) {
	var group groupResponse
	if err := c.do(ctx, http.MethodPost, groupsPath, struct{}{}, &group); err != nil {
		return nil, fmt.Errorf("failed to create message group: %w", err)
	}
	if group.GroupID == "" {
		return nil, fmt.Errorf("failed to create message group: empty group id")
	}

	base := groupsPath + "/" + group.GroupID
	if err := c.do(ctx, http.MethodPut, base+"/messages", groupMessagesRequest{Messages: []outboundMessage{out}}, nil); err != nil {
		return nil, fmt.Errorf("failed to add message to group %s: %w", group.GroupID, err)
	}
	scheduled := at.UTC().Format(isoLayout)
	if err := c.do(ctx, http.MethodPost, base+"/schedule", scheduleRequest{ScheduledDate: scheduled}, nil); err != nil {
		return nil, fmt.Errorf("failed to schedule group %s: %w", group.GroupID, err)
	}
	log.Info("Templated message scheduled", "templateId", out.KakaoOptions.TemplateID, "to", out.To, "groupId", group.GroupID, "at", scheduled)
	return &Result{Success: true, Message: "예약 성공", GroupID: group.GroupID}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	auth, err := c.authorization()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call messaging api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read messaging api response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("Messaging API error", "status", resp.StatusCode, "path", path, "body", string(respBody))
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if into != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, into); err != nil {
			return fmt.Errorf("failed to decode messaging api response: %w", err)
		}
	}
	return nil
}

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// authorization builds the per-request HMAC-SHA256 header.
func (c *Client) authorization() (string, error) {
	salt, err := c.salt()
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	date := c.now().UTC().Format(isoLayout)
	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		c.cfg.APIKey, date, salt, Sign(c.cfg.APISecret, date, salt)), nil
}

// Sign returns hex(HMAC-SHA256(secret, date+salt)).
func Sign(secret, date, salt string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(date + salt))
	return hex.EncodeToString(mac.Sum(nil))
}

func randomSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// templateVariables wraps plain keys in the #{...} form templates expect.
func templateVariables(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		if !strings.HasPrefix(k, "#{") {
			k = "#{" + k + "}"
		}
		out[k] = v
	}
	return out
}
