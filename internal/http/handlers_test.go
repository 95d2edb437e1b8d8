package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/slot-matcher/internal/audit"
	"github.com/mauv0809/slot-matcher/internal/auth"
	"github.com/mauv0809/slot-matcher/internal/config"
	"github.com/mauv0809/slot-matcher/internal/database"
	"github.com/mauv0809/slot-matcher/internal/http/handlers"
	"github.com/mauv0809/slot-matcher/internal/lock"
	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/pubsub"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/solapi"
	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testSlackSigningSecret = "test-signing-secret"
	testToken              = "test-admin-token"
	testDate               = "2099-06-01"
	testTime               = "19:00"
)

var kst = time.FixedZone("KST", 9*60*60)

type testEnv struct {
	server   *Server
	alerter  *notifier.MockAlerter
	notifier *notifier.Mock
	sender   *solapi.Mock
	auth     *auth.Mock
	pubsub   *pubsub.MockPubSubClient
}

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, slackSigningSecret string) (*testEnv, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	cfg := config.Config{
		Location:  kst,
		Slack:     config.SlackConfig{SigningSecret: slackSigningSecret},
		Templates: config.DefaultTemplates(),
		Pricing:   config.PricingConfig{PaymentAmountFirst: 3000, PaymentLinkFirst: "https://pay.example.com/first"},
	}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	counters := metrics.New(db)

	env := &testEnv{
		alerter:  notifier.NewMockAlerter(),
		notifier: notifier.NewMock(),
		sender:   solapi.NewMock(),
		auth:     auth.NewMock(testToken),
		pubsub:   pubsub.NewMock(),
	}

	teams := team.New(db)
	slots := slot.NewService(teams, slot.NewStore(db), slot.Defaults{
		MaxApplicants:        3,
		MalePrice:            20000,
		FemalePrice:          15000,
		PublicRoomExtraPrice: 5000,
	}, kst)
	settingsSvc := settings.NewService(settings.NewStore(db), cfg)
	events := audit.NewStore(db)

	workflow := matching.New(matching.Deps{
		Teams:    teams,
		Slots:    slots,
		Settings: settingsSvc,
		Notifier: env.notifier,
		Locker:   lock.NewMemory(),
		PubSub:   env.pubsub,
		Metrics:  metricsSvc,
	})

	env.server = NewServer(Deps{
		Teams:          teams,
		Slots:          slots,
		Settings:       settingsSvc,
		Events:         events,
		Consumer:       audit.NewConsumer(events, counters, env.alerter, env.pubsub),
		Counters:       counters,
		MetricsHandler: metrics.NewMetricsHandler(reg),
		Alerter:        env.alerter,
		Sender:         env.sender,
		Auth:           env.auth,
		Workflow:       workflow,
		Cfg:            cfg,
	})

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return env, teardown
}

func (e *testEnv) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.server.Router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, data any) handlers.Response {
	t.Helper()
	var envelope struct {
		handlers.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), rr.Body.String())
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Response
}

// openSlot opens testTime on testDate through the admin API.
func (e *testEnv) openSlot(t *testing.T) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action":    "upsert-daily-config",
		"dateStr":   testDate,
		"openTimes": []string{testTime},
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func (e *testEnv) register(t *testing.T, gender team.Gender, phone string) team.Team {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/teams", map[string]any{
		"date":   testDate,
		"time":   testTime,
		"gender": gender,
		"phone":  phone,
		"members": []map[string]any{
			{"age": 23, "university": "서울대", "department": "경영학과"},
		},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out matching.Outcome
	resp := decodeResponse(t, rr, &out)
	require.True(t, resp.Success)
	require.NotNil(t, out.Team)
	return *out.Team
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := strings.NewReader(form.Encode())
	req, err := http.NewRequest("POST", targetURL, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	bodyBytes, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))

	req.Header.Set("X-Slack-Signature", "v0="+signature)
	return req
}

func TestHealthCheckHandler(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	env.server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestAuthMiddleware(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	body := map[string]any{"action": "get-settings"}

	rr := env.do(t, http.MethodPost, "/api/admin", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/admin", body, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/admin", body, testToken)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"wrong", testToken}, env.auth.VerifyCalls)
}

func TestCORSPreflight(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	req, err := http.NewRequest(http.MethodOptions, "/api/matching", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	env.server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "preflight must not require a token")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestLoginHandler(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	t.Run("success", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "secret"}, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var tok auth.Token
		decodeResponse(t, rr, &tok)
		assert.Equal(t, testToken, tok.Token)
	})

	t.Run("missing password", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		env.auth.LoginFunc = func(ctx context.Context, password string) (*auth.Token, error) {
			return nil, auth.ErrInvalidCredentials
		}
		defer func() { env.auth.LoginFunc = nil }()
		rr := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		resp := decodeResponse(t, rr, nil)
		assert.False(t, resp.Success)
	})

	t.Run("get is rejected", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/admin/login", nil, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestBookingFlow(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	rr := env.do(t, http.MethodGet, "/api/slots?date="+testDate, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var board []handlers.BookingSlot
	decodeResponse(t, rr, &board)
	require.Len(t, board, len(slot.Times))
	for _, s := range board {
		assert.Equal(t, slot.BookingClosed, s.Status, "nothing is open before the admin opens it")
	}

	env.openSlot(t)

	host := env.register(t, team.GenderMale, "010-1111-0000")
	assert.Equal(t, team.RoleHost, host.Role)
	assert.Equal(t, "01011110000", host.Phone)
	assert.Len(t, env.notifier.Sent(notifier.KindHostRegistered), 1)

	guest := env.register(t, team.GenderFemale, "01022220000")
	assert.Equal(t, team.RoleGuest, guest.Role)
	assert.Equal(t, team.StatusMatchingRequested, guest.Status)

	rr = env.do(t, http.MethodGet, "/api/slots?date="+testDate, nil, "")
	decodeResponse(t, rr, &board)
	var found bool
	for _, s := range board {
		if s.Time == testTime {
			found = true
			assert.Equal(t, slot.BookingHostRegistered, s.Status)
			assert.Equal(t, 1, s.Applicants)
			assert.Equal(t, 20000, s.MalePrice)
		}
	}
	assert.True(t, found)
	assert.NotContains(t, rr.Body.String(), "01011110000", "public board must not leak phone numbers")
}

func TestRegisterHandler_Invalid(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()
	env.openSlot(t)

	rr := env.do(t, http.MethodPost, "/api/teams", map[string]any{
		"date": testDate, "time": testTime, "gender": "MALE", "phone": "12345",
		"members": []map[string]any{{"age": 23, "university": "서울대", "department": "경영학과"}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr, nil)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "phone")

	rr = env.do(t, http.MethodPost, "/api/teams", map[string]any{
		"date": testDate, "time": "18:00", "gender": "MALE", "phone": "01011110000",
		"members": []map[string]any{{"age": 23, "university": "서울대", "department": "경영학과"}},
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code, "18:00 was never opened")
}

func TestMatchingHandler_FirstAndFinalMatch(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()
	env.openSlot(t)
	env.register(t, team.GenderMale, "01011110000")
	guest := env.register(t, team.GenderFemale, "01022220000")

	rr := env.do(t, http.MethodPost, "/api/matching", map[string]any{
		"action": matching.OpFirstMatch, "date": testDate, "time": testTime,
		"guestId": guest.ID, "skipInfoExchange": true,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out matching.Outcome
	resp := decodeResponse(t, rr, &out)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, out.Message)
	assert.Len(t, env.notifier.Sent(notifier.KindFinalPaymentRequest), 2)

	rr = env.do(t, http.MethodPost, "/api/matching", map[string]any{
		"action": matching.OpFinalMatch, "date": testDate, "time": testTime, "guestId": guest.ID,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, env.notifier.Sent(notifier.KindFinalMatchComplete), 2)

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "get-request-state", "dateStr": testDate, "time": testTime,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var state matching.SlotState
	decodeResponse(t, rr, &state)
	assert.Equal(t, matching.StateIdle, state.State)
	assert.Equal(t, matching.OpFinalMatch, state.Operation)
}

func TestMatchingHandler_Errors(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()
	env.openSlot(t)

	t.Run("unknown action", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/matching", map[string]any{"action": "explode"}, testToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no host", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/matching", map[string]any{
			"action": matching.OpFirstMatch, "date": testDate, "time": testTime, "guestId": "nobody",
		}, testToken)
		assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
	})

	t.Run("missing team", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/matching", map[string]any{
			"action": matching.OpVerifyTeam, "teamId": "missing",
		}, testToken)
		assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
	})
}

func TestAdminHandler_TeamsAndSettings(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()
	env.openSlot(t)
	host := env.register(t, team.GenderMale, "01011110000")

	rr := env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "get-teams-by-date", "dateStr": testDate,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), host.ID)

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "update-team", "teamId": host.ID, "updates": map[string]any{"intro": "안녕하세요"},
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated team.Team
	decodeResponse(t, rr, &updated)
	assert.Equal(t, "안녕하세요", updated.Intro)

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "upsert-setting", "key": "payment_amount_first", "value": "not-a-number",
	}, testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "upsert-setting", "key": "payment_amount_first", "value": "5000",
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "update-slot-price", "dateStr": testDate, "time": testTime, "gender": "FEMALE", "price": 17000,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "get-slots", "dateStr": testDate,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var slots []slot.Slot
	decodeResponse(t, rr, &slots)
	for _, s := range slots {
		if s.Time == testTime {
			assert.Equal(t, 17000, s.FemalePrice)
			require.NotNil(t, s.Host)
			assert.Equal(t, host.ID, s.Host.ID)
		}
	}

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "delete-team", "teamId": host.ID,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "delete-team", "teamId": host.ID,
	}, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminHandler_PostSlotBoard(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	rr := env.do(t, http.MethodPost, "/api/admin", map[string]any{
		"action": "post-slot-board", "dateStr": testDate,
	}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, env.alerter.SendSlotBoardCalls, 1)
	assert.Equal(t, testDate, env.alerter.SendSlotBoardCalls[0].Date)
	assert.Len(t, env.alerter.SendSlotBoardCalls[0].Slots, len(slot.Times))
}

func TestNotificationHandler(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	msg := map[string]any{"to": "01011110000", "templateId": "KA01TP1", "variables": map[string]string{"name": "host"}}

	t.Run("dry run", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/notification?dry_run=true", msg, testToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Empty(t, env.sender.SendCalls)
	})

	t.Run("send", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/notification", msg, testToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Len(t, env.sender.SendCalls, 1)
		assert.Equal(t, "KA01TP1", env.sender.SendCalls[0].TemplateID)
		assert.Contains(t, rr.Body.String(), "발송 성공")
	})

	t.Run("missing recipient", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/notification", map[string]any{"templateId": "KA01TP1"}, testToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestWorkflowEventsPushHandler(t *testing.T) {
	env, teardown := setupTestServer(t, "")
	defer teardown()

	payload, err := msgpack.Marshal(audit.WorkflowEvent{
		ID:        "ev-1",
		Type:      matching.OpFinalMatch,
		Date:      testDate,
		Time:      testTime,
		Message:   "최종 매칭 완료",
		Warnings:  []string{"alimtalk failed"},
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	push := map[string]any{
		"subscription": "projects/test/subscriptions/workflow-events",
		"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(payload), "messageId": "1"},
	}
	rr := env.do(t, http.MethodPost, "/pubsub/workflow-events", push, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, env.alerter.SendAlertCalls, 1)
	assert.Equal(t, []string{"alimtalk failed"}, env.alerter.SendAlertCalls[0].Warnings)

	rr = env.do(t, http.MethodPost, "/api/admin", map[string]any{"action": "get-events", "dateStr": testDate}, testToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "ev-1")

	rr = env.do(t, http.MethodGet, "/stats", nil, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "workflow_warnings")

	t.Run("bad base64", func(t *testing.T) {
		bad := map[string]any{"message": map[string]string{"data": "%%%"}}
		rr := env.do(t, http.MethodPost, "/pubsub/workflow-events", bad, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("undecodable event", func(t *testing.T) {
		bad := map[string]any{"message": map[string]string{"data": base64.StdEncoding.EncodeToString([]byte("not msgpack"))}}
		rr := env.do(t, http.MethodPost, "/pubsub/workflow-events", bad, "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestSlotBoardCommandHandler(t *testing.T) {
	env, teardown := setupTestServer(t, testSlackSigningSecret)
	defer teardown()

	var gotDate string
	env.alerter.FormatSlotBoardResponseFunc = func(date string, slots []slot.Slot) (any, error) {
		gotDate = date
		return slack.Message{Msg: slack.Msg{Text: "board " + date}}, nil
	}

	t.Run("valid signature", func(t *testing.T) {
		form := url.Values{"command": {"/slots"}, "text": {testDate}, "user_name": {"admin"}}
		req := createSlackCommandRequest(t, "/slack/command/slots", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, testDate, gotDate)
		assert.Contains(t, rr.Body.String(), "board "+testDate)
	})

	t.Run("defaults to today", func(t *testing.T) {
		form := url.Values{"command": {"/slots"}}
		req := createSlackCommandRequest(t, "/slack/command/slots", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, time.Now().In(kst).Format(slot.DateLayout), gotDate)
	})

	t.Run("bad date", func(t *testing.T) {
		form := url.Values{"command": {"/slots"}, "text": {"tomorrow"}}
		req := createSlackCommandRequest(t, "/slack/command/slots", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ephemeral")
	})

	t.Run("wrong secret", func(t *testing.T) {
		form := url.Values{"command": {"/slots"}, "text": {testDate}}
		req := createSlackCommandRequest(t, "/slack/command/slots", form, "other-secret")
		rr := httptest.NewRecorder()
		env.server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
