package http

import (
	"net/http"
	"time"

	"github.com/mauv0809/slot-matcher/internal/http/handlers"
)

func NewServer(deps Deps) *Server {
	loc := deps.Cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	server := &Server{
		Deps:     deps,
		Router:   http.NewServeMux(),
		location: loc,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Admin endpoints add authMiddleware, browser-facing ones add corsMiddleware.
	cors := corsMiddleware(s.Cfg.AllowedOrigin)
	authed := authMiddleware(s.Auth)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(handlers.StatsHandler(s.Counters), paramsMiddleware, authed))

	s.Router.Handle("/api/admin/login", Chain(handlers.LoginHandler(s.Auth), cors, paramsMiddleware))
	s.Router.Handle("/api/admin", Chain(handlers.AdminHandler(handlers.AdminDeps{
		Teams:    s.Teams,
		Slots:    s.Slots,
		Settings: s.Settings,
		Events:   s.Events,
		Alerter:  s.Alerter,
		Workflow: s.Workflow,
	}), cors, paramsMiddleware, authed))
	s.Router.Handle("/api/matching", Chain(handlers.MatchingHandler(s.Workflow), cors, paramsMiddleware, authed))
	s.Router.Handle("/api/notification", Chain(handlers.NotificationHandler(s.Sender), cors, paramsMiddleware, authed))

	s.Router.Handle("/api/slots", Chain(handlers.SlotsHandler(s.Slots), cors, paramsMiddleware))
	s.Router.Handle("/api/teams", Chain(handlers.RegisterHandler(s.Workflow), cors, paramsMiddleware))

	s.Router.Handle("/pubsub/workflow-events", Chain(handlers.PushHandler(s.Consumer), paramsMiddleware))
	s.Router.Handle("/slack/command/slots", Chain(handlers.SlotBoardCommandHandler(s.Slots, s.Alerter, s.Cfg.Slack.SigningSecret, s.location), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
