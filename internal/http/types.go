package http

import (
	"net/http"
	"time"

	"github.com/mauv0809/slot-matcher/internal/audit"
	"github.com/mauv0809/slot-matcher/internal/auth"
	"github.com/mauv0809/slot-matcher/internal/config"
	"github.com/mauv0809/slot-matcher/internal/http/handlers"
	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/solapi"
	"github.com/mauv0809/slot-matcher/internal/team"
)

// Deps is everything the router hands to its handlers.
type Deps struct {
	Teams          team.TeamStore
	Slots          handlers.SlotService
	Settings       handlers.SettingsService
	Events         audit.EventStore
	Consumer       handlers.MessageHandler
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Alerter        notifier.Alerter
	Sender         solapi.Sender
	Auth           auth.Authenticator
	Workflow       matching.Workflow
	Cfg            config.Config
}

type Server struct {
	Deps
	Router   *http.ServeMux
	location *time.Location
}
