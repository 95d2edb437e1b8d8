package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/solapi"
)

// NotificationHandler exposes the messaging client directly. The body is the
// gateway's own message shape and the gateway's result is returned as is.
func NotificationHandler(sender solapi.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg solapi.Message
		if !decode(w, r, &msg) {
			return
		}
		if msg.To == "" || msg.TemplateID == "" {
			respondError(w, required("to", "templateId"))
			return
		}
		if IsDryRunFromContext(r) {
			log.Info("[Dry Run] Would have sent notification", "template", msg.TemplateID, "to", msg.To)
			writeJSON(w, http.StatusOK, solapi.Result{
				Success:  true,
				Message:  "dry run",
				TestMode: true,
				Debug:    &solapi.Debug{TemplateID: msg.TemplateID, To: msg.To, Variables: msg.Variables},
			})
			return
		}
		res, err := sender.Send(r.Context(), msg)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
