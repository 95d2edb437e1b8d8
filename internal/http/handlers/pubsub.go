package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

// MessageHandler consumes one decoded pubsub payload.
type MessageHandler interface {
	HandleMessage(ctx context.Context, data []byte) error
}

type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// PushHandler unwraps a Pub/Sub push delivery and hands the payload to consumer.
// A consumer failure answers 500 so Pub/Sub redelivers.
func PushHandler(consumer MessageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "body", string(bodyBytes))

		var msg pushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		if err := consumer.HandleMessage(r.Context(), rawData); err != nil {
			log.Error("Failed to handle push message", "messageID", msg.Message.MessageID, "error", err)
			http.Error(w, "Failed to handle message", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
