package handlers

import (
	"net/http"

	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
)

// BookingSlot is the public view of a slot: no phone numbers or member details.
type BookingSlot struct {
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Status        slot.BookingStatus `json:"status"`
	IsPublicRoom  bool               `json:"is_public_room"`
	Applicants    int                `json:"applicants"`
	MaxApplicants int                `json:"max_applicants"`
	MalePrice     int                `json:"male_price"`
	FemalePrice   int                `json:"female_price"`
}

// SlotsHandler serves GET /api/slots?date=YYYY-MM-DD.
func SlotsHandler(slots SlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "Method not allowed"})
			return
		}
		date := r.URL.Query().Get("date")
		if date == "" {
			respondError(w, required("date"))
			return
		}
		all, err := slots.Slots(r.Context(), date)
		if err != nil {
			respondError(w, err)
			return
		}
		out := make([]BookingSlot, 0, len(all))
		for _, s := range all {
			out = append(out, BookingSlot{
				Date:          s.Date,
				Time:          s.Time,
				Status:        s.BookingStatus,
				IsPublicRoom:  s.IsPublicRoom,
				Applicants:    s.AcceptedGuests(),
				MaxApplicants: s.MaxApplicants,
				MalePrice:     s.PriceFor(team.GenderMale),
				FemalePrice:   s.PriceFor(team.GenderFemale),
			})
		}
		respondOK(w, out)
	}
}

// RegisterHandler serves POST /api/teams.
func RegisterHandler(wf matching.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg matching.Registration
		if !decode(w, r, &reg) {
			return
		}
		out, err := wf.RegisterTeam(r.Context(), reg)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, out)
	}
}
