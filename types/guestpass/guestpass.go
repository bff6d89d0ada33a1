package guestpass

// CreateRequest is the payload for issuing a guest pass. VisitTime
// accepts either epoch seconds or an RFC 3339 / datetime-local string;
// the handler converts it to epoch seconds before storage.
type CreateRequest struct {
	PlateNumber     string `json:"plate_number"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	VisitTime       string `json:"visit_time"`
	DurationMinutes int64  `json:"duration_minutes"`
	Type            string `json:"type,omitempty"`
	EntryGate       string `json:"entry_gate,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// RevokeRequest identifies the pass to revoke.
type RevokeRequest struct {
	ID string `json:"id"`
}

// ExtendRequest adds minutes to an existing pass.
type ExtendRequest struct {
	ID                string `json:"id"`
	AdditionalMinutes int64  `json:"additional_minutes"`
}
