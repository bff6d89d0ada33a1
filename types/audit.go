package types

// AuditEntry is an audit event queued for asynchronous persistence into
// the event_log table.
type AuditEntry struct {
	Type        string
	UserID      *string
	Details     string
	Timestamp   int64
	ResidenceID *string
	IPAddress   *string
	UserAgent   *string
}
