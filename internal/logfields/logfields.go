package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyOrderID     = "order_id"
	KeyClientID    = "client_id"
	KeyProjectType = "project_type"
	KeyWorkspace   = "workspace"
	KeyInvoiceID   = "invoice_id"
	KeyAmount      = "amount"
	KeyStage       = "stage"
	KeyEventType   = "event_type"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeySubject     = "subject"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyUserAgent   = "user_agent"
	KeyRemoteAddr  = "remote_addr"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func OrderID(id string) slog.Attr       { return slog.String(KeyOrderID, id) }
func ClientID(id string) slog.Attr      { return slog.String(KeyClientID, id) }
func ProjectType(t string) slog.Attr    { return slog.String(KeyProjectType, t) }
func Workspace(p string) slog.Attr      { return slog.String(KeyWorkspace, p) }
func InvoiceID(id string) slog.Attr     { return slog.String(KeyInvoiceID, id) }
func Amount(a float64) slog.Attr        { return slog.Float64(KeyAmount, a) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func EventType(t string) slog.Attr      { return slog.String(KeyEventType, t) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Subject(s string) slog.Attr        { return slog.String(KeySubject, s) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr  { return slog.String(KeyRemoteAddr, addr) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ClientTag shortens a client identifier for log lines; identifiers are
// opaque and may be long or sensitive.
func ClientTag(id string) slog.Attr {
	r := []rune(id)
	if len(r) > 8 {
		return slog.String(KeyClientID, string(r[:8])+"...")
	}
	return slog.String(KeyClientID, id)
}
