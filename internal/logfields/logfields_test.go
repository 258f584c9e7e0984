package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"OrderID", KeyOrderID, "o-1", OrderID("o-1")},
		{"ClientID", KeyClientID, "client_001", ClientID("client_001")},
		{"ProjectType", KeyProjectType, "website", ProjectType("website")},
		{"Workspace", KeyWorkspace, "clients/ab", Workspace("clients/ab")},
		{"InvoiceID", KeyInvoiceID, "inv", InvoiceID("inv")},
		{"Stage", KeyStage, "generate", Stage("generate")},
		{"EventType", KeyEventType, "OrderReceived", EventType("OrderReceived")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Subject", KeySubject, "webforge.orders", Subject("webforge.orders")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"UserAgent", KeyUserAgent, "ua", UserAgent("ua")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Errorf("%s: expected key %q, got %q", c.name, c.attrKey, c.attr.Key)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Errorf("%s: expected value %q, got %q", c.name, c.attrVal, c.attr.Value.String())
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Status(404); a.Key != KeyStatus || a.Value.Int64() != 404 {
		t.Errorf("unexpected status attr %v", a)
	}
	if a := Amount(800); a.Key != KeyAmount || a.Value.Float64() != 800 {
		t.Errorf("unexpected amount attr %v", a)
	}
	if a := DurationMS(12.5); a.Value.Float64() != 12.5 {
		t.Errorf("unexpected duration attr %v", a)
	}
}

func TestError(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("expected empty error value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("expected boom, got %q", a.Value.String())
	}
}

func TestClientTag(t *testing.T) {
	if a := ClientTag("client_001"); a.Value.String() != "client_0..." {
		t.Errorf("expected truncated tag, got %q", a.Value.String())
	}
	if a := ClientTag("short"); a.Value.String() != "short" {
		t.Errorf("expected short id unchanged, got %q", a.Value.String())
	}
}
