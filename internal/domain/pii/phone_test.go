package pii

import (
	"context"
	"testing"
)

func detectPhones(t *testing.T, text string) []Entity {
	t.Helper()
	out, err := NewPhoneDetector().Detect(context.Background(), text)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	return out
}

func TestPhoneDetectorAcceptsMobile(t *testing.T) {
	out := detectPhones(t, "call me at 91234567 tomorrow")
	if len(out) == 0 {
		t.Fatalf("expected a phone span for 91234567")
	}
	for _, e := range out {
		if e.Text != "91234567" {
			t.Fatalf("unexpected span %q", e.Text)
		}
		if e.Kind != "PHONE_NUMBER" {
			t.Fatalf("unexpected kind %q", e.Kind)
		}
		if e.Confidence != 0.9 {
			t.Fatalf("unexpected confidence %v", e.Confidence)
		}
		if e.Source != PhoneSource {
			t.Fatalf("unexpected source %q", e.Source)
		}
	}
}

func TestPhoneDetectorAcceptsLandline(t *testing.T) {
	out := detectPhones(t, "office line 61234567")
	if len(out) == 0 {
		t.Fatalf("expected a phone span for 61234567")
	}
}

func TestPhoneDetectorRejectsBadLeadingDigit(t *testing.T) {
	out := detectPhones(t, "order number 12345678 confirmed")
	if len(out) != 0 {
		t.Fatalf("expected no spans, got %v", out)
	}
}

func TestPhoneDetectorInternationalPrefix(t *testing.T) {
	out := detectPhones(t, "reach me on +6598765432 anytime")
	if len(out) == 0 {
		t.Fatalf("expected a phone span inside +6598765432")
	}
	for _, e := range out {
		// the +65 candidate itself fails structural validation; what
		// survives is the bare digit run
		if e.Text != "6598765432" {
			t.Fatalf("unexpected span %q", e.Text)
		}
	}
}

func TestPhoneDetectorUSNumber(t *testing.T) {
	out := detectPhones(t, "dial 4155551234 for support")
	if len(out) == 0 {
		t.Fatalf("expected a span for the 10-digit number")
	}
}

func TestPhoneDetectorEmptyText(t *testing.T) {
	if out := detectPhones(t, ""); len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}

func TestPhoneDetectorKeepsOverlappingCandidates(t *testing.T) {
	// 91234567 matches both the mobile pattern and the generic 8-digit
	// run; dedup is the reconciler's job, not the detector's
	out := detectPhones(t, "91234567")
	if len(out) < 2 {
		t.Fatalf("expected overlapping candidates from multiple patterns, got %d", len(out))
	}
}

func TestPhoneDetectorIgnoresLongDigitRuns(t *testing.T) {
	// 12 consecutive digits: no \b-delimited 8 or 10 digit window exists
	out := detectPhones(t, "serial 123456789012 end")
	if len(out) != 0 {
		t.Fatalf("expected no spans inside a 12-digit run, got %v", out)
	}
}
