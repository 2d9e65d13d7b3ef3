package utils

import (
	"strings"
	"testing"
)

func TestGenerateReferenceCode(t *testing.T) {
	code := GenerateReferenceCode("TRV")
	if !strings.HasPrefix(code, "TRV-") {
		t.Fatalf("code %q missing prefix", code)
	}
	body := strings.TrimPrefix(code, "TRV-")
	if len(body) != referenceCodeLength {
		t.Fatalf("code body %q has length %d", body, len(body))
	}
	if strings.ContainsAny(body, "01IO") {
		t.Errorf("code %q contains ambiguous characters", code)
	}
}

func TestGenerateReferenceCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateReferenceCode("")] = true
	}
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Golden Triangle Tour":          "golden-triangle-tour",
		"  Kerala: Backwaters & Hills ": "kerala-backwaters-hills",
		"5 Days / 4 Nights":             "5-days-4-nights",
		"---":                           "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
