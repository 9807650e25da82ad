package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"access_token", "abc",
		"store", "Abarrotes Lupita",
	})
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("expected secrets redacted, got %v", out)
	}
	if out[5] != "Abarrotes Lupita" {
		t.Fatalf("expected plain value kept, got %v", out[5])
	}
}

func TestSanitizeKVsHashesIdentifiers(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "7f1d"})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("expected hashed user id, got %v", out[1])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"store", "x", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}
