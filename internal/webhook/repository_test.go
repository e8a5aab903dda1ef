package webhook

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}

	if !strings.HasPrefix(plaintext, "mpk_") {
		t.Errorf("plaintext %q missing mpk_ prefix", plaintext)
	}
	if prefix != plaintext[:12] {
		t.Errorf("prefix %q is not the first 12 chars of %q", prefix, plaintext)
	}
	if got := HashKey(plaintext); got != hash {
		t.Errorf("HashKey(plaintext) = %q, want %q", got, hash)
	}
	if strings.Contains(hash, plaintext) {
		t.Error("hash must not contain the plaintext key")
	}

	other, _, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if other == plaintext {
		t.Error("two generated keys are identical")
	}
}
