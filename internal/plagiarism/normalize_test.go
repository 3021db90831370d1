package plagiarism

import (
	"context"
	"testing"
)

func TestGeminiNormalizerFallsBackToRawCodeWithoutClient(t *testing.T) {
	n := NewGeminiNormalizer(nil, "")

	got, err := n.Normalize(context.Background(), "int main() {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "int main() {}" {
		t.Fatalf("expected raw code passthrough, got %q", got)
	}
}

func TestGeminiNormalizerNilReceiverFallsBack(t *testing.T) {
	var n *GeminiNormalizer
	got, err := n.Normalize(context.Background(), "raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "raw" {
		t.Fatalf("expected raw code passthrough, got %q", got)
	}
}
