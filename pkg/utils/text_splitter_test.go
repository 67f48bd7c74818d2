package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 20)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("expected single untouched chunk, got %v", chunks)
	}
}

func TestSplitTextOverlapPreserved(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Each chunk after the first starts with the tail of the previous one.
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-10:]
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Errorf("chunk %d does not overlap previous chunk", i)
		}
	}
}

func TestSplitTextCoversAllInput(t *testing.T) {
	text := strings.Repeat("x", 95)
	chunks := SplitText(text, 30, 5)

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk must end exactly at the input's end")
	}
}

func TestSplitTextDegenerateOverlap(t *testing.T) {
	// overlap >= chunkSize must not loop forever
	text := strings.Repeat("y", 50)
	chunks := SplitText(text, 10, 10)
	if len(chunks) != 5 {
		t.Errorf("expected 5 non-overlapping chunks as fallback, got %d", len(chunks))
	}
}

func TestSplitTextMultibyteSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 20)
	for _, chunk := range SplitText(text, 25, 5) {
		for _, r := range chunk {
			if r == '�' {
				t.Fatal("splitter cut a multibyte rune")
			}
		}
	}
}
