package prompt

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"promptdesk/internal/models"
)

func TestAssembleTextOnly(t *testing.T) {
	parts, err := Assemble("  hello there  ", nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0].Kind != models.PartText || parts[0].Text != "hello there" {
		t.Fatalf("unexpected part: %+v", parts[0])
	}
}

func TestAssembleNothingUsable(t *testing.T) {
	parts, err := Assemble("   ", nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("expected no parts, got %d", len(parts))
	}
}

func TestAssembleRejectsDisallowedExtension(t *testing.T) {
	upload := &Upload{Filename: "malware.exe", Data: []byte{0x4d, 0x5a}}
	parts, err := Assemble("explain this", upload)
	if !errors.Is(err, ErrFileNotAllowed) {
		t.Fatalf("expected ErrFileNotAllowed, got %v", err)
	}
	// the text prompt survives the rejected file
	if len(parts) != 1 || parts[0].Text != "explain this" {
		t.Fatalf("text prompt lost on file rejection: %+v", parts)
	}
}

func TestAssembleTextFile(t *testing.T) {
	upload := &Upload{Filename: "notes.TXT", Data: []byte("line one\nline two")}
	parts, err := Assemble("summarize", upload)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[1].Kind != models.PartText {
		t.Fatalf("expected text part for txt upload")
	}
	if !strings.HasPrefix(parts[1].Text, "\n\n--- Content from uploaded file ---\n") {
		t.Fatalf("missing delimiter header: %q", parts[1].Text)
	}
	if !strings.HasSuffix(parts[1].Text, "line one\nline two") {
		t.Fatalf("file content mangled: %q", parts[1].Text)
	}
}

func TestAssembleInvalidUTF8TextFile(t *testing.T) {
	upload := &Upload{Filename: "broken.txt", Data: []byte{0xff, 0xfe, 0xfd}}
	parts, err := Assemble("what is this", upload)
	if !errors.Is(err, ErrFileDecode) {
		t.Fatalf("expected ErrFileDecode, got %v", err)
	}
	if len(parts) != 1 || parts[0].Text != "what is this" {
		t.Fatalf("text prompt lost on decode failure: %+v", parts)
	}
}

func TestAssembleImageFile(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4e, 0x47}
	upload := &Upload{Filename: "photo.png", MIMEType: "image/png", Data: data}
	parts, err := Assemble("", upload)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	part := parts[0]
	if part.Kind != models.PartBinary || part.MIMEType != "image/png" {
		t.Fatalf("unexpected binary part: %+v", part)
	}
	decoded, err := base64.StdEncoding.DecodeString(part.Data)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if string(decoded) != string(data) {
		t.Fatalf("payload round-trip mismatch")
	}
}

func TestAssembleImageMIMEFallback(t *testing.T) {
	upload := &Upload{Filename: "scan.jpg", Data: []byte{0xff, 0xd8}}
	parts, err := Assemble("", upload)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if parts[0].MIMEType != "image/jpeg" {
		t.Fatalf("expected image/jpeg fallback, got %q", parts[0].MIMEType)
	}
}

func TestAllowedFile(t *testing.T) {
	cases := map[string]bool{
		"a.txt":      true,
		"b.PNG":      true,
		"photo.webp": true,
		"noext":      false,
		"trailing.":  false,
		"run.exe":    false,
		"doc.pdf":    false,
	}
	for name, want := range cases {
		if got := AllowedFile(name); got != want {
			t.Errorf("AllowedFile(%q) = %v, want %v", name, got, want)
		}
	}
}
