package httpclient

import (
	"bytes"
	"testing"
	"time"

	"vtscan/internal/logging"
)

func TestReadAllWithLimitWithinLimit(t *testing.T) {
	payload := []byte("hello")
	got, err := ReadAllWithLimit(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}

func TestReadAllWithLimitTooLarge(t *testing.T) {
	payload := []byte("hello")
	_, err := ReadAllWithLimit(bytes.NewReader(payload), 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsResponseTooLarge(err) {
		t.Fatalf("expected ResponseTooLargeError, got %v", err)
	}
}

func TestReadAllWithLimitUnlimited(t *testing.T) {
	payload := []byte("hello")
	got, err := ReadAllWithLimit(bytes.NewReader(payload), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}

func TestNewAppliesTimeout(t *testing.T) {
	client := New(10*time.Second, logging.Nop())
	if client.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", client.Timeout)
	}
}

func TestNewWithoutTimeout(t *testing.T) {
	client := New(0, logging.Nop())
	if client.Timeout != 0 {
		t.Fatalf("expected no client timeout, got %s", client.Timeout)
	}
	if client.Transport == nil {
		t.Fatal("expected transport to be configured")
	}
}
