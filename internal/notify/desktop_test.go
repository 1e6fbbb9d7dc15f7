package notify

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestAppleScript(t *testing.T) {
	n := Notification{Title: "Scan Complete", Body: "report.pdf: CLEAN", Priority: PriorityNormal}
	script := appleScript(n)

	want := `display notification "report.pdf: CLEAN" with title "Scan Complete"`
	if script != want {
		t.Errorf("unexpected script:\ngot:  %s\nwant: %s", script, want)
	}
}

func TestAppleScriptCriticalAddsSound(t *testing.T) {
	n := Notification{Title: "THREAT", Body: "evil.exe: MALICIOUS", Priority: PriorityCritical}
	script := appleScript(n)

	if !strings.HasSuffix(script, ` sound name "default"`) {
		t.Errorf("critical notification should request a sound: %s", script)
	}
}

func TestAppleScriptQuoteEscapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `"plain"`},
		{`has "quotes"`, `"has \"quotes\""`},
		{`back\slash`, `"back\\slash"`},
		{`both \ and "`, `"both \\ and \""`},
	}
	for _, tt := range tests {
		if got := appleScriptQuote(tt.in); got != tt.want {
			t.Errorf("appleScriptQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNotifySendArgs(t *testing.T) {
	tests := []struct {
		priority NotificationPriority
		urgency  string
	}{
		{PriorityLow, "low"},
		{PriorityNormal, "normal"},
		{PriorityHigh, "normal"},
		{PriorityCritical, "critical"},
	}
	for _, tt := range tests {
		n := Notification{Title: "T", Body: "B", Priority: tt.priority}
		args := notifySendArgs(n)
		if len(args) != 6 {
			t.Fatalf("expected 6 args, got %v", args)
		}
		if args[0] != "-u" || args[1] != tt.urgency {
			t.Errorf("priority %s: expected urgency %s, got %s", tt.priority, tt.urgency, args[1])
		}
		if args[2] != "-a" || args[3] != "vtscan" {
			t.Errorf("expected app name vtscan, got %v", args[2:4])
		}
		if args[4] != "T" || args[5] != "B" {
			t.Errorf("expected title and body last, got %v", args[4:])
		}
	}
}

func TestDesktopChannelSendInvokesNotifier(t *testing.T) {
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skipf("no desktop notifier on %s", runtime.GOOS)
	}

	var gotName string
	var gotArgs []string
	ch := NewDesktopChannel("desktop")
	ch.run = func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	n := Notification{Title: "Scan Complete", Body: "report.pdf: CLEAN", Priority: PriorityNormal}
	if err := ch.Send(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	switch runtime.GOOS {
	case "darwin":
		if gotName != "osascript" {
			t.Errorf("expected osascript, got %s", gotName)
		}
		if len(gotArgs) != 2 || gotArgs[0] != "-e" {
			t.Errorf("expected -e with a script, got %v", gotArgs)
		}
	case "linux":
		if gotName != "notify-send" {
			t.Errorf("expected notify-send, got %s", gotName)
		}
		if len(gotArgs) != 6 {
			t.Errorf("expected notify-send args, got %v", gotArgs)
		}
	}
}

func TestDesktopChannelSupportsAllPriorities(t *testing.T) {
	ch := NewDesktopChannel("desktop")
	if ch.Name() != "desktop" {
		t.Errorf("expected name desktop, got %s", ch.Name())
	}
	for _, p := range []NotificationPriority{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical} {
		if !ch.Supports(p) {
			t.Errorf("DesktopChannel should support priority %v", p)
		}
	}
}
