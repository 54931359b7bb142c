package domain

import "testing"

func TestRepeatMode_String(t *testing.T) {
	tests := []struct {
		mode RepeatMode
		want string
	}{
		{RepeatOff, "off"},
		{RepeatTrack, "track"},
		{RepeatQueue, "queue"},
		{RepeatMode(42), "off"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("RepeatMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestRepeatMode_Next(t *testing.T) {
	if got := RepeatOff.Next(); got != RepeatTrack {
		t.Errorf("expected track after off, got %v", got)
	}
	if got := RepeatTrack.Next(); got != RepeatQueue {
		t.Errorf("expected queue after track, got %v", got)
	}
	if got := RepeatQueue.Next(); got != RepeatOff {
		t.Errorf("expected off after queue, got %v", got)
	}
}

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		input string
		want  RepeatMode
	}{
		{"off", RepeatOff},
		{"track", RepeatTrack},
		{"queue", RepeatQueue},
		{"bogus", RepeatOff},
		{"", RepeatOff},
	}

	for _, tt := range tests {
		if got := ParseRepeatMode(tt.input); got != tt.want {
			t.Errorf("ParseRepeatMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
