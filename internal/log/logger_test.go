package log

import "testing"

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warn", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, c := range cases {
		got, ok := ParseLevel(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSetLevel(t *testing.T) {
	orig := GetLevel()
	defer SetLevel(orig)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("GetLevel = %v after SetLevel(LevelError)", GetLevel())
	}
	if shouldLog(LevelWarn) {
		t.Errorf("warn passes an error-level filter")
	}
	if !shouldLog(LevelFatal) {
		t.Errorf("fatal blocked by an error-level filter")
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || Level(99).String() != "UNKNOWN" {
		t.Errorf("Level.String misbehaves: %q, %q", LevelDebug, Level(99))
	}
}
