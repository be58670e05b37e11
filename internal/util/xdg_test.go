package util

import (
	"path/filepath"
	"testing"
)

func TestGetXDGStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	got, err := GetXDGStateDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-state", "aglab"); got != want {
		t.Errorf("GetXDGStateDir() = %q, want %q", got, want)
	}
}

func TestGetXDGStateDir_HomeFallback(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/tester")
	got, err := GetXDGStateDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/home/tester", ".local", "state", "aglab"); got != want {
		t.Errorf("GetXDGStateDir() = %q, want %q", got, want)
	}
}
