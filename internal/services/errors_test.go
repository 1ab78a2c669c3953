package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	underlying := errors.New("exit status 1")
	err := Wrap(ErrWorker, "encoding", "handbrake encode", "worker exited", underlying)
	if !errors.Is(err, ErrWorker) {
		t.Fatalf("wrapped error should match marker: %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Fatalf("wrapped error should match cause: %v", err)
	}
	for _, want := range []string{"encoding", "handbrake encode", "worker exited"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestWrapNilMarkerDefaultsToWorker(t *testing.T) {
	err := Wrap(nil, "encoding", "", "", nil)
	if !errors.Is(err, ErrWorker) {
		t.Fatalf("nil marker should default to ErrWorker: %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrProbe, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message: %v", err)
	}
}
