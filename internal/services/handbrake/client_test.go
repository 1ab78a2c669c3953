package handbrake

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/HandBrakeCLI"))
	if cli.binary != "/opt/HandBrakeCLI" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestCLIStartRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Start(context.Background(), EncodeOptions{Output: "/tmp/out.mkv"}); err == nil {
		t.Fatal("expected error when input path is empty")
	}
	if _, err := cli.Start(context.Background(), EncodeOptions{Input: "/media/movie.mkv"}); err == nil {
		t.Fatal("expected error when output path is empty")
	}
}

func stubWorker(t *testing.T, mode string, capture *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if capture != nil {
			*capture = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HANDBRAKE_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func collectEvents(t *testing.T, handle Handle) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case event, ok := <-handle.Events():
			if !ok {
				return events
			}
			events = append(events, event)
		case <-timeout:
			t.Fatal("timed out waiting for worker events")
		}
	}
}

func TestCLIStartEmitsProgressThenComplete(t *testing.T) {
	var args []string
	stubWorker(t, "success", &args)

	cli := NewCLI()
	handle, err := cli.Start(context.Background(), EncodeOptions{Input: "/media/movie.mkv", Output: "/tmp/out.mkv"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	events := collectEvents(t, handle)
	if len(events) < 2 {
		t.Fatalf("expected progress and terminal events, got %v", events)
	}
	first, last := events[0], events[len(events)-1]
	if first.Kind != EventProgress {
		t.Fatalf("expected first event to be progress, got %v", first.Kind)
	}
	if first.Progress.Task != "Encoding" || first.Progress.Percent != 25.5 {
		t.Fatalf("unexpected progress payload: %+v", first.Progress)
	}
	if last.Kind != EventComplete {
		t.Fatalf("expected terminal complete event, got %+v", last)
	}
	if len(args) == 0 || args[0] != "--json" {
		t.Fatalf("expected --json in worker args, got %v", args)
	}
}

func TestCLIStartSurfacesWorkerFailure(t *testing.T) {
	stubWorker(t, "fail", nil)

	cli := NewCLI()
	handle, err := cli.Start(context.Background(), EncodeOptions{Input: "/media/movie.mkv", Output: "/tmp/out.mkv"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	events := collectEvents(t, handle)
	last := events[len(events)-1]
	if last.Kind != EventError || last.Err == nil {
		t.Fatalf("expected terminal error event, got %+v", last)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	fmt.Println("[12:00:00] hb_init: starting libhb")
	fmt.Println("Progress: {")
	fmt.Println(`    "State": "WORKING",`)
	fmt.Println(`    "Working": {`)
	fmt.Println(`        "ETASeconds": 120,`)
	fmt.Println(`        "Percent": 25.5,`)
	fmt.Println(`        "Rate": 98.2,`)
	fmt.Println(`        "RateAvg": 87.1`)
	fmt.Println("    }")
	fmt.Println("}")

	switch os.Getenv("HANDBRAKE_HELPER_MODE") {
	case "fail":
		fmt.Println(`Progress: {"State": "WORKDONE", "WorkDone": {"Error": 3}}`)
		os.Exit(1)
	default:
		fmt.Println(`Progress: {"State": "MUXING", "Working": {"Percent": 100.0}}`)
		fmt.Println(`Progress: {"State": "WORKDONE", "WorkDone": {"Error": 0}}`)
	}
}
