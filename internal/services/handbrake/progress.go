package handbrake

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// stateEnvelope matches the JSON state blocks HandBrakeCLI writes to stdout
// when launched with --json.
type stateEnvelope struct {
	State   string `json:"State"`
	Working *struct {
		Percent    float64 `json:"Percent"`
		Rate       float64 `json:"Rate"`
		RateAvg    float64 `json:"RateAvg"`
		ETASeconds int     `json:"ETASeconds"`
	} `json:"Working"`
	WorkDone *struct {
		Error int `json:"Error"`
	} `json:"WorkDone"`
}

const (
	stateScanning = "SCANNING"
	stateWorking  = "WORKING"
	stateMuxing   = "MUXING"
	stateWorkDone = "WORKDONE"
)

// scanProgress consumes HandBrakeCLI --json output, invoking onProgress for
// every WORKING/MUXING state block. The CLI interleaves the JSON blocks with
// plain log lines, and the blocks themselves span multiple lines ("Progress:
// {" through the matching close brace), so blocks are reassembled by brace
// depth before decoding. Returns the worker error code from the final
// WORKDONE block, or 0 when none was seen.
func scanProgress(r io.Reader, onProgress func(Progress)) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		block     strings.Builder
		depth     int
		workErr   int
		capturing bool
	)

	for scanner.Scan() {
		line := scanner.Text()
		if !capturing {
			idx := strings.Index(line, "{")
			if idx < 0 {
				continue
			}
			line = line[idx:]
			capturing = true
			block.Reset()
			depth = 0
		}
		block.WriteString(line)
		block.WriteByte('\n')
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth > 0 {
			continue
		}
		capturing = false

		var envelope stateEnvelope
		if err := json.Unmarshal([]byte(block.String()), &envelope); err != nil {
			continue
		}
		switch envelope.State {
		case stateWorking, stateMuxing, stateScanning:
			if envelope.Working == nil {
				continue
			}
			if onProgress != nil {
				onProgress(Progress{
					Task:    taskName(envelope.State),
					Percent: envelope.Working.Percent,
					Rate:    envelope.Working.Rate,
					AvgRate: envelope.Working.RateAvg,
					ETA:     time.Duration(envelope.Working.ETASeconds) * time.Second,
				})
			}
		case stateWorkDone:
			if envelope.WorkDone != nil {
				workErr = envelope.WorkDone.Error
			}
		}
	}
	return workErr, scanner.Err()
}

func taskName(state string) string {
	switch state {
	case stateWorking:
		return "Encoding"
	case stateMuxing:
		return "Muxing"
	case stateScanning:
		return "Scanning"
	default:
		return state
	}
}
