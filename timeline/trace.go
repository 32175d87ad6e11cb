package timeline

import (
	"fmt"
	"runtime"
	"strings"
)

const maxTraceDepth = 32

// Trace is a call stack captured when an Entry was produced.
// A nil *Trace is valid and empty.
type Trace struct {
	pcs []uintptr
}

// CaptureTrace records the call stack of its caller, skipping skip additional frames.
func CaptureTrace(skip int) *Trace {
	pcs := make([]uintptr, maxTraceDepth)
	n := runtime.Callers(skip+2, pcs)

	return &Trace{pcs: pcs[:n]}
}

func (t *Trace) Frames() []runtime.Frame {
	if t == nil || len(t.pcs) == 0 {
		return nil
	}

	frames := make([]runtime.Frame, 0, len(t.pcs))
	iter := runtime.CallersFrames(t.pcs)
	for {
		frame, more := iter.Next()
		frames = append(frames, frame)
		if !more {
			break
		}
	}

	return frames
}

// Lines renders each frame as "function file:line".
func (t *Trace) Lines() []string {
	frames := t.Frames()
	lines := make([]string, 0, len(frames))
	for _, frame := range frames {
		lines = append(lines, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
	}

	return lines
}

func (t *Trace) String() string {
	return strings.Join(t.Lines(), "\n")
}
