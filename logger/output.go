package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: results, errors with hints
//	1 (-v)      - + startup banner, config summary, client lifecycle status
//	2 (-vv)     - + tick timing, reply dispatch, stacking/focus changes
//	3 (-vvv)    - + raw event ingestion, cookie-jar bookkeeping, handler flow
//	4 (-vvvv)   - + full property payload dumps, wire-level tracing

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // CLI command output
	OutputErrors                           // Errors with hints and resolution steps
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputStartup        // Startup banner, resolved config summary
	OutputClientLifecycle // Client map/unmap/destroy transitions
	OutputOperationInfo  // High-level operation summaries
	OutputSignal         // Signal received (exit/restart/reconfigure/dump-stats)

	// Level 2 (-vv) - Detailed
	OutputTickTiming   // Tick duration, phase breakdown
	OutputReplyDispatch // Cookie resolved -> handler dispatched
	OutputStacking     // Raise/lower/restack decisions
	OutputFocusChange  // Focus commit, MRU history changes
	OutputConfig       // Config values loaded/applied/reloaded

	// Level 3 (-vvv) - Debug
	OutputEventIngest  // Raw X11 event received, kind and window
	OutputCookieJar    // Cookie insert/drain/timeout-reap
	OutputBucketing    // Event coalescing decisions
	OutputHandlerFlow  // Per-event-kind handler entry/exit
	OutputCommitPhase  // Dirty-state flush decisions

	// Level 4 (-vvvv) - Full dump
	OutputPropertyDump // Full decoded property payloads (WM_CLASS, hints, etc.)
	OutputWireTrace    // Raw request/reply/event bytes
	OutputDataDump     // Full internal data structure contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	// Level 0 - Always shown
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	// Level 1 - Informational
	OutputStartup:         VerbosityInfo,
	OutputClientLifecycle: VerbosityInfo,
	OutputOperationInfo:   VerbosityInfo,
	OutputSignal:          VerbosityInfo,

	// Level 2 - Detailed
	OutputTickTiming:    VerbosityDebug,
	OutputReplyDispatch: VerbosityDebug,
	OutputStacking:      VerbosityDebug,
	OutputFocusChange:   VerbosityDebug,
	OutputConfig:        VerbosityDebug,

	// Level 3 - Debug
	OutputEventIngest: VerbosityTrace,
	OutputCookieJar:   VerbosityTrace,
	OutputBucketing:   VerbosityTrace,
	OutputHandlerFlow: VerbosityTrace,
	OutputCommitPhase: VerbosityTrace,

	// Level 4 - Full dump
	OutputPropertyDump: VerbosityAll,
	OutputWireTrace:    VerbosityAll,
	OutputDataDump:     VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:         "results",
	OutputErrors:          "errors",
	OutputUserStatus:      "status",
	OutputStartup:         "startup",
	OutputClientLifecycle: "client-lifecycle",
	OutputOperationInfo:   "operation-info",
	OutputSignal:          "signal",
	OutputTickTiming:      "tick-timing",
	OutputReplyDispatch:   "reply-dispatch",
	OutputStacking:        "stacking",
	OutputFocusChange:     "focus-change",
	OutputConfig:          "config",
	OutputEventIngest:     "event-ingest",
	OutputCookieJar:       "cookie-jar",
	OutputBucketing:       "bucketing",
	OutputHandlerFlow:     "handler-flow",
	OutputCommitPhase:     "commit-phase",
	OutputPropertyDump:    "property-dump",
	OutputWireTrace:       "wire-trace",
	OutputDataDump:        "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories returns all output categories enabled at the given verbosity
func EnabledCategories(verbosity int) []OutputCategory {
	var enabled []OutputCategory
	for cat, minLevel := range categoryLevels {
		if verbosity >= minLevel {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "results and errors only"
	case VerbosityInfo:
		return "above + startup, client lifecycle, signals"
	case VerbosityDebug:
		return "above + tick timing, reply dispatch, stacking/focus, config"
	case VerbosityTrace:
		return "above + event ingest, cookie jar, handler flow"
	case VerbosityAll:
		return "above + property dumps, wire trace"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}

// Client lifecycle / stacking / focus output helpers

// ShouldShowStacking returns true if stacking decisions should be displayed
func ShouldShowStacking(verbosity int) bool {
	return ShouldOutput(verbosity, OutputStacking)
}

// ShouldShowFocusChange returns true if focus commit details should be displayed
func ShouldShowFocusChange(verbosity int) bool {
	return ShouldOutput(verbosity, OutputFocusChange)
}

// ShouldShowPropertyDump returns true if full property payloads should be displayed
func ShouldShowPropertyDump(verbosity int) bool {
	return ShouldOutput(verbosity, OutputPropertyDump)
}

// Event pipeline output helpers

// ShouldShowEventIngest returns true if raw event ingestion should be logged
func ShouldShowEventIngest(verbosity int) bool {
	return ShouldOutput(verbosity, OutputEventIngest)
}

// ShouldShowCookieJar returns true if cookie-jar bookkeeping should be logged
func ShouldShowCookieJar(verbosity int) bool {
	return ShouldOutput(verbosity, OutputCookieJar)
}

// ShouldShowHandlerFlow returns true if per-handler entry/exit should be logged
func ShouldShowHandlerFlow(verbosity int) bool {
	return ShouldOutput(verbosity, OutputHandlerFlow)
}

// Timing helpers

// SlowThresholdMS is the threshold in milliseconds above which timing is always shown
const SlowThresholdMS = 100

// ShouldShowTiming returns true if timing info should be displayed.
// Shows if: verbosity >= 2 (-vv) OR operation exceeded slow threshold.
func ShouldShowTiming(verbosity int, durationMS int64) bool {
	if durationMS >= SlowThresholdMS {
		return true // Always show slow operations
	}
	return ShouldOutput(verbosity, OutputTickTiming)
}

// ShouldShowTimingAlways returns true if timing should always be shown (slow operation)
func ShouldShowTimingAlways(durationMS int64) bool {
	return durationMS >= SlowThresholdMS
}
