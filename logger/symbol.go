package logger

import (
	"go.uber.org/zap"
)

// Symbol glyphs tag a log line with the phase of the server that emitted it.
// These are local to hxm; unlike free-form component names they're meant to
// be grepped and dashboarded on directly.
const (
	SymTick    = "◷" // tick loop: wait/drain/ingest/process/commit/flush
	SymIngest  = "⇥" // raw X11 event ingestion and bucketing
	SymCommit  = "⇓" // commit phase: dirty-state flush to the X server
	SymFocus   = "◉" // focus changes and take-focus protocol
	SymStack   = "▤" // stacking order changes
	SymCookie  = "⚷" // cookie-jar bookkeeping (insert/drain/reap)
	SymOpen    = "✿" // graceful startup
	SymClose   = "❀" // graceful shutdown
)

// Symbol-aware logging helpers.
// These functions log with the symbol as a structured field, not in the message.
//
// Usage:
//
//	// Instead of:
//	logger.Infow(logger.SymTick + " tick complete", "tick", n)
//
//	// Use:
//	logger.TickInfow("tick complete", "tick", n)
//
// This makes logs queryable by symbol and keeps messages clean.

// TickInfow logs an info message with the tick symbol (◷)
func TickInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymTick}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// TickDebugw logs a debug message with the tick symbol (◷)
func TickDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymTick}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// TickWarnw logs a warning message with the tick symbol (◷)
func TickWarnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymTick}, keysAndValues...)
		Logger.Warnw(msg, fields...)
	}
}

// TickErrorw logs an error message with the tick symbol (◷)
func TickErrorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymTick}, keysAndValues...)
		Logger.Errorw(msg, fields...)
	}
}

// OpenInfow logs an info message with the startup symbol (✿)
// Used for graceful startup operations
func OpenInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymOpen}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// CloseInfow logs an info message with the shutdown symbol (❀)
// Used for graceful shutdown operations
func CloseInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymClose}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// IngestInfow logs an info message with the ingest symbol (⇥)
// Used for event-ingestion and bucketing operations
func IngestInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymIngest}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// IngestDebugw logs a debug message with the ingest symbol (⇥)
func IngestDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymIngest}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// CommitInfow logs an info message with the commit symbol (⇓)
// Used for commit-phase/flush operations
func CommitInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymCommit}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// CommitDebugw logs a debug message with the commit symbol (⇓)
func CommitDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymCommit}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// FocusInfow logs an info message with the focus symbol (◉)
func FocusInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymFocus}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// StackInfow logs an info message with the stacking symbol (▤)
func StackInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymStack}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// CookieDebugw logs a debug message with the cookie-jar symbol (⚷)
func CookieDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, SymCookie}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// WithSymbol returns a logger with the given symbol as a field.
// For ad-hoc symbol usage not covered by the helpers above.
//
// Example:
//
//	symbolLogger := logger.WithSymbol(logger.SymStack)
//	symbolLogger.Infow("client restacked", "client", handle)
func WithSymbol(symbol string) *zap.SugaredLogger {
	return Logger.With(FieldSymbol, symbol)
}

// SymbolInfow logs with any symbol - for dynamic symbol usage
func SymbolInfow(symbol, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, symbol}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}
