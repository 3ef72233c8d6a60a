package processor

// DebugLog is called with printf-style diagnostics from the measurement
// pipeline when set; nil (the default) disables debug logging entirely.
// cmd/drtool wires this to a file writer when --debug is passed.
var DebugLog func(format string, args ...interface{})

func debugf(format string, args ...interface{}) {
	if DebugLog != nil {
		DebugLog(format, args...)
	}
}
