package kernels

import "fmt"

// BuildError reports a runtime-compiler failure. It carries the full build
// log and the program text so callers can surface both before aborting.
type BuildError struct {
	// Device is the name of the device the build ran on.
	Device string

	// Log is the compiler's build log.
	Log string

	// Source is the program text that failed to build.
	Source string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("kernels: program build failed on %s: %s", e.Device, firstLine(e.Log))
}

// firstLine keeps Error() single-line; the full log stays in Log.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
