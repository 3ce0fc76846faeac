// Package internal contains build information shared by the commands.
package internal

import (
	"runtime/debug"
	"time"
)

// Build information from the embedded VCS metadata. The zero values remain
// when the binary was built outside a VCS checkout.
var (
	BuildRevision      = "unknown"
	BuildRevisionTime  time.Time
	BuildLocalModified = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev, ok := settings["vcs.revision"]; ok {
		BuildRevision = rev
	}

	if raw, ok := settings["vcs.time"]; ok && raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			BuildRevisionTime = ts
		}
	}

	if mod, ok := settings["vcs.modified"]; ok {
		BuildLocalModified = mod
	}
}
