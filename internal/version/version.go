package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/ThatsNoMoon/bookmarks/internal/version.Version=1.0.0
//	  -X github.com/ThatsNoMoon/bookmarks/internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("bookmarks %s (commit: %s, %s/%s)",
		Version, short(Commit), runtime.GOOS, runtime.GOARCH)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
