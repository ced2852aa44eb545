// Package version provides build version information for the diarkit
// command line tool, printed by `diarkit --version`.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/diarkit/diarkit/version.Version=2.0.0"
package version
