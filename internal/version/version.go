// Package version identifies the braces binary to CLI users and MCP clients.
package version

import (
	"crypto/sha256"
	"fmt"
	"runtime/debug"
	"sync"
)

const Version = "0.2.0"

// Release builds stamp these with
// -ldflags "-X github.com/standardbeagle/braces/internal/version.GitCommit=..."
var (
	GitCommit = "unknown"
	BuildDate = "development"
)

func Info() string {
	return Version
}

// FullInfo is the one-line form shown by "braces --version" and the info tool.
func FullInfo() string {
	return fmt.Sprintf("braces %s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID fingerprints the running binary from its Go toolchain, module
// version and VCS stamp. Two processes report the same ID only when built
// from the same tree, which tells an editor whether a restarted server
// picked up a rebuild.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + GitCommit
	}

	h := sha256.New()
	for _, s := range []string{info.GoVersion, info.Main.Path, info.Main.Version} {
		h.Write([]byte(s))
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			h.Write([]byte(s.Key + "=" + s.Value))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
