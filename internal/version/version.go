package version

import "fmt"

// GitCommit stores the latest Git commit hash.
// Set via -ldflags "-X github.com/rackprobe/raritan-pdu-exporter/internal/version.GitCommit=$(git rev-parse HEAD)"
var GitCommit string

// BuildTime stores the build timestamp in UTC.
// Set via -ldflags "-X github.com/rackprobe/raritan-pdu-exporter/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var BuildTime string

// Version indicates the version of the binary, such as a release number
// or semantic version.
// Set via -ldflags "-X github.com/rackprobe/raritan-pdu-exporter/internal/version.Version=v1.0.0"
var Version string

// GoVersion captures the Go version used to build the binary.
var GoVersion string

func VersionInfo() string {
	return fmt.Sprintf("Version: %s, Git Commit: %s, Build Time: %s, Go Version: %s",
		Version, GitCommit, BuildTime, GoVersion)
}

func PrintVersionInfo() {
	fmt.Printf("Version: %s\n", Version)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Go Version: %s\n", GoVersion)
}
