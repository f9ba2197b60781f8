// Package version reports build information for the toolkit binaries.
package version

import (
	"fmt"
	"runtime"
)

// Product is the name reported by every binary.
const Product = "tctool"

// Build information. These variables are set at build time using ldflags:
//
//	-ldflags "-X github.com/UltraBlur/Elephant-Toolkits-Open/pkg/version.Version=1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	OS        = runtime.GOOS
	Arch      = runtime.GOARCH
)

// Info contains version information.
type Info struct {
	Product   string `json:"product"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo returns the version information.
func GetInfo() Info {
	return Info{
		Product:   Product,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        OS,
		Arch:      Arch,
	}
}

// String returns the version string.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, os/arch: %s/%s)",
		i.Product, i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short returns a short version string.
func (i Info) Short() string {
	return fmt.Sprintf("%s %s", i.Product, i.Version)
}

// Banner returns the line a binary prints for --version.
func (i Info) Banner(binary string) string {
	return fmt.Sprintf("%s (%s)", binary, i.String())
}
