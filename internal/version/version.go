// Package version reports which pipette build is running.
//
// Release builds set Version, Commit and Date with -ldflags "-X ...". Builds
// made with go build or go install fall back to the module version and VCS
// stamps the toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const unset = "unknown"

var (
	// Version is the release version, e.g. "1.2.0".
	Version = "dev"

	// Commit is the git revision of the build.
	Commit = unset

	// Date is the commit or build time in RFC3339 format.
	Date = unset
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information, filling gaps left by ldflags from
// the embedded module and VCS data.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == unset {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == unset {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders the build as printed by "pipette version".
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipette version %s", i.Version)

	details := make([]string, 0, 3)
	if i.Commit != unset {
		rev := shortCommit(i.Commit)
		if i.Modified {
			rev += "-dirty"
		}
		details = append(details, "commit: "+rev)
	}
	if i.Date != unset {
		details = append(details, "built: "+i.Date)
	}
	details = append(details, i.GoVersion+" "+i.Platform)

	fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	return b.String()
}

// String returns the version line of the running build.
func String() string {
	return GetInfo().String()
}

// UserAgent returns the product token sent with remote snapshot fetches.
func UserAgent() string {
	return fmt.Sprintf("pipette/%s (%s; %s)", GetInfo().Version, runtime.GOOS, runtime.GOARCH)
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
