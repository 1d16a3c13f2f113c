// Package version carries build metadata injected with -ldflags:
//
//	go build -ldflags "-X github.com/doeshing/apex/internal/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	Name      = "APEX"
	Version   = "1.0.0"
	Commit    = ""
	BuildDate = ""
)

// Info is a snapshot of the build metadata.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders "APEX 1.0.0 (commit, date)".
func (i Info) String() string {
	s := fmt.Sprintf("%s %s", i.Name, i.Version)
	switch {
	case i.Commit != "" && i.BuildDate != "":
		s += fmt.Sprintf(" (%s, %s)", i.Commit, i.BuildDate)
	case i.Commit != "":
		s += fmt.Sprintf(" (%s)", i.Commit)
	}
	return s
}
