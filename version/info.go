package version

import (
	"fmt"
	"strings"
)

// Info is the build information of the running binary.
type Info struct {
	Release    string `json:"release" yaml:"release"`
	Commit     string `json:"commit,omitempty" yaml:"commit,omitempty"`
	CommitDate string `json:"commit_date,omitempty" yaml:"commit_date,omitempty"`
	Go         string `json:"go" yaml:"go"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Release: GitRelease, Commit: GitCommit, CommitDate: GitCommitDate, Go: GoInfo}
}

// RenderText prints the version banner.
func (i Info) RenderText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "destinos %s\n", i.Release)
	fmt.Fprintf(&sb, "  go      %s\n", i.Go)
	if i.Commit != "" {
		fmt.Fprintf(&sb, "  commit  %s\n", i.Commit)
	}
	if i.CommitDate != "" {
		fmt.Fprintf(&sb, "  date    %s\n", i.CommitDate)
	}
	return sb.String()
}
