// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package version reports which build of a pipeline command is running. It
// feeds -version output, the HTTP User-Agent and the bot's health endpoint.
package version

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Info is the version and build information of the current binary.
type Info struct {
	Cmd      string `json:"cmd"`
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`   // vcs.revision
	BuiltAt  string `json:"built_at,omitempty"` // vcs.time
	Modified bool   `json:"modified,omitempty"` // vcs.modified
	Go       string `json:"go"`
}

// String implements [fmt.Stringer] for -version output.
func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(i.Cmd + " " + i.Version + " (" + i.Go + ", " + runtime.GOOS + "/" + runtime.GOARCH + ")\n")
	if i.Commit != "" {
		sb.WriteString("commit " + i.Commit)
		if i.Modified {
			sb.WriteString(" (modified)")
		}
		sb.WriteString("\n")
	}
	if i.BuiltAt != "" {
		sb.WriteString("built at " + i.BuiltAt + "\n")
	}
	return sb.String()
}

// Version returns the version and build information of the current binary.
var Version = sync.OnceValue(func() Info {
	bi, _ := debug.ReadBuildInfo()
	name := "autoblog"
	if exe, err := os.Executable(); err == nil {
		name = filepath.Base(exe)
	}
	return fromBuildInfo(name, bi)
})

func fromBuildInfo(cmd string, bi *debug.BuildInfo) Info {
	i := Info{Cmd: cmd, Version: "devel", Go: runtime.Version()}
	if bi == nil {
		return i
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		i.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			i.Commit = s.Value
		case "vcs.time":
			i.BuiltAt = s.Value
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
	return i
}

// CmdName returns the base name of the current binary.
func CmdName() string { return Version().Cmd }

// Short returns the binary name and version, like "contentbot devel" or
// "contentbot v1.2.0+dirty".
func Short() string {
	i := Version()
	s := i.Cmd + " " + i.Version
	if i.Modified {
		s += "+dirty"
	}
	return s
}
