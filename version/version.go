// Package version reports the build version of the sixop binaries.
package version

import "runtime/debug"

// Version can be set when building:
// go build -ldflags "-X github.com/sixop/sixop/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision recorded by the Go toolchain, with a
// "-dirty" suffix for builds from a modified tree. It is empty when the
// binary was built outside version control.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}()

func revision(settings []debug.BuildSetting) string {
	rev, dirty := "", false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

// VersionOrHash is Version if set, otherwise Hash, otherwise "devel".
var VersionOrHash = func() string {
	switch {
	case Version != "":
		return Version
	case Hash != "":
		return Hash
	}
	return "devel"
}()
