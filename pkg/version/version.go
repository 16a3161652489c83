package version

import "runtime/debug"

// Version is set at build time with -ldflags "-X github.com/cbodonnell/skirmish/pkg/version.Version=v1.2.3"
var Version = ""

// Get returns the build version, falling back to the module version or "dev".
func Get() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
