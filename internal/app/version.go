package app

import "runtime/debug"

// version is set at build time via -ldflags "-X ...app.version=v1.2.3".
var version = ""

// Version returns the build version.
// Priority: ldflags > debug.ReadBuildInfo > "(devel)"
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
