// Package version reports the build version of pricefinder.
//
//	go build -ldflags "-X github.com/ramonehamilton/mtg-price-finder/internal/version.Version=v1.2.3" ./cmd/pricefinder
package version

import "runtime/debug"

// Version is set at link time. Left at "dev", the module version recorded by
// `go install` is used when there is one.
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
