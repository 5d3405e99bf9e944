package version

// Version is the binary version string, overridden at build time with
// -ldflags "-X github.com/Edwinhr716/maxtext/version.Version=...".
var Version = "0.0.0"
