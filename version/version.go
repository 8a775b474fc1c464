package version

// Version is overridden at build time with -ldflags "-X github.com/zivilschutz/zsadmin/version.Version=...".
var Version = "0.1.0"
