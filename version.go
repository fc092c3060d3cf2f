// Package reflexgo provides the version information for reflex-go.
package reflexgo

// Version is the current version of reflex-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
