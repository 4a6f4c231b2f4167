// Package version provides version information for the consensus-go application.
package version

// Version is the current version of the consensus-go application.
const Version = "0.3.1"

// AgentString returns the full agent string with versioning.
// Format: @marketpriors/consensus-go@v{version}
func AgentString() string {
	return "@marketpriors/consensus-go@v" + Version
}
