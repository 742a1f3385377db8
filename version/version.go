package version

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// UserAgent returns the default User-Agent value for outgoing requests.
func UserAgent() string {
	return fmt.Sprintf("apiq/%s", Version)
}
