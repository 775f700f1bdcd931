//go:build !unix

package git

import "os"

// inputReady cannot poll here; any non-terminal stdin is treated as piped.
func inputReady(*os.File) bool {
	return true
}
