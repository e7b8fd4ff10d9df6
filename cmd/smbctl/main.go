// Command smbctl is a small command-line client for SMB file shares.
//
// Connection settings come from flags, SMBCTL_* environment variables or
// a config.yaml file, in that order of precedence:
//
//	smbctl --server fs1.corp.example --user jdoe shares
//	SMBCTL_PASSWORD=secret smbctl ls -r data/projects
//	smbctl --url 'smb://CORP;jdoe@fs1/data' get reports/q3.pdf ./q3.pdf
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

// Version is set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	a := newApp(os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		log.Error("smbctl failed", "error", err)
		os.Exit(1)
	}
}
