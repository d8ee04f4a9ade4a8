package config

import (
	"flag"
	"os"

	"github.com/dberzins/camagru/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the backend server
//	-d string   sqlite DSN for the local state database
//	-f string   frame directory backing the capture device
//	-p int      feed page size
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-f", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the backend server")
	fs.StringVar(&cfg.StateDSN, "d", cfg.StateDSN, "sqlite DSN for local state")
	fs.StringVar(&cfg.CameraDir, "f", cfg.CameraDir, "frame directory backing the capture device")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "feed page size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
