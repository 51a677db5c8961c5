package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/communityhub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   local store directory (default from Config)
//	-m string   remote collection service URI
//	-t int      startup snapshot wait in milliseconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local store directory")
	fs.StringVar(&cfg.MongoURI, "m", cfg.MongoURI, "remote collection service URI")
	loadTimeout := fs.Int("t", int(cfg.LoadTimeout.Milliseconds()), "startup snapshot wait (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LoadTimeout = time.Duration(*loadTimeout) * time.Millisecond
}
