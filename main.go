package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/perfgo/runnerstat/cli"
)

// Version information, set by goreleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A missing .env file is not an error; flags and the environment still apply.
	_ = godotenv.Load()

	c := cli.New()
	c.SetVersion(version, commit, date)
	err := c.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
