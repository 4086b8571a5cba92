package main

import (
	"fmt"
	"log"
	"os"
)

const appName = "StudyForest"

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	log.SetPrefix("studyforest: ")

	app := newCLIApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
