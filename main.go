package main

import (
	"image-ocr-llm/cmd"
)

// Version information - set during build via ldflags.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, GitCommit, BuildTime)
	cmd.Execute()
}
