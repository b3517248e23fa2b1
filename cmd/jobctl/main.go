package main

import (
	"os"

	"github.com/spec-kit/job-portal/cmd/jobctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
