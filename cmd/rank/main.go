package main

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0
	ExitInputError = 1 // criteria, candidates or factors were rejected
	ExitError      = 2 // configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		if ranking.IsInputError(err) {
			os.Exit(ExitInputError)
		}
		os.Exit(ExitError)
	}
}
