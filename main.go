package main

import (
	"context"
	"os"
	"runtime"

	"imagesearch/cli"
	"imagesearch/signalhandler"
)

func main() {
	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
