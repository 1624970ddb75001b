package main

import (
	"log"

	"github.com/zintix-labs/collectlab/perf"
)

// makefile runner
func main() {
	bindVar()
	if err := perf.Run(execute, cfg.pprofmode, ""); err != nil {
		log.Fatal(err)
	}
}
