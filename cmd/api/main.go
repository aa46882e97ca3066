package main

import (
	"fmt"
	"os"

	"github.com/metinatakli/cinex-booking/internal/app"
)

func main() {
	err := app.Run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cinex-booking: %v\n", err)
		os.Exit(1)
	}
}
