package main

import (
	"fmt"
	"os"

	"github.com/adanyl0v/go-tasks/internal/app"
)

func main() {
	if err := app.RunClient(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
