package main

import (
	"os"

	"github.com/adanyl0v/go-tasks/internal/app"
)

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	// "server migrate-down" reverts the schema and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		app.MustConnectPostgres()
		defer app.DisconnectPostgres()
		app.MustRollbackPostgres()
		return
	}

	closeStorage := app.MustInitStorage()
	defer closeStorage()

	app.MustListenAndServeHTTP()
}
