// Command dashboard serves the airline KPI dashboard over HTTP.
package main

import (
	"log/slog"
	"os"

	"airlinekpi/internal/app"
	"airlinekpi/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}
	_ = infrastructure.CloseLogFile()
}
