package main

import (
	"fmt"
	"os"

	"github.com/sprintflow/sprintflow-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(); err != nil {
		a.Log.Fatal("failed to start event forwarder", "error", err)
	}

	a.Log.Info("SprintFlow backend listening", "port", a.Cfg.Port)
	if err := a.Run(); err != nil {
		a.Log.Fatal("server exited", "error", err)
	}
}
