package main

import (
	"log"

	"github.com/futig/coach-backend/internal/builder"
)

func main() {
	app, err := builder.Build()
	if err != nil {
		log.Fatalf("build coach backend: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("coach backend: %v", err)
	}
}
