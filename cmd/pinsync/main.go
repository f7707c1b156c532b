package main

import (
	"log"

	"github.com/pinsync/pinsync/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ pinsync failed to start: %v", err)
	}
}
