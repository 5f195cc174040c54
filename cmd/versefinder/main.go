package main

import (
	"log"

	"github.com/MrSnakeDoc/versefinder/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ versefinder failed to start: %v", err)
	}
}
