package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/osmanyildiz/cinema-booking-system/internal/app"
)

func main() {
	// Seeds the environment that flag defaults read; missing .env is fine.
	godotenv.Load()

	err := app.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
