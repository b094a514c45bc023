// Command admintoken prints a signed admin token for the contacts listing.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ashureev/portfolio-assistant/internal/middleware"
)

func main() {
	subject := flag.String("subject", "owner", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	token, err := middleware.NewAdminToken(os.Getenv("ADMIN_JWT_SECRET"), *subject, *ttl)
	if err != nil {
		slog.Error("Failed to sign admin token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
