// Package main implements a small tool that mints a bearer token for the
// catalog API using the same configuration as the server. It is meant for
// development and smoke tests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/juju/clock"
	"github.com/petcare/catalog-api/internal/config"
	"github.com/petcare/catalog-api/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "dev", "token subject")
	header := flag.Bool("header", false, "print a full Authorization header value")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	svc, err := auth.NewJWTService(cfg.Auth, clock.WallClock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		os.Exit(1)
	}

	token, err := svc.GenerateToken(context.Background(), *subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token for %s: %v\n", *subject, err)
		os.Exit(1)
	}

	if *header {
		fmt.Printf("Bearer %s\n", token)
		return
	}
	fmt.Println(token)
}
