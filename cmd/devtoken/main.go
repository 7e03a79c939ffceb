// Command devtoken mints an access token for local development, signed with
// the same HMAC secret the server validates against.
//
//	go run ./cmd/devtoken -user 6f1c... -lifetime 120
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const secretEnv = config.EnvPrefix + "_AUTH_JWT_SECRET"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	// A missing .env is fine; the secret may come from the environment or a flag.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	userFlag := fs.String("user", "", "user ID to embed (random when empty)")
	secret := fs.String("secret", os.Getenv(secretEnv), "HMAC signing secret (defaults to $"+secretEnv+")")
	lifetime := fs.Int("lifetime", 60, "token lifetime in minutes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = parsed
	}

	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            *secret,
		TokenLifetimeMinutes: *lifetime,
	})
	if err != nil {
		return err
	}

	token, err := svc.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "user_id: %s\ntoken:   %s\n", userID, token)
	return nil
}
