// Command token mints a bearer token for a device when the API runs with
// auth.jwt_secret set.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ecoready/backend/internal/config"
	"github.com/ecoready/backend/internal/middleware"
)

func main() {
	device := flag.String("device", "", "device identifier to embed as the token subject")
	flag.Parse()

	if *device == "" {
		fmt.Fprintln(os.Stderr, "usage: token -device <id>")
		os.Exit(2)
	}

	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "auth.jwt_secret is not set; the API accepts unauthenticated requests")
		os.Exit(1)
	}

	token, err := middleware.GenerateToken([]byte(cfg.Auth.JWTSecret), *device, cfg.Auth.TokenTTL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
