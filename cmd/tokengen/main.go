// Command tokengen issues a bearer token for the reference server using the
// server's own signing settings. The subject is read from TOKEN_SUBJECT.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
)

const defaultSubject = "sync-client"

func main() {
	log := logger.NewLogger("offline-sync-tokengen")

	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	subject := os.Getenv("TOKEN_SUBJECT")
	if subject == "" {
		subject = defaultSubject
	}

	token, err := service.NewAuthService(cfg.App, log).CreateToken(context.Background(), subject)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating token")
	}

	fmt.Println(token.SignedString)
}
