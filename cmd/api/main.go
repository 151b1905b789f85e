package main

import (
	"github.com/yigit/placementcell/internal/pkg/logger"
	"github.com/yigit/placementcell/internal/server"
)

// @title Placement Cell API
// @version 1.0
// @description Campus placement management: students, gradesheet imports, companies and applications

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Server execution failed or shutdown encountered errors")
	}

	logger.Info().Msg("Application finished gracefully.")
}
