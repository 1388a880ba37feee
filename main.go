package main

import (
	"github.com/goodkarma/goodkarma/config"
	"github.com/goodkarma/goodkarma/lifecoach"
	"github.com/goodkarma/goodkarma/models"
	"github.com/goodkarma/goodkarma/routes"
	"github.com/goodkarma/goodkarma/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Like{}, &models.Comment{}, &models.CoachingData{})

	coach := lifecoach.New(cfg)

	r := routes.SetupRouter(db, coach)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
