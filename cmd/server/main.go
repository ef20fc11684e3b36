package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/api"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/config"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/cron"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system env")
	}

	cfg := config.Load()

	db.InitDB(cfg.DBUrl)

	r := api.SetupRouter(cfg)

	// Start cron jobs
	cron.StartJobs()

	log.Println("Server running on :" + cfg.Port)
	r.Run(":" + cfg.Port)
}
