package cron

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/db"
)

func StartJobs() {
	c := cron.New()

	// Overrides reference events by id without a foreign key, so events
	// removed by admin tooling can strand their overrides. Sweep nightly.
	c.AddFunc("@daily", func() {
		log.Println("Running override maintenance job...")

		n, err := db.DeleteOrphanOverrides(context.Background())
		if err != nil {
			log.Println("❌ Failed to prune orphan overrides:", err)
			return
		}
		if n > 0 {
			log.Printf("✅ Pruned %d orphan overrides\n", n)
		}
	})

	c.Start()
}
