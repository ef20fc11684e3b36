package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/UnlockedLabs/UnlockEdv2-sub001/docs"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/config"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/db"
	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/schedule"
)

// @title           Program Scheduling API
// @version         1.0
// @description     Recurring class session scheduling: recurrence expansion, occurrence overrides, room conflict detection and bulk cancellation.
// @host            localhost:8000
// @BasePath        /
func SetupRouter(cfg *config.Config) *gin.Engine {
	store := db.NewStore()
	svc := schedule.NewService(store, nil)
	a := New(svc, store, cfg.ConflictHorizonDays)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		if err := db.PingDB(); err != nil {
			c.JSON(500, gin.H{"status": "db_ping_error"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/rooms", a.ListRooms)
	r.POST("/rooms", a.CreateRoom)

	classes := r.Group("/program-classes")
	{
		classes.POST("/:class_id/events", a.CreateEvent)
		classes.PUT("/:class_id/events/:event_id", a.OverrideEvent)
		classes.GET("/:class_id/sessions", a.ListSessions)
		classes.POST("/:class_id/enrollments/import", a.ImportRoster)
		classes.POST("/bulk-cancel", a.BulkCancel)
	}

	r.GET("/instructors/:instructor_id/classes", a.InstructorClasses)

	return r
}
