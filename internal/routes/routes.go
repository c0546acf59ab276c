package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "finance-scheduler-backend/internal/handlers"
	"finance-scheduler-backend/internal/repository"
	service "finance-scheduler-backend/internal/services/scheduling"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	entryRepo := repository.NewScheduledEntryRepository(db)
	ledgerRepo := repository.NewLedgerTransactionRepository(db)

	schedulingService := service.NewService(entryRepo, ledgerRepo)

	scheduleHandler := handler.NewScheduleHandler(schedulingService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	schedule := api.Group("/schedule")
	{
		schedule.POST("/recurring", scheduleHandler.CreateRecurring)
		schedule.POST("/installments", scheduleHandler.CreateInstallments)
		schedule.GET("", scheduleHandler.ListEntries)
		schedule.GET("/:id", scheduleHandler.GetEntry)
		schedule.POST("/:id/confirm", scheduleHandler.ConfirmEntry)
		schedule.POST("/:id/cancel", scheduleHandler.CancelEntry)
		schedule.PUT("/:id/recurrence", scheduleHandler.UpdateRecurrence)
		schedule.DELETE("/:id", scheduleHandler.DeleteEntry)
	}
}
