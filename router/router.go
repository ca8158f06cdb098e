package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehall/comanda/controllers"
	"github.com/dinehall/comanda/middlewares"
	"github.com/dinehall/comanda/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Services: each component gets the database handle injected, no
	// process-wide singleton.
	tableSvc := services.NewTableService(db)
	sessionSvc := services.NewSessionService(db)
	orderSvc := services.NewOrderService(db, sessionSvc)
	statsSvc := services.NewStatsService(db)

	tableCtrl := controllers.NewTableController(tableSvc, statsSvc)
	sessionCtrl := controllers.NewSessionController(sessionSvc, orderSvc, statsSvc)
	orderCtrl := controllers.NewOrderController(orderSvc, statsSvc)
	statsCtrl := controllers.NewStatsController(statsSvc)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Everything below carries a pre-authorized staff identity.
	api := r.Group("/")
	api.Use(middlewares.StaffContext())
	{
		// Display stream
		api.GET("/kds/ws", controllers.KDSHandler)

		// Table registry, reads for everyone
		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/tables/:table_id", tableCtrl.GetTableByID)
		api.GET("/tables/:table_id/snapshot", tableCtrl.GetTableSnapshot)
		api.GET("/tables/:table_id/orders", orderCtrl.GetTableOrders)

		// Table administration
		admin := api.Group("/")
		admin.Use(middlewares.RequireRoles(middlewares.RoleAdmin))
		admin.Use(middlewares.NewStrictRateLimiter())
		{
			admin.POST("/tables", tableCtrl.CreateTable)
			admin.PATCH("/tables/:table_id/active", tableCtrl.SetTableActive)
			admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
		}

		// Floor actions
		floor := api.Group("/")
		floor.Use(middlewares.RequireRoles(middlewares.RoleWaiter))
		{
			floor.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
			floor.POST("/tables/:table_id/pay", orderCtrl.PayTable)
			floor.POST("/tables/:table_id/release", sessionCtrl.ReleaseTable)
			floor.POST("/orders/:order_id/pay", orderCtrl.MarkOrderPaid)
		}

		// Kitchen actions
		kitchen := api.Group("/")
		kitchen.Use(middlewares.RequireRoles(middlewares.RoleKitchen))
		{
			kitchen.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		}

		// Queries
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.GET("/sessions/:session_id", sessionCtrl.GetSession)
		api.GET("/kitchen/queue", orderCtrl.GetKitchenQueue)
		api.GET("/stats/dashboard", statsCtrl.GetDashboard)
		api.GET("/stats/history", statsCtrl.GetHistory)
	}

	return r
}
