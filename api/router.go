package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires all routes. Shared between main and the handler tests.
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	root := r.Group("/api")
	root.POST("/register", h.Register)
	root.POST("/login", h.Login)

	protected := root.Group("", h.AuthMiddleware())
	protected.POST("/logout", h.Logout)
	protected.GET("/user", h.CurrentUser)

	protected.GET("/categories", h.GetCategories)
	protected.POST("/categories", h.CreateCategory)
	protected.GET("/categories/:id", h.GetCategory)
	protected.PUT("/categories/:id", h.UpdateCategory)
	protected.PATCH("/categories/:id", h.UpdateCategory)
	protected.DELETE("/categories/:id", h.DeleteCategory)

	protected.GET("/transactions", h.GetTransactions)
	protected.POST("/transactions", h.CreateTransaction)
	protected.GET("/transactions/summary", h.GetSummary)
	protected.GET("/transactions/:id", h.GetTransaction)
	protected.PUT("/transactions/:id", h.UpdateTransaction)
	protected.PATCH("/transactions/:id", h.UpdateTransaction)
	protected.DELETE("/transactions/:id", h.DeleteTransaction)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
