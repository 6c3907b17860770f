package httpserver

import (
	"github.com/labstack/echo/v4"

	"productcatalog/internal/handlers"
	"productcatalog/internal/middleware/auth"
)

type Deps struct {
	JWTSecret      []byte
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	requireAuth := auth.RequireAuth(d.JWTSecret)

	users := e.Group("/api/users")
	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.GET("/profile", d.AuthHandler.Profile, requireAuth)
	users.POST("/forgot-password", d.AuthHandler.ForgotPassword)

	products := e.Group("/api/products")
	products.GET("", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, requireAuth, auth.RequireAdmin)
	products.POST("/upload", d.ProductHandler.UploadProduct, requireAuth, auth.RequireAdmin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, requireAuth, auth.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, requireAuth, auth.RequireAdmin)
}
