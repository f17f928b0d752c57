package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/motlupets/storefront/internal/api/handler"
	"github.com/motlupets/storefront/internal/api/middleware"
)

// uploadBodyLimit leaves room for multipart framing around a maximum size image.
const uploadBodyLimit = "6M"

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	AdminAuth *handler.AdminAuthHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Orders    *handler.OrderHandler
	Users     *handler.UserHandler
	Health    *handler.HealthHandler
	Readiness *handler.ReadinessHandler
}

// RouterConfig carries the cross-cutting settings of the router.
type RouterConfig struct {
	CORSOrigins []string
	// ExposeErrorDetail adds the cause of failures to error bodies.
	ExposeErrorDetail bool
	UserGate          middleware.GateConfig
	AdminGate         middleware.GateConfig
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, h Handlers, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, cfg.ExposeErrorDetail)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem: "storefront",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		DoNotUseRequestPathFor404: true,
	}))

	// --- Operational routes (no auth required) ---
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Readiness.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	registerUserRoutes(e.Group("/api/users"), cfg, h)
	registerAdminRoutes(e.Group("/api/admin"), cfg, h)

	return e
}

func registerUserRoutes(g *echo.Group, cfg RouterConfig, h Handlers) {
	g.POST("/register", h.Auth.Register)
	g.POST("/verify-otp", h.Auth.VerifyOTP)
	g.POST("/resend-otp", h.Auth.ResendOTP)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh-token", h.Auth.RefreshToken)
	g.POST("/logout", h.Auth.Logout)

	g.GET("/products", h.Catalog.List)
	g.GET("/products/top-selling", h.Catalog.TopSelling)
	g.GET("/products/:id", h.Catalog.Get)
	g.GET("/products/category/:category", h.Catalog.ByCategory)

	g.GET("/payment/success", h.Checkout.PaymentSuccess)
	g.POST("/payment/cancel", h.Checkout.PaymentCancel)

	// Everything under /:id belongs to that user alone.
	self := g.Group("/:id", middleware.Gate(cfg.UserGate), middleware.SelfOnly("id"))

	self.GET("/cart", h.Cart.Cart)
	self.POST("/cart", h.Cart.AddToCart)
	self.PUT("/cart", h.Cart.UpdateQuantity)
	self.DELETE("/cart/:productId", h.Cart.RemoveFromCart)

	self.GET("/wishlist", h.Cart.Wishlist)
	self.POST("/wishlist", h.Cart.AddToWishlist)
	self.DELETE("/wishlist/:productId", h.Cart.RemoveFromWishlist)

	self.POST("/payment", h.Checkout.CreatePayment)
	self.POST("/payment/verify", h.Checkout.VerifyPayment)
	self.POST("/cod-order", h.Checkout.CreateCODOrder)

	self.GET("/orders", h.Orders.ListMine)
	self.PUT("/orders/:orderId/cancel", h.Orders.Cancel)
}

func registerAdminRoutes(g *echo.Group, cfg RouterConfig, h Handlers) {
	g.POST("/login", h.AdminAuth.Login)
	g.POST("/logout", h.AdminAuth.Logout)
	g.POST("/refresh-token", h.AdminAuth.RefreshToken)

	admin := g.Group("", middleware.Gate(cfg.AdminGate))

	admin.GET("/users", h.Users.List)
	admin.GET("/users/:id", h.Users.Get)

	admin.GET("/products", h.Catalog.List)
	admin.GET("/products/category", h.Catalog.ByCategoryQuery)
	admin.GET("/products/:id", h.Catalog.Get)
	admin.POST("/products", h.Catalog.Create)
	admin.PUT("/products/:id", h.Catalog.Update)
	admin.DELETE("/products/:id", h.Catalog.Delete)
	admin.POST("/upload-image", h.Catalog.UploadImage, echomiddleware.BodyLimit(uploadBodyLimit))

	admin.GET("/orders", h.Orders.ListAll)
	admin.PUT("/orders/:id", h.Orders.UpdateStatus)
	admin.GET("/stats", h.Orders.Stats)
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/health" || p == "/health/ready" || p == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error()
			} else if v.Status >= http.StatusBadRequest {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP)
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Msg("request")
			return nil
		},
	})
}
