package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/handlers"
)

type Deps struct {
	AuthHandler      *handlers.AuthHandler
	CartHandler      *handlers.CartHandler
	FavoritesHandler *handlers.FavoritesHandler
	SettingsHandler  *handlers.SettingsHandler
	CheckoutHandler  *handlers.CheckoutHandler
	SearchHandler    *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/login/provider", d.AuthHandler.LoginWithProvider)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/session", d.AuthHandler.Session)
	v1.PATCH("/profile", d.AuthHandler.UpdateProfile)
	v1.GET("/profile/image", d.AuthHandler.GetProfileImage)
	v1.PUT("/profile/image", d.AuthHandler.SetProfileImage)

	v1.GET("/search", d.SearchHandler.Search)

	v1.GET("/onboarding", d.SettingsHandler.Onboarding)
	v1.POST("/onboarding/complete", d.SettingsHandler.CompleteOnboarding)
	v1.GET("/language", d.SettingsHandler.GetLanguage)
	v1.PUT("/language", d.SettingsHandler.SetLanguage)

	settings := v1.Group("/settings")
	settings.GET("", d.SettingsHandler.Get)
	settings.POST("/notifications", d.SettingsHandler.ToggleNotifications)
	settings.POST("/sounds", d.SettingsHandler.ToggleSounds)
	settings.POST("/vibration", d.SettingsHandler.ToggleVibration)
	settings.PUT("/theme", d.SettingsHandler.SetTheme)

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.GET("/summary", d.CartHandler.Summary)
	cart.POST("/order", d.CartHandler.MakeOrder)
	cart.DELETE("/:id", d.CartHandler.DeleteFromCart)

	favorites := v1.Group("/favorites")
	favorites.GET("", d.FavoritesHandler.List)
	favorites.POST("/toggle", d.FavoritesHandler.Toggle)
	favorites.DELETE("/:id", d.FavoritesHandler.Remove)

	checkout := v1.Group("/checkout")
	checkout.GET("/addresses", d.CheckoutHandler.Addresses)
	checkout.POST("/addresses", d.CheckoutHandler.SaveAddress)
	checkout.DELETE("/addresses/:id", d.CheckoutHandler.DeleteAddress)
	checkout.GET("/payment-methods", d.CheckoutHandler.PaymentMethods)
	checkout.POST("/payment-methods", d.CheckoutHandler.SavePaymentMethod)
	checkout.DELETE("/payment-methods/:id", d.CheckoutHandler.DeletePaymentMethod)
	checkout.POST("/pay", d.CheckoutHandler.Pay)
}
