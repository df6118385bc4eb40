// README: HTTP router registration; admin routes behind JWT auth.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feastly/internal/http/handlers"
	"feastly/internal/http/middleware"
	"feastly/internal/modules/account"
	"feastly/internal/modules/commission"
	"feastly/internal/modules/delivery"
	"feastly/internal/modules/driver"
	"feastly/internal/modules/earnings"
	"feastly/internal/modules/onboarding"
	"feastly/internal/modules/restaurant"
)

type RouterDeps struct {
	Restaurants          *restaurant.Service
	Drivers              *driver.Service
	RestaurantLifecycle  *account.Lifecycle
	DriverLifecycle      *account.Lifecycle
	RestaurantOnboarding *onboarding.Service
	DriverOnboarding     *onboarding.Service
	Commission           *commission.Service
	Earnings             *earnings.Service
	Deliveries           *delivery.Service
	JWTSecret            string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	restaurantHandler := handlers.NewRestaurantHandler(
		deps.Restaurants, deps.RestaurantLifecycle, deps.RestaurantOnboarding, deps.Commission)
	driverHandler := handlers.NewDriverHandler(
		deps.Drivers, deps.DriverLifecycle, deps.DriverOnboarding, deps.Earnings)
	commissionHandler := handlers.NewCommissionHandler(deps.Commission)
	deliveryHandler := handlers.NewDeliveryHandler(deps.Deliveries)

	admin := r.Group("/api/admin", middleware.AdminAuth(deps.JWTSecret))
	{
		admin.GET("/finances/commission-settings", commissionHandler.Get)
		admin.PUT("/finances/commission-settings", commissionHandler.Update)

		admin.GET("/restaurants", restaurantHandler.List)
		admin.GET("/restaurants/:id", restaurantHandler.Get)
		admin.PUT("/restaurants/:id", restaurantHandler.Update)
		admin.PUT("/restaurants/:id/approve", restaurantHandler.Approve)
		admin.PUT("/restaurants/:id/reject", restaurantHandler.Reject)
		admin.PUT("/restaurants/:id/suspend", restaurantHandler.Suspend)
		admin.PUT("/restaurants/:id/reactivate", restaurantHandler.Reactivate)
		admin.POST("/restaurants/:id/request-corrections", restaurantHandler.RequestCorrections)
		admin.GET("/restaurants/:id/correction-requests", restaurantHandler.ListCorrections)

		admin.GET("/drivers", driverHandler.List)
		admin.GET("/drivers/:id", driverHandler.Get)
		admin.PUT("/drivers/:id/approve", driverHandler.Approve)
		admin.PUT("/drivers/:id/reject", driverHandler.Reject)
		admin.PUT("/drivers/:id/suspend", driverHandler.Suspend)
		admin.PUT("/drivers/:id/reactivate", driverHandler.Reactivate)
		admin.POST("/drivers/:id/request-corrections", driverHandler.RequestCorrections)
		admin.GET("/drivers/:id/correction-requests", driverHandler.ListCorrections)
	}

	// registration and driver-app endpoints; auth for these callers lives
	// with the identity provider, out of scope here
	r.POST("/api/restaurants", restaurantHandler.Register)
	r.POST("/api/drivers", driverHandler.Register)
	r.PUT("/api/drivers/:id/delivery-status", driverHandler.SetDeliveryStatus)
	r.GET("/api/drivers/:id/earnings", driverHandler.Earnings)

	r.POST("/api/deliveries", deliveryHandler.Create)
	r.GET("/api/deliveries/:id", deliveryHandler.Get)
	r.POST("/api/deliveries/:id/accept", deliveryHandler.Accept)
	r.POST("/api/deliveries/:id/preparing", deliveryHandler.StartPreparing)
	r.POST("/api/deliveries/:id/ready", deliveryHandler.MarkReady)
	r.POST("/api/deliveries/:id/pickup", deliveryHandler.PickUp)
	r.POST("/api/deliveries/:id/depart", deliveryHandler.Depart)
	r.POST("/api/deliveries/:id/complete", deliveryHandler.Complete)
	r.POST("/api/deliveries/:id/cancel", deliveryHandler.Cancel)
	r.POST("/api/deliveries/:id/settle", deliveryHandler.Settle)

	return r
}
