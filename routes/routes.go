package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-addons/controllers"
	"hotel-addons/middleware"
)

// Controllers รวม controller ทั้งหมดที่ router ต้องใช้
type Controllers struct {
	Catalog     *controllers.CatalogController
	Addons      *controllers.AddonController
	Sessions    *controllers.OrderSessionController
	Reference   *controllers.ReferenceController
	CorsOrigins []string
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Operator(), middleware.Logger())

	origins := ctl.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.OperatorHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/currencies", ctl.Reference.ListCurrencies)
		api.GET("/taxes", ctl.Reference.ListTaxes)
		api.GET("/reservations/search", ctl.Reference.SearchReservations)

		customers := api.Group("/customers")
		{
			customers.POST("", ctl.Reference.CreateCustomer)
			// ต้องอยู่ก่อน route ที่มี :id (ถ้าเพิ่มภายหลัง)
			customers.GET("/lookup", ctl.Reference.LookupCustomer)
		}

		// Service catalog
		catalog := api.Group("/services")
		{
			catalog.GET("", ctl.Catalog.ListItems)
			catalog.GET("/:id", ctl.Catalog.GetItem)
			catalog.POST("", ctl.Catalog.CreateItem)
			catalog.PUT("/:id", ctl.Catalog.UpdateItem)
			catalog.DELETE("/:id", ctl.Catalog.DeleteItem)
			catalog.POST("/:id/restore", ctl.Catalog.RestoreItem)
		}

		// Order wizard
		sessions := api.Group("/order-sessions")
		{
			sessions.POST("", ctl.Sessions.Start)
			sessions.GET("/:id", ctl.Sessions.Get)
			sessions.DELETE("/:id", ctl.Sessions.Cancel)
			sessions.POST("/:id/billing-mode", ctl.Sessions.ChooseBillingMode)
			sessions.POST("/:id/customer/lookup", ctl.Sessions.LookupCustomer)
			sessions.POST("/:id/customer/register", ctl.Sessions.RegisterCustomer)
			sessions.POST("/:id/reservation", ctl.Sessions.SelectReservation)
			sessions.POST("/:id/reference", ctl.Sessions.SetReference)
			sessions.POST("/:id/next", ctl.Sessions.Next)
			sessions.POST("/:id/back", ctl.Sessions.Back)
			sessions.POST("/:id/services/toggle", ctl.Sessions.ToggleService)
			sessions.PATCH("/:id/services/:serviceId", ctl.Sessions.UpdateLine)
			sessions.GET("/:id/preview", ctl.Sessions.Preview)
			sessions.POST("/:id/submit", ctl.Sessions.Submit)
		}

		// Committed add-ons
		addons := api.Group("/service-addons")
		{
			addons.GET("", ctl.Addons.ListAddons)
			// ? static paths ต้องอยู่ก่อน /:id
			addons.GET("/events", ctl.Addons.StreamEvents)
			addons.GET("/payer/:ref", ctl.Addons.PayerStatement)

			addons.GET("/:id", ctl.Addons.GetAddon)
			addons.PATCH("/:id", ctl.Addons.UpdateAddon)
			addons.DELETE("/:id", ctl.Addons.DeleteAddon)
			addons.POST("/:id/invoice", ctl.Addons.MarkInvoiced)
			addons.GET("/:id/invoice", ctl.Addons.GetInvoice)
			addons.GET("/:id/invoice/qr", ctl.Addons.InvoiceQR)
		}
	}

	return r
}
