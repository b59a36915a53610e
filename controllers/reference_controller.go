package controllers

import (
	"context"
	"net/http"
	"strings"

	"hotel-addons/models"
	"hotel-addons/services"
	"hotel-addons/utils"

	"github.com/gin-gonic/gin"
)

type CurrencyLister interface {
	List(ctx context.Context) ([]models.Currency, error)
}

type TaxLister interface {
	List(ctx context.Context) ([]models.TaxRate, error)
}

// ReferenceController serves the lookup tables and registries the order
// screens read from: currencies, taxes, reservations, customers.
type ReferenceController struct {
	Currencies   CurrencyLister
	Taxes        TaxLister
	Reservations services.ReservationRegistry
	Customers    services.CustomerRegistry
}

func NewReferenceController(
	currencies CurrencyLister,
	taxes TaxLister,
	reservations services.ReservationRegistry,
	customers services.CustomerRegistry,
) *ReferenceController {
	return &ReferenceController{
		Currencies:   currencies,
		Taxes:        taxes,
		Reservations: reservations,
		Customers:    customers,
	}
}

func (ctrl *ReferenceController) ListCurrencies(c *gin.Context) {
	currencies, err := ctrl.Currencies.List(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, currencies)
}

func (ctrl *ReferenceController) ListTaxes(c *gin.Context) {
	taxes, err := ctrl.Taxes.List(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, taxes)
}

// GET /api/reservations/search?q=<room no | reference | booking id>
func (ctrl *ReferenceController) SearchReservations(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "error.missingQuery", "q is required")
		return
	}
	found, err := ctrl.Reservations.FindByRoomOrReference(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, found)
}

// GET /api/customers/lookup?identification=
func (ctrl *ReferenceController) LookupCustomer(c *gin.Context) {
	identification := strings.TrimSpace(c.Query("identification"))
	if identification == "" {
		badRequest(c, "error.missingIdentification", "identification is required")
		return
	}
	customer, err := ctrl.Customers.FindByIdentification(c.Request.Context(), identification)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if customer == nil {
		utils.JSONError(c, http.StatusNotFound, "error.customerNotFound", "customer not found", nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, customer)
}

// POST /api/customers
func (ctrl *ReferenceController) CreateCustomer(c *gin.Context) {
	var input models.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid customer payload: "+err.Error())
		return
	}
	if err := services.ValidateRegistration(input); err != nil {
		respondError(c, err, nil)
		return
	}

	customer, err := ctrl.Customers.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, customer)
}
