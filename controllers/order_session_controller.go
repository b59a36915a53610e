package controllers

import (
	"net/http"
	"strings"

	"hotel-addons/middleware"
	"hotel-addons/models"
	"hotel-addons/services"
	"hotel-addons/utils"

	"github.com/gin-gonic/gin"
)

// OrderSessionController exposes the 4-step add-on order wizard.
type OrderSessionController struct {
	Sessions *services.OrderSessionService
}

func NewOrderSessionController(svc *services.OrderSessionService) *OrderSessionController {
	return &OrderSessionController{Sessions: svc}
}

// respond ส่ง session กลับไปด้วยเสมอ แม้ step จะ error (UI ต้อง render error ที่ step เดิม)
func respond(c *gin.Context, view *services.SessionView, err error) {
	if err != nil {
		var extra gin.H
		if view != nil {
			extra = gin.H{"session": view}
		}
		respondError(c, err, extra)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, view)
}

type startSessionRequest struct {
	Currency string `json:"currency"`
}

// POST /api/order-sessions
func (ctrl *OrderSessionController) Start(c *gin.Context) {
	var req startSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "error.invalidPayload", "Invalid session payload: "+err.Error())
			return
		}
	}
	view := ctrl.Sessions.Start(middleware.OperatorFrom(c), req.Currency)
	utils.JSONSuccess(c, http.StatusCreated, view)
}

func (ctrl *OrderSessionController) Get(c *gin.Context) {
	view, err := ctrl.Sessions.Get(c.Param("id"))
	respond(c, view, err)
}

type billingModeRequest struct {
	BillingMethod string `json:"billingMethod"`
}

func (ctrl *OrderSessionController) ChooseBillingMode(c *gin.Context) {
	var req billingModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid payload: "+err.Error())
		return
	}
	view, err := ctrl.Sessions.ChooseBillingMode(c.Param("id"), req.BillingMethod)
	respond(c, view, err)
}

type customerLookupRequest struct {
	Identification string `json:"identification"`
}

func (ctrl *OrderSessionController) LookupCustomer(c *gin.Context) {
	var req customerLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid payload: "+err.Error())
		return
	}
	view, err := ctrl.Sessions.LookupCustomer(c.Request.Context(), c.Param("id"), req.Identification)
	respond(c, view, err)
}

func (ctrl *OrderSessionController) RegisterCustomer(c *gin.Context) {
	var input models.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid customer payload: "+err.Error())
		return
	}
	view, err := ctrl.Sessions.RegisterCustomer(c.Request.Context(), c.Param("id"), input)
	respond(c, view, err)
}

type reservationRequest struct {
	ReservationID uint   `json:"reservationId"`
	Query         string `json:"query"`
}

// POST /:id/reservation {reservationId} หรือ {query}
func (ctrl *OrderSessionController) SelectReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid payload: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	if req.ReservationID != 0 {
		view, err := ctrl.Sessions.SelectReservation(ctx, c.Param("id"), req.ReservationID)
		respond(c, view, err)
		return
	}
	view, err := ctrl.Sessions.SearchReservation(ctx, c.Param("id"), req.Query)
	respond(c, view, err)
}

type referenceRequest struct {
	ReferenceNo string `json:"referenceNo"`
}

func (ctrl *OrderSessionController) SetReference(c *gin.Context) {
	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid payload: "+err.Error())
		return
	}
	view, err := ctrl.Sessions.SetReferenceNo(c.Param("id"), req.ReferenceNo)
	respond(c, view, err)
}

func (ctrl *OrderSessionController) Next(c *gin.Context) {
	view, err := ctrl.Sessions.Next(c.Param("id"))
	respond(c, view, err)
}

func (ctrl *OrderSessionController) Back(c *gin.Context) {
	view, err := ctrl.Sessions.Back(c.Param("id"))
	respond(c, view, err)
}

type toggleServiceRequest struct {
	services.ToggleServiceInput
	ServiceDate string `json:"serviceDate"`
}

func (ctrl *OrderSessionController) ToggleService(c *gin.Context) {
	var req toggleServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid payload: "+err.Error())
		return
	}
	input := req.ToggleServiceInput
	d, err := utils.ParseDate(req.ServiceDate)
	if err != nil {
		badRequest(c, "error.invalidServiceDate", "serviceDate must be YYYY-MM-DD")
		return
	}
	input.ServiceDate = d

	view, err := ctrl.Sessions.ToggleService(c.Request.Context(), c.Param("id"), input)
	respond(c, view, err)
}

type cartLineRequest struct {
	Quantity    *int    `json:"quantity"`
	ServiceDate *string `json:"serviceDate"`
	ServiceTime *string `json:"serviceTime"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

// PATCH /:id/services/:serviceId
func (ctrl *OrderSessionController) UpdateLine(c *gin.Context) {
	serviceID, ok := utils.ParseID(c, "serviceId")
	if !ok {
		invalidID(c)
		return
	}
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid payload: "+err.Error())
		return
	}
	patch := services.CartLinePatch{
		Quantity:    req.Quantity,
		ServiceTime: req.ServiceTime,
		Status:      req.Status,
		Notes:       req.Notes,
	}
	if req.ServiceDate != nil {
		d, err := utils.ParseDate(*req.ServiceDate)
		if err != nil || d == nil {
			badRequest(c, "error.invalidServiceDate", "serviceDate must be YYYY-MM-DD")
			return
		}
		patch.ServiceDate = d
	}

	view, err := ctrl.Sessions.UpdateCartLine(c.Param("id"), serviceID, patch)
	respond(c, view, err)
}

func (ctrl *OrderSessionController) Preview(c *gin.Context) {
	preview, err := ctrl.Sessions.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, preview)
}

// POST /:id/submit: 200 ทุกกรณีที่ submit ได้ ผลแต่ละบรรทัดอยู่ใน results
func (ctrl *OrderSessionController) Submit(c *gin.Context) {
	result, err := ctrl.Sessions.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		var view *services.SessionView
		if result != nil {
			view = result.Session
		}
		respond(c, view, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// DELETE /:id ยกเลิก แล้วลบ session ออกจาก memory
func (ctrl *OrderSessionController) Cancel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	view, err := ctrl.Sessions.Cancel(id)
	if err != nil {
		respond(c, view, err)
		return
	}
	ctrl.Sessions.Discard(id)
	utils.JSONSuccess(c, http.StatusOK, view)
}
