package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotel-addons/events"
	"hotel-addons/middleware"
	"hotel-addons/services"
	"hotel-addons/store"
	"hotel-addons/utils"

	"github.com/gin-gonic/gin"
)

// Subscriber is the read side of the in-process event broker.
type Subscriber interface {
	Subscribe(buffer int) (<-chan events.AddonEvent, func())
}

type AddonController struct {
	AddonSvc   *services.AddonService
	InvoiceSvc *services.InvoiceService
	Events     Subscriber
}

func NewAddonController(addons *services.AddonService, invoices *services.InvoiceService, sub Subscriber) *AddonController {
	return &AddonController{AddonSvc: addons, InvoiceSvc: invoices, Events: sub}
}

// addonPatchRequest: serviceDate มาเป็น "YYYY-MM-DD"
type addonPatchRequest struct {
	services.AddonPatch
	ServiceDate *string `json:"serviceDate"`
}

// ----------------------------------------------------
// GET /api/service-addons?payer=&reservationId=&status=&includeDeleted=
// ----------------------------------------------------

func (ctrl *AddonController) ListAddons(c *gin.Context) {
	filter := store.AddonFilter{
		PayerRef: strings.TrimSpace(c.Query("payer")),
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if raw := strings.TrimSpace(c.Query("reservationId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "error.invalidReservationId", "reservationId must be a number")
			return
		}
		rid := uint(id)
		filter.ReservationID = &rid
	}
	if raw := c.Query("includeDeleted"); raw != "" {
		filter.IncludeDeleted, _ = strconv.ParseBool(raw)
	}

	addons, err := ctrl.AddonSvc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, addons)
}

func (ctrl *AddonController) GetAddon(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	addon, err := ctrl.AddonSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, addon)
}

// PATCH /api/service-addons/:id (423 ถ้า invoice แล้ว)
func (ctrl *AddonController) UpdateAddon(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	var req addonPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid addon payload: "+err.Error())
		return
	}
	patch := req.AddonPatch
	if req.ServiceDate != nil {
		d, err := utils.ParseDate(*req.ServiceDate)
		if err != nil || d == nil {
			badRequest(c, "error.invalidServiceDate", "serviceDate must be YYYY-MM-DD")
			return
		}
		patch.ServiceDate = d
	}

	addon, err := ctrl.AddonSvc.Update(c.Request.Context(), id, patch, middleware.OperatorFrom(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, addon)
}

func (ctrl *AddonController) DeleteAddon(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	if err := ctrl.AddonSvc.SoftDelete(c.Request.Context(), id, middleware.OperatorFrom(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// POST /api/service-addons/:id/invoice ตั้ง invoice lock
func (ctrl *AddonController) MarkInvoiced(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	ctx := c.Request.Context()
	if _, err := ctrl.AddonSvc.MarkInvoiced(ctx, id, middleware.OperatorFrom(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	inv, err := ctrl.InvoiceSvc.DeriveForAddon(ctx, id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// GET /api/service-addons/:id/invoice
func (ctrl *AddonController) GetInvoice(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	inv, err := ctrl.InvoiceSvc.DeriveForAddon(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// GET /api/service-addons/:id/invoice/qr  (image/png)
func (ctrl *AddonController) InvoiceQR(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	png, err := ctrl.InvoiceSvc.InvoiceQR(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/service-addons/payer/:ref
func (ctrl *AddonController) PayerStatement(c *gin.Context) {
	ctx := c.Request.Context()
	stmt, err := ctrl.InvoiceSvc.StatementForPayer(ctx, c.Param("ref"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	stmt.TotalPrice, err = ctrl.AddonSvc.TotalForPayer(ctx, stmt.PayerRef)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stmt)
}

// GET /api/service-addons/events?payer= (SSE)
func (ctrl *AddonController) StreamEvents(c *gin.Context) {
	payer := strings.TrimSpace(c.Query("payer"))
	ch, cancel := ctrl.Events.Subscribe(32)
	defer cancel()

	ping := time.NewTicker(25 * time.Second)
	defer ping.Stop()

	ctx := c.Request.Context()
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ping.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			if payer != "" && ev.PayerRef != payer {
				return true
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		}
	})
}
