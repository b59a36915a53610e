package controllers

import (
	"net/http"
	"strings"

	"hotel-addons/middleware"
	"hotel-addons/services"
	"hotel-addons/utils"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogSvc *services.CatalogService
}

func NewCatalogController(svc *services.CatalogService) *CatalogController {
	return &CatalogController{CatalogSvc: svc}
}

// ----------------------------------------------------
// GET /api/services?category=&status=inactive
// ----------------------------------------------------

func (ctrl *CatalogController) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	if strings.EqualFold(c.Query("status"), "inactive") {
		items, err := ctrl.CatalogSvc.ListInactive(ctx)
		if err != nil {
			respondError(c, err, nil)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, items)
		return
	}

	items, err := ctrl.CatalogSvc.ListActive(ctx, c.Query("category"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (ctrl *CatalogController) GetItem(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	item, err := ctrl.CatalogSvc.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

// POST /api/services
func (ctrl *CatalogController) CreateItem(c *gin.Context) {
	var input services.ServiceItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid service payload: "+err.Error())
		return
	}

	item, err := ctrl.CatalogSvc.AddItem(c.Request.Context(), input, middleware.OperatorFrom(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, item)
}

// PUT /api/services/:id (แทนที่ทั้งก้อน รวม pricing/taxIds)
func (ctrl *CatalogController) UpdateItem(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	var input services.ServiceItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "error.invalidPayload", "Invalid service payload: "+err.Error())
		return
	}

	item, err := ctrl.CatalogSvc.UpdateItem(c.Request.Context(), id, input, middleware.OperatorFrom(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

// DELETE /api/services/:id -> Inactive
func (ctrl *CatalogController) DeleteItem(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	item, err := ctrl.CatalogSvc.DeleteItem(c.Request.Context(), id, middleware.OperatorFrom(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctrl *CatalogController) RestoreItem(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		invalidID(c)
		return
	}
	item, err := ctrl.CatalogSvc.RestoreItem(c.Request.Context(), id, middleware.OperatorFrom(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}
