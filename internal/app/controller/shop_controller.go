package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/internal/middleware"
)

type ShopController struct {
	shopService service.ShopService
}

func NewShopController(shopService service.ShopService) *ShopController {
	return &ShopController{shopService: shopService}
}

type ShopRequest struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	BusinessHours *string `json:"business_hours"`
	LastOrder     *string `json:"last_order"`
	Holiday       *string `json:"holiday"`
}

func (r ShopRequest) mutation() service.ShopMutation {
	return service.ShopMutation{
		Name:          r.Name,
		Address:       r.Address,
		Phone:         r.Phone,
		BusinessHours: r.BusinessHours,
		LastOrder:     r.LastOrder,
		Holiday:       r.Holiday,
	}
}

func respondShopError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrShopNotFound):
		apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
	case errors.Is(err, service.ErrShopAlreadyExists):
		apperrors.Conflict(c, apperrors.ShopAlreadyExists, "You already have a shop")
	case errors.Is(err, service.ErrInvalidShop):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	default:
		log.Error("Failed to "+action, err, nil)
		apperrors.RespondWithParsedError(c, err, "shop")
	}
}

// GetPublicShop returns the shop shown to visitors without one of their own
func (ctrl *ShopController) GetPublicShop(c *gin.Context) {
	shop, err := ctrl.shopService.GetPublicShop()
	if err != nil {
		respondShopError(c, err, "fetch public shop")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

func (ctrl *ShopController) GetShop(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "shop")
	if !ok {
		return
	}

	shop, err := ctrl.shopService.GetShop(id)
	if err != nil {
		respondShopError(c, err, "fetch shop")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

func (ctrl *ShopController) GetMyShop(c *gin.Context) {
	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}

	shop, err := ctrl.shopService.GetMyShop(ownerID)
	if err != nil {
		respondShopError(c, err, "fetch shop")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// CreateShop registers the owner's shop and seeds it with the template menus
func (ctrl *ShopController) CreateShop(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}

	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid shop creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	result, err := ctrl.shopService.CreateShop(ownerID, req.mutation())
	if err != nil {
		if !errors.Is(err, service.ErrShopAlreadyExists) && !errors.Is(err, service.ErrInvalidShop) {
			log.Error("Shop provisioning failed", err, map[string]interface{}{
				"owner_id": ownerID,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ShopProvisionFailed,
				"Failed to create shop. Nothing was saved, please try again")
			return
		}
		respondShopError(c, err, "create shop")
		return
	}

	log.Info("Shop created", map[string]interface{}{
		"shop_id":      result.Shop.ID,
		"copied_menus": result.CopiedMenus,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":          "Shop created successfully",
		"shop":             result.Shop,
		"template_shop_id": result.TemplateShopID,
		"copied_menus":     result.CopiedMenus,
	})
}

func (ctrl *ShopController) UpdateShop(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}

	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	shop, err := ctrl.shopService.UpdateShop(ownerID, req.mutation())
	if err != nil {
		respondShopError(c, err, "update shop")
		return
	}

	log.Info("Shop updated", map[string]interface{}{"shop_id": shop.ID})
	c.JSON(http.StatusOK, gin.H{
		"message": "Shop updated successfully",
		"shop":    shop,
	})
}
