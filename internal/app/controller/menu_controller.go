package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/internal/middleware"
)

type MenuController struct {
	menuService service.MenuService
}

func NewMenuController(menuService service.MenuService) *MenuController {
	return &MenuController{menuService: menuService}
}

// MenuRequest is used for create and partial update. Unknown fields such as
// shop_id are ignored; a menu never moves between shops.
type MenuRequest struct {
	Name                 *string  `json:"name"`
	BasePrice            *int     `json:"base_price"`
	DefaultDiscount      *float64 `json:"default_discount"`
	DefaultIntervalMonth *int     `json:"default_interval_month"`
	DurationMin          *int     `json:"duration_min"`
	Category             *string  `json:"category"`
}

func (r MenuRequest) input() service.MenuInput {
	input := service.MenuInput{
		Name:                 r.Name,
		BasePrice:            r.BasePrice,
		DefaultDiscount:      r.DefaultDiscount,
		DefaultIntervalMonth: r.DefaultIntervalMonth,
		DurationMin:          r.DurationMin,
	}
	if r.Category != nil {
		category := model.MenuCategory(*r.Category)
		input.Category = &category
	}
	return input
}

func (ctrl *MenuController) respondMenuError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrShopNotFound):
		// owners without a shop only see the template preview
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzReadOnlyView,
			"Register your shop before editing menus")
	case errors.Is(err, service.ErrMenuNotFound):
		apperrors.NotFound(c, apperrors.MenuNotFound, "Menu not found")
	case errors.Is(err, service.ErrMenuAccessDenied):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "This menu belongs to another shop")
	case errors.Is(err, service.ErrInvalidMenu):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Failed to "+action, err, nil)
		apperrors.RespondWithParsedError(c, err, "menu")
	}
}

// ListShopMenus returns the active menus of a shop in display order
func (ctrl *MenuController) ListShopMenus(c *gin.Context) {
	shopID, ok := parseIDParam(c, "id", "shop")
	if !ok {
		return
	}

	menus, err := ctrl.menuService.ListShopMenus(shopID)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
			return
		}
		ctrl.respondMenuError(c, err, "fetch menus")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menus": menus,
		"count": len(menus),
	})
}

// ListMyMenus returns the owner's menus, or the template preview
func (ctrl *MenuController) ListMyMenus(c *gin.Context) {
	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}

	result, err := ctrl.menuService.ListMyMenus(ownerID)
	if err != nil {
		ctrl.respondMenuError(c, err, "fetch menus")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ctrl *MenuController) CreateMenu(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}

	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid menu creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	menu, err := ctrl.menuService.CreateMenu(ownerID, req.input())
	if err != nil {
		ctrl.respondMenuError(c, err, "create menu")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Menu created successfully",
		"menu":    menu,
	})
}

func (ctrl *MenuController) UpdateMenu(c *gin.Context) {
	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}
	menuID, ok := parseIDParam(c, "id", "menu")
	if !ok {
		return
	}

	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	menu, err := ctrl.menuService.UpdateMenu(ownerID, menuID, req.input())
	if err != nil {
		ctrl.respondMenuError(c, err, "update menu")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu updated successfully",
		"menu":    menu,
	})
}

// DeleteMenu hides a menu from the shop; existing rows are kept
func (ctrl *MenuController) DeleteMenu(c *gin.Context) {
	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}
	menuID, ok := parseIDParam(c, "id", "menu")
	if !ok {
		return
	}

	if err := ctrl.menuService.DeleteMenu(ownerID, menuID); err != nil {
		ctrl.respondMenuError(c, err, "delete menu")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu deleted successfully"})
}

func (ctrl *MenuController) MoveMenuUp(c *gin.Context) {
	ctrl.move(c, ctrl.menuService.MoveMenuUp)
}

func (ctrl *MenuController) MoveMenuDown(c *gin.Context) {
	ctrl.move(c, ctrl.menuService.MoveMenuDown)
}

func (ctrl *MenuController) move(c *gin.Context, op func(ownerID string, menuID uint) ([]model.Menu, error)) {
	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}
	menuID, ok := parseIDParam(c, "id", "menu")
	if !ok {
		return
	}

	menus, err := op(ownerID, menuID)
	if err != nil {
		ctrl.respondMenuError(c, err, "reorder menus")
		return
	}
	c.JSON(http.StatusOK, gin.H{"menus": menus})
}

func (ctrl *MenuController) ResetSortOrder(c *gin.Context) {
	ownerID, ok := requirePrincipalID(c)
	if !ok {
		return
	}

	menus, err := ctrl.menuService.ResetSortOrder(ownerID)
	if err != nil {
		ctrl.respondMenuError(c, err, "reset menu order")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Menu order reset", map[string]interface{}{
		"count": len(menus),
	})
	c.JSON(http.StatusOK, gin.H{"menus": menus})
}
