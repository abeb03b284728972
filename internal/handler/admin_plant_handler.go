package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 作成と更新で同じボディを受ける
type PlantCreateRequest struct {
	Name               string `json:"name"`
	BotanicalName      string `json:"botanical_name"`
	Description        string `json:"description"`
	CareLevel          string `json:"care_level"`
	Price              int64  `json:"price"`
	DiscountPercentage int64  `json:"discount_percentage"`
	Stock              int64  `json:"stock"`
	IsActive           bool   `json:"is_active"`
}

type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/plants（カタログ管理＋在庫置き換え）
type AdminPlantHandler struct {
	uc *usecase.PlantUsecase
}

func NewAdminPlantHandler(uc *usecase.PlantUsecase) *AdminPlantHandler {
	return &AdminPlantHandler{uc: uc}
}

func (h *AdminPlantHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	admin.POST("/plants", h.createPlant)
	admin.PUT("/plants/:id", h.updatePlant)
	admin.DELETE("/plants/:id", h.deletePlant)
	admin.PUT("/plants/:id/stock", h.updateInventory)
}

func (r PlantCreateRequest) toInput() usecase.AdminCreatePlantInput {
	return usecase.AdminCreatePlantInput{
		Name:               r.Name,
		BotanicalName:      r.BotanicalName,
		Description:        r.Description,
		CareLevel:          r.CareLevel,
		Price:              r.Price,
		DiscountPercentage: r.DiscountPercentage,
		Stock:              r.Stock,
		IsActive:           r.IsActive,
	}
}

func (h *AdminPlantHandler) createPlant(c echo.Context) error {
	var req PlantCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if _, err := h.uc.AdminCreatePlant(c.Request().Context(), adminID, req.toInput()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Message: "created"})
}

func (h *AdminPlantHandler) updatePlant(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req PlantCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdatePlant(c.Request().Context(), adminID, id, req.toInput()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminPlantHandler) deletePlant(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminDeletePlant(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminPlantHandler) updateInventory(c echo.Context) error {
	plantID, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, plantID, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

// middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get("user_id").(int64)
	return id, ok && id > 0
}
