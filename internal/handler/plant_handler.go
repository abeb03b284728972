package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開カタログ（/plants）。認証なしで読める。
type PlantHandler struct {
	uc *usecase.PlantUsecase
}

func NewPlantHandler(uc *usecase.PlantUsecase) *PlantHandler {
	return &PlantHandler{uc: uc}
}

func (h *PlantHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/plants", h.list)
	e.GET("/plants/:id", h.detail)
}

func (h *PlantHandler) list(c echo.Context) error {
	var bad string
	in := usecase.ListPlantsInput{
		Page:      intQuery(c, "page", 1, &bad),
		Limit:     intQuery(c, "limit", 20, &bad),
		Q:         c.QueryParam("q"),
		CareLevel: c.QueryParam("care_level"),
		MinPrice:  int64PtrQuery(c, "min_price", &bad),
		MaxPrice:  int64PtrQuery(c, "max_price", &bad),
		Sort:      c.QueryParam("sort"),
	}
	if bad != "" {
		return badRequest(c, "invalid "+bad)
	}

	out, err := h.uc.ListPublicPlants(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PlantHandler) detail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetPlantDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
