package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type PlantUsecase struct {
	plantRepo     repo.PlantRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

func NewPlantUsecase(
	plantRepo repo.PlantRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *PlantUsecase {
	return &PlantUsecase{
		plantRepo:     plantRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

type ListPlantsInput struct {
	Page      int
	Limit     int
	Q         string
	CareLevel string
	MinPrice  *int64
	MaxPrice  *int64
	Sort      string
}

// 一覧用の表示形。display_priceが割引適用後の売価。
type PlantSummary struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	BotanicalName      string `json:"botanical_name,omitempty"`
	CareLevel          string `json:"care_level"`
	Price              int64  `json:"price"`
	DiscountPercentage int64  `json:"discount_percentage"`
	DisplayPrice       int64  `json:"display_price"`
	InStock            bool   `json:"in_stock"`
}

type PlantDetail struct {
	PlantSummary
	Description string    `json:"description"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

type PlantListOutput struct {
	Items []PlantSummary `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func toPlantSummary(p model.Plant) PlantSummary {
	return PlantSummary{
		ID:                 p.ID,
		Name:               p.Name,
		BotanicalName:      p.BotanicalName,
		CareLevel:          string(p.CareLevel),
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		DisplayPrice:       p.EffectivePrice(),
		InStock:            p.Stock > 0,
	}
}

func validateListPlantsInput(in ListPlantsInput) error {
	switch {
	case in.Page < 1:
		return NewHTTPError(http.StatusBadRequest, "invalid page")
	case in.Limit < 1 || in.Limit > 100:
		return NewHTTPError(http.StatusBadRequest, "invalid limit")
	case len(in.Q) > 100:
		return NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.CareLevel != "" && !model.CareLevel(in.CareLevel).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid care_level")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
		return nil
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid sort")
	}
}

func (u *PlantUsecase) ListPublicPlants(ctx context.Context, in ListPlantsInput) (PlantListOutput, error) {
	if err := validateListPlantsInput(in); err != nil {
		return PlantListOutput{}, err
	}

	plants, total, err := u.plantRepo.ListPublic(ctx, repo.PlantListQuery{
		Page:      in.Page,
		Limit:     in.Limit,
		Q:         strings.TrimSpace(in.Q),
		CareLevel: in.CareLevel,
		MinPrice:  in.MinPrice,
		MaxPrice:  in.MaxPrice,
		Sort:      in.Sort,
	})
	if err != nil {
		return PlantListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]PlantSummary, 0, len(plants))
	for _, p := range plants {
		items = append(items, toPlantSummary(p))
	}

	return PlantListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 非公開の植物は存在しない扱い
func (u *PlantUsecase) GetPlantDetail(ctx context.Context, plantID int64) (PlantDetail, error) {
	if plantID <= 0 {
		return PlantDetail{}, NewHTTPError(http.StatusBadRequest, "invalid plant id")
	}

	p, err := u.plantRepo.FindByID(ctx, plantID)
	if err == repo.ErrNotFound {
		return PlantDetail{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PlantDetail{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return PlantDetail{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return PlantDetail{
		PlantSummary: toPlantSummary(p),
		Description:  p.Description,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
	}, nil
}

type AdminCreatePlantInput struct {
	Name               string
	BotanicalName      string
	Description        string
	CareLevel          string
	Price              int64
	DiscountPercentage int64
	Stock              int64
	IsActive           bool
}

// 作成・更新共通の入力チェック。care_level未指定はMEDIUM。
func (in *AdminCreatePlantInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.CareLevel == "" {
		in.CareLevel = string(model.CareLevelMedium)
	}
	if !model.CareLevel(in.CareLevel).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid care_level")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.DiscountPercentage < 0 || in.DiscountPercentage > 100 {
		return NewHTTPError(http.StatusBadRequest, "discount_percentage must be 0-100")
	}
	return nil
}

func (u *PlantUsecase) AdminCreatePlant(ctx context.Context, adminUserID int64, in AdminCreatePlantInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.normalize(); err != nil {
		return 0, err
	}
	if in.Stock < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	now := time.Now()
	p, err := u.plantRepo.Create(ctx, model.Plant{
		Name:               in.Name,
		BotanicalName:      strings.TrimSpace(in.BotanicalName),
		Description:        in.Description,
		CareLevel:          model.CareLevel(in.CareLevel),
		Price:              in.Price,
		DiscountPercentage: in.DiscountPercentage,
		Stock:              in.Stock,
		IsActive:           in.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p.ID, nil
}

func (u *PlantUsecase) AdminUpdatePlant(ctx context.Context, adminUserID int64, plantID int64, in AdminCreatePlantInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if plantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid plant id")
	}
	if err := in.normalize(); err != nil {
		return err
	}

	err := u.plantRepo.Update(ctx, model.Plant{
		ID:                 plantID,
		Name:               in.Name,
		BotanicalName:      strings.TrimSpace(in.BotanicalName),
		Description:        in.Description,
		CareLevel:          model.CareLevel(in.CareLevel),
		Price:              in.Price,
		DiscountPercentage: in.DiscountPercentage,
		IsActive:           in.IsActive,
		UpdatedAt:          time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *PlantUsecase) AdminDeletePlant(ctx context.Context, adminUserID int64, plantID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if plantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid plant id")
	}

	switch err := u.plantRepo.SoftDelete(ctx, plantID); err {
	case nil:
		return nil
	case repo.ErrNotFound:
		return NewHTTPError(http.StatusNotFound, "not found")
	default:
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
}

// 在庫の現在値を置き換え、差分を調整履歴と監査ログに残す。
func (u *PlantUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, plantID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if plantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid plant id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	//変更前の在庫を押さえる
	p, err := u.plantRepo.FindByID(ctx, plantID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.SetStock(ctx, plantID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.CreateAdjustment(ctx, model.InventoryAdjustment{
		PlantID:     plantID,
		AdminUserID: adminUserID,
		Delta:       newStock - p.Stock,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourcePlant,
		ResourceID:   plantID,
		BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
		AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
