package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AddressDTO struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	PostalCode string `json:"postal_code"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type AddressCreateRequest struct {
	PostalCode string `json:"postal_code"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

type AddressUsecase struct {
	addresses repo.AddressRepository
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressCreateRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//入力チェック
	if req.PostalCode == "" || req.Prefecture == "" || req.City == "" || req.Line1 == "" || req.Name == "" {
		return AddressDTO{}, NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	now := time.Now()

	a := model.Address{
		UserID:     userID,
		PostalCode: req.PostalCode,
		Prefecture: req.Prefecture,
		City:       req.City,
		Line1:      req.Line1,
		Line2:      req.Line2,
		Name:       req.Name,
		Phone:      req.Phone,
		IsDefault:  false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return AddressDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressCreateRequest) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	//所有チェック（本人のみ）
	if err := u.checkOwned(ctx, addressID, userID); err != nil {
		return err
	}

	a := model.Address{
		ID:         addressID,
		PostalCode: req.PostalCode,
		Prefecture: req.Prefecture,
		City:       req.City,
		Line1:      req.Line1,
		Line2:      req.Line2,
		Name:       req.Name,
		Phone:      req.Phone,
		UpdatedAt:  time.Now(),
	}

	if err := u.addresses.Update(ctx, a); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.checkOwned(ctx, addressID, userID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		//注文が参照中などで削除できない
		return NewHTTPError(http.StatusConflict, "address in use")
	}

	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.checkOwned(ctx, addressID, userID); err != nil {
		return err
	}

	//user内でdefaultは1つ
	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func (u *AddressUsecase) checkOwned(ctx context.Context, addressID, userID int64) error {
	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		PostalCode: a.PostalCode,
		Prefecture: a.Prefecture,
		City:       a.City,
		Line1:      a.Line1,
		Line2:      a.Line2,
		Name:       a.Name,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}
