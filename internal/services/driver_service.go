package services

import (
	"context"
	"fmt"
	"strings"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"
)

type DriverService struct {
	Drivers   repositories.DriverRepository
	RequestID string
}

func (s DriverService) List(ctx context.Context) ([]models.Driver, error) {
	list, err := s.Drivers.List(ctx)
	if err != nil {
		return nil, domain.StoreError("gagal memuat driver", err)
	}
	return list, nil
}

func (s DriverService) Get(ctx context.Context, id int64) (models.Driver, error) {
	if id <= 0 {
		return models.Driver{}, domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	d, err := s.Drivers.Get(ctx, id)
	if err != nil {
		return models.Driver{}, domain.StoreError("gagal memuat driver", err)
	}
	return d, nil
}

func (s DriverService) Create(ctx context.Context, d models.Driver) (models.Driver, error) {
	d = normalizeDriver(d)
	if err := domain.Validate(d); err != nil {
		return models.Driver{}, err
	}
	created, err := s.Drivers.Create(ctx, d)
	if err != nil {
		return models.Driver{}, domain.StoreError("gagal membuat driver", err)
	}
	utils.LogEvent(s.RequestID, "driver", "create", fmt.Sprintf("driver_id=%d", created.ID))
	return created, nil
}

func (s DriverService) Update(ctx context.Context, id int64, d models.Driver) (models.Driver, error) {
	if id <= 0 {
		return models.Driver{}, domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	d = normalizeDriver(d)
	if err := domain.Validate(d); err != nil {
		return models.Driver{}, err
	}
	updated, err := s.Drivers.Update(ctx, id, d)
	if err != nil {
		return models.Driver{}, domain.StoreError("gagal memperbarui driver", err)
	}
	utils.LogEvent(s.RequestID, "driver", "update", fmt.Sprintf("driver_id=%d status=%s", id, updated.Status))
	return updated, nil
}

// Delete is a hard delete; the driver's assignments cascade.
func (s DriverService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	if err := s.Drivers.Delete(ctx, id); err != nil {
		return domain.StoreError("gagal menghapus driver", err)
	}
	utils.LogEvent(s.RequestID, "driver", "delete", fmt.Sprintf("driver_id=%d", id))
	return nil
}

func normalizeDriver(d models.Driver) models.Driver {
	d.Name = utils.NormalizeSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.VehiclePlate = strings.ToUpper(strings.TrimSpace(d.VehiclePlate))
	if d.Status == "" {
		d.Status = domain.DriverAvailable
	}
	return d
}
