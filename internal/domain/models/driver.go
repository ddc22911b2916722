package models

import (
	"time"

	"tourdesk/internal/domain"
)

type Driver struct {
	ID            int64               `json:"id" db:"id"`
	Name          string              `json:"name" db:"name" validate:"required,max=255"`
	Email         string              `json:"email" db:"email" validate:"omitempty,email"`
	Phone         string              `json:"phone" db:"phone" validate:"max=50"`
	LicenseNumber string              `json:"license_number" db:"license_number" validate:"max=100"`
	VehicleType   string              `json:"vehicle_type" db:"vehicle_type" validate:"max=100"`
	VehiclePlate  string              `json:"vehicle_plate" db:"vehicle_plate" validate:"max=50"`
	Status        domain.DriverStatus `json:"status" db:"status" validate:"driver_status"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}
