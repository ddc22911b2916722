package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables lists every table the service owns, in creation order.
var Tables = []string{"drivers", "tour_bookings", "airport_bookings", "driver_assignments", "outbox_events", "operators"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS drivers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NULL,
	phone VARCHAR(50) NULL,
	license_number VARCHAR(100) NULL,
	vehicle_type VARCHAR(100) NULL,
	vehicle_plate VARCHAR(50) NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'available',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS tour_bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	customer_name VARCHAR(255) NOT NULL,
	customer_email VARCHAR(255) NULL,
	customer_phone VARCHAR(50) NULL,
	tour_name VARCHAR(255) NULL,
	booking_date DATE NOT NULL,
	guests INT NOT NULL DEFAULT 1,
	total_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_tour_booking_date (booking_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS airport_bookings (
	id CHAR(36) PRIMARY KEY,
	customer_name VARCHAR(255) NOT NULL,
	customer_email VARCHAR(255) NULL,
	customer_phone VARCHAR(50) NULL,
	flight_number VARCHAR(20) NULL,
	arrival_date DATE NULL,
	departure_date DATE NULL,
	pickup_location VARCHAR(255) NULL,
	dropoff_location VARCHAR(255) NULL,
	passengers INT NOT NULL DEFAULT 1,
	total_price DECIMAL(12,2) NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS driver_assignments (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	driver_id BIGINT NOT NULL,
	booking_kind VARCHAR(10) NOT NULL,
	booking_id VARCHAR(36) NOT NULL,
	assignment_status VARCHAR(20) NOT NULL DEFAULT 'assigned',
	notes VARCHAR(500) NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_assignment_driver (driver_id),
	KEY idx_assignment_booking (booking_kind, booking_id),
	CONSTRAINT fk_assignment_driver FOREIGN KEY (driver_id) REFERENCES drivers(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
	id CHAR(36) PRIMARY KEY,
	event_type VARCHAR(100) NOT NULL,
	aggregate_id VARCHAR(64) NOT NULL,
	payload JSON NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'new',
	attempts INT NOT NULL DEFAULT 0,
	request_id VARCHAR(64) NULL,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
	KEY idx_outbox_status (status, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS operators (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'operator',
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_operator_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db tidak tersedia")
	}
	for i, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", Tables[i], err)
		}
	}
	return nil
}
