package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username    VARCHAR(20)  NOT NULL,
		email       VARCHAR(200) NOT NULL,
		password    VARCHAR(100) NOT NULL,
		is_verified BOOLEAN      NOT NULL DEFAULT FALSE,
		join_date   DATETIME     NOT NULL,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS businesses (
		id                   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		business_name        VARCHAR(20)     NOT NULL,
		business_description TEXT            NULL,
		logo                 VARCHAR(200)    NOT NULL DEFAULT '',
		city                 VARCHAR(100)    NOT NULL DEFAULT 'Unspecified',
		region               VARCHAR(100)    NOT NULL DEFAULT 'Unspecified',
		owner_id             BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_businesses_owner (owner_id),
		CONSTRAINT fk_businesses_owner FOREIGN KEY (owner_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id                    BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name                  VARCHAR(100)    NOT NULL,
		category              VARCHAR(30)     NOT NULL,
		original_price        DECIMAL(12,2)   NOT NULL,
		new_price             DECIMAL(12,2)   NOT NULL,
		percentage_discount   DECIMAL(10,2)   NOT NULL,
		offer_expiration_date DATE            NOT NULL,
		product_image         VARCHAR(200)    NOT NULL DEFAULT '',
		date_published        DATETIME        NOT NULL,
		business_id           BIGINT UNSIGNED NOT NULL,
		KEY idx_products_name (name),
		KEY idx_products_category (category),
		CONSTRAINT fk_products_business FOREIGN KEY (business_id) REFERENCES businesses(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the users, businesses and products tables if they do not
// exist yet. It is run once at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
