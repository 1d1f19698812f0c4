package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
)

var _ output.DriverStore = (*DB)(nil)

const driverColumns = "id, name, vehicle_name, phone, created_at, updated_at"

func (d *DB) CreateDriver(ctx context.Context, driver *entity.Driver) (*entity.Driver, error) {
	if driver.ID == "" {
		driver.ID = uuid.New().String()
	}
	row := d.db.QueryRowContext(ctx,
		`INSERT INTO drivers (id, name, vehicle_name, phone)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+driverColumns,
		driver.ID, driver.Name, driver.VehicleName, driver.Phone)
	return scanDriver(row)
}

// GetDriverByName matches case-insensitively; tool callers pass names as the
// model transcribed them.
func (d *DB) GetDriverByName(ctx context.Context, name string) (*entity.Driver, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE lower(name) = lower($1)`, name)
	driver, err := scanDriver(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return driver, err
}

func (d *DB) ListDrivers(ctx context.Context) ([]*entity.Driver, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+driverColumns+` FROM drivers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*entity.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, driver)
	}
	return list, rows.Err()
}

func (d *DB) UpdateDriver(ctx context.Context, id string, update output.UpdateDriver) (*entity.Driver, error) {
	set, args := []string{}, []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.VehicleName != nil {
		add("vehicle_name", *update.VehicleName)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if len(set) == 0 {
		row := d.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
		driver, err := scanDriver(row)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return driver, err
	}
	set = append(set, "updated_at = now()")
	args = append(args, id)

	row := d.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE drivers SET %s WHERE id = $%d RETURNING `+driverColumns,
			strings.Join(set, ", "), len(args)),
		args...)
	driver, err := scanDriver(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return driver, err
}

func (d *DB) DeleteDriver(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	return err
}

func scanDriver(row rowScanner) (*entity.Driver, error) {
	dr := &entity.Driver{}
	if err := row.Scan(&dr.ID, &dr.Name, &dr.VehicleName, &dr.Phone, &dr.CreatedAt, &dr.UpdatedAt); err != nil {
		return nil, err
	}
	return dr, nil
}
