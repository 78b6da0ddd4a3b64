package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

type RouteRepository struct {
	DB *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{DB: db}
}

const routeColumns = `id, name, technician_id, technician_name, departure_date, arrival_date,
	route_type, vehicle_plate, active, stops, created_at, updated_at`

func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	stops, err := json.Marshal(route.Stops)
	if err != nil {
		return fmt.Errorf("encode stops: %w", err)
	}

	query := `
		INSERT INTO routes(name, technician_id, technician_name, departure_date, arrival_date,
			route_type, vehicle_plate, active, stops)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		route.Name,           // $1
		route.TechnicianID,   // $2
		route.TechnicianName, // $3
		route.DepartureDate,  // $4
		route.ArrivalDate,    // $5
		route.RouteType,      // $6
		route.VehiclePlate,   // $7
		route.Active,         // $8
		stops,                // $9
	).Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)
}

func (r *RouteRepository) Get(ctx context.Context, id int) (*models.Route, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id)
	route, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return route, err
}

// List returns routes newest first. active filters by state when not nil.
func (r *RouteRepository) List(ctx context.Context, active *bool) ([]*models.Route, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+routeColumns+` FROM routes
		 WHERE ($1::boolean IS NULL OR active = $1)
		 ORDER BY created_at DESC`, active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*models.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// Update writes metadata and stops of an existing route
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	stops, err := json.Marshal(route.Stops)
	if err != nil {
		return fmt.Errorf("encode stops: %w", err)
	}

	query := `
		UPDATE routes SET name=$2, technician_id=$3, technician_name=$4, departure_date=$5,
			arrival_date=$6, route_type=$7, vehicle_plate=$8, active=$9, stops=$10, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`
	err = r.DB.QueryRow(ctx, query,
		route.ID,
		route.Name,
		route.TechnicianID,
		route.TechnicianName,
		route.DepartureDate,
		route.ArrivalDate,
		route.RouteType,
		route.VehiclePlate,
		route.Active,
		stops,
	).Scan(&route.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SetActive flips the active flag; finalizing a route never deletes it
func (r *RouteRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := r.DB.Exec(ctx, `UPDATE routes SET active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RouteRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRoute(row pgx.Row) (*models.Route, error) {
	var (
		route models.Route
		stops []byte
	)
	err := row.Scan(&route.ID, &route.Name, &route.TechnicianID, &route.TechnicianName,
		&route.DepartureDate, &route.ArrivalDate, &route.RouteType, &route.VehiclePlate,
		&route.Active, &stops, &route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stops, &route.Stops); err != nil {
		return nil, fmt.Errorf("decode stops of route %d: %w", route.ID, err)
	}
	if route.Stops == nil {
		route.Stops = []models.Stop{}
	}
	return &route, nil
}
