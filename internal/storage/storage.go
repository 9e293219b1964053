package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/models"
	"go.uber.org/zap"
)

var (
	DB                     *sql.DB
	ErrConnectionFailed    = errors.New("db connection failed")
	ErrCreatingTableFailed = errors.New("creating table failed")
)

func Init() error {
	if config.DatabaseURI == "" {
		return ErrConnectionFailed
	}

	db, err := sql.Open("pgx", config.DatabaseURI)
	if err != nil {
		logger.Log.Fatal("Error opening database connection", zap.Error(err))
		return ErrConnectionFailed
	}
	DB = db

	tables := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id SERIAL PRIMARY KEY NOT NULL,
			name VARCHAR(255) NOT NULL,
			address VARCHAR(500) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS trailers (
			id SERIAL PRIMARY KEY NOT NULL,
			location_id INTEGER NOT NULL REFERENCES locations(id),
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
			min_hours BIGINT NOT NULL DEFAULT 0,
			min_cost BIGINT NOT NULL DEFAULT 0,
			hour_price BIGINT NOT NULL DEFAULT 0,
			day_price BIGINT NOT NULL DEFAULT 0,
			deposit BIGINT NOT NULL DEFAULT 0,
			pickup_price BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY NOT NULL,
			telegram_id BIGINT UNIQUE NOT NULL,
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			last_name VARCHAR(255) NOT NULL DEFAULT '',
			username VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(50) NOT NULL DEFAULT '',
			phone_verification_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			verification_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY NOT NULL,
			login VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY NOT NULL,
			user_id UUID NOT NULL REFERENCES users(id),
			trailer_id INTEGER NOT NULL REFERENCES trailers(id),
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			rental_type VARCHAR(20) NOT NULL,
			pickup BOOLEAN NOT NULL DEFAULT FALSE,
			base_cost BIGINT NOT NULL,
			additional_cost BIGINT NOT NULL,
			deposit BIGINT NOT NULL,
			total BIGINT NOT NULL,
			status VARCHAR(30) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (end_time > start_time)
		);`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY NOT NULL,
			booking_id UUID NOT NULL REFERENCES bookings(id),
			user_id UUID NOT NULL REFERENCES users(id),
			type VARCHAR(20) NOT NULL,
			amount BIGINT NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, table := range tables {
		if _, err := DB.Exec(table); err != nil {
			logger.Log.Error("Error creating table", zap.Error(err))
			return ErrCreatingTableFailed
		}
	}

	return nil
}

func CreateLocation(ctx context.Context, loc *models.Location) error {
	return DB.QueryRowContext(ctx, `
		INSERT INTO locations (name, address) VALUES ($1, $2) RETURNING id, created_at;
	`, loc.Name, loc.Address).Scan(&loc.ID, &loc.CreatedAt)
}

func GetLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location

	rows, err := DB.QueryContext(ctx, `
		SELECT id, name, address, created_at FROM locations ORDER BY id;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var loc models.Location
		if err = rows.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func CreateTrailer(ctx context.Context, trailer *models.Trailer) error {
	return DB.QueryRowContext(ctx, `
		INSERT INTO trailers (location_id, name, description, status, min_hours, min_cost, hour_price, day_price, deposit, pickup_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at;
	`, trailer.LocationID, trailer.Name, trailer.Description, trailer.Status,
		trailer.MinHours, trailer.MinCost, trailer.HourPrice, trailer.DayPrice,
		trailer.Deposit, trailer.PickupPrice).Scan(&trailer.ID, &trailer.CreatedAt)
}

func UpdateTrailer(ctx context.Context, trailer models.Trailer) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE trailers
		SET location_id = $1, name = $2, description = $3, min_hours = $4, min_cost = $5,
			hour_price = $6, day_price = $7, deposit = $8, pickup_price = $9
		WHERE id = $10;
	`, trailer.LocationID, trailer.Name, trailer.Description, trailer.MinHours,
		trailer.MinCost, trailer.HourPrice, trailer.DayPrice, trailer.Deposit,
		trailer.PickupPrice, trailer.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "trailer"}
	}
	return nil
}

func UpdateTrailerStatus(ctx context.Context, trailerID int64, status string) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE trailers SET status = $1 WHERE id = $2;
	`, status, trailerID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "trailer"}
	}
	return nil
}

const trailerColumns = `id, location_id, name, description, status, min_hours, min_cost, hour_price, day_price, deposit, pickup_price, created_at`

func scanTrailer(row interface{ Scan(...interface{}) error }) (models.Trailer, error) {
	var t models.Trailer
	err := row.Scan(&t.ID, &t.LocationID, &t.Name, &t.Description, &t.Status,
		&t.MinHours, &t.MinCost, &t.HourPrice, &t.DayPrice, &t.Deposit,
		&t.PickupPrice, &t.CreatedAt)
	return t, err
}

func GetTrailerByID(ctx context.Context, trailerID int64) (models.Trailer, error) {
	trailer, err := scanTrailer(DB.QueryRowContext(ctx, `
		SELECT `+trailerColumns+` FROM trailers WHERE id = $1;
	`, trailerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trailer{}, domain.NotFoundError{Resource: "trailer", Err: err}
		}
		return models.Trailer{}, err
	}
	return trailer, nil
}

// GetTrailers lists trailers in a rentable state. locationID 0 means all locations.
func GetTrailers(ctx context.Context, locationID int64) ([]models.Trailer, error) {
	query := `SELECT ` + trailerColumns + ` FROM trailers WHERE status = 'AVAILABLE'`
	args := []interface{}{}
	if locationID != 0 {
		query += ` AND location_id = $1`
		args = append(args, locationID)
	}
	query += ` ORDER BY id;`

	rows, err := DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trailers []models.Trailer
	for rows.Next() {
		t, err := scanTrailer(rows)
		if err != nil {
			return nil, err
		}
		trailers = append(trailers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return trailers, nil
}

const userColumns = `id, telegram_id, first_name, last_name, username, phone, phone_verification_status, verification_status, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username,
		&u.Phone, &u.PhoneVerificationStatus, &u.VerificationStatus, &u.CreatedAt)
	return u, err
}

// UpsertTelegramUser creates the user on first login and refreshes the
// Telegram profile fields on every subsequent one.
func UpsertTelegramUser(ctx context.Context, telegramID int64, firstName, lastName, username string) (models.User, error) {
	user, err := scanUser(DB.QueryRowContext(ctx, `
		INSERT INTO users (id, telegram_id, first_name, last_name, username)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, username = EXCLUDED.username
		RETURNING `+userColumns+`;
	`, uuid.New(), telegramID, firstName, lastName, username))
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	user, err := scanUser(DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1;
	`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return user, nil
}

func UpdateUserPhone(ctx context.Context, userID uuid.UUID, phone string) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE users SET phone = $1, phone_verification_status = 'PENDING' WHERE id = $2;
	`, phone, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}

func UpdateUserVerification(ctx context.Context, userID uuid.UUID, status string) (models.User, error) {
	user, err := scanUser(DB.QueryRowContext(ctx, `
		UPDATE users SET verification_status = $1 WHERE id = $2 RETURNING `+userColumns+`;
	`, status, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateAdmin seeds a dashboard account. Existing logins are left untouched,
// so running it on every startup is safe.
func CreateAdmin(ctx context.Context, login string, passwordHash string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO admins (id, login, password_hash) VALUES ($1, $2, $3)
		ON CONFLICT (login) DO NOTHING;
	`, uuid.New(), login, passwordHash)
	return err
}

func GetAdminByLogin(ctx context.Context, login string) (models.Admin, error) {
	var admin models.Admin
	err := DB.QueryRowContext(ctx, `
		SELECT id, login, password_hash, created_at FROM admins WHERE login = $1;
	`, login).Scan(&admin.ID, &admin.Login, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Admin{}, domain.NotFoundError{Resource: "admin", Err: err}
		}
		return models.Admin{}, err
	}
	return admin, nil
}
