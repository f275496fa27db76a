package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/pkg/auth"
)

type BookingRepository interface {
	// Create resolves or creates the customer by email and inserts the
	// booking in one transaction. It reports whether a new user record
	// was created.
	Create(ctx context.Context, req *domain.BookingRequest, date, clock string) (*domain.Booking, *domain.User, bool, error)
	LatestViewByUser(ctx context.Context, userID int64) (*domain.BookingView, error)
	ListViews(ctx context.Context) ([]domain.BookingView, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.BookingView, error)
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const viewCols = `b.id, b.user_id,
COALESCE(u.fullname, 'N/A'), COALESCE(u.phone_number, 'N/A'), COALESCE(u.email, 'N/A'),
b.service_type, b.booking_date, b.booking_time, b.license_plate, b.status`

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (r *bookingRepository) Create(ctx context.Context, req *domain.BookingRequest, date, clock string) (*domain.Booking, *domain.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, false, err
	}
	defer tx.Rollback()

	user, created, err := findOrCreateUser(ctx, tx, req)
	if err != nil {
		return nil, nil, false, err
	}

	// Pre-check gives the caller a clean conflict instead of a
	// constraint error; the partial unique index below closes the
	// remaining race window.
	var occupied bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE booking_date = ? AND booking_time = ? AND status != ?
		)`, date, clock, domain.StatusCompleted).Scan(&occupied)
	if err != nil {
		return nil, nil, false, err
	}
	if occupied {
		return nil, nil, false, domain.ErrSlotTaken
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, service_type, booking_date, booking_time, license_plate, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, req.ServiceType, date, clock, req.LicensePlate, domain.StatusConfirmed)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, false, domain.ErrSlotTaken
		}
		return nil, nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, false, err
	}

	booking := &domain.Booking{
		ID:           id,
		UserID:       user.ID,
		ServiceType:  req.ServiceType,
		BookingDate:  date,
		BookingTime:  clock,
		LicensePlate: req.LicensePlate,
		Status:       domain.StatusConfirmed,
		CreatedAt:    time.Now().UTC(),
	}
	return booking, user, created, nil
}

// findOrCreateUser resolves the customer by exact email match inside
// the booking transaction. A newly created customer gets a password
// digest derived from their phone number.
func findOrCreateUser(ctx context.Context, tx *sql.Tx, req *domain.BookingRequest) (*domain.User, bool, error) {
	var u domain.User
	err := tx.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, req.Email).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Email, &u.UserType, &u.CreatedAt,
	)
	if err == nil {
		return &u, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, fullname, phone_number, email, user_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.Email, auth.HashPassword(req.Phone), req.FullName(), req.Phone, req.Email, domain.RoleCustomer)
	if err != nil {
		if isUniqueViolation(err) {
			// Phone or username collides with another customer record.
			return nil, false, fmt.Errorf("%w: phone or email already registered to another customer", domain.ErrValidation)
		}
		return nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}

	u = domain.User{
		ID:          id,
		Username:    req.Email,
		FullName:    req.FullName(),
		PhoneNumber: req.Phone,
		Email:       req.Email,
		UserType:    domain.RoleCustomer,
		CreatedAt:   time.Now().UTC(),
	}
	return &u, true, nil
}

func (r *bookingRepository) LatestViewByUser(ctx context.Context, userID int64) (*domain.BookingView, error) {
	// Latest by (date, time) descending; id breaks ties so repeat calls
	// always return the same row.
	const q = `SELECT ` + viewCols + `
		FROM bookings b
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.user_id = ?
		ORDER BY b.booking_date DESC, b.booking_time DESC, b.id DESC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v domain.BookingView
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&v.ID, &v.UserID, &v.FullName, &v.PhoneNumber, &v.Email,
		&v.ServiceType, &v.BookingDate, &v.BookingTime, &v.LicensePlate, &v.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &v, err
}

func (r *bookingRepository) ListViews(ctx context.Context) ([]domain.BookingView, error) {
	const q = `SELECT ` + viewCols + `
		FROM bookings b
		LEFT JOIN users u ON u.id = b.user_id
		ORDER BY b.booking_date ASC, b.booking_time ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.BookingView
	for rows.Next() {
		var v domain.BookingView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.FullName, &v.PhoneNumber, &v.Email,
			&v.ServiceType, &v.BookingDate, &v.BookingTime, &v.LicensePlate, &v.Status,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.BookingView, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		if isUniqueViolation(err) {
			// Reactivating a completed booking into an occupied slot.
			return nil, domain.ErrSlotTaken
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	const q = `SELECT ` + viewCols + `
		FROM bookings b
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.id = ?`

	var v domain.BookingView
	err = r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.UserID, &v.FullName, &v.PhoneNumber, &v.Email,
		&v.ServiceType, &v.BookingDate, &v.BookingTime, &v.LicensePlate, &v.Status,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return &v, err
}
