package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"roomrate/internal/domain"
)

// Repo implements the BookingStore, HotelStore and RuleStore ports on
// MySQL. All methods are read-only; booking and rule writes belong to the
// reservation workflow.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ActiveBookings(ctx context.Context, hotelID int64, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, activeBookingsSQL, hotelID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var rt, status string
		if err := rows.Scan(&b.ID, &b.HotelID, &rt, &b.CheckIn, &b.CheckOut, &b.Rooms, &status); err != nil {
			return nil, err
		}
		b.RoomType = domain.RoomType(rt)
		b.Status = domain.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) CountBookings(ctx context.Context, hotelID int64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countBookingsSQL, hotelID, from, to).Scan(&n)
	return n, err
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)
	return scanHotel(row)
}

func (r *Repo) ListYieldManaged(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listYieldManagedSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ActiveRules(ctx context.Context, hotelID int64) ([]domain.PricingRule, error) {
	rows, err := r.db.QueryContext(ctx, activeRulesSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PricingRule
	for rows.Next() {
		var (
			rule       domain.PricingRule
			roomType   sql.NullString
			conditions []byte
			actions    []byte
			validFrom  sql.NullTime
			validTo    sql.NullTime
		)
		if err := rows.Scan(&rule.ID, &rule.HotelID, &roomType, &rule.RuleType, &rule.Priority,
			&conditions, &actions, &validFrom, &validTo, &rule.IsActive); err != nil {
			return nil, err
		}
		if roomType.Valid && roomType.String != "" {
			rt := domain.RoomType(roomType.String)
			rule.RoomType = &rt
		}
		if len(conditions) > 0 {
			// malformed JSON means an unusable rule; skip it rather than
			// failing the whole load
			if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
				continue
			}
		}
		if len(actions) > 0 {
			if err := json.Unmarshal(actions, &rule.Actions); err != nil {
				continue
			}
		}
		if validFrom.Valid {
			t := validFrom.Time
			rule.ValidFrom = &t
		}
		if validTo.Valid {
			t := validTo.Time
			rule.ValidTo = &t
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanHotel(row rowScanner) (domain.Hotel, error) {
	var (
		h            domain.Hotel
		stars        string
		roomTypes    []byte
		eventWindows []byte
	)
	if err := row.Scan(&h.ID, &h.Name, &stars, &h.TotalRooms, &h.BaseRate, &h.YieldEnabled, &roomTypes, &eventWindows); err != nil {
		return domain.Hotel{}, err
	}
	h.Stars = domain.StarCategory(stars)
	if len(roomTypes) > 0 {
		_ = json.Unmarshal(roomTypes, &h.RoomTypes)
	}
	if len(eventWindows) > 0 {
		_ = json.Unmarshal(eventWindows, &h.EventWindows)
	}
	return h, nil
}
