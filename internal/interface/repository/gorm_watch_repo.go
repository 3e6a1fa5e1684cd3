package repository

import (
	"context"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormWatchRepository implements the WatchRepository interface
type GormWatchRepository struct {
	db *gorm.DB
}

// NewGormWatchRepository creates a new GORM watch repository
func NewGormWatchRepository(db *gorm.DB) repository.WatchRepository {
	return &GormWatchRepository{
		db: db,
	}
}

// CartFlights GORM model for database mapping. The foreign key
// constraint keeps orphaned watches out of the store: deleting a
// user cascades to their watches.
type CartFlights struct {
	ID            string     `gorm:"column:id;primaryKey"`
	UserID        string     `gorm:"column:user_id;index;not null"`
	Origin        string     `gorm:"column:origin;size:3;not null"`
	Destination   string     `gorm:"column:destination;size:3;not null"`
	DepartureDate time.Time  `gorm:"column:departure_date;type:date;not null"`
	ReturnDate    *time.Time `gorm:"column:return_date;type:date"`
	Adults        int        `gorm:"column:adults;not null"`
	CurrencyCode  string     `gorm:"column:currency_code;size:3;not null"`
	Airline       string     `gorm:"column:airline"`
	FlightNumber  string     `gorm:"column:flight_number"`
	Price         float64    `gorm:"column:price;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User Users `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the default table name
func (CartFlights) TableName() string {
	return "cart_flights"
}

// Migrate creates or updates the watch store tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Users{}, &CartFlights{})
}

// Insert adds a new watched flight
func (r *GormWatchRepository) Insert(ctx context.Context, watch *entity.WatchedFlight) error {
	row := toWatchRow(watch)
	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		return result.Error
	}
	watch.CreatedAt = row.CreatedAt
	watch.UpdatedAt = row.UpdatedAt
	return nil
}

// ListByUser returns the user's watches in insertion order
func (r *GormWatchRepository) ListByUser(ctx context.Context, userID string) ([]entity.WatchedFlight, error) {
	var rows []CartFlights
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	watches := make([]entity.WatchedFlight, 0, len(rows))
	for i := range rows {
		watches = append(watches, *toWatchEntity(&rows[i]))
	}
	return watches, nil
}

// DeleteByUser removes all watches owned by the user
func (r *GormWatchRepository) DeleteByUser(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartFlights{})
	return result.Error
}

// eligibleRow is the join projection used by ListEligible
type eligibleRow struct {
	ID            string     `gorm:"column:id"`
	UserID        string     `gorm:"column:user_id"`
	Origin        string     `gorm:"column:origin"`
	Destination   string     `gorm:"column:destination"`
	DepartureDate time.Time  `gorm:"column:departure_date"`
	ReturnDate    *time.Time `gorm:"column:return_date"`
	Adults        int        `gorm:"column:adults"`
	CurrencyCode  string     `gorm:"column:currency_code"`
	Airline       string     `gorm:"column:airline"`
	FlightNumber  string     `gorm:"column:flight_number"`
	Price         float64    `gorm:"column:price"`
	Email         string     `gorm:"column:email"`
}

// ListEligible returns watches departing on or after the given date
// joined with the owner's email, in insertion order
func (r *GormWatchRepository) ListEligible(ctx context.Context, from time.Time) ([]entity.WatchWithOwner, error) {
	var rows []eligibleRow
	result := r.db.WithContext(ctx).
		Table("cart_flights").
		Select("cart_flights.*, users.email").
		Joins("JOIN users ON users.id = cart_flights.user_id").
		Where("cart_flights.departure_date >= ?", from.Format("2006-01-02")).
		Order("cart_flights.created_at, cart_flights.id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]entity.WatchWithOwner, 0, len(rows))
	for i := range rows {
		row := rows[i]
		items = append(items, entity.WatchWithOwner{
			Watch: entity.WatchedFlight{
				ID:            row.ID,
				UserID:        row.UserID,
				Origin:        row.Origin,
				Destination:   row.Destination,
				DepartureDate: row.DepartureDate,
				ReturnDate:    row.ReturnDate,
				Adults:        row.Adults,
				CurrencyCode:  row.CurrencyCode,
				Airline:       row.Airline,
				FlightNumber:  row.FlightNumber,
				Price:         row.Price,
			},
			OwnerEmail: row.Email,
		})
	}
	return items, nil
}

// UpdatePrice sets the stored price for a single watch. Zero rows
// affected means the watch was deleted since it was listed; that is
// a no-op, not an error.
func (r *GormWatchRepository) UpdatePrice(ctx context.Context, id string, newPrice float64) error {
	result := r.db.WithContext(ctx).
		Model(&CartFlights{}).
		Where("id = ?", id).
		Update("price", newPrice)
	return result.Error
}

func toWatchRow(watch *entity.WatchedFlight) *CartFlights {
	return &CartFlights{
		ID:            watch.ID,
		UserID:        watch.UserID,
		Origin:        watch.Origin,
		Destination:   watch.Destination,
		DepartureDate: watch.DepartureDate,
		ReturnDate:    watch.ReturnDate,
		Adults:        watch.Adults,
		CurrencyCode:  watch.CurrencyCode,
		Airline:       watch.Airline,
		FlightNumber:  watch.FlightNumber,
		Price:         watch.Price,
	}
}

func toWatchEntity(row *CartFlights) *entity.WatchedFlight {
	return &entity.WatchedFlight{
		ID:            row.ID,
		UserID:        row.UserID,
		Origin:        row.Origin,
		Destination:   row.Destination,
		DepartureDate: row.DepartureDate,
		ReturnDate:    row.ReturnDate,
		Adults:        row.Adults,
		CurrencyCode:  row.CurrencyCode,
		Airline:       row.Airline,
		FlightNumber:  row.FlightNumber,
		Price:         row.Price,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
