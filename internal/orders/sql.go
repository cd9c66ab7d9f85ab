package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/amglow-storefront/pkg/db"
)

// orderDocument stores the whole Record as JSON next to a few indexed columns.
type orderDocument struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Collection    string          `gorm:"not null"`
	Status        string          `gorm:"not null"`
	PaymentMethod string          `gorm:"not null"`
	CustomerEmail string          `gorm:"not null"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Document      Record          `gorm:"serializer:json;not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (orderDocument) TableName() string { return "order_documents" }

// SQLStore writes order documents to the order_documents table.
type SQLStore struct {
	db    *gorm.DB
	newID func() uuid.UUID
}

func NewSQLStore(conn *gorm.DB) (*SQLStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	return &SQLStore{db: conn, newID: uuid.New}, nil
}

func (s *SQLStore) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	row := orderDocument{
		ID:            s.newID(),
		Collection:    collection,
		Status:        rec.Status.String(),
		PaymentMethod: rec.PaymentMethod.String(),
		CustomerEmail: rec.Customer.Email,
		Total:         rec.Total.Round(2),
		Document:      rec,
		CreatedAt:     rec.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return "", fmt.Errorf("order id collision %s: %w", row.ID, err)
		}
		return "", fmt.Errorf("insert into order_documents: %w", err)
	}
	return row.ID.String(), nil
}
