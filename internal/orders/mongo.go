package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoItem struct {
	ID       string               `bson:"id"`
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int                  `bson:"quantity"`
	Image    string               `bson:"image"`
}

type mongoOrder struct {
	Customer      Customer             `bson:"customer"`
	Items         []mongoItem          `bson:"items"`
	Total         primitive.Decimal128 `bson:"total"`
	PaymentMethod string               `bson:"paymentMethod"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

// MongoStore writes order documents to a MongoDB database. Prices are stored
// as Decimal128 so totals survive without float rounding.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo database required")
	}
	return &MongoStore{db: db}, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	doc, err := toMongo(rec)
	if err != nil {
		return "", err
	}
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

func toMongo(rec Record) (mongoOrder, error) {
	total, err := toDecimal128(rec.Total)
	if err != nil {
		return mongoOrder{}, fmt.Errorf("order total: %w", err)
	}
	items := make([]mongoItem, 0, len(rec.Items))
	for _, it := range rec.Items {
		price, err := toDecimal128(it.Price)
		if err != nil {
			return mongoOrder{}, fmt.Errorf("item %s price: %w", it.ID, err)
		}
		items = append(items, mongoItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    price,
			Quantity: it.Quantity,
			Image:    it.Image,
		})
	}
	return mongoOrder{
		Customer:      rec.Customer,
		Items:         items,
		Total:         total,
		PaymentMethod: rec.PaymentMethod.String(),
		Status:        rec.Status.String(),
		CreatedAt:     rec.CreatedAt.UTC(),
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}
