package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
)

const (
	DefaultCollection = "products"
	maxListLimit      = 200
)

type mongoProduct struct {
	ID               bson.RawValue `bson:"_id"`
	Name             string        `bson:"name"`
	Price            bson.RawValue `bson:"price"`
	Image            string        `bson:"image"`
	AdditionalImages []string      `bson:"additionalImages"`
	Description      string        `bson:"description"`
	Details          []string      `bson:"details"`
	Rating           float64       `bson:"rating"`
	Reviews          int           `bson:"reviews"`
	Stock            int           `bson:"stock"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository reads products from the named collection of db.
func NewMongoRepository(db *mongo.Database, collection string) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo database required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &mongoRepository{collection: db.Collection(collection)}, nil
}

func (r *mongoRepository) List(ctx context.Context, limit int64) ([]Product, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	defer cur.Close(ctx)

	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode products")
	}
	out := make([]Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toProduct()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product")
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	var doc mongoProduct
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	p, err := doc.toProduct()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product")
	}
	return &p, nil
}

// idFilter matches string ids and, when id is valid hex, ObjectIDs too.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func (d mongoProduct) toProduct() (Product, error) {
	id, err := rawID(d.ID)
	if err != nil {
		return Product{}, err
	}
	price, err := rawDecimal(d.Price)
	if err != nil {
		return Product{}, fmt.Errorf("product %s price: %w", id, err)
	}
	return Product{
		ID:               id,
		Name:             d.Name,
		Price:            price,
		Image:            d.Image,
		AdditionalImages: d.AdditionalImages,
		Description:      d.Description,
		Details:          d.Details,
		Rating:           d.Rating,
		Reviews:          d.Reviews,
		Stock:            d.Stock,
	}, nil
}

func rawID(v bson.RawValue) (string, error) {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex(), nil
	case bsontype.String:
		return v.StringValue(), nil
	default:
		return "", fmt.Errorf("unsupported _id type %s", v.Type)
	}
}

func rawDecimal(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.Decimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %s", v.Type)
	}
}
