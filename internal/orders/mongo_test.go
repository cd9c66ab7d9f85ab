package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/angelmondragon/amglow-storefront/pkg/enums"
)

func sampleRecord() Record {
	return Record{
		Customer: Customer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "5551234567",
			Address:   Address{Street: "12 Analytical Way", City: "London", State: "LDN", Zip: "10001"},
		},
		Items: []Item{
			{ID: "serum", Name: "Glow Serum", Price: decimal.RequireFromString("10.00"), Quantity: 2, Image: "/serum.jpg"},
			{ID: "toner", Name: "Rose Toner", Price: decimal.RequireFromString("5.50"), Quantity: 1, Image: "/toner.jpg"},
		},
		Total:         decimal.RequireFromString("25.50"),
		PaymentMethod: enums.PaymentMethodCredit,
		Status:        enums.OrderStatusPending,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMongoStoreInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("writes one document to orders", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		store, err := NewMongoStore(mt.DB)
		require.NoError(mt, err)

		id, err := store.Insert(context.Background(), DefaultCollection, sampleRecord())
		require.NoError(mt, err)
		_, hexErr := primitive.ObjectIDFromHex(id)
		assert.NoError(mt, hexErr, "insert should return the generated object id")

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
		assert.Equal(mt, DefaultCollection, evt.Command.Lookup("insert").StringValue())

		docs, ok := evt.Command.Lookup("documents").ArrayOK()
		require.True(mt, ok)
		values, err := docs.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 1)

		doc := values[0].Document()
		assert.Equal(mt, "ada@example.com", doc.Lookup("customer", "email").StringValue())
		assert.Equal(mt, "10001", doc.Lookup("customer", "address", "zip").StringValue())
		assert.Equal(mt, "pending", doc.Lookup("status").StringValue())
		assert.Equal(mt, "credit", doc.Lookup("paymentMethod").StringValue())
		assert.Equal(mt, "25.5", doc.Lookup("total").Decimal128().String())

		items, err := doc.Lookup("items").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, "serum", items[0].Document().Lookup("id").StringValue())
		assert.Equal(mt, int32(2), items[0].Document().Lookup("quantity").Int32())
	})

	mt.Run("surfaces write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Message: "shutdown in progress",
			Name:    "ShutdownInProgress",
		}))
		store, err := NewMongoStore(mt.DB)
		require.NoError(mt, err)

		_, err = store.Insert(context.Background(), "", sampleRecord())
		assert.Error(mt, err)
	})
}

func TestNewMongoStoreRequiresDatabase(t *testing.T) {
	_, err := NewMongoStore(nil)
	assert.Error(t, err)
}
