package migrations

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_users_email_unique", index{
		collection: repositories.UsersCollection,
		name:       "email_unique",
		keys:       asc("email"),
		unique:     true,
	})
	migration.Register("20260101000001_users_verification_token", index{
		collection: repositories.UsersCollection,
		name:       "verification_token",
		keys:       asc("verificationToken"),
		sparse:     true,
	})
	migration.Register("20260101000002_users_reset_token", index{
		collection: repositories.UsersCollection,
		name:       "reset_password_token",
		keys:       asc("resetPasswordToken"),
		sparse:     true,
	})
	migration.Register("20260101000003_categories_name_unique", index{
		collection: repositories.CategoriesCollection,
		name:       "name_unique",
		keys:       asc("name"),
		unique:     true,
	})
	migration.Register("20260101000004_products_name", index{
		collection: repositories.ProductsCollection,
		name:       "name",
		keys:       asc("name"),
	})
	migration.Register("20260101000005_products_category", index{
		collection: repositories.ProductsCollection,
		name:       "category",
		keys:       asc("category"),
	})
	migration.Register("20260101000006_products_created", index{
		collection: repositories.ProductsCollection,
		name:       "created_at",
		keys:       bson.D{{Key: "createdAt", Value: -1}},
	})
	migration.Register("20260101000007_orders_user", index{
		collection: repositories.OrdersCollection,
		name:       "user_created",
		keys:       bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	migration.Register("20260101000008_orders_created", index{
		collection: repositories.OrdersCollection,
		name:       "created_at",
		keys:       bson.D{{Key: "createdAt", Value: -1}},
	})
	migration.Register("20260101000009_orders_status", index{
		collection: repositories.OrdersCollection,
		name:       "status",
		keys:       asc("status"),
	})
	migration.Register("20260101000010_payment_events_unique", index{
		collection: repositories.PaymentEventsCollection,
		name:       "intent_type_unique",
		keys:       asc("paymentIntentId", "type"),
		unique:     true,
	})
}
