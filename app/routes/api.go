package routes

import (
	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/rbac"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

// RegisterAPI mounts every resource under /api.
func RegisterAPI(r *router.Router, gate *auth.Gate, c controllers.Set) {
	authed := middleware.Authenticate(gate)
	admin := rbac.RequireRole(models.RoleAdmin)

	api := r.Group("/api")

	products := api.Group("/products")
	products.Get("", "products.index", ctx.Wrap(c.Products.Index))
	products.Post("", "products.store", ctx.Wrap(c.Products.Store), authed, admin)
	products.Post("/bulk", "products.bulk", ctx.Wrap(c.Products.BulkStore), authed, admin)
	products.Get("/search/name/{name}", "products.search.name", ctx.Wrap(c.Products.SearchByName))
	products.Get("/search/category/{category}", "products.search.category", ctx.Wrap(c.Products.ByCategory))
	products.Get("/category/{category}", "products.category", ctx.Wrap(c.Products.ByCategory))
	products.Get("/variant/{name}/{color}", "products.variant", ctx.Wrap(c.Products.Variant))
	products.Get("/variants/{name}", "products.variants", ctx.Wrap(c.Products.Variants))
	products.Get("/{id}", "products.show", ctx.Wrap(c.Products.Show))
	products.Put("/{id}", "products.update", ctx.Wrap(c.Products.Update), authed, admin)
	products.Delete("/{id}", "products.destroy", ctx.Wrap(c.Products.Destroy), authed, admin)

	categories := api.Group("/categories")
	categories.Get("", "categories.index", ctx.Wrap(c.Categories.Index))
	categories.Post("", "categories.store", ctx.Wrap(c.Categories.Store), authed, admin)
	categories.Get("/all", "categories.all", ctx.Wrap(c.Categories.All), authed, admin)
	categories.Get("/search/{name}", "categories.search", ctx.Wrap(c.Categories.Search))
	categories.Get("/{id}", "categories.show", ctx.Wrap(c.Categories.Show))
	categories.Put("/{id}", "categories.update", ctx.Wrap(c.Categories.Update), authed, admin)
	categories.Delete("/{id}", "categories.destroy", ctx.Wrap(c.Categories.Destroy), authed, admin)

	attributes := api.Group("/attributes")
	attributes.Get("", "attributes.index", ctx.Wrap(c.Attributes.Index))
	attributes.Post("", "attributes.store", ctx.Wrap(c.Attributes.Store), authed, admin)
	attributes.Get("/type/{type}", "attributes.type", ctx.Wrap(c.Attributes.ByType))
	attributes.Get("/{id}", "attributes.show", ctx.Wrap(c.Attributes.Show))
	attributes.Put("/{id}", "attributes.update", ctx.Wrap(c.Attributes.Update), authed, admin)
	attributes.Delete("/{id}", "attributes.destroy", ctx.Wrap(c.Attributes.Destroy), authed, admin)

	orders := api.Group("/orders")
	orders.Post("/create", "orders.checkout", ctx.Wrap(c.Orders.Checkout), middleware.OptionalAuth(gate))
	orders.Get("/my", "orders.mine", ctx.Wrap(c.Orders.Mine), authed)
	staff := orders.Group("", authed, admin)
	staff.Get("", "orders.index", ctx.Wrap(c.Orders.Index))
	staff.Post("", "orders.store", ctx.Wrap(c.Orders.Store))
	staff.Get("/{id}", "orders.show", ctx.Wrap(c.Orders.Show))
	staff.Put("/{id}", "orders.update", ctx.Wrap(c.Orders.Update))
	staff.Delete("/{id}", "orders.destroy", ctx.Wrap(c.Orders.Destroy))

	users := api.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(c.Users.Register))
	users.Post("/login", "users.login", ctx.Wrap(c.Users.Login))
	users.Get("/verify-email", "users.verify", ctx.Wrap(c.Users.VerifyEmail))
	users.Post("/resend-verification", "users.verify.resend", ctx.Wrap(c.Users.ResendVerification))
	users.Post("/forgot-password", "users.password.forgot", ctx.Wrap(c.Users.ForgotPassword))
	users.Post("/reset-password", "users.password.reset", ctx.Wrap(c.Users.ResetPassword))

	self := users.Group("", authed)
	self.Get("/profile", "users.profile", ctx.Wrap(c.Users.Profile))
	self.Put("/profile", "users.profile.update", ctx.Wrap(c.Users.UpdateProfile))
	self.Put("/change-password", "users.password.change", ctx.Wrap(c.Users.ChangePassword))

	people := users.Group("", authed, admin)
	people.Get("", "users.index", ctx.Wrap(c.Users.Index))
	people.Post("", "users.store", ctx.Wrap(c.Users.Store))
	people.Get("/role/{role}", "users.role", ctx.Wrap(c.Users.ByRole))
	people.Get("/{id}", "users.show", ctx.Wrap(c.Users.Show))
	people.Put("/{id}", "users.update", ctx.Wrap(c.Users.Update))
	people.Delete("/{id}", "users.destroy", ctx.Wrap(c.Users.Destroy))

	dashboard := api.Group("/dashboard", authed, admin)
	dashboard.Get("/monthly-orders-sales", "dashboard.monthly", ctx.Wrap(c.Dashboard.MonthlyOrdersSales))
	dashboard.Get("/orders-by-status", "dashboard.status", ctx.Wrap(c.Dashboard.OrdersByStatus))
	dashboard.Get("/products-by-category", "dashboard.categories", ctx.Wrap(c.Dashboard.ProductsByCategory))
	dashboard.Get("/summary", "dashboard.summary", ctx.Wrap(c.Dashboard.Summary))

	payments := api.Group("/payments")
	payments.Post("/webhook", "payments.webhook", ctx.Wrap(c.Payments.Webhook))
	paying := payments.Group("", authed, rbac.RequireVerified)
	paying.Post("/create-payment-intent", "payments.intent", ctx.Wrap(c.Payments.CreateIntent))
	paying.Post("/confirm-payment", "payments.confirm", ctx.Wrap(c.Payments.Confirm))
}
