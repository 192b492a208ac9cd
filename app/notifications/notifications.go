// Package notifications defines the emails the shop sends.
package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = map[string]*template.Template{}

func init() {
	for _, name := range []string{"welcome", "verify_email", "password_reset", "order_confirmation"} {
		templates[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
}

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("notifications: render failed", "template", name, "error", err)
		return ""
	}
	return buf.String()
}

// link builds FRONTEND_URL/path?token=...
func link(path, token string) string {
	return config.FrontendURL() + path + "?token=" + url.QueryEscape(token)
}

var mailAndLog = []string{notification.ChannelMail, notification.ChannelLog}

// ---- welcome ----

type WelcomeEmail struct {
	Name string
}

func (n WelcomeEmail) Via() []string { return mailAndLog }

func (n WelcomeEmail) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Welcome to Shopfront!",
		HTML:    render("welcome", n),
		Text:    fmt.Sprintf("Hi %s,\n\nThank you for signing up with us! We're excited to have you on board.\n", n.Name),
	}
}

func (n WelcomeEmail) ToLog() notification.LogData {
	return notification.LogData{Message: "welcome email queued", Attrs: []any{"name", n.Name}}
}

// ---- email verification ----

type VerifyEmail struct {
	Name  string
	Token string
}

func (n VerifyEmail) Via() []string { return mailAndLog }

func (n VerifyEmail) ToMail() notification.MailData {
	l := link("/verify-email", n.Token)
	return notification.MailData{
		Subject: "Verify your email",
		HTML:    render("verify_email", struct{ Name, Link string }{n.Name, l}),
		Text:    fmt.Sprintf("Hi %s,\n\nPlease verify your email address:\n\n%s\n\nThis link expires in 24 hours.\n", n.Name, l),
	}
}

func (n VerifyEmail) ToLog() notification.LogData {
	return notification.LogData{Message: "verification email queued", Attrs: []any{"name", n.Name}}
}

// ---- password reset ----

type PasswordReset struct {
	Name  string
	Token string
}

func (n PasswordReset) Via() []string { return mailAndLog }

func (n PasswordReset) ToMail() notification.MailData {
	l := link("/reset-password", n.Token)
	return notification.MailData{
		Subject: "Reset your password",
		HTML:    render("password_reset", struct{ Name, Link string }{n.Name, l}),
		Text:    fmt.Sprintf("Hi %s,\n\nReset your password here:\n\n%s\n\nThis link expires in 1 hour.\n", n.Name, l),
	}
}

func (n PasswordReset) ToLog() notification.LogData {
	return notification.LogData{Message: "password reset email queued", Attrs: []any{"name", n.Name}}
}

// ---- order confirmation ----

type OrderConfirmation struct {
	Order models.Order
}

type orderLine struct {
	Product  string
	Quantity int
	Price    string
}

func (n OrderConfirmation) Via() []string { return mailAndLog }

func (n OrderConfirmation) ToMail() notification.MailData {
	o := n.Order
	lines := make([]orderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = orderLine{Product: it.Product.Hex(), Quantity: it.Quantity, Price: it.Price.StringFixed(2)}
	}
	data := struct {
		Name    string
		OrderID string
		Items   []orderLine
		Total   string
		Address *models.ShippingAddress
		Phone   string
	}{
		Name:    o.CustomerName,
		OrderID: o.ID.Hex(),
		Items:   lines,
		Total:   o.TotalAmount.StringFixed(2),
		Address: &o.ShippingAddress,
		Phone:   o.Phone,
	}
	return notification.MailData{
		Subject: "Order Confirmation - #" + o.ID.Hex(),
		HTML:    render("order_confirmation", data),
		Text:    fmt.Sprintf("Hi %s,\n\nThank you for your order #%s. Total: %s\n", o.CustomerName, o.ID.Hex(), data.Total),
	}
}

func (n OrderConfirmation) ToLog() notification.LogData {
	return notification.LogData{
		Message: "order confirmation queued",
		Attrs:   []any{"order_id", n.Order.ID.Hex(), "total", n.Order.TotalAmount.String()},
	}
}
