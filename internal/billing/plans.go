// ABOUTME: Subscription plans sold through the dashboard and their display formatting
// ABOUTME: Prices are whole naira; formatting groups digits the English way

package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/2389/nova-dashboard/internal/form"
)

// ErrUnknownPlan is returned for a plan id that is not on sale.
var ErrUnknownPlan = errors.New("unknown plan")

// Plan is one purchasable tier.
type Plan struct {
	ID       string
	Name     string
	Price    int64 // whole NGN
	Duration string
	Features []string
}

// Free reports whether the plan costs nothing.
func (p Plan) Free() bool { return p.Price == 0 }

// DisplayPrice is the formatted price for the pricing card.
func (p Plan) DisplayPrice() string { return FormatPrice(p.Price) }

var plans = []Plan{
	{
		ID: "trial", Name: "Free Trial", Price: 0, Duration: "7 days",
		Features: []string{"100 conversations", "Stores leads", "Basic Analytics", "Email support"},
	},
	{
		ID: "starter", Name: "Starter", Price: 45000, Duration: "30 days",
		Features: []string{"1,000 conversations", "Stores leads", "Advanced analytics", "5 RAG pages", "Email support"},
	},
	{
		ID: "pro", Name: "Professional", Price: 120000, Duration: "30 days",
		Features: []string{"5,000 conversations", "Stores leads", "Advanced analytics", "20 RAG pages", "Priority email support", "Custom Branding"},
	},
	{
		ID: "enterprise", Name: "Enterprise", Price: 300000, Duration: "30 days",
		Features: []string{"Unlimited conversations", "Stores leads", "Advanced analytics", "Unlimited RAG pages", "Dedicated email support", "Custom Branding", "White Label"},
	},
}

// Plans returns every plan in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Lookup finds a plan by id.
func Lookup(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders a whole-naira amount, e.g. "NGN 45,000", or "Free" for 0.
func FormatPrice(amount int64) string {
	if amount == 0 {
		return "Free"
	}
	return printer.Sprintf("%s %d", currency.MustParseISO("NGN"), amount)
}

// PaymentAPI starts hosted checkouts.
type PaymentAPI interface {
	InitializePayment(ctx context.Context, token, plan, email string) (string, error)
}

// Checkout validates the plan and asks the backend for a checkout URL.
func Checkout(ctx context.Context, api PaymentAPI, token, planID, email string) (string, error) {
	plan, ok := Lookup(planID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}
	if strings.TrimSpace(email) == "" {
		return "", form.Invalid("email", "An email address is required to check out")
	}
	url, err := api.InitializePayment(ctx, token, plan.ID, email)
	if err != nil {
		return "", fmt.Errorf("starting checkout for %s: %w", plan.ID, err)
	}
	return url, nil
}
