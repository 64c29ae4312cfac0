package billing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ItemInput is one line item in a create or amend request. ID is zero for
// new items; amend requests carry the persisted id for items to update.
type ItemInput struct {
	ID          uint    `json:"id"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Rate        float64 `json:"rate"`
	Unit        string  `json:"unit"`
}

// CreateInvoice is the payload for creating a new invoice. Tax and Packing
// default to zero when absent; totals are always computed server-side.
type CreateInvoice struct {
	Title        string      `json:"title"`
	CustomerName string      `json:"customer_name"`
	Location     string      `json:"location"`
	BillingDate  string      `json:"billing_date"`
	Tax          float64     `json:"tax"`
	Packing      float64     `json:"packing"`
	Items        []ItemInput `json:"items"`
}

// AmendInvoice is the payload for amending an existing invoice.
// ItemsToDelete lists line-item ids to remove; deletions and updates are
// scoped to the invoice's customer, so ids belonging to another invoice are
// ignored rather than touched.
type AmendInvoice struct {
	Title         string      `json:"title"`
	CustomerName  string      `json:"customer_name"`
	Location      string      `json:"location"`
	BillingDate   string      `json:"billing_date"`
	Tax           float64     `json:"tax"`
	Packing       float64     `json:"packing"`
	Items         []ItemInput `json:"items"`
	ItemsToDelete []uint      `json:"items_to_delete"`
}

func (in *CreateInvoice) validate() error {
	return validateInvoiceFields(in.Title, in.CustomerName, in.Location, in.BillingDate, in.Items)
}

func (in *AmendInvoice) validate() error {
	return validateInvoiceFields(in.Title, in.CustomerName, in.Location, in.BillingDate, in.Items)
}

func validateInvoiceFields(title, customerName, location, billingDate string, items []ItemInput) error {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(customerName) == "" {
		missing = append(missing, "customer_name")
	}
	if strings.TrimSpace(location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(billingDate) == "" {
		missing = append(missing, "billing_date")
	}
	if len(items) == 0 {
		missing = append(missing, "items")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			missing = append(missing, fmt.Sprintf("items[%d].description", i))
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// dateLayouts are the accepted billing_date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// parseBillingDate normalizes an incoming date string to a calendar date in
// UTC, dropping any time-of-day and timezone the client sent.
func parseBillingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &ValidationError{Fields: []string{"billing_date"}}
}

// round2 rounds a monetary value to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
