package billing

import (
	"time"

	"github.com/JrVava/laxmanBackend/models"
)

// CustomerView is the customer block of an invoice view.
type CustomerView struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// DetailView is the billing summary block of an invoice view. BillingDate is
// rendered as a YYYY-MM-DD calendar date.
type DetailView struct {
	ID          uint      `json:"id"`
	GrandTotal  float64   `json:"grand_total"`
	Tax         float64   `json:"tax"`
	Packaging   float64   `json:"packaging"`
	BillingDate string    `json:"billing_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemView is one line item of an invoice view. Amount is derived from the
// persisted qty and rate, never read back from the client.
type ItemView struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	Qty         float64   `json:"qty"`
	Rate        float64   `json:"rate"`
	Amount      float64   `json:"amount"`
	Unit        string    `json:"unit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InvoiceView is the denormalized invoice exposed by the API: one customer,
// one billing detail and the customer's line items.
type InvoiceView struct {
	Customer      CustomerView `json:"customer"`
	BillingDetail DetailView   `json:"billing_detail"`
	Billings      []ItemView   `json:"billings"`
}

// SummaryRow is one joined billing_details+customers row as read from the
// store. The aggregator nests line items under these by customer id.
type SummaryRow struct {
	DetailID        uint
	BillingID       uint
	CustomerID      uint
	GrandTotal      float64
	Tax             float64
	Packaging       float64
	Total           float64
	BillingDate     time.Time
	DetailCreatedAt time.Time
	DetailUpdatedAt time.Time
	Title           string
	CustomerName    string
	Location        string
}

func itemView(b models.Billing) ItemView {
	return ItemView{
		ID:          b.ID,
		Description: b.Description,
		Qty:         b.Qty,
		Rate:        b.Rate,
		Amount:      round2(b.Qty * b.Rate),
		Unit:        b.Unit,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
