package billing

import "github.com/JrVava/laxmanBackend/models"

// Aggregate reconstructs nested invoice views from raw rows: line items are
// grouped by customer id and nested under the matching summary row. It is a
// pure function shared by list, single-invoice and search retrieval.
//
// Every summary row yields exactly one view; a summary with no matching
// items gets an empty billings list. Item order within a view follows the
// order of the input slice.
func Aggregate(summaries []SummaryRow, items []models.Billing) []InvoiceView {
	byCustomer := make(map[uint][]ItemView, len(summaries))
	for _, it := range items {
		byCustomer[it.CustomerID] = append(byCustomer[it.CustomerID], itemView(it))
	}

	views := make([]InvoiceView, 0, len(summaries))
	for _, s := range summaries {
		nested := byCustomer[s.CustomerID]
		if nested == nil {
			nested = []ItemView{}
		}
		views = append(views, InvoiceView{
			Customer: CustomerView{
				ID:       s.CustomerID,
				Title:    s.Title,
				Name:     s.CustomerName,
				Location: s.Location,
			},
			BillingDetail: DetailView{
				ID:          s.DetailID,
				GrandTotal:  s.GrandTotal,
				Tax:         s.Tax,
				Packaging:   s.Packaging,
				BillingDate: s.BillingDate.Format("2006-01-02"),
				CreatedAt:   s.DetailCreatedAt,
				UpdatedAt:   s.DetailUpdatedAt,
			},
			Billings: nested,
		})
	}
	return views
}
