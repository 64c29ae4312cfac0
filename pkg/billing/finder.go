package billing

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JrVava/laxmanBackend/models"
)

// SearchFilter narrows a billing search. All fields are optional and
// combined with AND; an absent field contributes no condition at all.
type SearchFilter struct {
	CustomerName string `json:"customer_name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// SearchResult is the outcome of a search: the matched invoices plus the
// sum of their grand totals, computed server-side over the matched set.
type SearchResult struct {
	TotalGrandTotal float64       `json:"totalGrandTotal"`
	Bills           []InvoiceView `json:"bills"`
}

// Finder builds filtered read queries over the joined summary/customer rows
// and delegates row reconstruction to Aggregate.
type Finder struct {
	store *Store
	log   *zap.SugaredLogger
}

func NewFinder(store *Store, log *zap.SugaredLogger) *Finder {
	return &Finder{store: store, log: log}
}

const summaryColumns = `bd.id AS detail_id, bd.billing_id AS billing_id, bd.customer_id AS customer_id,
bd.grand_total, bd.tax, bd.packaging, bd.total, bd.billing_date,
bd.created_at AS detail_created_at, bd.updated_at AS detail_updated_at,
c.title, c.customer_name, c.location`

func (f *Finder) summaryQuery() *gorm.DB {
	return f.store.DB().
		Table("billing_details bd").
		Select(summaryColumns).
		Joins("LEFT JOIN customers c ON c.id = bd.customer_id").
		Order("bd.id")
}

// FindAll returns every invoice. An empty database yields an empty list,
// not an error.
func (f *Finder) FindAll() ([]InvoiceView, error) {
	var summaries []SummaryRow
	if err := f.summaryQuery().Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("load billing details: %w", err)
	}
	if len(summaries) == 0 {
		return []InvoiceView{}, nil
	}
	items, err := f.itemsFor(distinctCustomerIDs(summaries))
	if err != nil {
		return nil, err
	}
	return Aggregate(summaries, items), nil
}

// FindByID returns the single invoice whose billing detail has the given id,
// or ErrNotFound.
func (f *Finder) FindByID(detailID uint) (InvoiceView, error) {
	var summaries []SummaryRow
	if err := f.summaryQuery().Where("bd.id = ?", detailID).Scan(&summaries).Error; err != nil {
		return InvoiceView{}, fmt.Errorf("load billing detail: %w", err)
	}
	if len(summaries) == 0 {
		return InvoiceView{}, ErrNotFound
	}
	items, err := f.itemsFor(distinctCustomerIDs(summaries))
	if err != nil {
		return InvoiceView{}, err
	}
	return Aggregate(summaries, items)[0], nil
}

// Search returns the invoices matching the filter along with the sum of
// their grand totals. Zero matches is ErrNotFound; line items are fetched
// only for the customers present in the matched summaries.
func (f *Finder) Search(filter SearchFilter) (SearchResult, error) {
	q := f.summaryQuery()
	if filter.CustomerName != "" {
		q = q.Where("c.customer_name = ?", filter.CustomerName)
	}
	if filter.StartDate != "" {
		start, err := parseBillingDate(filter.StartDate)
		if err != nil {
			return SearchResult{}, &ValidationError{Fields: []string{"start_date"}}
		}
		q = q.Where("bd.billing_date >= ?", start)
	}
	if filter.EndDate != "" {
		end, err := parseBillingDate(filter.EndDate)
		if err != nil {
			return SearchResult{}, &ValidationError{Fields: []string{"end_date"}}
		}
		q = q.Where("bd.billing_date <= ?", end)
	}

	var summaries []SummaryRow
	if err := q.Scan(&summaries).Error; err != nil {
		return SearchResult{}, fmt.Errorf("search billing details: %w", err)
	}
	if len(summaries) == 0 {
		return SearchResult{}, ErrNotFound
	}

	var totalGrand float64
	for _, s := range summaries {
		totalGrand += s.GrandTotal
	}
	items, err := f.itemsFor(distinctCustomerIDs(summaries))
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		TotalGrandTotal: round2(totalGrand),
		Bills:           Aggregate(summaries, items),
	}, nil
}

func (f *Finder) itemsFor(customerIDs []uint) ([]models.Billing, error) {
	var items []models.Billing
	if len(customerIDs) == 0 {
		return items, nil
	}
	if err := f.store.DB().
		Where("customer_id IN ?", customerIDs).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	return items, nil
}

func distinctCustomerIDs(summaries []SummaryRow) []uint {
	seen := make(map[uint]bool, len(summaries))
	ids := make([]uint, 0, len(summaries))
	for _, s := range summaries {
		if seen[s.CustomerID] {
			continue
		}
		seen[s.CustomerID] = true
		ids = append(ids, s.CustomerID)
	}
	return ids
}
