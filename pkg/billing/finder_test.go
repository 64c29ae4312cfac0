package billing

import (
	"errors"
	"testing"
)

func seedInvoices(t *testing.T, w *Writer) {
	t.Helper()
	invoices := []CreateInvoice{
		{Title: "Mr", CustomerName: "Laxman", Location: "Pune", BillingDate: "2024-01-10", Tax: 10, Packing: 5,
			Items: []ItemInput{{Description: "Cement", Qty: 10, Rate: 5, Unit: "bag"}}},
		{Title: "Ms", CustomerName: "Asha", Location: "Mumbai", BillingDate: "2024-02-20",
			Items: []ItemInput{{Description: "Sand", Qty: 4, Rate: 25, Unit: "ton"}}},
		{Title: "Mr", CustomerName: "Laxman", Location: "Pune", BillingDate: "2024-03-05", Tax: 1,
			Items: []ItemInput{{Description: "Steel", Qty: 2, Rate: 50, Unit: "rod"}}},
	}
	for i, in := range invoices {
		if _, err := w.Create(in); err != nil {
			t.Fatalf("seed invoice %d: %v", i, err)
		}
	}
}

func TestFindAllEmptyDatabase(t *testing.T) {
	store := newTestStore(t)
	f := NewFinder(store, testLogger())

	views, err := f.FindAll()
	if err != nil {
		t.Fatalf("findAll failed: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Fatalf("expected empty list, got %#v", views)
	}
}

func TestFindByIDUnknown(t *testing.T) {
	store := newTestStore(t)
	f := NewFinder(store, testLogger())

	if _, err := f.FindByID(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByIDShape(t *testing.T) {
	store := newTestStore(t)
	w := NewWriter(store, testLogger())
	f := NewFinder(store, testLogger())

	id, err := w.Create(validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	view, err := f.FindByID(id)
	if err != nil {
		t.Fatalf("findByID: %v", err)
	}
	if view.Customer.Name != "Laxman" || view.Customer.Title != "Mr" {
		t.Fatalf("customer block wrong: %+v", view.Customer)
	}
	if view.BillingDetail.GrandTotal != 65 || view.BillingDetail.BillingDate != "2024-03-15" {
		t.Fatalf("detail block wrong: %+v", view.BillingDetail)
	}
	if len(view.Billings) != 1 || view.Billings[0].Amount != 50 {
		t.Fatalf("items wrong: %+v", view.Billings)
	}
}

func TestSearchByCustomerName(t *testing.T) {
	store := newTestStore(t)
	w := NewWriter(store, testLogger())
	f := NewFinder(store, testLogger())
	seedInvoices(t, w)

	res, err := f.Search(SearchFilter{CustomerName: "Laxman"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Bills) != 2 {
		t.Fatalf("expected 2 Laxman invoices, got %d", len(res.Bills))
	}
	// 65 (cement) + 101 (steel + tax)
	if res.TotalGrandTotal != 166 {
		t.Fatalf("expected totalGrandTotal 166, got %v", res.TotalGrandTotal)
	}
	for _, b := range res.Bills {
		if b.Customer.Name != "Laxman" {
			t.Fatalf("unexpected customer in result: %+v", b.Customer)
		}
		if len(b.Billings) != 1 {
			t.Fatalf("expected items only for matched customers: %+v", b.Billings)
		}
	}
}

func TestSearchDateRangeConjunctive(t *testing.T) {
	store := newTestStore(t)
	w := NewWriter(store, testLogger())
	f := NewFinder(store, testLogger())
	seedInvoices(t, w)

	res, err := f.Search(SearchFilter{
		CustomerName: "Laxman",
		StartDate:    "2024-02-01",
		EndDate:      "2024-03-31",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Bills) != 1 {
		t.Fatalf("expected 1 invoice in range, got %d", len(res.Bills))
	}
	if res.Bills[0].BillingDetail.BillingDate != "2024-03-05" {
		t.Fatalf("wrong invoice matched: %+v", res.Bills[0].BillingDetail)
	}
}

func TestSearchNoMatchIsNotFound(t *testing.T) {
	store := newTestStore(t)
	w := NewWriter(store, testLogger())
	f := NewFinder(store, testLogger())
	seedInvoices(t, w)

	if _, err := f.Search(SearchFilter{CustomerName: "Nobody"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchWithoutFiltersMatchesFindAll(t *testing.T) {
	store := newTestStore(t)
	w := NewWriter(store, testLogger())
	f := NewFinder(store, testLogger())
	seedInvoices(t, w)

	all, err := f.FindAll()
	if err != nil {
		t.Fatalf("findAll: %v", err)
	}
	res, err := f.Search(SearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Bills) != len(all) {
		t.Fatalf("search({}) returned %d bills, findAll %d", len(res.Bills), len(all))
	}
	var sum float64
	for i, b := range res.Bills {
		if b.BillingDetail.ID != all[i].BillingDetail.ID {
			t.Fatalf("result sets differ at %d: %v vs %v", i, b.BillingDetail.ID, all[i].BillingDetail.ID)
		}
		sum += b.BillingDetail.GrandTotal
	}
	if res.TotalGrandTotal != round2(sum) {
		t.Fatalf("totalGrandTotal %v != sum of grand totals %v", res.TotalGrandTotal, sum)
	}
}

func TestSearchRejectsMalformedDates(t *testing.T) {
	store := newTestStore(t)
	f := NewFinder(store, testLogger())

	_, err := f.Search(SearchFilter{StartDate: "soon"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
