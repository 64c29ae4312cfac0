package billing

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JrVava/laxmanBackend/models"
)

// Writer orchestrates invoice creation and amendment. Each operation is one
// atomic unit of work: the customer upsert, line-item reconciliation and
// summary recomputation either all persist or none do.
type Writer struct {
	store *Store
	log   *zap.SugaredLogger
}

func NewWriter(store *Store, log *zap.SugaredLogger) *Writer {
	return &Writer{store: store, log: log}
}

// Create persists a new invoice and returns the generated billing detail id.
// Totals are computed from the line items actually persisted, with tax and
// packing defaulting to zero, and all monetary fields rounded to 2 decimals.
func (w *Writer) Create(in CreateInvoice) (uint, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	billingDate, err := parseBillingDate(in.BillingDate)
	if err != nil {
		return 0, err
	}

	var detailID uint
	err = w.store.Transaction(func(tx *gorm.DB) error {
		customer := models.Customer{
			Title:        in.Title,
			CustomerName: in.CustomerName,
			Location:     in.Location,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}

		items := make([]models.Billing, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, models.Billing{
				CustomerID:  customer.ID,
				Description: it.Description,
				Qty:         it.Qty,
				Rate:        it.Rate,
				Unit:        it.Unit,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert line items: %w", err)
		}

		var total float64
		for _, it := range items {
			total += it.Qty * it.Rate
		}
		detail := models.BillingDetail{
			BillingID:   items[0].ID,
			CustomerID:  customer.ID,
			GrandTotal:  round2(total + in.Tax + in.Packing),
			Tax:         round2(in.Tax),
			Packaging:   round2(in.Packing),
			Total:       round2(total),
			BillingDate: billingDate,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return fmt.Errorf("insert billing detail: %w", err)
		}
		detailID = detail.ID
		return nil
	})
	if err != nil {
		w.log.Errorw("create billing rolled back", "customer", in.CustomerName, "error", err)
		return 0, err
	}
	return detailID, nil
}

// Amend updates an existing invoice in place: the customer's descriptive
// fields, the summary's date, and the line items reconciled against the
// request (delete by id, update entries carrying an id, insert the rest).
// Deletes and updates are scoped to the invoice's customer, so an id
// belonging to another invoice is a silent no-op. Totals are recomputed from
// the reconciled rows rather than trusted from the caller.
func (w *Writer) Amend(detailID uint, in AmendInvoice) error {
	if err := in.validate(); err != nil {
		return err
	}
	billingDate, err := parseBillingDate(in.BillingDate)
	if err != nil {
		return err
	}

	err = w.store.Transaction(func(tx *gorm.DB) error {
		var detail models.BillingDetail
		if err := tx.First(&detail, detailID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load billing detail: %w", err)
		}
		customerID := detail.CustomerID

		if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).Updates(map[string]interface{}{
			"title":         in.Title,
			"customer_name": in.CustomerName,
			"location":      in.Location,
		}).Error; err != nil {
			return fmt.Errorf("update customer: %w", err)
		}

		if len(in.ItemsToDelete) > 0 {
			if err := tx.Where("id IN ? AND customer_id = ?", in.ItemsToDelete, customerID).
				Delete(&models.Billing{}).Error; err != nil {
				return fmt.Errorf("delete line items: %w", err)
			}
		}

		for _, it := range in.Items {
			if it.ID != 0 {
				// zero affected rows here means the id belongs to a
				// different customer; that is not an error
				if err := tx.Model(&models.Billing{}).
					Where("id = ? AND customer_id = ?", it.ID, customerID).
					Updates(map[string]interface{}{
						"description": it.Description,
						"qty":         it.Qty,
						"rate":        it.Rate,
						"unit":        it.Unit,
					}).Error; err != nil {
					return fmt.Errorf("update line item %d: %w", it.ID, err)
				}
				continue
			}
			item := models.Billing{
				CustomerID:  customerID,
				Description: it.Description,
				Qty:         it.Qty,
				Rate:        it.Rate,
				Unit:        it.Unit,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("insert line item: %w", err)
			}
		}

		var rows []models.Billing
		if err := tx.Where("customer_id = ?", customerID).Order("id").Find(&rows).Error; err != nil {
			return fmt.Errorf("reload line items: %w", err)
		}
		var total float64
		for _, r := range rows {
			total += r.Qty * r.Rate
		}
		if err := tx.Model(&detail).Updates(map[string]interface{}{
			"grand_total":  round2(total + in.Tax + in.Packing),
			"tax":          round2(in.Tax),
			"packaging":    round2(in.Packing),
			"total":        round2(total),
			"billing_date": billingDate,
		}).Error; err != nil {
			return fmt.Errorf("update billing detail: %w", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		w.log.Errorw("amend billing rolled back", "detail_id", detailID, "error", err)
	}
	return err
}
