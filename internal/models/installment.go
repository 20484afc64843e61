package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusActive    = "active"
	InstallmentStatusCompleted = "completed"
	// InstallmentStatusOverdue is never stored; it is derived at read time.
	InstallmentStatusOverdue = "overdue"
)

type InstallmentPurchase struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	ProductID         string          `json:"product_id"`
	TotalAmount       int64           `json:"total_amount"`
	InstallmentsCount int             `json:"installments_count"`
	PaidInstallments  int             `json:"paid_installments"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	NextPaymentDate   time.Time       `json:"next_payment_date"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

func (p *InstallmentPurchase) IsActive() bool {
	return p.Status == InstallmentStatusActive
}

func (p *InstallmentPurchase) EffectiveStatus(now time.Time) string {
	if p.IsActive() && now.After(p.NextPaymentDate) {
		return InstallmentStatusOverdue
	}
	return p.Status
}

// AmountDue returns the next payment. The final installment settles
// whatever rounding left over so payments sum to TotalAmount exactly.
func (p *InstallmentPurchase) AmountDue() decimal.Decimal {
	if p.PaidInstallments >= p.InstallmentsCount-1 {
		return decimal.NewFromInt(p.TotalAmount).Sub(p.PaidAmount)
	}
	return p.InstallmentAmount
}

// SplitInstallments truncates total/count to RewardPrecision. Rounding down
// keeps the final remainder at least as large as every earlier payment.
func SplitInstallments(total int64, count int) decimal.Decimal {
	q, _ := decimal.NewFromInt(total).QuoRem(decimal.NewFromInt(int64(count)), RewardPrecision)
	return q
}

type InstallmentView struct {
	InstallmentPurchase
	EffectiveStatus string          `json:"effective_status"`
	AmountDue       decimal.Decimal `json:"amount_due"`
}

// InstallmentRef is an entry of the global index scanned by the reminder
// worker.
type InstallmentRef struct {
	UserID     string `json:"user_id"`
	PurchaseID string `json:"purchase_id"`
}
