package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"

	"gorm.io/datatypes"
)

type TransactionExtra struct {
	// OperatorID is set when the transaction was recorded manually.
	OperatorID string `json:"operator_id,omitempty"`
	// ProductSnapshot freezes the product features at purchase time.
	ProductSnapshot *Product `json:"product_snapshot,omitempty"`
}

// Transaction is a purchase of one product by a customer. Renewal payments are
// child transactions pointing at the original purchase through ParentTransactionID.
type Transaction struct {
	ID          string                  `gorm:"column:id;primary_key;type:varchar(64);index:idx_customer_id_id,priority:2,sort:desc" json:"id"`
	CustomerID  string                  `gorm:"column:customer_id;type:varchar(64);not null;index:idx_customer_id_id,priority:1" json:"customer_id"`
	ProductID   string                  `gorm:"column:product_id;type:varchar(64);not null" json:"product_id"`
	ProviderID  types.PaymentProvider   `gorm:"column:provider_id;type:varchar(64);not null;uniqueIndex:unique_provider_id_external_id,priority:1" json:"provider_id"`
	ExternalID  string                  `gorm:"column:external_id;type:varchar(128);not null;uniqueIndex:unique_provider_id_external_id,priority:2" json:"external_id"`
	Status      types.TransactionStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Currency    string                  `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	Price       int64                   `gorm:"column:price;type:bigint;not null" json:"price"`
	RefundTotal int64                   `gorm:"column:refund_total;type:bigint;not null;default:0" json:"refund_total"`
	// ParentTransactionID links a renewal payment to the original purchase.
	ParentTransactionID *string    `gorm:"column:parent_transaction_id;type:varchar(64);index" json:"parent_transaction_id"`
	PurchaseAt          time.Time  `gorm:"column:purchase_at;default:null" json:"purchase_at"`
	RefundAt            *time.Time `gorm:"column:refund_at;default:null" json:"refund_at"`
	// RevocationDate marks a transaction voided by the provider, e.g. a chargeback.
	RevocationDate   *time.Time `gorm:"column:revocation_date;default:null" json:"revocation_date"`
	RevocationReason *string    `gorm:"column:revocation_reason;type:varchar(64);default:null" json:"revocation_reason"`

	Extra     datatypes.JSONType[*TransactionExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                             `json:"created_at"`
	UpdatedAt time.Time                             `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}

// Cleared reports whether the payment went through and was not taken back.
func (t *Transaction) Cleared() bool {
	return t != nil &&
		t.Status == types.TransactionStatusPaid &&
		t.RefundAt == nil &&
		t.RevocationDate == nil
}

func (t *Transaction) GetProductSnapshot() *Product {
	if t == nil || t.Extra.Data() == nil {
		return nil
	}
	return t.Extra.Data().ProductSnapshot
}
