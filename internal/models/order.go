package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderType classifies how an order entered production.
type OrderType string

const (
	OrderTypeSample     OrderType = "sample"
	OrderTypeProduction OrderType = "production"
	OrderTypeOther      OrderType = "other"
)

// Order statuses treated as terminal when listing active work.
const (
	OrderStatusCompleted = "completed"
	OrderStatusArchived  = "archived"
)

// Order is a production or sample request for a batch of garments. Orders are
// created by the upstream order-management system; this service only reads them.
type Order struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       string     `gorm:"uniqueIndex" json:"orderId"`
	CustomerName  string     `json:"customerName"`
	StyleName     string     `json:"styleName"`
	StyleNumber   string     `json:"styleNumber"`
	Color         string     `json:"color"`
	OrderType     OrderType  `json:"orderType"`
	TotalQuantity int        `json:"totalQuantity"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	Status        string     `json:"status"`
	ProductionPO  string     `gorm:"index" json:"productionPo"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that populates the primary key.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// JobCard tracks one physical garment unit within an order. Serial numbers are
// unique per order and define the sequence operators handle the garments in.
type JobCard struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string    `gorm:"index:idx_job_cards_order_serial,unique" json:"orderId"`
	SerialNo  int       `gorm:"index:idx_job_cards_order_serial,unique" json:"serialNo"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that populates the primary key.
func (j *JobCard) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
