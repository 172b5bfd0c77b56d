package domain

import (
	"gorm.io/datatypes"
)

// Meter is a supply point with an annual consumption estimate.
type Meter struct {
	MeterID           int64           `gorm:"column:meter_id;primaryKey;autoIncrement:false"`
	ExternalReference *string         `gorm:"column:external_reference;type:varchar(32);uniqueIndex:ux_meter_external_reference"`
	SupplyStartDate   datatypes.Date  `gorm:"column:supply_start_date;not null"`
	SupplyEndDate     *datatypes.Date `gorm:"column:supply_end_date"`
	Enabled           bool            `gorm:"column:enabled;not null"`
	AnnualQuantity    float64         `gorm:"column:annual_quantity;not null"`
}

// TableName sets the database table name.
func (Meter) TableName() string { return "meter" }

// Column names, also the accepted values of order_by.
const (
	ColumnMeterID           = "meter_id"
	ColumnExternalReference = "external_reference"
	ColumnSupplyStartDate   = "supply_start_date"
	ColumnSupplyEndDate     = "supply_end_date"
	ColumnEnabled           = "enabled"
	ColumnAnnualQuantity    = "annual_quantity"
)

// Columns lists the meter columns in their serialized order.
var Columns = []string{
	ColumnMeterID,
	ColumnExternalReference,
	ColumnSupplyStartDate,
	ColumnSupplyEndDate,
	ColumnEnabled,
	ColumnAnnualQuantity,
}

// MaxExternalReferenceLength bounds external_reference.
const MaxExternalReferenceLength = 32

// ToResponse converts a stored meter into its API representation.
func (m *Meter) ToResponse() *Response {
	resp := &Response{
		MeterID:           m.MeterID,
		ExternalReference: m.ExternalReference,
		SupplyStartDate:   DateFromColumn(m.SupplyStartDate),
		Enabled:           m.Enabled,
		AnnualQuantity:    m.AnnualQuantity,
	}
	if m.SupplyEndDate != nil {
		end := DateFromColumn(*m.SupplyEndDate)
		resp.SupplyEndDate = &end
	}
	return resp
}
