//go:generate mockgen -source=repository.go -destination=mock/mock_repository.go -package=mock

package domain

import (
	"context"
	"net/url"
	"strconv"

	"github.com/smallbiznis/metr/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	ExistsByExternalReference(ctx context.Context, db *gorm.DB, externalReference string) (bool, error)
	ExistsByID(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, meter *Meter) error
	List(ctx context.Context, db *gorm.DB, filter Filter, opts ...option.QueryOption) ([]Meter, error)
	Count(ctx context.Context, db *gorm.DB, filter Filter) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Meter, error)
	Update(ctx context.Context, db *gorm.DB, meter *Meter) error
	DeleteByID(ctx context.Context, db *gorm.DB, id int64) (bool, error)
}

// Filter narrows a meter listing. Nil fields are ignored; the rest are
// combined with AND. Supply dates match rows on or after the given day.
type Filter struct {
	MeterID           *int64
	ExternalReference *string
	Enabled           *bool
	SupplyStartDate   *Date
	SupplyEndDate     *Date
	AnnualQuantity    *float64
}

// Values re-encodes the filter as query parameters.
func (f Filter) Values() url.Values {
	values := url.Values{}
	if f.MeterID != nil {
		values.Set(ColumnMeterID, strconv.FormatInt(*f.MeterID, 10))
	}
	if f.ExternalReference != nil {
		values.Set(ColumnExternalReference, *f.ExternalReference)
	}
	if f.Enabled != nil {
		values.Set(ColumnEnabled, strconv.FormatBool(*f.Enabled))
	}
	if f.SupplyStartDate != nil {
		values.Set(ColumnSupplyStartDate, f.SupplyStartDate.String())
	}
	if f.SupplyEndDate != nil {
		values.Set(ColumnSupplyEndDate, f.SupplyEndDate.String())
	}
	if f.AnnualQuantity != nil {
		values.Set(ColumnAnnualQuantity, strconv.FormatFloat(*f.AnnualQuantity, 'f', -1, 64))
	}
	return values
}

// Order is a validated sort column.
type Order struct {
	Column string
	Desc   bool
}

// DefaultOrder keeps pages stable when no order is requested.
var DefaultOrder = Order{Column: ColumnMeterID}

// ParseOrder accepts a column name, prefixed with '-' for descending.
func ParseOrder(raw string) (Order, error) {
	if raw == "" {
		return DefaultOrder, nil
	}
	order := Order{Column: raw}
	if raw[0] == '-' {
		order = Order{Column: raw[1:], Desc: true}
	}
	for _, column := range Columns {
		if column == order.Column {
			return order, nil
		}
	}
	return Order{}, ErrInvalidOrderBy
}

// String returns the order in order_by syntax.
func (o Order) String() string {
	if o.Desc {
		return "-" + o.Column
	}
	return o.Column
}
