package domain

import (
	"context"
	"strconv"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	GetByID(ctx context.Context, id int64) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id int64) error
}

type CreateRequest struct {
	MeterID           *int64
	ExternalReference *string
	SupplyStartDate   *Date
	SupplyEndDate     *Date
	Enabled           *bool
	AnnualQuantity    *float64
}

// UpdateRequest carries a partial update. ID is the meter addressed by the
// path; MeterID is the identifier repeated in the body and must match it.
type UpdateRequest struct {
	ID                int64
	MeterID           *int64
	ExternalReference Nullable[string]
	SupplyStartDate   *Date
	SupplyEndDate     Nullable[Date]
	Enabled           *bool
	AnnualQuantity    *float64
}

// ListRequest selects a page of meters. Nil Page or PageSize fall back to
// the configured defaults.
type ListRequest struct {
	Filter   Filter
	OrderBy  string
	Page     *int
	PageSize *int
	// BasePath prefixes the next_page link, normally the request's raw path.
	BasePath string
}

type Response struct {
	MeterID           int64   `json:"meter_id"`
	ExternalReference *string `json:"external_reference"`
	SupplyStartDate   Date    `json:"supply_start_date"`
	SupplyEndDate     *Date   `json:"supply_end_date"`
	Enabled           bool    `json:"enabled"`
	AnnualQuantity    float64 `json:"annual_quantity"`
}

type ListResponse struct {
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Meters   []Response `json:"meters"`
	NextPage *string    `json:"next_page"`
}

// CSVRecord renders the meter as one CSV row in Columns order.
func (r Response) CSVRecord() []string {
	ref := ""
	if r.ExternalReference != nil {
		ref = *r.ExternalReference
	}
	end := ""
	if r.SupplyEndDate != nil {
		end = r.SupplyEndDate.String()
	}
	return []string{
		strconv.FormatInt(r.MeterID, 10),
		ref,
		r.SupplyStartDate.String(),
		end,
		strconv.FormatBool(r.Enabled),
		strconv.FormatFloat(r.AnnualQuantity, 'f', -1, 64),
	}
}

func (r Response) CSVRecords() [][]string {
	return [][]string{r.CSVRecord()}
}

func (l ListResponse) CSVRecords() [][]string {
	rows := make([][]string, 0, len(l.Meters))
	for _, m := range l.Meters {
		rows = append(rows, m.CSVRecord())
	}
	return rows
}
