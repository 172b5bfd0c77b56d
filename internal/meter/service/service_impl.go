package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metr/internal/config"
	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	obslogger "github.com/smallbiznis/metr/internal/observability/logger"
	"github.com/smallbiznis/metr/internal/observability/metrics"
	"github.com/smallbiznis/metr/pkg/db"
	"github.com/smallbiznis/metr/pkg/db/option"
	"github.com/smallbiznis/metr/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultBasePath = "/meters"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    meterdomain.Repository
	Listing *config.ListingConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    meterdomain.Repository
	genID   *snowflake.Node
	listing *config.ListingConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) meterdomain.Service {
	listing := p.Listing
	if listing == nil {
		listing = config.NewStaticListingConfigHolder(config.DefaultListingConfig())
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("meter.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		listing: listing,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req meterdomain.CreateRequest) (resp *meterdomain.Response, err error) {
	defer func() { s.record(ctx, "create", err) }()

	if missing := missingCreateFields(req); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", meterdomain.ErrMissingFields, strings.Join(missing, ", "))
	}
	if *req.AnnualQuantity <= 0 {
		return nil, meterdomain.ErrInvalidAnnualQuantity
	}
	ref, err := normalizeReference(req.ExternalReference)
	if err != nil {
		return nil, err
	}
	if req.SupplyEndDate != nil && req.SupplyEndDate.Before(req.SupplyStartDate.Time) {
		return nil, meterdomain.ErrInvalidSupplyRange
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	m := &meterdomain.Meter{
		ExternalReference: ref,
		SupplyStartDate:   req.SupplyStartDate.Column(),
		Enabled:           enabled,
		AnnualQuantity:    *req.AnnualQuantity,
	}
	if req.SupplyEndDate != nil {
		end := req.SupplyEndDate.Column()
		m.SupplyEndDate = &end
	}
	if req.MeterID != nil {
		if *req.MeterID <= 0 {
			return nil, meterdomain.ErrInvalidID
		}
		m.MeterID = *req.MeterID
	} else {
		m.MeterID = s.genID.Generate().Int64()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.MeterID != nil {
			exists, err := s.repo.ExistsByID(ctx, tx, m.MeterID)
			if err != nil {
				return err
			}
			if exists {
				return meterdomain.ErrDuplicateMeterID
			}
		}
		if ref != nil {
			exists, err := s.repo.ExistsByExternalReference(ctx, tx, *ref)
			if err != nil {
				return err
			}
			if exists {
				return meterdomain.ErrDuplicateExternalReference
			}
		}
		if err := s.repo.Insert(ctx, tx, m); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return duplicateError(ref)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.unexpected(ctx, "create meter", err)
	}

	obslogger.WithMeter(obslogger.WithContext(ctx, s.log), m.MeterID).Info("meter created")
	return m.ToResponse(), nil
}

func (s *Service) List(ctx context.Context, req meterdomain.ListRequest) (resp *meterdomain.ListResponse, err error) {
	defer func() { s.record(ctx, "list", err) }()

	listing := s.listing.Get()
	page := pagination.Pagination{Page: listing.DefaultPage, PageSize: listing.DefaultPageSize}
	if req.Page != nil {
		page.Page = *req.Page
	}
	if req.PageSize != nil {
		page.PageSize = *req.PageSize
	}
	if page.Page < 1 {
		return nil, meterdomain.ErrInvalidPage
	}
	if page.PageSize < 1 || page.PageSize > listing.MaxPageSize {
		return nil, fmt.Errorf("%w: must be between 1 and %d", meterdomain.ErrInvalidPageSize, listing.MaxPageSize)
	}
	if !page.InRange() {
		return nil, fmt.Errorf("%w: page is too large", meterdomain.ErrInvalidPage)
	}

	order, err := meterdomain.ParseOrder(strings.TrimSpace(req.OrderBy))
	if err != nil {
		return nil, err
	}
	opts := []option.QueryOption{option.WithOrder(order.Column, order.Desc)}
	if order.Column != meterdomain.ColumnMeterID {
		opts = append(opts, option.WithOrder(meterdomain.ColumnMeterID, false))
	}
	opts = append(opts, page.Options()...)

	var (
		total int64
		items []meterdomain.Meter
	)
	err = s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var err error
		if total, err = s.repo.Count(ctx, conn, req.Filter); err != nil {
			return err
		}
		items, err = s.repo.List(ctx, conn, req.Filter, opts...)
		return err
	})
	if err != nil {
		return nil, s.unexpected(ctx, "list meters", err)
	}

	meters := make([]meterdomain.Response, 0, len(items))
	for i := range items {
		meters = append(meters, *items[i].ToResponse())
	}
	s.metrics.RecordListPage(ctx, len(meters))

	basePath := strings.TrimSpace(req.BasePath)
	if basePath == "" {
		basePath = defaultBasePath
	}
	extra := req.Filter.Values()
	if req.OrderBy != "" {
		extra.Set("order_by", order.String())
	}

	return &meterdomain.ListResponse{
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Meters:   meters,
		NextPage: pagination.NextPageLink(basePath, page, total, extra),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (resp *meterdomain.Response, err error) {
	defer func() { s.record(ctx, "get", err) }()

	var item *meterdomain.Meter
	err = s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var err error
		item, err = s.repo.FindByID(ctx, conn, id)
		return err
	})
	if err != nil {
		return nil, s.unexpected(ctx, "get meter", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", meterdomain.ErrNotFound, id)
	}
	return item.ToResponse(), nil
}

func (s *Service) Update(ctx context.Context, req meterdomain.UpdateRequest) (resp *meterdomain.Response, err error) {
	defer func() { s.record(ctx, "update", err) }()

	if req.MeterID == nil || *req.MeterID != req.ID {
		return nil, meterdomain.ErrIDMismatch
	}
	if req.AnnualQuantity != nil && *req.AnnualQuantity <= 0 {
		return nil, meterdomain.ErrInvalidAnnualQuantity
	}

	var item *meterdomain.Meter
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: id %d", meterdomain.ErrNotFound, req.ID)
		}

		if req.ExternalReference.Set {
			ref, err := normalizeReference(req.ExternalReference.Ptr())
			if err != nil {
				return err
			}
			if ref != nil && !sameReference(item.ExternalReference, *ref) {
				exists, err := s.repo.ExistsByExternalReference(ctx, tx, *ref)
				if err != nil {
					return err
				}
				if exists {
					return meterdomain.ErrDuplicateExternalReference
				}
			}
			item.ExternalReference = ref
		}
		if req.SupplyStartDate != nil {
			item.SupplyStartDate = req.SupplyStartDate.Column()
		}
		if req.SupplyEndDate.Set {
			item.SupplyEndDate = nil
			if end := req.SupplyEndDate.Ptr(); end != nil {
				col := end.Column()
				item.SupplyEndDate = &col
			}
		}
		if req.Enabled != nil {
			item.Enabled = *req.Enabled
		}
		if req.AnnualQuantity != nil {
			item.AnnualQuantity = *req.AnnualQuantity
		}

		if item.SupplyEndDate != nil {
			start := meterdomain.DateFromColumn(item.SupplyStartDate)
			end := meterdomain.DateFromColumn(*item.SupplyEndDate)
			if end.Before(start.Time) {
				return meterdomain.ErrInvalidSupplyRange
			}
		}

		if err := s.repo.Update(ctx, tx, item); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return meterdomain.ErrDuplicateExternalReference
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.unexpected(ctx, "update meter", err)
	}

	return item.ToResponse(), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.record(ctx, "delete", err) }()

	var deleted bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = s.repo.DeleteByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return s.unexpected(ctx, "delete meter", err)
	}
	if !deleted {
		return meterdomain.ErrNotExist
	}

	obslogger.WithMeter(obslogger.WithContext(ctx, s.log), id).Info("meter deleted")
	return nil
}

// unexpected logs storage failures; client errors pass through untouched.
func (s *Service) unexpected(ctx context.Context, op string, err error) error {
	if meterdomain.IsClientError(err) {
		return err
	}
	obslogger.WithContext(ctx, s.log).Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) record(ctx context.Context, operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case meterdomain.IsClientError(err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.RecordMeterOperation(ctx, operation, outcome)
}

func missingCreateFields(req meterdomain.CreateRequest) []string {
	var missing []string
	if req.SupplyStartDate == nil {
		missing = append(missing, meterdomain.ColumnSupplyStartDate)
	}
	if req.AnnualQuantity == nil {
		missing = append(missing, meterdomain.ColumnAnnualQuantity)
	}
	return missing
}

// normalizeReference trims the reference; blank references are stored as NULL
// so they never collide on the unique index.
func normalizeReference(ref *string) (*string, error) {
	if ref == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*ref)
	if value == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(value) > meterdomain.MaxExternalReferenceLength {
		return nil, meterdomain.ErrInvalidExternalReference
	}
	return &value, nil
}

func sameReference(current *string, next string) bool {
	return current != nil && *current == next
}

// duplicateError picks the constraint an insert most likely raced on. Drivers
// translated by gorm do not name the index, so a supplied reference wins.
func duplicateError(ref *string) error {
	if ref != nil {
		return meterdomain.ErrDuplicateExternalReference
	}
	return meterdomain.ErrDuplicateMeterID
}
