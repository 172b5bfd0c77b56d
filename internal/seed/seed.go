package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	sampleMeterCount    = 25
	sampleFirstMeterID  = 1000001
	sampleReferenceBase = "SAMPLE-%04d"
)

// SampleMeters returns the fixture rows used for local development.
// Every third meter is disabled and every fourth has an end date.
func SampleMeters() []meterdomain.Meter {
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	meters := make([]meterdomain.Meter, 0, sampleMeterCount)
	for i := 0; i < sampleMeterCount; i++ {
		ref := fmt.Sprintf(sampleReferenceBase, i+1)
		m := meterdomain.Meter{
			MeterID:           int64(sampleFirstMeterID + i),
			ExternalReference: &ref,
			SupplyStartDate:   datatypes.Date(start.AddDate(0, i, 0)),
			Enabled:           i%3 != 2,
			AnnualQuantity:    float64(1000 + 250*i),
		}
		if i%4 == 3 {
			end := datatypes.Date(start.AddDate(1, i, -1))
			m.SupplyEndDate = &end
		}
		meters = append(meters, m)
	}
	return meters
}

// EnsureSampleMeters inserts the fixture rows that are not present yet and
// reports how many were added.
func EnsureSampleMeters(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}

	meters := SampleMeters()
	result := db.WithContext(context.Background()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&meters)
	if result.Error != nil {
		return 0, fmt.Errorf("seed sample meters: %w", result.Error)
	}
	return result.RowsAffected, nil
}
