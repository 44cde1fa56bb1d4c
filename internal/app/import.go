package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

type importRecordsFile struct {
	Records []importRecord `json:"records"`
}

type importRecord struct {
	SystemTag      string  `json:"system_tag"`
	Date           string  `json:"date"`
	NAV            float64 `json:"nav"`
	PortfolioValue float64 `json:"portfolio_value"`
	CapitalInOut   float64 `json:"capital_in_out"`
	PnL            float64 `json:"pnl"`
	Drawdown       float64 `json:"drawdown"`
	Dividend       float64 `json:"dividend"`
}

// ImportRecordsFromFile reads a records JSON file and upserts it into the
// store. Rows without a tag or with an unparseable date are skipped with a
// warning. Returns the number of records written.
func ImportRecordsFromFile(ctx context.Context, store interfaces.RecordBackend, logger *common.Logger, filePath string) (int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read records file %s: %w", filePath, err)
	}

	var file importRecordsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse records file %s: %w", filePath, err)
	}

	records := make([]models.DailyRecord, 0, len(file.Records))
	for i, r := range file.Records {
		if r.SystemTag == "" {
			logger.Warn().Int("row", i).Msg("Skipping imported record without system_tag")
			continue
		}
		date, err := models.ParseDate(r.Date)
		if err != nil {
			logger.Warn().Err(err).Int("row", i).Str("system_tag", r.SystemTag).Msg("Skipping imported record with bad date")
			continue
		}
		records = append(records, models.DailyRecord{
			SystemTag:      r.SystemTag,
			Date:           date,
			NAV:            r.NAV,
			PortfolioValue: r.PortfolioValue,
			CapitalInOut:   r.CapitalInOut,
			PnL:            r.PnL,
			Drawdown:       r.Drawdown,
			Dividend:       r.Dividend,
		})
	}

	if len(records) == 0 {
		return 0, nil
	}
	if err := store.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store imported records: %w", err)
	}
	return len(records), nil
}
