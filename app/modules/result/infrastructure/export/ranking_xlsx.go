package resultexport

import (
	"bytes"
	"fmt"
	"strings"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/xuri/excelize/v2"
)

const rankingSheet = "Ranking"

// RankingWorkbook renders the ranked results of a round as a single-sheet XLSX
// file. Attempts and metrics are written in their display form.
func RankingWorkbook(round resultdomain.Round, ev resultdomain.Event, ranked []resultdomain.RankedResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), rankingSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"#", "Competitors", "Country"}
	for i := 1; i <= round.Format.Attempts(); i++ {
		header = append(header, fmt.Sprintf("%d", i))
	}
	header = append(header, "Best")
	if round.Format.HasAverage() {
		header = append(header, "Average")
	}
	header = append(header, "Single record", "Average record")
	if !round.IsFinal {
		header = append(header, "Proceeds")
	}
	if err := f.SetSheetRow(rankingSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range ranked {
		row := []interface{}{r.Ranking, strings.Join(r.CompetitorIDs, ", "), r.CountryCode}
		for j := 0; j < round.Format.Attempts(); j++ {
			cell := ""
			if j < len(r.Attempts) {
				cell = ev.Display(r.Attempts[j], false)
			}
			row = append(row, cell)
		}
		row = append(row, ev.Display(r.Best, false))
		if round.Format.HasAverage() {
			row = append(row, ev.Display(r.Average, true))
		}
		row = append(row, string(r.SingleRecordTier), string(r.AverageRecordTier))
		if !round.IsFinal {
			proceeds := ""
			if r.Proceeds {
				proceeds = "Q"
			}
			row = append(row, proceeds)
		}

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(rankingSheet, axis, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(rankingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
