package resultexport

import (
	"bytes"
	"testing"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func mustEvent(t *testing.T, id string) resultdomain.Event {
	t.Helper()
	ev, err := resultdomain.LookupEvent(id)
	require.NoError(t, err)
	return ev
}

func TestRankingWorkbook(t *testing.T) {
	ev := mustEvent(t, "333")
	round := resultdomain.Round{
		ID:      uuid.New(),
		EventID: "333",
		Format:  resultdomain.Average5,
		Proceed: &resultdomain.ProceedRule{Type: resultdomain.ProceedNumber, Value: 1},
	}
	ranked := []resultdomain.RankedResult{
		{
			Result: resultdomain.Result{
				CompetitorIDs:     []string{"2016KOLA02"},
				Attempts:          []resultdomain.Attempt{712, 655, resultdomain.DNF, 701, 688},
				Location:          resultdomain.Location{CountryCode: "AU", ContinentCode: "OC"},
				Best:              655,
				Average:           700,
				AverageRecordTier: resultdomain.TierContinental,
			},
			Ranking:  1,
			Proceeds: true,
		},
		{
			Result: resultdomain.Result{
				CompetitorIDs: []string{"2019WANY36"},
				Attempts:      []resultdomain.Attempt{7512, 0, 0, 0, 0},
				Location:      resultdomain.Location{CountryCode: "CN", ContinentCode: "AS"},
				Best:          7512,
			},
			Ranking: 2,
		},
	}

	data, err := RankingWorkbook(round, ev, ranked)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Competitors", "Country", "1", "2", "3", "4", "5", "Best", "Average", "Single record", "Average record", "Proceeds"}, rows[0])
	assert.Equal(t, []string{"1", "2016KOLA02", "AU", "7.12", "6.55", "DNF", "7.01", "6.88", "6.55", "7.00", "", "CR", "Q"}, rows[1])
	// GetRows trims trailing empty cells.
	assert.Equal(t, []string{"2", "2019WANY36", "CN", "1:15.12", "", "", "", "", "1:15.12"}, rows[2])
}

func TestRankingWorkbook_FinalHasNoProceedsColumn(t *testing.T) {
	ev := mustEvent(t, "333fm")
	round := resultdomain.Round{Format: resultdomain.Mean3, IsFinal: true}

	data, err := RankingWorkbook(round, ev, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "Proceeds")
	assert.Contains(t, rows[0], "Average")
}

func TestProgressionChart(t *testing.T) {
	ev := mustEvent(t, "333")
	history := []resultdomain.Result{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Best: 347},
		{Date: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), Best: 313},
		{Date: time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), Best: 305},
	}

	tests := []struct {
		name    string
		history []resultdomain.Result
	}{
		{name: "progression", history: history},
		{name: "single record renders a placeholder", history: history[:1]},
		{name: "no records renders a placeholder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ProgressionChart(ev, resultdomain.MetricSingle, resultdomain.Region{}, tt.history, DefaultPalette)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, pngMagic), "expected PNG output")
		})
	}
}

func TestPlotValue(t *testing.T) {
	tests := []struct {
		event  string
		metric resultdomain.Metric
		value  resultdomain.Attempt
		want   float64
	}{
		{event: "333", metric: resultdomain.MetricSingle, value: 1234, want: 12.34},
		{event: "333", metric: resultdomain.MetricAverage, value: 1234, want: 12.34},
		{event: "333fm", metric: resultdomain.MetricSingle, value: 22, want: 22},
		{event: "333fm", metric: resultdomain.MetricAverage, value: 2433, want: 24.33},
		{event: "333mbf", metric: resultdomain.MetricSingle, value: 59, want: 59},
	}
	for _, tt := range tests {
		got := plotValue(mustEvent(t, tt.event), tt.metric, tt.value)
		assert.InDelta(t, tt.want, got, 1e-9, "%s %s", tt.event, tt.metric)
	}
}
