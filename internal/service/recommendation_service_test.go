package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reorderly/backend-go/internal/domain"
	"github.com/reorderly/backend-go/internal/engine"
)

func testService() *RecommendationService {
	clock := func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }
	return NewRecommendationService(engine.New(engine.WithClock(clock)))
}

const historyCSV = `SKU,Date,UnitsSold,OnHand,LeadTimeDays,MOQ,Cost
A1,2025-06-14,2,10,5,20,1.50
A1,2025-06-15,2,10,5,20,1.50
`

func TestComputeFromUpload_CSV(t *testing.T) {
	svc := testService()

	recs, err := svc.ComputeFromUpload(context.Background(), strings.NewReader(historyCSV), "history.csv", 30)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A1", recs[0].SKU)
	// raw = 2*(30+5) - 10 = 60, already a multiple of MOQ 20
	assert.Equal(t, 60.0, recs[0].ReorderQty)
}

func TestComputeFromUpload_MissingColumnsPropagates(t *testing.T) {
	svc := testService()

	_, err := svc.ComputeFromUpload(context.Background(), strings.NewReader("SKU,Date\nA1,2025-06-15\n"), "history.csv", 30)
	require.Error(t, err)

	var missingErr *domain.MissingColumnsError
	assert.ErrorAs(t, err, &missingErr)
}

func TestComputeFromUpload_BadCSV(t *testing.T) {
	svc := testService()

	_, err := svc.ComputeFromUpload(context.Background(), strings.NewReader(""), "history.csv", 30)
	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	svc := testService()

	recs, err := svc.ComputeFromUpload(context.Background(), strings.NewReader(historyCSV), "history.csv", 30)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(&buf, recs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "SKU,"))
	assert.True(t, strings.HasPrefix(lines[1], "A1,"))
	assert.Contains(t, lines[1], "RED")
}