package fuel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

func ptr(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	segs := []Segment{
		{Description: "Moca - Santiago", StartKmOdometer: 0, EndKmOdometer: 50},
		{Description: "Santiago - Moca", StartKmOdometer: 50, EndKmOdometer: 120},
	}
	s, err := Summarize(segs, true, 10, 2900)
	require.NoError(t, err)
	require.Equal(t, 120.0, s.TotalKm)
	require.Equal(t, 12.0, *s.KmPerGallon)
	require.Equal(t, 290.0, *s.CostPerGallon)

	s, err = Summarize(segs, false, 0, 0)
	require.NoError(t, err)
	require.Nil(t, s.KmPerGallon)
	require.Nil(t, s.CostPerGallon)
}

func TestSummarizeRejectsBadSegments(t *testing.T) {
	_, err := Summarize(nil, false, 0, 0)
	_, ok := validate.AsError(err)
	require.True(t, ok)

	_, err = Summarize([]Segment{{Description: "x", StartKmOdometer: 100, EndKmOdometer: 100}}, false, 0, 0)
	verr, ok := validate.AsError(err)
	require.True(t, ok)
	require.Equal(t, "segments[0].endKmOdometer", verr.Issues[0].Field)
}

func TestNormalizeRefuelRules(t *testing.T) {
	_, err := Normalize(Entry{
		Date:            "2025-05-02",
		Segments:        []Segment{{Description: "Ruta", StartKmOdometer: 10, EndKmOdometer: 60}},
		RefueledThisLog: true,
		GallonsAdded:    ptr(0),
	})
	verr, ok := validate.AsError(err)
	require.True(t, ok)
	fields := []string{}
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	require.Contains(t, fields, "gallonsAdded")
	require.Contains(t, fields, "totalFuelCost")
}

func TestServiceMonthReport(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()
	_, err := svc.Create(ctx, Entry{
		Date:            "2025-05-02",
		Vehicle:         "Camión",
		Segments:        []Segment{{Description: "Ruta", StartKmOdometer: 10, EndKmOdometer: 130}},
		RefueledThisLog: true,
		GallonsAdded:    ptr(10),
		TotalFuelCost:   ptr(2900),
		FuelType:        "Diesel",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Entry{
		Date:     "2025-05-10",
		Segments: []Segment{{Description: "Ruta", StartKmOdometer: 130, EndKmOdometer: 210}},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Entry{
		Date:     "2025-06-01",
		Segments: []Segment{{Description: "Ruta", StartKmOdometer: 210, EndKmOdometer: 250}},
	})
	require.NoError(t, err)

	totals, entries, err := svc.MonthReport(ctx, "2025-05")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "2025-05-10", entries[0].Date)
	require.Equal(t, 200.0, totals.TotalKm)
	require.Equal(t, 20.0, *totals.AverageKmpg)
	require.Equal(t, 1, totals.RefuelCount)
	require.Equal(t, 80.0, entries[0].Segments[0].SegmentKm)

	pdf, err := RenderMonthPDF(totals, entries)
	require.NoError(t, err)
	require.Equal(t, "%PDF-", string(pdf[:5]))
}
