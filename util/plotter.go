package util

import (
	"fmt"
	"io"

	"booking-server/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// statusLevels maps a day status to a bar height.
var statusLevels = map[models.AvailabilityStatus]int{
	models.StatusSoldOut:   0,
	models.StatusUnknown:   1,
	models.StatusLimited:   2,
	models.StatusAvailable: 3,
}

// PlotAvailabilityCalendar renders the calendar as an HTML bar chart, one bar
// per day with its height set by the day's status.
func PlotAvailabilityCalendar(w io.Writer, title string, payload *models.CalendarPayload) error {
	dates := make([]string, 0, len(payload.Calendar))
	bars := make([]opts.BarData, 0, len(payload.Calendar))
	for _, day := range payload.Calendar {
		dates = append(dates, day.Date)
		bars = append(bars, opts.BarData{Name: string(day.Status), Value: statusLevels[day.Status]})
	}

	subtitle := fmt.Sprintf("source: %s", payload.Metadata.Source)
	if payload.Metadata.FirstAvailableDate != "" {
		subtitle += fmt.Sprintf(", first available: %s", payload.Metadata.FirstAvailableDate)
	}
	if payload.Metadata.Fallback {
		subtitle += ", fallback"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Availability Calendar",
			Width:     "1000px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{b}"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "status", Min: 0, Max: 3}),
	)
	bar.SetXAxis(dates).AddSeries("status", bars)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render calendar chart: %w", err)
	}
	return nil
}
