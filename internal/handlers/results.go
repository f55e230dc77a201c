package handlers

import (
	"fmt"
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// List returns the user's treatment results in order.
func (h *ResultsHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	results, err := repository.GetTreatmentResults(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load treatment results", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load results"})
		return
	}

	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		out = append(out, gin.H{
			"treatmentNumber":       r.TreatmentNumber,
			"finalSuds":             r.FinalSuds,
			"improvementPercentage": r.ImprovementPercentage,
			"isImprovement":         r.IsImprovement,
			"completedAt":           r.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// Chart returns the SUDS trajectory as ECharts option JSON for the client to
// render.
func (h *ResultsHandler) Chart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	timeline, err := repository.GetSudsTimeline(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load SUDS timeline", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chart data"})
		return
	}

	line := generateSudsChart(timeline)
	c.JSON(http.StatusOK, line.JSON())
}

func generateSudsChart(data []repository.SudsTimelinePoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Distress Over Treatments",
			Subtitle: "SUDS (0-100)",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "Treatment",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(data))
	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		label := "Calibration"
		if point.TreatmentNumber > 0 {
			label = fmt.Sprintf("Treatment %d", point.TreatmentNumber)
		}
		labels = append(labels, label)
		items = append(items, opts.LineData{Value: point.Suds})
	}

	line.SetXAxis(labels)
	line.AddSeries("SUDS", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
