package exporter

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/infrastructure"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// Trend is a fitted line that can be drawn across the chart
type Trend interface {
	Predict(x float64) float64
}

var (
	historicalColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	trendColor      = color.RGBA{R: 80, G: 80, B: 80, A: 255}
)

// ChartExporter renders the market size and adoption rate trends as a PNG
type ChartExporter struct {
	logger *slog.Logger
	width  vg.Length
	height vg.Length
}

// NewChartExporter creates a new chart exporter
func NewChartExporter(logger *slog.Logger) *ChartExporter {
	return &ChartExporter{
		logger: infrastructure.WithComponent(logger, "chart_exporter"),
		width:  10 * vg.Inch,
		height: 8 * vg.Inch,
	}
}

// Export draws two stacked panels, one per target, with the observed points,
// the projected points and the fitted line spanning both.
func (c *ChartExporter) Export(path string, ds domain.Dataset, preds []domain.ForecastRecord, market, adoption Trend) error {
	if ds.Len() == 0 {
		return apperrors.NewAppValidationError("cannot chart an empty dataset")
	}

	xMin := float64(ds.FirstYear())
	xMax := float64(ds.LastYear())
	if len(preds) > 0 {
		xMax = float64(preds[len(preds)-1].Year)
	}

	marketPlot, err := trendPlot("AI Market Size Trend", "Market Size",
		ds, preds,
		func(r domain.MarketRecord) float64 { return r.MarketSize },
		func(p domain.ForecastRecord) float64 { return p.PredictedMarketSize },
		market, xMin, xMax)
	if err != nil {
		return apperrors.NewStorageError("failed to build market size chart", err)
	}

	adoptionPlot, err := trendPlot("AI Adoption Rate Trend", "Adoption Rate (%)",
		ds, preds,
		func(r domain.MarketRecord) float64 { return r.AdoptionRate },
		func(p domain.ForecastRecord) float64 { return p.PredictedAdoptionRate },
		adoption, xMin, xMax)
	if err != nil {
		return apperrors.NewStorageError("failed to build adoption rate chart", err)
	}

	img := vgimg.New(c.width, c.height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      5 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	plots := [][]*plot.Plot{{marketPlot}, {adoptionPlot}}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create chart file", err).WithContext("path", path)
	}
	defer file.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		return apperrors.NewStorageError("failed to encode chart", err).WithContext("path", path)
	}
	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("failed to close chart file", err).WithContext("path", path)
	}

	c.logger.Info("Trend chart written", slog.String("path", path))
	return nil
}

func trendPlot(
	title, yLabel string,
	ds domain.Dataset,
	preds []domain.ForecastRecord,
	observed func(domain.MarketRecord) float64,
	predicted func(domain.ForecastRecord) float64,
	model Trend,
	xMin, xMax float64,
) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, len(ds))
	for i, r := range ds {
		points[i].X = float64(r.Year)
		points[i].Y = observed(r)
	}
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = historicalColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(4)
	p.Add(scatter)
	p.Legend.Add("Historical", scatter)

	if model != nil {
		line := plotter.NewFunction(model.Predict)
		line.XMin = xMin
		line.XMax = xMax
		line.Samples = 2
		line.Color = trendColor
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(line)
		p.Legend.Add("Linear trend", line)
	}

	if len(preds) > 0 {
		forecast := make(plotter.XYs, len(preds))
		for i, pr := range preds {
			forecast[i].X = float64(pr.Year)
			forecast[i].Y = predicted(pr)
		}
		fs, err := plotter.NewScatter(forecast)
		if err != nil {
			return nil, err
		}
		fs.GlyphStyle.Color = forecastColor
		fs.GlyphStyle.Shape = draw.TriangleGlyph{}
		fs.GlyphStyle.Radius = vg.Points(4)
		p.Add(fs)
		p.Legend.Add("Predicted", fs)
	}

	p.X.Min = xMin - 0.5
	p.X.Max = xMax + 0.5

	return p, nil
}
