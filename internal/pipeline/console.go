package pipeline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/exporter"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// Console prints the human-readable progress of a run.
// Structured logs go through slog; this is the operator-facing text.
type Console struct {
	w     io.Writer
	quiet bool
}

// NewConsole creates a console writing to w; quiet suppresses everything
func NewConsole(w io.Writer, quiet bool) *Console {
	if w == nil {
		w = io.Discard
	}
	return &Console{w: w, quiet: quiet}
}

// Printf writes formatted text
func (c *Console) Printf(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, format, args...)
}

// Errorf writes formatted text even in quiet mode
func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...)
}

// Section prints a "=== title ===" heading
func (c *Console) Section(title string) {
	c.Printf("\n=== %s ===\n", title)
}

// Table renders headers and rows as an aligned table
func (c *Console) Table(headers []string, rows [][]string) error {
	if c.quiet {
		return nil
	}

	table := tablewriter.NewTable(c.w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignRight,
				},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{
					Global: tw.AlignRight,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// DatasetOverview prints the leading records and the dataset shape
func (c *Console) DatasetOverview(ds domain.Dataset, previewRows int) error {
	c.Printf("\nDataset Overview:\n")

	head := ds.Head(previewRows)
	rows := make([][]string, len(head))
	for i, r := range head {
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.MarketSize, 'f', -1, 64),
			strconv.FormatFloat(r.AdoptionRate, 'f', -1, 64),
		}
	}
	if err := c.Table(append([]string{""}, config.InputColumns...), rows); err != nil {
		return err
	}

	c.Printf("\nData shape: (%d, %d)\n", ds.Len(), len(config.InputColumns))
	return nil
}

// ModelScores prints the R² of both trend models
func (c *Console) ModelScores(marketR2, adoptionR2 float64) {
	c.Printf("Market Size Model R² Score: %.4f\n", marketR2)
	c.Printf("Adoption Rate Model R² Score: %.4f\n", adoptionR2)
}

// Predictions prints the projected values
func (c *Console) Predictions(preds []domain.ForecastRecord) error {
	c.Printf("Future Predictions:\n")

	rows := make([][]string, len(preds))
	for i, p := range preds {
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Itoa(p.Year),
			strconv.FormatFloat(exporter.Round(p.PredictedMarketSize, config.PredictionPrecision), 'f', config.PredictionPrecision, 64),
			strconv.FormatFloat(exporter.Round(p.PredictedAdoptionRate, config.PredictionPrecision), 'f', config.PredictionPrecision, 64),
		}
	}
	return c.Table([]string{"", config.ColumnYear, config.ColumnPredictedMarketSize, config.ColumnPredictedAdoptionRate}, rows)
}

// FilesGenerated prints the list of written files
func (c *Console) FilesGenerated(files []string) {
	c.Printf("Files generated:\n")
	for _, f := range files {
		c.Printf("- %s\n", f)
	}
}
