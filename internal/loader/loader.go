package loader

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/infrastructure"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// Loader reads the historical market CSV into a typed dataset
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a loader. A nil logger falls back to the global logger.
func New(logger *slog.Logger) *Loader {
	return &Loader{
		logger:   infrastructure.WithComponent(logger, "loader"),
		validate: validator.New(),
	}
}

// LoadFile reads and validates the dataset at path.
// A missing file yields a NOT_FOUND error and nothing else is attempted.
func (l *Loader) LoadFile(ctx context.Context, path string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("input file", err).WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to stat input file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return nil, apperrors.NewStorageError("input path is a directory", nil).WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open input file", err).WithContext("path", path)
	}
	defer file.Close()

	dataset, err := l.Parse(file)
	if err != nil {
		return nil, err
	}

	if err := ValidateDataset(dataset); err != nil {
		return nil, err
	}

	if gaps := Gaps(dataset); len(gaps) > 0 {
		l.logger.WarnContext(ctx, "dataset has missing years",
			slog.String("file", filepath.Base(path)),
			slog.Any("missing_years", gaps))
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("file", filepath.Base(path)),
		slog.Int("records", dataset.Len()),
		slog.Int("first_year", dataset.FirstYear()),
		slog.Int("last_year", dataset.LastYear()))

	return dataset, nil
}

// Parse reads CSV text with a Year, MarketSize and AdoptionRate header.
// Column order is free and extra columns are ignored.
func (l *Loader) Parse(r io.Reader) (domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewSchemaError("input has no header row")
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err).WithContext("line", 1)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var dataset domain.Dataset
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				return nil, apperrors.NewParsingError("malformed CSV", err).WithContext("line", parseErr.Line)
			}
			return nil, apperrors.NewParsingError("malformed CSV", err)
		}

		line, _ := reader.FieldPos(0)
		record, err := parseRecord(row, index, line)
		if err != nil {
			return nil, err
		}

		if err := l.validate.Struct(record); err != nil {
			return nil, apperrors.NewAppValidationError(describeValidation(err)).
				WithContext("line", line).
				WithContext("year", record.Year)
		}

		dataset = append(dataset, record)
	}

	l.logger.Debug("parsed CSV", slog.Int("records", len(dataset)))
	return dataset, nil
}

// columnIndex maps each required column to its position in header
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range config.InputColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))).
			WithContext("missing", missing)
	}

	return index, nil
}

func parseRecord(row []string, index map[string]int, line int) (domain.MarketRecord, error) {
	field := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	year, err := parseYear(field(config.ColumnYear))
	if err != nil {
		return domain.MarketRecord{}, fieldError(config.ColumnYear, field(config.ColumnYear), line, err)
	}

	marketSize, err := parseNumber(field(config.ColumnMarketSize))
	if err != nil {
		return domain.MarketRecord{}, fieldError(config.ColumnMarketSize, field(config.ColumnMarketSize), line, err)
	}

	adoptionRate, err := parseNumber(field(config.ColumnAdoptionRate))
	if err != nil {
		return domain.MarketRecord{}, fieldError(config.ColumnAdoptionRate, field(config.ColumnAdoptionRate), line, err)
	}

	return domain.MarketRecord{
		Year:         year,
		MarketSize:   marketSize,
		AdoptionRate: adoptionRate,
	}, nil
}

func fieldError(column, value string, line int, cause error) error {
	return apperrors.NewParsingError(fmt.Sprintf("invalid %s value %q on line %d", column, value, line), cause).
		WithContext("line", line).
		WithContext("column", column)
}

// parseYear accepts integers and integral floats such as "2020.0"
func parseYear(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("year %v is not a whole number", v)
	}
	return int(v), nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, stderrors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s=%v violates %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// ValidateDataset rejects empty datasets and years that are not strictly increasing
func ValidateDataset(ds domain.Dataset) error {
	if ds.Len() == 0 {
		return apperrors.NewAppValidationError("dataset is empty")
	}

	for i := 1; i < len(ds); i++ {
		prev, cur := ds[i-1].Year, ds[i].Year
		switch {
		case cur == prev:
			return apperrors.NewAppValidationError(fmt.Sprintf("duplicate year %d", cur)).
				WithContext("year", cur)
		case cur < prev:
			return apperrors.NewAppValidationError(
				fmt.Sprintf("years are not in increasing order: %d follows %d", cur, prev)).
				WithContext("year", cur)
		}
	}

	return nil
}

// Gaps returns the years missing between consecutive records
func Gaps(ds domain.Dataset) []int {
	var gaps []int
	for i := 1; i < len(ds); i++ {
		for y := ds[i-1].Year + 1; y < ds[i].Year; y++ {
			gaps = append(gaps, y)
		}
	}
	return gaps
}
