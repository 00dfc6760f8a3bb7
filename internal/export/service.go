package export

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carverauto/srql/internal/domain"
	"github.com/carverauto/srql/internal/engine"
)

const sheetName = "Results"

// QueryExecutor is the engine surface the exporter depends on.
type QueryExecutor interface {
	Execute(ctx context.Context, req engine.Request) (domain.Envelope, error)
}

// Service renders query results into downloadable spreadsheet workbooks.
type Service struct {
	engine QueryExecutor
	now    func() time.Time
}

// NewService creates a result exporter.
func NewService(executor QueryExecutor) *Service {
	return &Service{engine: executor, now: time.Now}
}

// Export runs the query and renders its results as an .xlsx workbook,
// returning the file content and a suggested filename.
func (s *Service) Export(ctx context.Context, req engine.Request) ([]byte, string, error) {
	envelope, err := s.engine.Execute(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetName)

	headers := columnHeaders(envelope.Results)
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, result := range envelope.Results {
		for colIdx, header := range headers {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(result, header)); err != nil {
				return nil, "", fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("srql-export-%s.xlsx", s.now().UTC().Format("20060102-150405"))

	return buf.Bytes(), filename, nil
}

// columnHeaders derives the workbook's column set: the sorted union of row
// keys, or a single value column when results are bare scalars.
func columnHeaders(results []any) []string {
	keys := make(map[string]struct{})
	sawRow := false

	for _, result := range results {
		row, ok := result.(map[string]any)
		if !ok {
			continue
		}
		sawRow = true
		for key := range row {
			keys[key] = struct{}{}
		}
	}

	if !sawRow {
		return []string{"value"}
	}

	headers := make([]string, 0, len(keys))
	for key := range keys {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func cellValue(result any, header string) any {
	row, ok := result.(map[string]any)
	if !ok {
		if header == "value" {
			return flatten(result)
		}
		return ""
	}
	return flatten(row[header])
}

// flatten renders nested structures as JSON text so every cell holds a
// scalar the spreadsheet can display.
func flatten(value any) any {
	switch value.(type) {
	case nil:
		return ""
	case map[string]any, []any, []string:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return value
	}
}
