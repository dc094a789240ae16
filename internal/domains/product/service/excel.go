package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"ID",
	"Name",
	"Slug",
	"Brand",
	"Category",
	"Price",
	"Stock",
	"Image",
	"Description",
	"Created At",
}

// Column positions shared by export and import (1-based)
const (
	colName        = 2
	colBrand       = 4
	colCategory    = 5
	colPrice       = 6
	colStock       = 7
	colImage       = 8
	colDescription = 9
)

func (s *ProductService) ExportExcel(ctx context.Context) (*excelize.File, error) {
	products, _, err := s.repo.List(ctx, model.Filter{Limit: model.MaxExportRows})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	f, err := buildProductsExcelFile(products)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildProductsExcelFile(products []model.Product) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := model.ExportSheetName
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	// Row 1: Header
	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(sheetName, "A1", lastCell, headerStyle)
	}

	// Data rows start at row 2
	for i, p := range products {
		rowNum := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		price, _ := p.Price.Float64()

		f.SetCellValue(sheetName, cell(1), p.ID.String())
		f.SetCellValue(sheetName, cell(colName), p.Name)
		f.SetCellValue(sheetName, cell(3), p.Slug)
		f.SetCellValue(sheetName, cell(colBrand), p.Brand)
		f.SetCellValue(sheetName, cell(colCategory), p.Category)
		f.SetCellValue(sheetName, cell(colPrice), price)
		f.SetCellValue(sheetName, cell(colStock), p.Stock)
		f.SetCellValue(sheetName, cell(colImage), p.Image)
		f.SetCellValue(sheetName, cell(colDescription), p.Description)
		f.SetCellValue(sheetName, cell(10), p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return f, nil
}

// ImportExcel reads the first sheet. Rows that fail validation are reported,
// the rest are inserted in one transaction; existing slugs are skipped.
func (s *ProductService) ImportExcel(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", model.ErrInvalidImport)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidImport, err)
	}

	result := &model.ImportResult{}
	var batch []*model.Product
	seen := make(map[string]bool)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNum := i + 1

		req, err := parseImportRow(row)
		if err == nil {
			err = req.Validate()
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		p := &model.Product{ID: uuid.New()}
		applyRequest(p, req)
		if seen[p.Slug] {
			result.Skipped++
			continue
		}
		seen[p.Slug] = true
		batch = append(batch, p)
	}

	if len(batch) == 0 {
		return result, nil
	}

	created, err := s.repo.CreateBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to import products: %w", err)
	}
	result.Created = created
	result.Skipped += len(batch) - created

	s.invalidateList(ctx)
	logger.Info("products imported", map[string]interface{}{
		"created": result.Created,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	})
	return result, nil
}

func parseImportRow(row []string) (model.ProductRequest, error) {
	get := func(col int) string {
		if col-1 < len(row) {
			return strings.TrimSpace(row[col-1])
		}
		return ""
	}

	price, err := decimal.NewFromString(get(colPrice))
	if err != nil {
		return model.ProductRequest{}, fmt.Errorf("invalid price %q", get(colPrice))
	}

	stock := 0
	if raw := get(colStock); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil {
			return model.ProductRequest{}, fmt.Errorf("invalid stock %q", raw)
		}
	}

	return model.ProductRequest{
		Name:        get(colName),
		Price:       price.Round(2),
		Description: get(colDescription),
		Image:       get(colImage),
		Brand:       get(colBrand),
		Category:    get(colCategory),
		Stock:       stock,
	}, nil
}
