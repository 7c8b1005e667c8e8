package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/codyseavey/tcg-search/internal/models"
)

const exportSheet = "Collection"

var exportHeaders = []string{"#", "Name", "Set", "Number", "Rarity", "Provider", "Card ID", "Price (USD)", "Added"}

// ExportCollection writes the collection as an xlsx workbook. Priceless
// cards get "no price" in the price column rather than 0.
func ExportCollection(w io.Writer, views []models.CollectionEntryView, value models.CollectionValue) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range exportHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return err
		}
	}

	for i, v := range views {
		row := i + 2
		card := v.Entry.Card
		var price any = "no price"
		if v.Price != nil {
			price = *v.Price
		}
		values := []any{
			v.Index,
			card.Name,
			card.SetName,
			card.Number,
			card.Rarity,
			string(card.Provider),
			card.ID,
			price,
			v.Entry.AddedAt.Format("2006-01-02"),
		}
		for col, val := range values {
			if err := setCell(f, col+1, row, val); err != nil {
				return err
			}
		}
	}

	totalRow := len(views) + 3
	if err := setCell(f, 7, totalRow, "Total"); err != nil {
		return err
	}
	if err := setCell(f, 8, totalRow, value.TotalValue); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(exportSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
