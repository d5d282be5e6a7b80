package service

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ignatzorin/mebel-backend/internal/models"
)

const exportSheet = "Заявки"

var exportHeader = []interface{}{"ID", "Дата", "Услуга", "Имя", "Телефон", "Сообщение", "Статус", "Источник", "IP"}

// writeServiceRequestsXLSX пишет заявки в книгу Excel с одним листом.
func writeServiceRequestsXLSX(w io.Writer, items []models.ServiceRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, r := range items {
		row := []interface{}{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.ServiceTypeLabel(),
			r.Name,
			r.Phone,
			deref(r.Message),
			r.Status,
			deref(r.SourceURL),
			deref(r.IPAddress),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "I", 20); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
