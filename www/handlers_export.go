package www

import (
	"log"
	"mime"
	"net/http"

	"shopfloor/records"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheet     = "Orders"
)

// handleExport downloads the filtered list as an XLSX workbook, with the
// same columns and display strings as the screen.
func (h *Handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := h.plantSession(r)
	plant, _ := sess.ActivePlant()
	screen, ok := h.engine.Catalog().Screen(chi.URLParam(r, "screen"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown screen")
		return
	}
	state, err := readFilterForm(r).State()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := h.engine.OpenScreen(r.Context(), sess, screen.ID)
	if err != nil {
		writeError(w, openStatus(err), openMessage(err))
		return
	}
	st.Apply(state)

	f, err := buildWorkbook(screen, st.Rows())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", exportDisposition(screen.ID, plant))
	if err := f.Write(w); err != nil {
		log.Printf("www: export %s: %v", screen.ID, err)
	}
}

// exportDisposition names the download after the screen and plant. The
// plant is user input, so it goes through mime quoting.
func exportDisposition(screenID, plant string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": screenID + "-" + plant + ".xlsx"})
}

func buildWorkbook(screen *records.Screen, rows []records.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#354A5F"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, col := range screen.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col.Label)
		f.SetCellStyle(exportSheet, cell, cell, header)
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, name, name, 18)
	}
	for r, row := range rows {
		for i, col := range screen.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(exportSheet, cell, row.Cell(col))
		}
	}
	if len(screen.Columns) > 0 {
		f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
	return f, nil
}
