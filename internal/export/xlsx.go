// Package export writes a board column to an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/pipeline"
)

const dateLayout = "02/01/2006"

var columnHeaders = []string{"DNI", "Nombre", "Teléfono", "Empresa", "Supervisor", "Sede", "Fecha inicio", "Estado proceso", "Registrado"}

// Column renders the cards of one stage.
func Column(b *kanban.Board, st pipeline.Stage) (*bytes.Buffer, error) {
	if !st.OnBoard() {
		return nil, errors.Errorf("stage %s has no column", st)
	}
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("close xlsx file")
		}
	}()

	sheet := "Sheet1"
	row, err := writeHeader(f, sheet, 0, columnHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "write xlsx header")
	}
	cards := b.Column(st)
	if len(cards) != 0 {
		if _, err = writeCards(f, sheet, cards, row); err != nil {
			return nil, errors.Wrap(err, "write xlsx rows")
		}
	}
	if err := f.SetSheetName(sheet, st.Label()); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}
	return f.WriteToBuffer()
}

// WriteFile saves the column export under dir and returns the file path.
func WriteFile(dir string, b *kanban.Board, st pipeline.Stage, now time.Time) (string, error) {
	buf, err := Column(b, st)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create export dir")
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", st.Code(), now.Format("20060102_150405")))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", errors.Wrap(err, "write export file")
	}
	return path, nil
}

func writeCards(f *excelize.File, sheet string, cards []kanban.Card, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(columnHeaders), row+len(cards)); err != nil {
		return row, err
	}
	for _, c := range cards {
		row++
		startDate := ""
		if c.StartDate != nil {
			startDate = c.StartDate.Format(dateLayout)
		}
		registered := ""
		if !c.RegisteredAt.IsZero() {
			registered = c.RegisteredAt.Format(dateLayout)
		}
		values := []interface{}{c.DNI, c.Name, c.Phone, c.Company, c.Supervisor, c.Site, startDate, c.ProcessStatus, registered}
		for i, v := range values {
			if err := writeColumn(f, sheet, i+1, row, v); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}
