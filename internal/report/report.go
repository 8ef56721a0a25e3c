// Package report exports evaluation syntheses of a job offer to an xlsx workbook.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/seeg/onehcm/internal/synthesis"
)

const (
	SummarySheet    = "Synthese"
	CandidatesSheet = "Candidats"
)

var now = time.Now

// Row is one application of the job offer.
type Row struct {
	Name      string
	Email     string
	Status    string
	Synthesis *synthesis.Data
}

func (r Row) globalScore() float64 {
	if r.Synthesis == nil {
		return 0
	}
	return r.Synthesis.GlobalScore
}

// WriteWorkbook writes the report to path and returns the path actually used
// (".xlsx" is appended when missing). Rows without a synthesis are listed
// with zero scores and left out of the verdict counts and average.
func WriteWorkbook(path, jobTitle string, rows []Row) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	ranked := make([]Row, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].globalScore() > ranked[j].globalScore()
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return "", fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return "", fmt.Errorf("create candidates sheet: %w", err)
	}

	if err := writeSummary(f, jobTitle, ranked); err != nil {
		return "", fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeCandidates(f, ranked); err != nil {
		return "", fmt.Errorf("write candidates sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	return path, nil
}

func writeSummary(f *excelize.File, jobTitle string, rows []Row) error {
	sheet := SummarySheet

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}

	counts := map[synthesis.Verdict]int{}
	var total float64
	evaluated := 0
	for _, r := range rows {
		if r.Synthesis == nil {
			continue
		}
		counts[r.Synthesis.FinalStatus]++
		total += r.Synthesis.GlobalScore
		evaluated++
	}
	average := 0.0
	if evaluated > 0 {
		average = synthesis.RoundTo1(total / float64(evaluated))
	}

	entries := [][2]any{
		{"Rapport de synthese", nil},
		{"Poste", jobTitle},
		{"Genere le", now().Format("2006-01-02 15:04:05")},
		{"Candidatures", len(rows)},
		{"Embauche", counts[synthesis.VerdictEmbauche]},
		{"Incubation", counts[synthesis.VerdictIncubation]},
		{"Refuse", counts[synthesis.VerdictRefuse]},
		{"Score global moyen", average},
	}

	for i, entry := range entries {
		row := i + 1
		label, _ := excelize.CoordinatesToCellName(1, row)
		value, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(sheet, label, entry[0]); err != nil {
			return err
		}
		if entry[1] != nil {
			if err := f.SetCellValue(sheet, value, entry[1]); err != nil {
				return err
			}
		}
		style := labelStyle
		if row == 1 {
			style = headerStyle
		}
		if err := f.SetCellStyle(sheet, label, value, style); err != nil {
			return err
		}
	}

	return nil
}

var candidateHeaders = []string{"Rang", "Nom", "Email", "Statut", "Protocole 1", "Protocole 2", "Score global", "Verdict"}

func writeCandidates(f *excelize.File, rows []Row) error {
	sheet := CandidatesSheet

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	verdictStyles := map[synthesis.Verdict]string{
		synthesis.VerdictEmbauche:   "C6EFCE",
		synthesis.VerdictIncubation: "FFEB9C",
		synthesis.VerdictRefuse:     "FFC7CE",
	}
	styles := make(map[synthesis.Verdict]int, len(verdictStyles))
	for verdict, color := range verdictStyles {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		styles[verdict] = id
	}

	if err := f.SetColWidth(sheet, "B", "C", 30); err != nil {
		return err
	}

	for col, header := range candidateHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(candidateHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, r := range rows {
		row := i + 2
		var p1, p2, global float64
		verdict := synthesis.Verdict("")
		if r.Synthesis != nil {
			p1 = r.Synthesis.Protocol1.Score
			p2 = r.Synthesis.Protocol2.Score
			global = r.Synthesis.GlobalScore
			verdict = r.Synthesis.FinalStatus
		}

		values := []any{i + 1, r.Name, r.Email, r.Status, p1, p2, global, string(verdict)}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}

		if style, ok := styles[verdict]; ok {
			end, _ := excelize.CoordinatesToCellName(len(candidateHeaders), row)
			if err := f.SetCellStyle(sheet, start, end, style); err != nil {
				return err
			}
		}
	}

	if len(rows) > 0 {
		ref := fmt.Sprintf("A1:%s", mustCell(len(candidateHeaders), len(rows)+1))
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func mustCell(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
