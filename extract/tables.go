package extract

import (
	"context"

	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/models"
)

const tablesJS = `() => {
	const tables = [];
	document.querySelectorAll('table').forEach((table, index) => {
		const headers = [];
		table.querySelectorAll('thead th, tr:first-child th').forEach(th => {
			headers.push((th.textContent || '').trim());
		});
		const rows = [];
		table.querySelectorAll('tbody tr, tr').forEach(tr => {
			const cells = [];
			tr.querySelectorAll('td').forEach(td => {
				cells.push((td.textContent || '').trim());
			});
			if (cells.length > 0) rows.push(cells);
		});
		tables.push({ index: index, headers: headers, rows: rows });
	});
	return tables;
}`

type tableRaw struct {
	Index   int        `json:"index"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Tables extracts every HTML table on the page as headers plus rows.
func Tables(ctx context.Context, page driver.Page, params Params) ([]*models.Table, models.TableStats, error) {
	var raw []tableRaw
	if err := page.Eval(ctx, tablesJS, &raw); err != nil {
		return nil, models.TableStats{}, err
	}

	tables := make([]*models.Table, 0, len(raw))
	for _, r := range raw {
		t := &models.Table{
			Index:    r.Index,
			Headers:  r.Headers,
			Rows:     r.Rows,
			RowCount: len(r.Rows),
		}
		if len(r.Headers) > 0 {
			t.ColCount = len(r.Headers)
		} else if len(r.Rows) > 0 {
			t.ColCount = len(r.Rows[0])
		}
		tables = append(tables, t)
	}
	return tables, models.TableStats{TotalTables: len(tables)}, nil
}
