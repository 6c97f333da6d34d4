package kenosha

import (
	"kenosha-results/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// WardName reads the selected option of the reporting unit dropdown. It
// returns UnknownWard and false if the page does not have one selected.
func WardName(doc *goquery.Document) (string, bool) {
	for _, opt := range htmlutil.SelectOptions(doc.Selection, reportingUnitControl) {
		if opt.Selected {
			return opt.Text, true
		}
	}
	return UnknownWard, false
}

// ExtractCandidates reads every candidate of every contest on a reporting
// unit page. Contests without a title or results table are skipped, as are
// candidates whose row has no cell after the name cell.
func ExtractCandidates(doc *goquery.Document) []CandidateCell {
	var cells []CandidateCell

	doc.Find("div.contestBox").Each(func(_ int, box *goquery.Selection) {
		header := box.Find("h1").First()
		if header.Length() == 0 {
			return
		}
		contest := htmlutil.Text(header)

		table := box.Find("table.resultTable").First()
		if table.Length() == 0 {
			return
		}

		table.Find("td.candtd").Each(func(_ int, cand *goquery.Selection) {
			row := cand.Parent()
			if row.Length() == 0 {
				return
			}
			rowCells := row.Find("td")
			idx := rowCells.IndexOfSelection(cand)
			if idx < 0 || idx+1 >= rowCells.Length() {
				return
			}

			cells = append(cells, CandidateCell{
				Contest:  contest,
				Label:    htmlutil.Text(cand),
				VoteText: htmlutil.Text(rowCells.Eq(idx + 1)),
			})
		})
	})

	return cells
}
