package parsers

import (
	"fmt"
	"sort"
	"strings"

	"gst-filing-service/internal/models"
	apperrors "gst-filing-service/pkg/errors"
)

// headerAliases maps a semantic field to the header spellings that
// identify it. Matching is case-insensitive substring.
type headerAliases map[string][]string

// maxHeaderScanRows limits how deep the detector looks for a header row.
// Portal exports bury headers under title banners, never this deep.
const maxHeaderScanRows = 20

// detectHeaderRow scans the top of a sheet for the row that matches the
// most known headers. Each column is probed with the row's own text
// combined with the cell below it, which handles the merged two-row
// headers in portal exports. Optional fields contribute to the score and
// the column map but never fail detection. Returns the zero-based index
// of the first data row and the field-to-column map.
func detectHeaderRow(rows [][]string, required, optional headerAliases, file string) (int, map[string]int, error) {
	known := make(headerAliases, len(required)+len(optional))
	for field, aliases := range required {
		known[field] = aliases
	}
	for field, aliases := range optional {
		known[field] = aliases
	}

	bestRow := -1
	bestScore := 0
	var bestMap map[string]int

	limit := len(rows)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}

	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		row := rows[rowIdx]
		var next []string
		if rowIdx+1 < len(rows) {
			next = rows[rowIdx+1]
		}

		colMap := make(map[string]int)
		score := 0

		for colIdx := range row {
			var texts []string
			if colIdx < len(next) {
				if s := models.SafeString(next[colIdx]); s != "" {
					texts = append(texts, strings.ToLower(s))
				}
			}
			if s := models.SafeString(row[colIdx]); s != "" {
				texts = append(texts, strings.ToLower(s))
			}
			combined := strings.Join(texts, " ")
			if combined == "" {
				continue
			}

			for field, aliases := range known {
				if _, taken := colMap[field]; taken {
					continue
				}
				for _, alias := range aliases {
					if strings.Contains(combined, strings.ToLower(alias)) {
						colMap[field] = colIdx
						score++
						break
					}
				}
			}
		}

		if score > bestScore {
			bestRow = rowIdx
			bestScore = score
			bestMap = colMap
		}
	}

	var missing []string
	for field := range required {
		if bestMap == nil {
			missing = append(missing, field)
			continue
		}
		if _, ok := bestMap[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, nil, apperrors.ParseError(apperrors.CodeHeaderNotFound, file,
			fmt.Sprintf("missing headers: %s", strings.Join(missing, ", ")), nil)
	}

	return bestRow + 1, bestMap, nil
}

// cellAt returns a row's cell by column index, tolerating short rows.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
