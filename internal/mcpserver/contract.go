package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/parser"
)

// ResultFormatURI names the result format resource.
const ResultFormatURI = "gsea://result-format"

// ResultFormatContract describes the result files the browser reads and how
// the tools interpret them.
var ResultFormatContract = fmt.Sprintf(`# GSEA Result File Format

Result files live at <data root>/<project>/<name>.csv. Only files ending in
.csv directly inside a project directory are read; the display name is the
file name cut at the first ".csv".

## Columns

The first row is a header. Column order does not matter and extra columns
are ignored. These columns are required (exact, case-sensitive names):

%s

- Numeric cells may be empty or NaN; such values are treated as missing.
- %q holds the leading-edge genes separated by %q, in rank order.
  An empty cell means no genes.

## Filtering

- A term is significant when its %q value is <= %g. Missing p-values
  never pass.
- A gene query is a comma-separated list of symbols. A term matches when
  its leading edge contains any of them exactly (case-sensitive).

## Rows

Row indices returned by filter_terms are positions within that view
(filter + sort). Pass the returned view_id back to lead_gene_layout; a row
taken from a different view is reported as stale.
`, columnList(), parser.ColLeadGenes, parser.GeneSeparator, parser.ColPValue, gsea.SignificanceThreshold)

func columnList() string {
	var b strings.Builder
	for _, c := range parser.RequiredColumns {
		fmt.Fprintf(&b, "- `%s`\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}
