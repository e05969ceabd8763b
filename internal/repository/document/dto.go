package document

import (
	"slices"

	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
)

// Hash field names. units/values hold the bracketed list form the scorer parses.
const (
	fieldContent = "__content"
	fieldUnits   = "units"
	fieldValues  = "values"
)

// listFields is the RETURN clause used when listing documents.
var listFields = []string{fieldContent, fieldUnits, fieldValues}

// toHash converts a domain Document into a flat map for HSET.
func toHash(doc *domdoc.Document) map[string]string {
	return map[string]string{
		fieldContent: doc.Content(),
		fieldUnits:   attrlist.Format(doc.Units()),
		fieldValues:  attrlist.Format(doc.Values()),
	}
}

// fromHash hydrates a domain Document from an HGETALL or FT.SEARCH field map.
func fromHash(id string, m map[string]string) domdoc.Document {
	return domdoc.Reconstruct(
		id,
		m[fieldContent],
		attrlist.Parse(m[fieldUnits]),
		attrlist.Parse(m[fieldValues]),
	)
}

// distinctUnits collects units across docs in first-seen order.
func distinctUnits(docs []domdoc.Document) []string {
	var out []string
	for i := range docs {
		for _, u := range docs[i].Units() {
			if !slices.Contains(out, u) {
				out = append(out, u)
			}
		}
	}
	return out
}
