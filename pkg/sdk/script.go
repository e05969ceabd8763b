package qbm25

// Script names a rescoring script and its per-query params.
type Script struct {
	Lang   string
	Source string
	Params map[string]any
}

// QBM25Params are the typed params of the qbm25 script.
type QBM25Params struct {
	Handler Handler
	// Unit is the query unit. Units, when set, takes precedence and matches any of its entries.
	Unit    string
	Units   []string
	Amount  float64
	Amount2 float64
	Weight  float64
	// MaxScore normalizes the BM25 score. Zero means 1.
	MaxScore float64
}

// QBM25 builds a qbm25 script from typed params.
func QBM25(p QBM25Params) Script {
	params := map[string]any{
		"handler": string(p.Handler),
		"amount":  p.Amount,
		"amount2": p.Amount2,
		"weight":  p.Weight,
	}
	switch {
	case len(p.Units) > 0:
		params["unit"] = formatList(p.Units)
	default:
		params["unit"] = p.Unit
	}
	if p.MaxScore != 0 {
		params["max_score"] = p.MaxScore
	}
	return Script{Lang: ScriptLang, Source: ScriptQBM25, Params: params}
}
