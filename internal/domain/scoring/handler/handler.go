// Package handler defines the comparison operators a qbm25 query can ask for and the
// distance contribution each one assigns to a matching document value.
package handler

import "math"

// Handler is a comparison operator. The zero value is Passthrough.
type Handler int

// Handler variants.
const (
	// Passthrough leaves the normalized base score untouched.
	Passthrough Handler = iota
	// Equal rewards values close to the target amount.
	Equal
	// Greater rewards values above the target amount.
	Greater
	// Less rewards values below the target amount.
	Less
	// Band rewards values close to the midpoint of amount and amount2.
	Band
)

var symbols = map[string]Handler{
	"=":  Equal,
	">":  Greater,
	"<":  Less,
	"<<": Band,
}

// Parse maps an operator symbol to its Handler. Unrecognized symbols yield Passthrough.
func Parse(symbol string) Handler {
	return symbols[symbol]
}

// String returns the operator symbol, or "passthrough".
func (h Handler) String() string {
	switch h {
	case Equal:
		return "="
	case Greater:
		return ">"
	case Less:
		return "<"
	case Band:
		return "<<"
	default:
		return "passthrough"
	}
}

// Label is a metrics-safe name for the handler.
func (h Handler) Label() string {
	switch h {
	case Equal:
		return "eq"
	case Greater:
		return "gt"
	case Less:
		return "lt"
	case Band:
		return "band"
	default:
		return "passthrough"
	}
}

// Adjusts reports whether the handler adds a distance boost at all.
func (h Handler) Adjusts() bool {
	return h != Passthrough
}

// Contribution returns what a single matching value v adds to the accumulated distance.
//
//	=   exp(-|amount-v|), only when v != 0 and amount != 0
//	>   amount/v when v > amount, only when v != 0
//	<   v/amount when v < amount, only when amount != 0
//	<<  exp(-|v-(amount+amount2)/2|)
func (h Handler) Contribution(v, amount, amount2 float64) float64 {
	switch h {
	case Equal:
		if v == 0 || amount == 0 {
			return 0
		}
		return math.Exp(-math.Abs(amount - v))
	case Greater:
		if v == 0 || v-amount <= 0 {
			return 0
		}
		return amount / v
	case Less:
		if amount == 0 || amount-v <= 0 {
			return 0
		}
		return v / amount
	case Band:
		mid := (amount + amount2) / 2.0
		return math.Exp(-math.Abs(v - mid))
	default:
		return 0
	}
}
