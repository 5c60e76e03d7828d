package importer

import "slices"

// Category is the meaning of a statement row, derived from its transaction
// type tag.
type Category int

const (
	Unknown         Category = iota // unrecognised tag
	Buy                             // purchase of a tracked commodity
	CounterLeg                      // the other currency's side of a buy
	Withdrawal                      // booked on the destination statement
	Deposit                         // booked on the source statement
	HoldersYield                    // holders yield distribution
	YieldAdjustment                 // correction of a holders yield
	VelocityYield                   // velocity yield distribution
)

var categoryNames = [...]string{
	Unknown:         "Unknown",
	Buy:             "Buy",
	CounterLeg:      "CounterLeg",
	Withdrawal:      "Withdrawal",
	Deposit:         "Deposit",
	HoldersYield:    "HoldersYield",
	YieldAdjustment: "YieldAdjustment",
	VelocityYield:   "VelocityYield",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(?)"
	}
	return categoryNames[c]
}

// Categories returns every category, Unknown first.
func Categories() []Category {
	all := make([]Category, len(categoryNames))
	for i := range all {
		all[i] = Category(i)
	}
	return all
}

// IsYield reports whether rows of this category are yield distributions.
func (c Category) IsYield() bool {
	return c == HoldersYield || c == YieldAdjustment || c == VelocityYield
}

// label is the human readable name of a yield category, used in narrations.
func (c Category) label() string {
	switch c {
	case HoldersYield:
		return "Holders Yield Payment"
	case YieldAdjustment:
		return "Holders Yield Adjustment"
	case VelocityYield:
		return "Velocity Yield Payment"
	}
	return ""
}

// trackedCurrencies are the commodities whose buys are booked from their own
// row. Buy rows of any other currency are the counter leg of one of these.
var trackedCurrencies = []string{"KAU", "KAG", "KVT"}

// Classify returns the category of a row.
func Classify(r Record) Category {
	switch r.TransactionType {
	case "Trade_Buy":
		if slices.Contains(trackedCurrencies, r.CurrencyCode) {
			return Buy
		}
		return CounterLeg
	case "Withdrawal":
		return Withdrawal
	case "Deposit":
		return Deposit
	case "Holders_Distribution":
		return HoldersYield
	case "Holders_Yield_Distribution_Adjustment":
		return YieldAdjustment
	case "Velocity_Distribution":
		return VelocityYield
	}
	return Unknown
}
