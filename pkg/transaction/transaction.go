package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one ledger entry: a real movement of money, imported or
// entered by hand. The obligation engine only ever reads these; completing an
// occurrence references a transaction by id, it never mutates it.
type Transaction struct {
	Id     int
	Uid    string
	Date   time.Time
	Amount decimal.Decimal // signed: negative for outgoing money
	Label  string
	// CategoryId is an identifier relation, nil when uncategorized.
	CategoryId *int
}
