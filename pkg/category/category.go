package category

// Category is reference data for classifying obligations and ledger
// transactions. The hierarchy is one level deep in practice, but the model
// only requires that ParentId, when set, points at another category of the
// same user. Relations are identifier based; there are no object pointers.
type Category struct {
	Id       int
	Name     string
	ParentId *int
	Icon     string
}
