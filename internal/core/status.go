package core

// allowedTransitions is the batch lifecycle transition graph, held as
// explicit, reviewable data. A transition is legal iff the requested status
// appears under the batch's current status. There is deliberately no inbound
// edge to Canceled: enabling one is a one-line, reviewed table change.
var allowedTransitions = map[BatchStatus][]BatchStatus{
	StatusActive:    {StatusProcessed, StatusForSale},
	StatusProcessed: {StatusForSale},
	StatusForSale:   {StatusSold},
}

// CanTransition reports whether a batch may move from one status to another.
func CanTransition(from, to BatchStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
