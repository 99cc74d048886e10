package service

import "fleetbook/pkg/model"

// allowedTransitions is the booking state graph. pending is the initial
// state; cancelled is terminal. There are no self-loops: re-confirming a
// confirmed booking is rejected like any other invalid edge.
var allowedTransitions = map[string][]string{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCancelled},
	model.StatusCancelled: {},
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to string) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
