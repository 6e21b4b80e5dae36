package orders

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusShipped Status = "shipped"
)

var validNext = map[Status]map[Status]bool{
	StatusPending: {StatusPaid: true},
	StatusPaid:    {StatusShipped: true},
	StatusShipped: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func KnownStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}
