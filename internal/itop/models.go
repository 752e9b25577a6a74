package itop

import "time"

type Ticket struct {
	ID                 string
	Ref                string
	Title              string
	Status             string
	Class              string // e.g. "Incident"
	Service            string // service_name
	ServiceSubcategory string // servicesubcategory_name
	StartDate          time.Time
	AssignmentDate     time.Time
	ResolutionDate     time.Time
	Agent              string
	Team               string
	Priority           string
	Urgency            string
	Impact             string
}

// TimeToOwn is the raw start-to-assignment duration, zero when unassigned.
func (t Ticket) TimeToOwn() time.Duration {
	if t.StartDate.IsZero() || t.AssignmentDate.IsZero() {
		return 0
	}
	return t.AssignmentDate.Sub(t.StartDate)
}

// TimeToResolve is the raw start-to-resolution duration, zero when unresolved.
func (t Ticket) TimeToResolve() time.Duration {
	if t.StartDate.IsZero() || t.ResolutionDate.IsZero() {
		return 0
	}
	return t.ResolutionDate.Sub(t.StartDate)
}
