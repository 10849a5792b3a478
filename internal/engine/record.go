package engine

// RecordStatus is the fixed trailing status value on every committed record.
const RecordStatus = "Pending"

// Record is one completed interaction, immutable once built. Values() is
// the fixed column order the sink contract depends on; any change here must
// move in lockstep with every consumer of the ordered tuple.
type Record struct {
	ID          string
	Name        string
	Context     string
	Date        string // calendar date, 2006-01-02
	ContactInfo string
	Status      string
}

func (r Record) Values() []string {
	return []string{r.ID, r.Name, r.Context, r.Date, r.ContactInfo, r.Status}
}
