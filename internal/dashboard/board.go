package dashboard

import "github.com/tmsolberg/hrdeck/internal/domain"

// Lane is one status column of the board projection.
type Lane struct {
	Status domain.Status
	Label  string
	Items  []domain.WorkItem
}

// ProjectBoard partitions an already filtered/sorted sequence into the given
// ordered lanes, preserving relative order within each lane. Items whose
// status is not a lane key are dropped (status has exactly one value, so no
// item can land in two lanes). Pure function: no state survives the call.
func ProjectBoard(items []domain.WorkItem, lanes []domain.Status) []Lane {
	out := make([]Lane, len(lanes))
	index := make(map[domain.Status]int, len(lanes))
	for i, status := range lanes {
		out[i] = Lane{Status: status, Label: domain.StatusLabel(status)}
		index[status] = i
	}
	for _, item := range items {
		i, ok := index[item.Status]
		if !ok {
			continue
		}
		out[i].Items = append(out[i].Items, item)
	}
	return out
}
