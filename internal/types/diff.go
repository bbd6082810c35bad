package types

// DiffResult partitions the union of current and baseline identity keys into
// four disjoint sets. Every emitted list is sorted ascending by identity key
// bytes so diff artifacts are byte-identical for identical inputs.
type DiffResult struct {
	New       []string `json:"new"`
	Changed   []string `json:"changed"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// Counts returns the four partition sizes in new/changed/removed/unchanged order.
func (d *DiffResult) Counts() DiffCounts {
	return DiffCounts{
		New:       len(d.New),
		Changed:   len(d.Changed),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
	}
}

// DiffCounts is the summary recorded on the run artifact.
type DiffCounts struct {
	New       int `json:"new"`
	Changed   int `json:"changed"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}
