package task

// Identity is the acting or viewing employee. It decides task visibility
// and is recorded on transitions; it is never stored as its own record.
type Identity struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// IsZero returns true if neither name nor department is set.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Department == ""
}
