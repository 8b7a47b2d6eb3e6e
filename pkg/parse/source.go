package parse

// Source describes a piece of source code.
type Source struct {
	Name   string
	Code   string
	IsFile bool
}

// NewSource returns a Source with the given name and code.
func NewSource(name, code string) Source {
	return Source{Name: name, Code: code}
}
