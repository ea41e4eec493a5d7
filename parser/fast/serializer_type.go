package fast

// BackendType names the library behind New.
type BackendType int

const (
	BackendSonic BackendType = iota
	BackendGoJSON
)

func (t BackendType) Name() string {
	switch t {
	case BackendSonic:
		return "sonic"
	case BackendGoJSON:
		return "go-json"
	}
	return "<invalid>"
}
