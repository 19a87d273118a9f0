package entity

// Facility is a municipal venue with a fixed people capacity.
// Reference data, immutable at runtime.
type Facility struct {
	ID       int
	Name     string
	Type     string
	Capacity int
}
