package rbxfile

// WalkFunc is called for each instance during traversal.
// path is the instance's full name.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(path string, inst *Instance) error

// Walk traverses inst and its descendants depth-first, calling fn for each
// instance before its children.
//
// Example:
//
//	Walk(game, func(path string, inst *Instance) error {
//	    fmt.Println(path, inst.ClassName())
//	    return nil
//	})
func Walk(inst *Instance, fn WalkFunc) error {
	if err := fn(inst.FullName(), inst); err != nil {
		return err
	}
	for _, child := range inst.Children() {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// PropertyInfo contains information about a property during walking.
type PropertyInfo struct {
	// Path is the full property path (e.g., "Workspace.Part.Size")
	Path string

	// InstancePath is the full name of the owning instance
	InstancePath string

	// ClassName is the owning instance's class
	ClassName string

	// Name is the property name
	Name string

	// Type is the property type
	Type PropertyType

	// Property provides access to the record itself
	Property *Property

	// Value is the current value (nil when unset or unreadable)
	Value Value
}

// WalkPropertiesFunc is the callback function type for WalkProperties.
// Return nil to continue walking, or an error to stop.
type WalkPropertiesFunc func(info PropertyInfo) error

// WalkProperties walks every property of inst and its descendants, in
// the same order as Walk and in record order within an instance.
func WalkProperties(inst *Instance, fn WalkPropertiesFunc) error {
	return Walk(inst, func(path string, n *Instance) error {
		for _, p := range n.Properties() {
			info := PropertyInfo{
				Path:         path + PathSeparator + p.Name(),
				InstancePath: path,
				ClassName:    n.ClassName(),
				Name:         p.Name(),
				Type:         p.Type(),
				Property:     p,
				Value:        p.Value(),
			}
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrStopWalk can be returned from a WalkFunc or WalkPropertiesFunc to stop walking.
var ErrStopWalk = &walkStopError{}

type walkStopError struct{}

func (e *walkStopError) Error() string { return "walk stopped" }

// IsStopWalk returns true if the error is ErrStopWalk.
func IsStopWalk(err error) bool {
	_, ok := err.(*walkStopError)
	return ok
}
