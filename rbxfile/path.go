package rbxfile

import (
	"strings"
)

// PathSeparator separates instance names in a full name or path.
const PathSeparator = "."

// SplitPath splits a dot-separated instance path into its names.
//
// Examples:
//   - "" -> []string{}
//   - "Workspace" -> []string{"Workspace"}
//   - "Workspace.Model.Part" -> []string{"Workspace", "Model", "Part"}
func SplitPath(path string) []string {
	if path == "" {
		return []string{}
	}
	return strings.Split(path, PathSeparator)
}

// JoinPath joins instance names into a dot-separated path.
func JoinPath(names ...string) string {
	return strings.Join(names, PathSeparator)
}

// SplitPropertyPath splits "Workspace.Part.Size" into the instance path
// "Workspace.Part" and the property name "Size". A path with no separator
// names a property of the starting instance.
func SplitPropertyPath(path string) (instancePath, property string) {
	idx := strings.LastIndex(path, PathSeparator)
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
