package rbxfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree returns game{Workspace{Model{Part}}, Lighting}.
func buildTree(t *testing.T) (game, workspace, model, part, lighting *Instance) {
	t.Helper()
	game = NewInstance("DataModel", "game")
	workspace = NewInstance("Workspace", "")
	model = NewInstance("Model", "House")
	part = NewInstance("Part", "Door")
	lighting = NewInstance("Lighting", "")
	require.NoError(t, workspace.SetParent(game))
	require.NoError(t, lighting.SetParent(game))
	require.NoError(t, model.SetParent(workspace))
	require.NoError(t, part.SetParent(model))
	return
}

func TestNewInstanceName(t *testing.T) {
	tests := []struct {
		class, name, want string
	}{
		{"Part", "Door", "Door"},
		{"Workspace", "", "Workspace"},
	}
	for _, tt := range tests {
		inst := NewInstance(tt.class, tt.name)
		if got := inst.Name(); got != tt.want {
			t.Errorf("NewInstance(%q, %q).Name() = %q, want %q", tt.class, tt.name, got, tt.want)
		}
		p := inst.Property("Name")
		require.NotNil(t, p)
		assert.Equal(t, TypeString, p.Type())
	}
}

func TestSetParent(t *testing.T) {
	game, workspace, model, part, lighting := buildTree(t)

	assert.Same(t, game, workspace.Parent())
	assert.Equal(t, []*Instance{workspace, lighting}, game.Children())

	// Reparent moves the node to the end of the new parent's children.
	require.NoError(t, model.SetParent(lighting))
	assert.Empty(t, workspace.Children())
	assert.Equal(t, []*Instance{model}, lighting.Children())
	assert.Equal(t, "game.Lighting.House.Door", part.FullName())

	// Detach.
	require.NoError(t, model.SetParent(nil))
	assert.Nil(t, model.Parent())
	assert.Empty(t, lighting.Children())
	assert.Equal(t, "House.Door", part.FullName())
}

func TestSetParentCycle(t *testing.T) {
	game, workspace, model, part, _ := buildTree(t)

	tests := []struct {
		name   string
		inst   *Instance
		parent *Instance
	}{
		{"self", model, model},
		{"child", model, part},
		{"root under descendant", game, part},
		{"grandchild", workspace, part},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.inst.Parent()
			err := tt.inst.SetParent(tt.parent)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCycle))
			var cycle *CycleError
			require.ErrorAs(t, err, &cycle)
			assert.Same(t, tt.inst, cycle.Instance)
			assert.Same(t, before, tt.inst.Parent(), "tree must be unchanged")
		})
	}
	assert.Equal(t, "game.Workspace.House.Door", part.FullName())
}

func TestAncestry(t *testing.T) {
	game, workspace, model, part, lighting := buildTree(t)

	assert.True(t, game.IsAncestorOf(part))
	assert.True(t, model.IsAncestorOf(model))
	assert.False(t, part.IsAncestorOf(model))
	assert.False(t, lighting.IsAncestorOf(part))

	assert.True(t, part.IsDescendantOf(workspace))
	assert.True(t, part.IsDescendantOf(part))
	assert.False(t, workspace.IsDescendantOf(part))
}

func TestChildrenSnapshot(t *testing.T) {
	game, workspace, _, _, _ := buildTree(t)

	snap := game.Children()
	require.NoError(t, NewInstance("Folder", "").SetParent(game))
	assert.Len(t, snap, 2)
	assert.Len(t, game.Children(), 3)

	snap[0] = nil
	assert.Same(t, workspace, game.Children()[0])
}

func TestDescendantsOrder(t *testing.T) {
	root := NewInstance("Folder", "root")
	a := NewInstance("Folder", "a")
	b := NewInstance("Folder", "b")
	a1 := NewInstance("Folder", "a1")
	a2 := NewInstance("Folder", "a2")
	b1 := NewInstance("Folder", "b1")
	a11 := NewInstance("Folder", "a11")
	for _, pair := range [][2]*Instance{{a, root}, {b, root}, {a1, a}, {a2, a}, {b1, b}, {a11, a1}} {
		require.NoError(t, pair[0].SetParent(pair[1]))
	}

	var names []string
	for _, d := range root.Descendants() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"a", "b", "a1", "a2", "a11", "b1"}, names)
}

func TestDescendantsAndPathsAgree(t *testing.T) {
	game, _, _, _, _ := buildTree(t)
	extra := NewInstance("Folder", "Extra")
	require.NoError(t, extra.SetParent(game.FindFirstChild("Lighting", false)))

	all := game.Descendants()
	assert.Len(t, all, 5)
	for _, d := range all {
		assert.True(t, d.IsDescendantOf(game), d.FullName())

		rel := strings.TrimPrefix(d.FullName(), game.Name()+PathSeparator)
		got, err := game.FindPath(rel)
		require.NoError(t, err)
		assert.Same(t, d, got)
	}
}

func TestFindFirstChild(t *testing.T) {
	game, workspace, model, part, _ := buildTree(t)

	assert.Same(t, workspace, game.FindFirstChild("Workspace", false))
	assert.Nil(t, game.FindFirstChild("Door", false))
	assert.Same(t, part, game.FindFirstChild("Door", true))
	assert.Same(t, model, game.FindFirstChild("House", true))

	// Exact, case-sensitive match.
	assert.Nil(t, game.FindFirstChild("workspace", false))

	// First match wins.
	dup := NewInstance("Part", "House")
	require.NoError(t, dup.SetParent(workspace))
	assert.Same(t, model, workspace.FindFirstChild("House", false))
}

func TestFindFirstChildOfClass(t *testing.T) {
	game, _, _, _, lighting := buildTree(t)

	assert.Same(t, lighting, game.FindFirstChildOfClass("Lighting"))
	assert.Nil(t, game.FindFirstChildOfClass("Part"))
}

func TestFullName(t *testing.T) {
	game, _, model, part, _ := buildTree(t)

	assert.Equal(t, "game", game.FullName())
	assert.Equal(t, "game.Workspace.House", model.FullName())

	model.SetName("Shed")
	assert.Equal(t, "game.Workspace.Shed.Door", part.FullName())
}

func TestFindPath(t *testing.T) {
	game, _, model, part, _ := buildTree(t)

	got, err := game.FindPath("Workspace.House.Door")
	require.NoError(t, err)
	assert.Same(t, part, got)

	got, err = game.FindPath("")
	require.NoError(t, err)
	assert.Same(t, game, got)

	_, err = game.FindPath("Workspace.House.Window.Pane")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathNotFound))
	var notFound *PathNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Window", notFound.Segment)
	assert.Same(t, model, notFound.Parent)
	assert.Equal(t, "Window is not a valid member of game.Workspace.House", err.Error())
}

func TestGetSetCaseInsensitive(t *testing.T) {
	part := NewInstance("Part", "")

	require.NoError(t, part.Set("Transparency", float32(0.5)))
	assert.Equal(t, Float(0.5), part.Get("transparency"))
	assert.Equal(t, Float(0.5), part.Get("TRANSPARENCY"))

	// Writing through another casing updates the same record.
	require.NoError(t, part.Set("TRANSPARENCY", Float(0.25)))
	assert.Len(t, part.Properties(), 2)
	assert.Equal(t, "Transparency", part.Properties()[1].Name())
	assert.Equal(t, Float(0.25), part.Get("Transparency"))

	assert.Nil(t, part.Get("Missing"))
}

func TestSetTypeMismatch(t *testing.T) {
	part := NewInstance("Part", "")
	require.NoError(t, part.Set("Anchored", true))

	err := part.Set("Anchored", "yes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Equal(t, Bool(true), part.Get("Anchored"))
}

func TestSetUnsupported(t *testing.T) {
	part := NewInstance("Part", "")

	for _, v := range []any{uint8(1), struct{}{}, map[string]int{}, nil, 1 << 40} {
		err := part.Set("Bad", v)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Set(%T) error = %v, want ErrUnsupportedType", v, err)
		}
	}
	assert.Nil(t, part.Property("Bad"))
}

func TestAddPropertyReplacesInPlace(t *testing.T) {
	part := NewInstance("Part", "")
	require.NoError(t, part.Set("Size", Vector3{4, 1, 2}))
	require.NoError(t, part.Set("Anchored", true))

	replacement := NewProperty("size", TypeVector3)
	require.NoError(t, replacement.SetValue(Vector3{1, 1, 1}))
	part.AddProperty(replacement)

	props := part.Properties()
	require.Len(t, props, 3)
	assert.Same(t, replacement, props[1])
	assert.Same(t, part, replacement.Instance())
	assert.Equal(t, Vector3{1, 1, 1}, part.Get("Size"))
}

func TestAddPropertyMovesBetweenInstances(t *testing.T) {
	a := NewInstance("Part", "A")
	b := NewInstance("Part", "B")
	require.NoError(t, a.Set("Locked", true))

	p := a.Property("Locked")
	b.AddProperty(p)
	assert.Nil(t, a.Property("Locked"))
	assert.Same(t, b, p.Instance())
	assert.Equal(t, "B.Locked", p.FullName())
}

func TestRemoveProperty(t *testing.T) {
	part := NewInstance("Part", "")
	require.NoError(t, part.Set("Anchored", true))
	p := part.Property("Anchored")

	assert.True(t, part.RemoveProperty("anchored"))
	assert.False(t, part.RemoveProperty("anchored"))
	assert.Nil(t, p.Instance())
	assert.Nil(t, part.Get("Anchored"))
}

func TestReadPropertyTotal(t *testing.T) {
	part := NewInstance("Part", "Door")
	require.NoError(t, part.Set("Size", Vector3{4, 1, 2}))
	require.NoError(t, part.Set("Transparency", float32(0.5)))
	require.NoError(t, part.Set("Count", 7))
	require.NoError(t, part.Set("Blob", []byte("raw")))

	assert.Equal(t, Vector3{4, 1, 2}, ReadProperty(part, "Size", Vector3{}))
	assert.Equal(t, "Door", ReadProperty(part, "Name", ""))
	assert.Equal(t, String("Door"), ReadProperty(part, "Name", String("")))
	assert.Equal(t, float32(0.5), ReadProperty(part, "Transparency", float32(0)))
	assert.Equal(t, 0.5, ReadProperty(part, "Transparency", 0.0))
	assert.Equal(t, int32(7), ReadProperty(part, "Count", int32(0)))
	assert.Equal(t, 7, ReadProperty(part, "Count", 0))
	assert.Equal(t, int64(7), ReadProperty(part, "Count", int64(0)))
	assert.Equal(t, "raw", ReadProperty(part, "Blob", ""))
	assert.Equal(t, Value(Float(0.5)), ReadProperty[Value](part, "Transparency", nil))

	// Mismatched shapes and missing records fall back.
	assert.Equal(t, Color3{1, 0, 0}, ReadProperty(part, "Size", Color3{1, 0, 0}))
	assert.Equal(t, "x", ReadProperty(part, "Size", "x"))
	assert.Equal(t, true, ReadProperty(part, "Missing", true))
	assert.Equal(t, 3, ReadProperty[int](nil, "Size", 3))

	_, ok := TryReadProperty[Vector2](part, "Size")
	assert.False(t, ok)
}

func TestRefProperty(t *testing.T) {
	game, workspace, _, part, _ := buildTree(t)
	require.NoError(t, game.Set("PrimaryPart", part))

	assert.Equal(t, Ref{Target: part}, game.Get("PrimaryPart"))
	assert.Same(t, part, ReadProperty[*Instance](game, "PrimaryPart", nil))
	assert.Same(t, workspace, ReadProperty(game, "Missing", workspace))
}

func TestTags(t *testing.T) {
	part := NewInstance("Part", "")
	assert.Empty(t, part.Tags())
	assert.Nil(t, part.Get("Tags"))

	part.AddTag("Door")
	part.AddTag("Interactive")
	part.AddTag("Door")
	assert.Equal(t, []string{"Door", "Interactive"}, part.Tags())
	assert.True(t, part.HasTag("Interactive"))

	assert.Equal(t, BinaryString("Door\x00Interactive"), part.Get("Tags"))
	p := part.Property("Tags")
	require.NotNil(t, p)
	assert.Equal(t, "BinaryString", p.WireTypeName())

	assert.True(t, part.RemoveTag("Door"))
	assert.False(t, part.RemoveTag("Door"))
	assert.Equal(t, []string{"Interactive"}, part.Tags())
}

func TestTagsFromLoadedString(t *testing.T) {
	part := NewInstance("Part", "")
	p := NewProperty("Tags", TypeString)
	part.AddProperty(p)
	require.NoError(t, p.SetValue(String("A\x00B")))

	assert.Equal(t, []string{"A", "B"}, part.Tags())
	assert.Equal(t, BinaryString("A\x00B"), part.Get("tags"))
}

func TestTagsRejectsOtherKinds(t *testing.T) {
	part := NewInstance("Part", "")
	part.AddTag("Door")

	err := part.Set("Tags", 5)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, TypeString, mismatch.Want)
	assert.Equal(t, TypeInt, mismatch.Got)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, TypeString, part.Property("Tags").Type())
	assert.Equal(t, []string{"Door"}, part.Tags())

	p := NewProperty("tags", TypeUnknown)
	part.AddProperty(p)
	assert.ErrorIs(t, p.SetValue(Bool(true)), ErrTypeMismatch)

	fresh := NewInstance("Part", "")
	assert.ErrorIs(t, fresh.Set("Tags", 1.5), ErrTypeMismatch)
	assert.Nil(t, fresh.Property("Tags"))

	require.NoError(t, fresh.Set("Tags", "A\x00B"))
	assert.Equal(t, []string{"A", "B"}, fresh.Tags())
}
