package rbxfile

import (
	"reflect"
	"testing"
)

func TestWalk(t *testing.T) {
	game, _, _, _, _ := buildTree(t)

	var paths []string
	err := Walk(game, func(path string, inst *Instance) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := []string{"game", "game.Workspace", "game.Workspace.House", "game.Workspace.House.Door", "game.Lighting"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestWalkStopEarly(t *testing.T) {
	game, _, _, _, _ := buildTree(t)

	count := 0
	err := Walk(game, func(path string, inst *Instance) error {
		count++
		if inst.ClassName() == "Model" {
			return ErrStopWalk
		}
		return nil
	})

	if !IsStopWalk(err) {
		t.Errorf("expected ErrStopWalk, got %v", err)
	}
	if count != 3 {
		t.Errorf("expected walk to stop after 3 instances, got %d", count)
	}
}

func TestWalkProperties(t *testing.T) {
	game, _, _, part, _ := buildTree(t)
	if err := part.Set("Anchored", true); err != nil {
		t.Fatal(err)
	}

	var paths []string
	var anchored PropertyInfo
	err := WalkProperties(game, func(info PropertyInfo) error {
		paths = append(paths, info.Path)
		if info.Name == "Anchored" {
			anchored = info
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkProperties failed: %v", err)
	}

	if len(paths) != 6 {
		t.Errorf("expected 6 properties, got %d: %v", len(paths), paths)
	}
	if anchored.Path != "game.Workspace.House.Door.Anchored" {
		t.Errorf("got path %q", anchored.Path)
	}
	if anchored.InstancePath != "game.Workspace.House.Door" || anchored.ClassName != "Part" {
		t.Errorf("got instance %q (%s)", anchored.InstancePath, anchored.ClassName)
	}
	if anchored.Type != TypeBool || anchored.Value != Bool(true) {
		t.Errorf("got %s %v", anchored.Type, anchored.Value)
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", []string{}},
		{"Workspace", []string{"Workspace"}},
		{"Workspace.Model.Part", []string{"Workspace", "Model", "Part"}},
	}
	for _, tt := range tests {
		got := SplitPath(tt.path)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
		if joined := JoinPath(got...); joined != tt.path {
			t.Errorf("JoinPath(%v) = %q, want %q", got, joined, tt.path)
		}
	}
}

func TestSplitPropertyPath(t *testing.T) {
	tests := []struct {
		path, inst, prop string
	}{
		{"Workspace.Part.Size", "Workspace.Part", "Size"},
		{"Size", "", "Size"},
	}
	for _, tt := range tests {
		inst, prop := SplitPropertyPath(tt.path)
		if inst != tt.inst || prop != tt.prop {
			t.Errorf("SplitPropertyPath(%q) = %q, %q, want %q, %q", tt.path, inst, prop, tt.inst, tt.prop)
		}
	}
}
