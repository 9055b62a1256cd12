// Package rbxtest holds fixtures and comparison helpers shared by the
// codec tests.
package rbxtest

import (
	"bytes"
	"math"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// Prop is a comparable view of a property.
type Prop struct {
	Name  string
	Type  rbxfile.PropertyType
	Wire  string
	Value any
}

// Node is a comparable view of an instance subtree. Ref values are shown
// as the target's full name and SharedStrings as their bytes.
type Node struct {
	Class    string
	Props    []Prop
	Children []Node
}

// Snapshot converts inst and its descendants to a Node.
func Snapshot(inst *rbxfile.Instance) Node {
	n := Node{Class: inst.ClassName()}
	for _, p := range inst.Properties() {
		var v any = p.Value()
		switch x := v.(type) {
		case rbxfile.Ref:
			if x.Target == nil {
				v = "ref:nil"
			} else {
				v = "ref:" + x.Target.FullName()
			}
		case rbxfile.SharedString:
			v = x.Bytes()
		}
		n.Props = append(n.Props, Prop{Name: p.Name(), Type: p.Type(), Wire: p.WireTypeName(), Value: v})
	}
	for _, c := range inst.Children() {
		n.Children = append(n.Children, Snapshot(c))
	}
	return n
}

// Diff returns a human-readable diff between two forests, or "" when they
// hold the same classes, properties and structure.
func Diff(want, got []*rbxfile.Instance) string {
	return cmp.Diff(snapshots(want), snapshots(got), cmp.Comparer(floatEqual))
}

func snapshots(roots []*rbxfile.Instance) []Node {
	out := make([]Node, len(roots))
	for i, r := range roots {
		out[i] = Snapshot(r)
	}
	return out
}

// floatEqual treats NaN as equal to itself.
func floatEqual(a, b float32) bool {
	return a == b || (math.IsNaN(float64(a)) && math.IsNaN(float64(b)))
}

// MeshData is the SharedString payload used by SampleTree.
var MeshData = bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 32)

// SampleTree returns a place exercising every property kind:
//
//	game (DataModel)
//	  Workspace
//	    Model "House" (PrimaryPart -> Door)
//	      Part "Door"
//	      MeshPart "Roof"
//	      MeshPart "Chimney"
//	  Lighting
func SampleTree() *rbxfile.Instance {
	game := rbxfile.NewInstance("DataModel", "game")
	workspace := rbxfile.NewInstance("Workspace", "")
	house := rbxfile.NewInstance("Model", "House")
	door := rbxfile.NewInstance("Part", "Door")
	roof := rbxfile.NewInstance("MeshPart", "Roof")
	chimney := rbxfile.NewInstance("MeshPart", "Chimney")
	lighting := rbxfile.NewInstance("Lighting", "")

	must(workspace.SetParent(game))
	must(lighting.SetParent(game))
	must(house.SetParent(workspace))
	must(door.SetParent(house))
	must(roof.SetParent(house))
	must(chimney.SetParent(house))

	set(house, "PrimaryPart", door)
	set(house, "WorldPivotData", rbxfile.NewCFrame(rbxfile.Vector3{X: 0, Y: 5, Z: 0}))

	set(door, "Anchored", true)
	set(door, "BrickColor", rbxfile.BrickColor(194))
	set(door, "CFrame", rbxfile.CFrame{
		Position: rbxfile.Vector3{X: 1, Y: 2.5, Z: -3},
		Rotation: [9]float32{0, 0, 1, 0, 1, 0, -1, 0, 0},
	})
	set(door, "Color", rbxfile.Color3{R: 1, G: 0.5, B: 0.25})
	set(door, "Color3uint8", rbxfile.Color3uint8{R: 163, G: 162, B: 165})
	set(door, "CustomPhysicalProperties", rbxfile.PhysicalProperties{
		CustomPhysics: true, Density: 0.7, Friction: 0.3, Elasticity: 0.5, FrictionWeight: 1, ElasticityWeight: 1,
	})
	set(door, "Material", rbxfile.Enum(256))
	set(door, "Size", rbxfile.Vector3{X: 4, Y: 7, Z: 0.5})
	set(door, "Transparency", float32(0.25))
	set(door, "Mass", 12.125)
	set(door, "CollisionGroupId", 3)
	set(door, "SourceAssetId", int64(-1)<<40)
	set(door, "Hinges", rbxfile.Axes(rbxfile.AxisY))
	set(door, "Studs", rbxfile.Faces(rbxfile.FaceTop|rbxfile.FaceBottom))
	set(door, "Grid", rbxfile.Vector3int16{X: -2, Y: 0, Z: 300})
	set(door, "Look", rbxfile.Ray{Direction: rbxfile.Vector3{Z: -1}})
	set(door, "Anchor", rbxfile.Vector2{X: 0.5, Y: 1})
	set(door, "Padding", rbxfile.UDim{Scale: 0, Offset: 8})
	set(door, "Position", rbxfile.UDim2{X: rbxfile.UDim{Scale: 0.5, Offset: -10}, Y: rbxfile.UDim{Scale: 1, Offset: 0}})
	set(door, "SliceCenter", rbxfile.Rect{Min: rbxfile.Vector2{X: 2, Y: 2}, Max: rbxfile.Vector2{X: 30, Y: 30}})
	set(door, "Fade", rbxfile.NumberSequence{Keypoints: []rbxfile.NumberSequenceKeypoint{
		{Time: 0, Value: 1}, {Time: 0.5, Value: 0.5, Envelope: 0.125}, {Time: 1, Value: 0},
	}})
	set(door, "Tint", rbxfile.ColorSequence{Keypoints: []rbxfile.ColorSequenceKeypoint{
		{Time: 0, Value: rbxfile.Color3{R: 1}}, {Time: 1, Value: rbxfile.Color3{B: 1}},
	}})
	set(door, "Lifetime", rbxfile.NumberRange{Min: 1, Max: 2.5})
	door.AddTag("Interactive")
	door.AddTag("Door")

	for _, mesh := range []*rbxfile.Instance{roof, chimney} {
		set(mesh, "PhysicalConfigData", rbxfile.NewSharedString(MeshData))
		set(mesh, "Target", rbxfile.Ref{})
	}

	source := rbxfile.NewProperty("Source", rbxfile.TypeString)
	source.WireName = "ProtectedString"
	lighting.AddProperty(source)
	must(source.SetValue(rbxfile.String("print(\"hi\") -- <b>&</b>")))
	set(lighting, "Sky", rbxfile.String("rbxassetid://1234"))
	lighting.Property("Sky").WireName = "Content"
	set(lighting, "Blob", []byte{0, 1, 2, 255})

	return game
}

func set(inst *rbxfile.Instance, name string, v any) {
	must(inst.Set(name, v))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
