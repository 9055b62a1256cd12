package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-rbxfile/internal/rbxtest"
	"github.com/robert-malhotra/go-rbxfile/rbxfile"
	"github.com/robert-malhotra/go-rbxfile/rbxl"
	"github.com/robert-malhotra/go-rbxfile/rbxlx"
)

func init() {
	color.NoColor = true
}

func writeSample(t *testing.T, binary bool, edit func(game *rbxfile.Instance)) string {
	t.Helper()
	game := rbxtest.SampleTree()
	if edit != nil {
		edit(game)
	}
	roots := []*rbxfile.Instance{game}

	var data []byte
	var err error
	name := "place.rbxlx"
	if binary {
		name = "place.rbxl"
		data, _, err = rbxl.EncodeToBytes(roots)
	} else {
		data, _, err = rbxlx.EncodeToBytes(roots)
	}
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunTree(t *testing.T) {
	for _, binary := range []bool{false, true} {
		path := writeSample(t, binary, nil)
		var out bytes.Buffer
		require.NoError(t, run(&out, path, &config{Props: true}))

		s := out.String()
		if binary {
			assert.Contains(t, s, "(binary)")
		} else {
			assert.Contains(t, s, "(xml)")
		}
		assert.Contains(t, s, "DataModel \"game\"\n")
		assert.Contains(t, s, "\n    Model \"House\"\n")
		assert.Contains(t, s, "[bool] Anchored = true")
		assert.Contains(t, s, "[Ref] PrimaryPart = game.Workspace.House.Door")
		assert.Contains(t, s, "tags: Interactive, Door")
	}
}

func TestRunList(t *testing.T) {
	path := writeSample(t, true, nil)
	var out bytes.Buffer
	require.NoError(t, run(&out, path, &config{List: true}))
	assert.Contains(t, out.String(), "game.Workspace.House.Door.Anchored [Bool] = true\n")
}

func TestRunGet(t *testing.T) {
	path := writeSample(t, false, nil)

	var out bytes.Buffer
	require.NoError(t, run(&out, path, &config{Get: "Workspace.House.Door.Anchored"}))
	assert.Equal(t, "[Bool] Anchored = true\n", out.String())

	err := run(&out, path, &config{Get: "Workspace.Garage.Door.Anchored"})
	assert.ErrorIs(t, err, rbxfile.ErrPathNotFound)

	err = run(&out, path, &config{Get: "Workspace.House.Door.Missing"})
	assert.ErrorIs(t, err, errNoProperty)
}

func TestRunYAML(t *testing.T) {
	path := writeSample(t, true, nil)
	var out bytes.Buffer
	require.NoError(t, run(&out, path, &config{YAML: true}))

	s := out.String()
	assert.Contains(t, s, "class: DataModel")
	assert.Contains(t, s, "name: game")
	assert.Contains(t, s, "children:")
}

func TestRunDiff(t *testing.T) {
	a := writeSample(t, false, nil)
	b := writeSample(t, true, func(game *rbxfile.Instance) {
		door, err := game.FindPath("Workspace.House.Door")
		require.NoError(t, err)
		require.NoError(t, door.Set("Anchored", false))
	})

	var out bytes.Buffer
	require.NoError(t, run(&out, a, &config{Diff: b}))
	assert.Contains(t, out.String(), "- game.Workspace.House.Door.Anchored [Bool] = true\n")
	assert.Contains(t, out.String(), "+ game.Workspace.House.Door.Anchored [Bool] = false\n")

	out.Reset()
	same := writeSample(t, true, nil)
	require.NoError(t, run(&out, a, &config{Diff: same}))
	assert.Equal(t, "no differences\n", out.String())
}

func TestRunBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.rbxl")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))
	assert.Error(t, run(&bytes.Buffer{}, path, &config{}))
}

func TestUseColor(t *testing.T) {
	assert.False(t, useColor(&bytes.Buffer{}, false), "buffers are never terminals")

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, useColor(f, false), "regular files are not terminals")
	assert.False(t, useColor(os.Stdout, true))
}
