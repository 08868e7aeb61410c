package tree

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock returns strictly increasing timestamps
func testClock() func() time.Time {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	return func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
}

func newTestStore() *Store {
	return NewStore(WithClock(testClock()))
}

// fixture builds:
//
//	src/
//	  a.ts
//	  lib/
//	    util.ts
//	docs/
//	  readme.md
//	main.go
func fixture(t *testing.T) *Store {
	t.Helper()
	s := newTestStore()

	_, err := s.AddNode(NewFolder("src"), "")
	require.NoError(t, err)
	_, err = s.AddNode(NewFile("a.ts", "export const a = 1", ""), "src")
	require.NoError(t, err)
	_, err = s.AddNode(NewFolder("lib"), "src")
	require.NoError(t, err)
	_, err = s.AddNode(NewFile("util.ts", "export {}", ""), "src/lib")
	require.NoError(t, err)
	_, err = s.AddNode(NewFolder("docs"), "")
	require.NoError(t, err)
	_, err = s.AddNode(NewFile("readme.md", "# docs", ""), "docs")
	require.NoError(t, err)
	_, err = s.AddNode(NewFile("main.go", "package main", ""), "")
	require.NoError(t, err)
	return s
}

func mustFind(t *testing.T, s *Store, path string) *Node {
	t.Helper()
	n, ok := s.FindByPath(path)
	require.True(t, ok, "expected node at %q", path)
	return n
}

// assertInvariants checks path coherence, prefix invariant, acyclicity and id uniqueness
func assertInvariants(t *testing.T, nodes []*Node) {
	t.Helper()
	seen := make(map[string]bool)
	var check func(parent *Node, n *Node)
	check = func(parent *Node, n *Node) {
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true

		if parent == nil {
			assert.Equal(t, n.Name, n.Path)
		} else {
			assert.Equal(t, parent.Path+"/"+n.Name, n.Path)
			assert.True(t, strings.HasPrefix(n.Path, parent.Path+"/"))
		}
		for _, c := range n.Children() {
			check(n, c)
		}
	}
	for _, n := range nodes {
		check(nil, n)
	}
}

func TestAddNode(t *testing.T) {
	s := fixture(t)

	assert.Equal(t, 7, s.Len())
	util := mustFind(t, s, "src/lib/util.ts")
	assert.Equal(t, "typescript", util.Language())
	assert.NotEmpty(t, util.ID)
	assert.False(t, util.LastModified.IsZero())

	roots := s.Nodes()
	require.Len(t, roots, 3)
	assert.Equal(t, []string{"src", "docs", "main.go"}, []string{roots[0].Name, roots[1].Name, roots[2].Name})

	src := mustFind(t, s, "src")
	require.Len(t, src.Children(), 2)
	assert.Equal(t, "lib", src.Children()[1].Name, "new children are appended last")

	assertInvariants(t, s.Nodes())
}

func TestAddNodeMissingParent(t *testing.T) {
	s := fixture(t)
	before := s.Nodes()

	_, err := s.AddNode(NewFile("x.ts", "", ""), "missingFolder")

	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.Nodes(), "tree must be unchanged")
	_, ok := s.FindByPath("x.ts")
	assert.False(t, ok, "must not fall back to root")
}

func TestAddNodeRejections(t *testing.T) {
	tests := []struct {
		name    string
		node    *Node
		parent  string
		wantErr error
	}{
		{"into file", NewFile("x.ts", "", ""), "main.go", ErrNotFolder},
		{"sibling conflict", NewFile("a.ts", "", ""), "src", ErrAlreadyExists},
		{"root conflict", NewFolder("docs"), "", ErrAlreadyExists},
		{"empty name", NewFile("", "", ""), "", ErrInvalidName},
		{"slash in name", NewFile("a/b.ts", "", ""), "", ErrInvalidName},
		{"dot dot", NewFolder(".."), "src", ErrInvalidName},
		{"nil node", nil, "", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture(t)
			_, err := s.AddNode(tt.node, tt.parent)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 7, s.Len())
		})
	}
}

func TestAddNodeWithSubtree(t *testing.T) {
	s := fixture(t)

	pkg := NewFolder("pkg",
		NewFile("index.ts", "", ""),
		NewFolder("inner", NewFile("deep.ts", "", "")),
	)
	added, err := s.AddNode(pkg, "src")
	require.NoError(t, err)

	assert.Equal(t, "src/pkg", added.Path)
	deep := mustFind(t, s, "src/pkg/inner/deep.ts")
	assert.NotEmpty(t, deep.ID)
	assert.Empty(t, pkg.ID, "caller's node is not retained")
	assertInvariants(t, s.Nodes())

	_, err = s.AddNode(NewFolder("dup", NewFile("x", "", ""), NewFile("x", "", "")), "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddNodeRejectsDuplicateIDs(t *testing.T) {
	s := fixture(t)
	existing := mustFind(t, s, "main.go")

	dup := NewFile("other.go", "", "")
	dup.ID = existing.ID
	_, err := s.AddNode(dup, "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateNode(t *testing.T) {
	s := fixture(t)
	a := mustFind(t, s, "src/a.ts")

	content := "export const a = 2;"
	updated, err := s.UpdateNode(a.ID, Patch{Content: &content})
	require.NoError(t, err)

	assert.Equal(t, content, updated.Content())
	assert.Equal(t, int64(len(content)), updated.Size())
	assert.True(t, updated.LastModified.After(a.LastModified))
	assert.Equal(t, a.ID, updated.ID)
	assert.Equal(t, a.Path, updated.Path)

	// previous snapshot untouched
	assert.Equal(t, "export const a = 1", a.Content())

	_, err = s.UpdateNode("node_missing", Patch{Content: &content})
	assert.ErrorIs(t, err, ErrNotFound)

	src := mustFind(t, s, "src")
	_, err = s.UpdateNode(src.ID, Patch{Content: &content})
	assert.ErrorIs(t, err, ErrNotFile)

	expanded := true
	_, err = s.UpdateNode(a.ID, Patch{IsExpanded: &expanded})
	assert.ErrorIs(t, err, ErrNotFolder)

	_, err = s.UpdateNode(src.ID, Patch{IsExpanded: &expanded})
	require.NoError(t, err)
	assert.Contains(t, s.ExpandedFolderIDs(), src.ID)
}

func TestDeleteNodeRemovesSubtree(t *testing.T) {
	s := fixture(t)
	src := mustFind(t, s, "src")
	a := mustFind(t, s, "src/a.ts")
	util := mustFind(t, s, "src/lib/util.ts")
	lib := mustFind(t, s, "src/lib")
	main := mustFind(t, s, "main.go")

	s.Select(a.ID, util.ID, main.ID)
	require.NoError(t, s.SetExpanded(src.ID, true))

	removed, err := s.DeleteNode(src.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{src.ID, a.ID, lib.ID, util.ID}, removed)
	_, ok := s.FindByID(a.ID)
	assert.False(t, ok)
	_, ok = s.FindByPath("src/lib/util.ts")
	assert.False(t, ok)
	assert.Equal(t, []string{main.ID}, s.Selection())
	assert.Empty(t, s.ExpandedFolderIDs())
	assert.Equal(t, 3, s.Len())

	_, err = s.DeleteNode(src.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameFolderRewritesDescendants(t *testing.T) {
	s := newTestStore()
	folder, err := s.AddNode(NewFolder("folder"), "")
	require.NoError(t, err)
	_, err = s.AddNode(NewFile("x.ts", "", ""), "folder")
	require.NoError(t, err)
	_, err = s.AddNode(NewFolder("nested"), "folder")
	require.NoError(t, err)
	deep, err := s.AddNode(NewFile("deep.ts", "", ""), "folder/nested")
	require.NoError(t, err)

	renamed, err := s.RenameNode(folder.ID, "renamed")
	require.NoError(t, err)

	assert.Equal(t, "renamed", renamed.Path)
	assert.Equal(t, folder.ID, renamed.ID)
	x := mustFind(t, s, "renamed/x.ts")
	assert.Equal(t, "renamed/x.ts", x.Path)
	d := mustFind(t, s, "renamed/nested/deep.ts")
	assert.Equal(t, deep.ID, d.ID)
	_, ok := s.FindByPath("folder/x.ts")
	assert.False(t, ok)
	assertInvariants(t, s.Nodes())
}

func TestRenameRejections(t *testing.T) {
	s := fixture(t)
	a := mustFind(t, s, "src/a.ts")

	_, err := s.RenameNode(a.ID, "lib")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.RenameNode(a.ID, "bad/name")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.RenameNode("node_missing", "fine")
	assert.ErrorIs(t, err, ErrNotFound)

	// renaming to its own name is allowed
	_, err = s.RenameNode(a.ID, "a.ts")
	assert.NoError(t, err)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := fixture(t)
	before := s.Nodes()
	src := mustFind(t, s, "src")

	_, err := s.RenameNode(src.ID, "source")
	require.NoError(t, err)
	_, err = s.AddNode(NewFile("new.ts", "", ""), "source/lib")
	require.NoError(t, err)

	assert.Equal(t, "src", before[0].Path)
	assert.Equal(t, "src/lib", before[0].Children()[1].Path)
	assert.Len(t, before[0].Children()[1].Children(), 1)

	// untouched subtrees are shared, not copied
	assert.Same(t, before[1], s.Nodes()[1])
}

func TestToggleExpanded(t *testing.T) {
	s := fixture(t)
	docs := mustFind(t, s, "docs")

	open, err := s.ToggleExpanded(docs.ID)
	require.NoError(t, err)
	assert.True(t, open)
	assert.True(t, mustFind(t, s, "docs").Folder.IsExpanded)

	open, err = s.ToggleExpanded(docs.ID)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Empty(t, s.ExpandedFolderIDs())

	_, err = s.ToggleExpanded(mustFind(t, s, "main.go").ID)
	assert.ErrorIs(t, err, ErrNotFolder)
}

func TestSelectIgnoresUnknownIDs(t *testing.T) {
	s := fixture(t)
	main := mustFind(t, s, "main.go")

	s.Select(main.ID, "node_missing")
	assert.Equal(t, []string{main.ID}, s.Selection())

	s.Deselect(main.ID)
	assert.Empty(t, s.Selection())
}

func TestSetSort(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.SetSort(SortBySize, SortDesc))
	key, order := s.Sort()
	assert.Equal(t, SortBySize, key)
	assert.Equal(t, SortDesc, order)

	assert.ErrorIs(t, s.SetSort("color", SortAsc), ErrInvalidSort)
	assert.ErrorIs(t, s.SetSort(SortByName, "sideways"), ErrInvalidSort)
}

func TestRestore(t *testing.T) {
	src := fixture(t)
	state := src.State()
	lib := mustFind(t, src, "src/lib")
	state.ExpandedFolderIDs = []string{lib.ID, "node_gone", mustFind(t, src, "main.go").ID}

	dst := newTestStore()
	require.NoError(t, dst.Restore(state))

	assert.Equal(t, src.Len(), dst.Len())
	assert.Equal(t, []string{lib.ID}, dst.ExpandedFolderIDs())
	assert.True(t, mustFind(t, dst, "src/lib").Folder.IsExpanded)
	assertInvariants(t, dst.Nodes())
}

func TestRestoreRecomputesPaths(t *testing.T) {
	stale := NewFolder("app", NewFile("main.ts", "", ""))
	stale.ID = "node_app"
	stale.Path = "old/location"
	stale.Children()[0].Path = "old/location/main.ts"

	s := newTestStore()
	require.NoError(t, s.Restore(State{Nodes: []*Node{stale}}))

	n := mustFind(t, s, "app/main.ts")
	assert.Equal(t, "app/main.ts", n.Path)
	key, order := s.Sort()
	assert.Equal(t, SortByName, key)
	assert.Equal(t, SortAsc, order)
}

func TestRestoreRejectsDuplicateIDs(t *testing.T) {
	a := NewFile("a", "", "")
	b := NewFile("b", "", "")
	a.ID, b.ID = "node_same", "node_same"

	s := newTestStore()
	err := s.Restore(State{Nodes: []*Node{a, NewFolder("f", b)}})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFlatten(t *testing.T) {
	s := fixture(t)

	var paths []string
	for _, n := range s.Flatten() {
		paths = append(paths, n.Path)
	}
	assert.Equal(t, []string{
		"src", "src/a.ts", "src/lib", "src/lib/util.ts",
		"docs", "docs/readme.md",
		"main.go",
	}, paths)
}

func ExampleStore_RenameNode() {
	s := NewStore()
	src, _ := s.AddNode(NewFolder("src"), "")
	_, _ = s.AddNode(NewFile("a.ts", "", ""), "src")
	_, _ = s.RenameNode(src.ID, "lib")

	n, _ := s.FindByPath("lib/a.ts")
	fmt.Println(n.Path)
	// Output: lib/a.ts
}
