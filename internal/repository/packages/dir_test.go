package packages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/protonup/internal/domain/proton"
)

// writeFile creates a file of the given size, creating parent directories.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// collect drains the List sequence.
func collect(t *testing.T, repo *DirRepository) []proton.Package {
	t.Helper()

	var result []proton.Package

	for pkg, err := range repo.List() {
		require.NoError(t, err)

		result = append(result, pkg)
	}

	return result
}

// TestDirRepository_List_SizeAndMarker checks the size sum and the marker filter.
func TestDirRepository_List_SizeAndMarker(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := NewDirRepository(root)

	pkg := filepath.Join(root, "Proton-P")
	writeFile(t, filepath.Join(pkg, proton.MarkerFilename), 0)
	writeFile(t, filepath.Join(pkg, "files", "a.bin"), 1048576)
	writeFile(t, filepath.Join(pkg, "b.bin"), 2097152)

	// Directory without the marker is not a package.
	writeFile(t, filepath.Join(root, "Proton-partial", "dist", "lib.so"), 10)
	// Loose files are ignored.
	writeFile(t, filepath.Join(root, "README"), 3)

	got := collect(t, repo)
	require.Equal(t, []proton.Package{{Identifier: "Proton-P", SizeBytes: 3145728}}, got)

	// Restartable: a second pass sees the same thing.
	require.Equal(t, got, collect(t, repo))
}

// TestDirRepository_List_SkipsSymlinkLoops ensures a self-referencing link does not hang or count.
func TestDirRepository_List_SkipsSymlinkLoops(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkg := filepath.Join(root, "GE-Proton9-1")
	writeFile(t, filepath.Join(pkg, proton.MarkerFilename), 5)
	require.NoError(t, os.Symlink(pkg, filepath.Join(pkg, "loop")))

	got := collect(t, NewDirRepository(root))
	require.Equal(t, []proton.Package{{Identifier: "GE-Proton9-1", SizeBytes: 5}}, got)
}

// TestDirRepository_List_MissingRoot yields nothing for an absent install directory.
func TestDirRepository_List_MissingRoot(t *testing.T) {
	t.Parallel()

	require.Empty(t, collect(t, NewDirRepository(filepath.Join(t.TempDir(), "absent"))))
}

// TestDirRepository_IsInstalled requires the marker, not just the directory.
func TestDirRepository_IsInstalled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := NewDirRepository(root)

	require.False(t, repo.IsInstalled("v8-26"))
	require.False(t, repo.Exists("v8-26"))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "Proton-v8-26"), 0o755))
	require.False(t, repo.IsInstalled("v8-26"))
	require.True(t, repo.Exists("v8-26"))

	writeFile(t, filepath.Join(root, "Proton-v8-26", proton.MarkerFilename), 1)
	require.True(t, repo.IsInstalled("v8-26"))
}

// TestDirRepository_Remove deletes the package and reports missing ones.
func TestDirRepository_Remove(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := NewDirRepository(root)

	require.ErrorIs(t, repo.Remove("v8-26"), proton.ErrNotInstalled)

	writeFile(t, filepath.Join(root, "Proton-v8-26", proton.MarkerFilename), 1)
	writeFile(t, filepath.Join(root, "Proton-v8-26", "dist", "bin", "wine"), 64)

	require.NoError(t, repo.Remove("v8-26"))
	require.False(t, repo.Exists("v8-26"))
	require.Empty(t, collect(t, repo))
}

// TestDirRepository_Remove_Partial reports the residue when deletion is denied.
func TestDirRepository_Remove_Partial(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	repo := NewDirRepository(root)

	locked := filepath.Join(root, "Proton-v8-26", "locked")
	writeFile(t, filepath.Join(locked, "file"), 1)
	require.NoError(t, os.Chmod(locked, 0o500))

	t.Cleanup(func() {
		_ = os.Chmod(locked, 0o755)
	})

	err := repo.Remove("v8-26")
	require.ErrorIs(t, err, proton.ErrPartialRemoval)

	var partial *proton.PartialRemovalError
	require.ErrorAs(t, err, &partial)

	want, err := repo.PackagePath("v8-26")
	require.NoError(t, err)
	require.Equal(t, want, partial.Path)
}

// TestDirRepository_RejectsEscapingTags never touches paths outside the install directory.
func TestDirRepository_RejectsEscapingTags(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	root := filepath.Join(home, ".steam", "root", "compatibilitytools.d")
	repo := NewDirRepository(root)

	writeFile(t, filepath.Join(root, "GE-Proton8-26", proton.MarkerFilename), 1)
	writeFile(t, filepath.Join(home, ".steam", "root", "userdata", "save"), 1)
	writeFile(t, filepath.Join(home, ".ssh", "id_ed25519"), 1)

	for _, tag := range []string{"", "..", "../..", "../../../userdata", "Proton/../../../../.ssh", "Proton..\\x", "GE-Proton8-26/.."} {
		_, err := repo.PackagePath(tag)
		require.ErrorIs(t, err, proton.ErrInvalidTag, tag)
		require.False(t, repo.Exists(tag), tag)
		require.False(t, repo.IsInstalled(tag), tag)
		require.ErrorIs(t, repo.Remove(tag), proton.ErrInvalidTag, tag)
	}

	require.FileExists(t, filepath.Join(root, "GE-Proton8-26", proton.MarkerFilename))
	require.FileExists(t, filepath.Join(home, ".steam", "root", "userdata", "save"))
	require.FileExists(t, filepath.Join(home, ".ssh", "id_ed25519"))
}

// TestDirRepository_List_FollowsSymlinkedPackages lists a package that is a link to a directory.
func TestDirRepository_List_FollowsSymlinkedPackages(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "GE-Proton9-1")
	writeFile(t, filepath.Join(target, proton.MarkerFilename), 7)
	require.NoError(t, os.Symlink(target, filepath.Join(root, "GE-Proton9-1")))

	// A link to a plain file is still not a package.
	writeFile(t, filepath.Join(root, "README"), 3)
	require.NoError(t, os.Symlink(filepath.Join(root, "README"), filepath.Join(root, "Proton-readme")))

	repo := NewDirRepository(root)
	require.True(t, repo.IsInstalled("GE-Proton9-1"))
	require.Equal(t, []proton.Package{{Identifier: "GE-Proton9-1", SizeBytes: 7}}, collect(t, repo))
}
