package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/slim-bootstrap/framework/config"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTree_Get(t *testing.T) {
	tree := config.Tree{
		"settings": config.Tree{"addr": ":9000", "debug": true},
		"name":     "app",
	}

	v, ok := tree.Get("settings.addr")
	assert.True(t, ok)
	assert.Equal(t, ":9000", v)

	_, ok = tree.Get("settings.missing")
	assert.False(t, ok)
	_, ok = tree.Get("name.deeper")
	assert.False(t, ok)

	assert.Equal(t, ":9000", tree.GetString("settings.addr", ""))
	assert.Equal(t, "x", tree.GetString("settings.debug", "x"))
	assert.True(t, tree.GetBool("settings.debug", false))
	assert.Equal(t, config.Tree{"addr": ":9000", "debug": true}, tree.Sub("settings"))
	assert.Equal(t, config.Tree{}, tree.Sub("name"))
}

func TestNest(t *testing.T) {
	got := config.Nest([]string{"db", "mysql"}, config.Tree{"host": "localhost"})
	assert.Equal(t, config.Tree{"db": config.Tree{"mysql": config.Tree{"host": "localhost"}}}, got)

	assert.Equal(t, config.Tree{"k": 1}, config.Nest(nil, config.Tree{"k": 1}))
}

func TestMerge(t *testing.T) {
	dst := config.Tree{
		"db":    config.Tree{"host": "a", "port": 1},
		"tags":  []any{"x"},
		"name":  "first",
		"other": 1,
	}
	src := config.Tree{
		"db":   config.Tree{"user": "root"},
		"tags": []any{"y"},
		"name": "second",
		"new":  true,
	}

	got := config.Merge(dst, src)
	assert.Equal(t, config.Tree{
		"db":    config.Tree{"host": "a", "port": 1, "user": "root"},
		"tags":  []any{"x", "y"},
		"name":  []any{"first", "second"},
		"other": 1,
		"new":   true,
	}, got)

	// inputs are untouched
	assert.Equal(t, []any{"x"}, dst["tags"])
	assert.Equal(t, config.Tree{"host": "a", "port": 1}, dst["db"])
}

func TestOverlay(t *testing.T) {
	got := config.Overlay(
		config.Tree{"addr": ":8000", "nested": config.Tree{"a": 1}},
		config.Tree{"nested": config.Tree{"b": 2}},
	)
	assert.Equal(t, config.Tree{"addr": ":8000", "nested": config.Tree{"b": 2}}, got)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	tree, ok, err := config.ReadFile(writeFile(t, filepath.Join(dir, "app.yaml"), "name: demo\nnested:\n  list: [1, 2]\n  map:\n    3: three\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "demo", tree.GetString("name", ""))
	assert.Equal(t, []any{1, 2}, tree.Sub("nested")["list"])
	assert.Equal(t, "three", tree.GetString("nested.map.3", ""))

	_, ok, err = config.ReadFile(writeFile(t, filepath.Join(dir, "list.yaml"), "- a\n- b\n"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = config.ReadFile(writeFile(t, filepath.Join(dir, "empty.yaml"), ""))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = config.ReadFile(writeFile(t, filepath.Join(dir, "bad.yaml"), "a: [unclosed"))
	assert.Error(t, err)
}

func TestLoadTree_NestsByRelativePath(t *testing.T) {
	root := t.TempDir()
	files := []string{
		writeFile(t, filepath.Join(root, "app.yaml"), "name: demo\n"),
		writeFile(t, filepath.Join(root, "db", "mysql.yml"), "host: localhost\n"),
		writeFile(t, filepath.Join(root, "db", "mysql.yaml"), "port: 3306\n"),
		writeFile(t, filepath.Join(root, "skip.yaml"), "- not a map\n"),
	}

	tree, err := config.LoadTree(root, files)
	require.NoError(t, err)
	assert.Equal(t, config.Tree{
		"app": config.Tree{"name": "demo"},
		"db":  config.Tree{"mysql": config.Tree{"host": "localhost", "port": 3306}},
	}, tree)
}
