package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"serve", "render", "migrate"}, names)
}

func TestRenderRequiresID(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"render"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeOutput(&stdout, "-", []byte("<html></html>")))
	assert.Equal(t, "<html></html>", stdout.String())

	path := filepath.Join(t.TempDir(), "invoice.html")
	require.NoError(t, writeOutput(&stdout, path, []byte("doc")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "doc", string(got))
}
