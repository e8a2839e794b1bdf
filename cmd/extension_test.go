package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension test uses a shell script")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\n" +
		"echo args=$@\n" +
		"echo " + EnvHoldingsFile + "=$" + EnvHoldingsFile + "\n" +
		"echo " + EnvVerbose + "=$" + EnvVerbose + "\n" +
		"exit 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ExtensionPrefix+"hello"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	holdings := filepath.Join(dir, "my_holdings.json")
	setGlobal(t, holdingsFile, holdings)
	setGlobal(t, Verbose, true)
	var out bytes.Buffer
	setGlobal(t, &stdout, io.Writer(&out))

	found, code := RunExtension("hello", []string{"a", "b"})
	assert.True(t, found)
	assert.Equal(t, 3, code)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"args=a b",
		EnvHoldingsFile + "=" + holdings,
		EnvVerbose + "=true",
	}, lines)
}

func TestRunExtension_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	found, code := RunExtension("nope", nil)
	assert.False(t, found)
	assert.Equal(t, 0, code)
}
