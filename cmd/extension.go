package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ExtensionPrefix is the prefix of external subcommands: "alloc foo" runs
// "alloc-foo" when foo is not a builtin.
const ExtensionPrefix = "alloc-"

// extensionEnv returns the global settings as environment variables, so
// that an extension sees the same files as alloc.
func extensionEnv() []string {
	return []string{
		EnvHoldingsFile + "=" + HoldingsFile(),
		EnvTargetsFile + "=" + TargetsFile(),
		EnvCacheFile + "=" + CacheFile(),
		EnvVerbose + "=" + strconv.FormatBool(IsVerbose()),
	}
}

// RunExtension attempts to find and execute an external alloc-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		log.Debug().Err(err).Str("extension", name).Msg("external command not found in PATH")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
