package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// RunExtension attempts to find and execute an external kcs-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// The extension inherits the standard streams, and the settings of kcs as
// KINESIS_* environment variables, flags and .env file included.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "kcs-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		// If it's not an ExitError we can't get the status, report a generic error
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1 // Indicate that an attempt was made, but it failed
	}
	return true, 0
}

// extensionEnv returns the settings passed to extensions. Unset settings are
// left out.
func extensionEnv() []string {
	var env []string
	for _, s := range []struct {
		name  string
		value string
	}{
		{EnvAssetRoot, setting(assetRoot, EnvAssetRoot)},
		{EnvExpenseRoot, setting(expenseRoot, EnvExpenseRoot)},
		{EnvUncategorisedAccount, setting(uncategorisedAccount, EnvUncategorisedAccount)},
		{EnvPublicKey, setting(publicKey, EnvPublicKey)},
		{EnvPrivateKey, setting(privateKey, EnvPrivateKey)},
		{EnvAPIURL, setting(apiURL, EnvAPIURL)},
		{EnvLogLevel, setting(logLevel, EnvLogLevel)},
	} {
		if s.value != "" {
			env = append(env, s.name+"="+s.value)
		}
	}
	return env
}
