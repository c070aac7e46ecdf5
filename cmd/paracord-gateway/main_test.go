package main

import (
	"bytes"
	"testing"
)

// execute runs the root command with args and returns its output. Flag
// variables are package globals, so they are reset first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile, verbose = "", false
	runFlags.listenAddress, runFlags.logLevel, runFlags.dryRun = "", "", false
	certsFlags.certFile, certsFlags.keyFile = "", ""
	generateFlags.hosts, generateFlags.detect, generateFlags.force = nil, true, false
	infoFlags.format = "text"
	versionFlags.short = false

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
