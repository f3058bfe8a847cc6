package main

import "testing"

func TestCheckGitBinaryFindsSystemGit(t *testing.T) {
	// git is a hard prerequisite for every other scout command, so it is
	// expected to be on PATH in any environment that runs these tests.
	if err := checkGitBinary(); err != nil {
		t.Errorf("checkGitBinary() = %v, want nil", err)
	}
}
