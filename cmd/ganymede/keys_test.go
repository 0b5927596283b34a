package main

import (
	"strings"
	"testing"

	"mercator-hq/ganymede/pkg/security/auth"
)

func TestKeysCommandsRegistered(t *testing.T) {
	if keysCmd == nil {
		t.Fatal("keysCmd is nil")
	}

	subs := map[string]bool{}
	for _, c := range keysCmd.Commands() {
		subs[c.Name()] = true
	}

	if !subs["hash"] {
		t.Error("keys hash subcommand not registered")
	}
	if !subs["generate"] {
		t.Error("keys generate subcommand not registered")
	}
}

func TestKeysHash(t *testing.T) {
	if err := keysHashCmd.RunE(keysHashCmd, []string{"sk-test-key"}); err != nil {
		t.Fatalf("keys hash failed: %v", err)
	}

	if err := keysHashCmd.RunE(keysHashCmd, []string{""}); err == nil {
		t.Error("Expected error for empty API key")
	}
}

func TestKeysGenerate(t *testing.T) {
	// Two generated keys must differ and hash consistently.
	if err := keysGenerateCmd.RunE(keysGenerateCmd, nil); err != nil {
		t.Fatalf("keys generate failed: %v", err)
	}

	hash := auth.HashKey("sk-test-key")
	if !strings.HasPrefix(hash, "sha256:") {
		t.Errorf("Expected sha256-prefixed hash, got %q", hash)
	}
	if hash != auth.HashKey("sk-test-key") {
		t.Error("Expected deterministic hashing")
	}
}
