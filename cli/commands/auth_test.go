package commands

import (
	"strings"
	"testing"
)

func TestAuthSetPipedInput(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)
	ta.stdin.WriteString("my-secret-token\n")

	if err := ta.run("auth", "set", "work"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if ta.keystore.tokens["work"] != "my-secret-token" {
		t.Errorf("stored token = %q, want my-secret-token", ta.keystore.tokens["work"])
	}

	if !strings.Contains(ta.stdout.String(), "stored successfully") {
		t.Errorf("stdout should confirm storage, got: %s", ta.stdout.String())
	}
}

func TestAuthSetDefaultsToActiveAccount(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)
	ta.stdin.WriteString("token-value\n")

	// No positional account: falls back to the resolved account.
	if err := ta.run("auth", "set"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if ta.keystore.tokens[DefaultAccount] != "token-value" {
		t.Errorf("token not stored under %q: %v", DefaultAccount, ta.keystore.tokens)
	}
}

func TestAuthSetTrimsWhitespace(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)
	ta.stdin.WriteString("  padded-token  \n")

	if err := ta.run("auth", "set", "work"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if ta.keystore.tokens["work"] != "padded-token" {
		t.Errorf("stored token = %q, want padded-token", ta.keystore.tokens["work"])
	}
}

func TestAuthSetMissingTrailingNewline(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)
	ta.stdin.WriteString("bare-token")

	if err := ta.run("auth", "set", "work"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if ta.keystore.tokens["work"] != "bare-token" {
		t.Errorf("stored token = %q, want bare-token", ta.keystore.tokens["work"])
	}
}

func TestAuthSetEmptyToken(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)
	ta.stdin.WriteString("\n")

	err := ta.run("auth", "set", "work")
	if err == nil {
		t.Fatal("Execute() should reject an empty token")
	}

	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("error should mention empty token, got: %v", err)
	}
}

func TestAuthList(t *testing.T) {
	ks := newFakeKeystore(map[string]string{
		"work":     "t1",
		"default":  "t2",
		"personal": "t3",
	})
	ta := newTestApp(nil, ks, nil)

	if err := ta.run("auth", "list"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	stdout := ta.stdout.String()
	for _, account := range []string{"default", "personal", "work"} {
		if !strings.Contains(stdout, account) {
			t.Errorf("stdout should list %q, got: %s", account, stdout)
		}
	}

	// Token values must never be printed.
	for _, token := range []string{"t1", "t2", "t3"} {
		if strings.Contains(stdout, token) {
			t.Errorf("stdout leaked token %q: %s", token, stdout)
		}
	}
}

func TestAuthListEmpty(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)

	if err := ta.run("auth", "list"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(ta.stdout.String(), "No auth tokens stored") {
		t.Errorf("stdout = %q, want empty-keystore notice", ta.stdout.String())
	}
}

func TestAuthDelete(t *testing.T) {
	ks := newFakeKeystore(map[string]string{"work": "t1"})
	ta := newTestApp(nil, ks, nil)

	if err := ta.run("auth", "delete", "work"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if _, ok := ks.tokens["work"]; ok {
		t.Error("token still present after delete")
	}

	if !strings.Contains(ta.stdout.String(), "deleted") {
		t.Errorf("stdout should confirm deletion, got: %s", ta.stdout.String())
	}
}

func TestAuthDeleteMissing(t *testing.T) {
	ta := newTestApp(nil, newFakeKeystore(nil), nil)

	err := ta.run("auth", "delete", "ghost")
	if err == nil {
		t.Fatal("Execute() should fail for a missing account")
	}

	if !strings.Contains(err.Error(), "no token stored") {
		t.Errorf("error should mention missing token, got: %v", err)
	}
}
