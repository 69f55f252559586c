package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestPasswordPolicyValidate(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}

	if err := policy.Validate("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := policy.Validate("lowercase1!"); err == nil {
		t.Fatalf("expected error for missing uppercase")
	}
	if err := policy.Validate("UPPERCASE1!"); err == nil {
		t.Fatalf("expected error for missing lowercase")
	}
	if err := policy.Validate("NoNumber!"); err == nil {
		t.Fatalf("expected error for missing number")
	}
	if err := policy.Validate("NoSpecial1"); err == nil {
		t.Fatalf("expected error for missing special")
	}
	if err := policy.Validate("GoodPass1!"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestPasswordPolicyMinLengthMessage(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}

	err := policy.Validate("123")
	if err == nil {
		t.Fatalf("expected error for short password")
	}
	if !strings.Contains(err.Error(), "Password must be at least 8 characters long") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestPasswordPolicyDefaults(t *testing.T) {
	policy := loadPasswordPolicy()

	// Character classes the service accepts by default.
	if err := policy.Validate("StrongPass123"); err != nil {
		t.Fatalf("expected no-special password to pass defaults, got %v", err)
	}
	if err := policy.Validate("SecurePass123!"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
	if err := policy.Validate("password"); err == nil {
		t.Fatalf("expected error for all-lowercase password")
	}
	if err := policy.Validate("12345678"); err == nil {
		t.Fatalf("expected error for digits-only password")
	}
	if err := policy.Validate("Password"); err == nil {
		t.Fatalf("expected error for password without number")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected default duration, got %v", got)
	}

	t.Setenv("TEST_BOOL", "true")
	if got := getBoolEnv("TEST_BOOL", false); got != true {
		t.Fatalf("expected true, got %v", got)
	}
	t.Setenv("TEST_BOOL", "invalid")
	if got := getBoolEnv("TEST_BOOL", true); got != true {
		t.Fatalf("expected default bool, got %v", got)
	}

	t.Setenv("TEST_INT", "42")
	if got := getIntEnv("TEST_INT", 5); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("TEST_INT", "invalid")
	if got := getIntEnv("TEST_INT", 5); got != 5 {
		t.Fatalf("expected default int, got %d", got)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "")
	t.Setenv("MYSQL_DSN", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when MYSQL_DSN is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/petmatch")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPPort != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.HTTPPort)
	}
	if cfg.AccessTokenTTL != 60*time.Minute {
		t.Fatalf("expected access TTL 60m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.ResetTokenTTL != 30*time.Minute {
		t.Fatalf("expected reset TTL 30m, got %v", cfg.ResetTokenTTL)
	}
	if cfg.DebugEndpoints {
		t.Fatalf("expected debug endpoints disabled by default")
	}
}

// chdirTemp keeps a stray .env in the working tree from leaking into Load.
func chdirTemp(t *testing.T) {
	t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}
