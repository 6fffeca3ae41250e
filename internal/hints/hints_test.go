package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel(): they call t.Setenv and
//   replace the package-level IsInContainer

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment Detection
// ---------------------------------------------------------------------------

func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(k, "")
	}
}

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		env         map[string]string
		contains    []string
		notContains []string
	}{
		{
			name:     "github actions suggests sandbox flag",
			env:      map[string]string{"GITHUB_ACTIONS": "true"},
			contains: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "--html-only"},
		},
		{
			name:      "docker suggests sandbox flag",
			container: true,
			contains:  []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "sandbox already disabled",
			container:   true,
			env:         map[string]string{"ROD_NO_SANDBOX": "1"},
			notContains: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "browser bin already set",
			env:         map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
			notContains: []string{"ROD_BROWSER_BIN", "ROD_NO_SANDBOX"},
			contains:    []string{"--html-only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withContainer(t, tt.container)
			clearCIEnv(t)
			t.Setenv("ROD_NO_SANDBOX", "")
			t.Setenv("ROD_BROWSER_BIN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			hint := ForBrowserConnect()

			if !strings.HasPrefix(hint, "\n  hint: ") {
				t.Errorf("hint = %q, want hint prefix", hint)
			}
			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint = %q, want it to contain %q", hint, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(hint, unwanted) {
					t.Errorf("hint = %q, should not contain %q", hint, unwanted)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSimpleHints
// ---------------------------------------------------------------------------

func TestSimpleHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hint     string
		contains string
	}{
		{"timeout", ForTimeout(), "--timeout"},
		{"server start", ForServerStart("localhost:3000"), "--addr"},
		{"server start names addr", ForServerStart("localhost:3000"), "localhost:3000"},
		{"image dir", ForImageDir("docs/img"), "docs/img"},
		{"image dir empty", ForImageDir(""), "--images-dir"},
		{"output directory", ForOutputDirectory(), "writable"},
		{"highlight", ForHighlightNotFound(nil), "chroma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !strings.HasPrefix(tt.hint, "\n  hint: ") {
				t.Errorf("hint = %q, want hint prefix", tt.hint)
			}
			if !strings.Contains(tt.hint, tt.contains) {
				t.Errorf("hint = %q, want it to contain %q", tt.hint, tt.contains)
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
		excludes string
	}{
		{
			name:     "no paths",
			contains: "--config",
		},
		{
			name:     "user config dir suggested",
			paths:    []string{"./ci.yaml", "/home/u/.config/mdpdf/ci.yaml"},
			contains: "or create /home/u/.config/mdpdf/ci.yaml",
		},
		{
			name:     "cwd only",
			paths:    []string{"./ci.yaml"},
			excludes: "or create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if tt.contains != "" && !strings.Contains(hint, tt.contains) {
				t.Errorf("hint = %q, want it to contain %q", hint, tt.contains)
			}
			if tt.excludes != "" && strings.Contains(hint, tt.excludes) {
				t.Errorf("hint = %q, should not contain %q", hint, tt.excludes)
			}
		})
	}
}

func TestForStyleNotFound(t *testing.T) {
	t.Parallel()

	if got := ForStyleNotFound(nil); got != "" {
		t.Errorf("ForStyleNotFound(nil) = %q, want empty", got)
	}
	if got := ForStyleNotFound([]string{"default", "dark"}); !strings.Contains(got, "default, dark") {
		t.Errorf("ForStyleNotFound() = %q", got)
	}
}

func TestForHighlightNotFound(t *testing.T) {
	t.Parallel()

	got := ForHighlightNotFound([]string{"github", "monokai"})
	if !strings.Contains(got, "github, monokai") {
		t.Errorf("ForHighlightNotFound() = %q, want the style list", got)
	}
	if !strings.Contains(got, "CSS file") {
		t.Errorf("ForHighlightNotFound() = %q, want the CSS path option", got)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}
