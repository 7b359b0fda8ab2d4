package hints

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Suggestions depend on the environment
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		env    Environment
		want   []string
		absent []string
	}{
		{
			name:   "bare host",
			env:    Environment{},
			want:   []string{"ROD_BROWSER_BIN", "--engine metrics"},
			absent: []string{"ROD_NO_SANDBOX"},
		},
		{
			name: "ci without sandbox override",
			env:  Environment{CI: true},
			want: []string{"ROD_NO_SANDBOX=1", "ROD_BROWSER_BIN", "--engine metrics"},
		},
		{
			name: "container without sandbox override",
			env:  Environment{Container: true},
			want: []string{"ROD_NO_SANDBOX=1"},
		},
		{
			name:   "sandbox already disabled",
			env:    Environment{CI: true, NoSandbox: "1"},
			absent: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:   "fully configured",
			env:    Environment{Container: true, NoSandbox: "1", BrowserBin: "/usr/bin/chromium"},
			want:   []string{"--engine metrics"},
			absent: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForBrowserConnect(tt.env)
			if !strings.HasPrefix(got, "\n  hint: ") {
				t.Errorf("ForBrowserConnect() = %q, want hint prefix", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ForBrowserConnect() = %q, want %q", got, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("ForBrowserConnect() = %q, should not mention %q", got, a)
				}
			}
		})
	}
}

func TestCurrentEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("JENKINS_URL", "")
	t.Setenv("MD2CV_CONTAINER", "1")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/opt/chrome")

	got := CurrentEnvironment()
	want := Environment{CI: true, Container: true, NoSandbox: "1", BrowserBin: "/opt/chrome"}
	if got != want {
		t.Errorf("CurrentEnvironment() = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestForConfigNotFound - User config path is offered when tried
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tried []string
		want  string
	}{
		{"nothing tried", nil, "\n  hint: use --config /path/to/file.yaml"},
		{"local only", []string{"work.yaml"}, "\n  hint: use --config /path/to/file.yaml"},
		{
			"user config tried",
			[]string{"work.yaml", "/home/jane/.config/go-md2cv/work.yaml"},
			"\n  hint: use --config /path/to/file.yaml or create /home/jane/.config/go-md2cv/work.yaml",
		},
		{
			"windows separators",
			[]string{`C:\Users\jane\.config\go-md2cv\work.yaml`},
			`or create C:\Users\jane\.config\go-md2cv\work.yaml`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ForConfigNotFound(tt.tried); !strings.HasSuffix(got, tt.want) {
				t.Errorf("ForConfigNotFound(%v) = %q, want suffix %q", tt.tried, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestForTemplateNotFound - List hints vanish when the list is empty
// ---------------------------------------------------------------------------

func TestForTemplateNotFound(t *testing.T) {
	t.Parallel()

	if got := ForTemplateNotFound(nil); got != "" {
		t.Errorf("ForTemplateNotFound(nil) = %q, want empty", got)
	}
	if got, want := ForTemplateNotFound([]string{"compact", "default"}), "\n  hint: available: compact, default"; got != want {
		t.Errorf("ForTemplateNotFound() = %q, want %q", got, want)
	}
}

func TestForOversize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages []int
		want  string
	}{
		{"none", nil, ""},
		{"first page", []int{0}, "page 1 holds a block"},
		{"several pages", []int{1, 3}, "pages 2, 4 hold a block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForOversize(tt.pages)
			if tt.want == "" {
				if got != "" {
					t.Errorf("ForOversize(%v) = %q, want empty", tt.pages, got)
				}
				return
			}
			if !strings.Contains(got, tt.want) || !strings.Contains(got, "--font-size") {
				t.Errorf("ForOversize(%v) = %q, want %q and --font-size", tt.pages, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFixedHints - Every fixed hint shares the format
// ---------------------------------------------------------------------------

func TestFixedHints(t *testing.T) {
	t.Parallel()

	for name, hint := range map[string]string{
		"timeout":      ForTimeout(),
		"output":       ForOutputDirectory(),
		"front matter": ForFrontMatter(),
		"style":        ForStyle(),
	} {
		if !strings.HasPrefix(hint, "\n  hint: ") || strings.Count(hint, "\n") != 1 {
			t.Errorf("%s hint = %q, want a single hint line", name, hint)
		}
	}
	if !strings.Contains(ForTimeout(), "--timeout") {
		t.Error("timeout hint should name --timeout")
	}
	if !strings.Contains(ForFrontMatter(), "--front-matter") {
		t.Error("front matter hint should name --front-matter")
	}
}
