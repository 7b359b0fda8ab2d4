// Package hints appends remedies to CLI error messages. Every hint renders
// as "\n  hint: <text>" so it reads as a second line under the error.
package hints

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alnah/go-md2cv/internal/fileutil"
)

// Environment is the process state browser hints depend on.
type Environment struct {
	CI         bool
	Container  bool
	NoSandbox  string // ROD_NO_SANDBOX
	BrowserBin string // ROD_BROWSER_BIN
}

// CurrentEnvironment reads the Environment of this process.
func CurrentEnvironment() Environment {
	ci := slices.ContainsFunc([]string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"},
		func(v string) bool { return os.Getenv(v) != "" })
	return Environment{
		CI:         ci,
		Container:  fileutil.FileExists("/.dockerenv") || os.Getenv("MD2CV_CONTAINER") == "1",
		NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
		BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
	}
}

// ForBrowserConnect suggests how to get Chrome running in env, and the
// metrics engine that renders without it.
func ForBrowserConnect(env Environment) string {
	var parts []string
	if (env.CI || env.Container) && env.NoSandbox != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if env.BrowserBin == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	parts = append(parts, "use --engine metrics to measure without a browser")
	return format(strings.Join(parts, "; "))
}

func ForTimeout() string {
	return format("for long resumes or slow font loading, use --timeout flag")
}

// ForConfigNotFound proposes --config, or creating the user config file
// when it was among the paths tried.
func ForConfigNotFound(tried []string) string {
	hint := "use --config /path/to/file.yaml"
	if i := slices.IndexFunc(tried, func(p string) bool {
		return strings.Contains(toSlash(p), ".config/go-md2cv")
	}); i >= 0 {
		hint += " or create " + tried[i]
	}
	return format(hint)
}

func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound lists the templates that do exist.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func ForFrontMatter() string {
	return format("header must open with --- on the first line and close with ---; " +
		"use --front-matter last or empty to tolerate errors")
}

func ForStyle() string {
	return format("paper: A4, letter or legal; margins must leave a positive content box; theme color as #rgb or #rrggbb")
}

// ForOversize names the overflowing pages, given zero-based.
func ForOversize(pages []int) string {
	if len(pages) == 0 {
		return ""
	}
	nums := make([]string, len(pages))
	for i, p := range pages {
		nums[i] = strconv.Itoa(p + 1)
	}
	subject := "page " + nums[0] + " holds"
	if len(nums) > 1 {
		subject = "pages " + strings.Join(nums, ", ") + " hold"
	}
	return format(subject + " a block taller than the page; split it or reduce --font-size")
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
