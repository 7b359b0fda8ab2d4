package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	md2cv "github.com/alnah/go-md2cv"
	"github.com/alnah/go-md2cv/internal/config"
)

// Check levels, worst last.
const (
	levelOK    = "ok"
	levelWarn  = "warn"
	levelError = "error"
)

// doctorSmokeTimeout bounds the sample render.
const doctorSmokeTimeout = 10 * time.Second

// doctorSections orders the human report.
var doctorSections = []string{"Chrome/Chromium", "Environment", "System", "Rendering"}

// finding is one line of the report.
type finding struct {
	Section string `json:"section"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// doctorResult is the report printed by "md2cv doctor".
type doctorResult struct {
	Status   string     `json:"status"` // ready, warnings or errors
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Config   configInfo `json:"config"`
	Render   renderInfo `json:"render"`
	Findings []finding  `json:"findings"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type configInfo struct {
	Name      string `json:"name,omitempty"`
	Valid     bool   `json:"valid"`
	AssetPath string `json:"asset_path,omitempty"`
}

// renderInfo reports the sample render of the default template.
type renderInfo struct {
	Templates []string `json:"templates"`
	Pages     int      `json:"pages"`
	Oversize  []int    `json:"oversize,omitempty"`
}

// add records a finding and mirrors warnings and errors into their lists.
func (r *doctorResult) add(section, level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Findings = append(r.Findings, finding{Section: section, Level: level, Message: msg})
	switch level {
	case levelWarn:
		r.Warnings = append(r.Warnings, msg)
	case levelError:
		r.Errors = append(r.Errors, msg)
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	result := runDoctor(env)

	if slices.Contains(args, "--json") {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor runs every check in report order.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)
	checkRendering(result, env)

	switch {
	case len(result.Errors) > 0:
		result.Status = "errors"
	case len(result.Warnings) > 0:
		result.Status = "warnings"
	default:
		result.Status = "ready"
	}
	return result
}

// checkChrome locates the browser export and browser measurement need.
func checkChrome(r *doctorResult) {
	const section = "Chrome/Chromium"

	path := r.Env.BrowserBin
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			r.add(section, levelError,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN (render --engine metrics works without it)")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		r.add(section, levelError, "Chrome not found at %s", path)
		return
	}

	r.Chrome.Found = true
	r.Chrome.Path = path
	r.Chrome.Sandbox = r.Env.NoSandbox != "1"
	r.add(section, levelOK, "Found at %s", path)

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from env or launcher
	if err != nil {
		r.add(section, levelWarn, "Could not get Chrome version: %v", err)
	} else {
		r.Chrome.Version = strings.TrimSpace(string(out))
		r.add(section, levelOK, "Version: %s", r.Chrome.Version)
	}

	if r.Chrome.Sandbox {
		r.add(section, levelOK, "Sandbox: enabled")
	} else {
		r.add(section, levelOK, "Sandbox: disabled (ROD_NO_SANDBOX=1)")
	}
}

// ciVars are set by common CI runners.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment detects containers and CI, where Chrome's sandbox
// usually cannot start.
func checkEnvironment(r *doctorResult) {
	const section = "Environment"

	r.add(section, levelOK, "Platform: %s/%s", r.Env.OS, r.Env.Arch)

	r.Env.Container, r.Env.ContainerHint = detectContainer()
	if r.Env.Container {
		r.add(section, levelOK, "Container: detected (%s)", r.Env.ContainerHint)
	}
	r.Env.CI = slices.ContainsFunc(ciVars, func(v string) bool { return os.Getenv(v) != "" })
	if r.Env.CI {
		r.add(section, levelOK, "CI: detected")
	}

	if (r.Env.Container || r.Env.CI) && r.Env.NoSandbox != "1" {
		r.add(section, levelWarn, "Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// dockerEnvFile is the marker Docker creates at the container root.
var dockerEnvFile = "/.dockerenv"

// detectContainer reports the first container signal found and its name.
func detectContainer() (bool, string) {
	if os.Getenv("MD2CV_CONTAINER") == "1" {
		return true, "MD2CV_CONTAINER=1"
	}
	if _, err := os.Stat(dockerEnvFile); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory and the MD2CV_CONFIG file.
func checkSystem(r *doctorResult) {
	const section = "System"

	tmp := os.TempDir()
	scratch := filepath.Join(tmp, "md2cv-doctor-write")
	if err := os.WriteFile(scratch, []byte("ok"), 0o600); err != nil {
		r.add(section, levelError, "Temp directory not writable: %s", tmp)
	} else {
		_ = os.Remove(scratch)
		r.add(section, levelOK, "Temp directory: writable")
	}

	name := os.Getenv("MD2CV_CONFIG")
	if name == "" {
		r.Config.Valid = true
		return
	}
	r.Config.Name = name
	cfg, err := config.LoadConfig(name)
	if err != nil {
		r.add(section, levelError, "MD2CV_CONFIG: %v", err)
		return
	}
	r.Config.Valid = true
	r.Config.AssetPath = cfg.Assets.BasePath
	r.add(section, levelOK, "Config: %s", name)
}

// checkRendering renders the default template with metrics measurement,
// so the pipeline is verified even without a browser.
func checkRendering(r *doctorResult, env *Environment) {
	const section = "Rendering"

	newEngine := env.NewEngine
	if newEngine == nil {
		newEngine = md2cv.NewEngine
	}
	opts := []md2cv.Option{md2cv.WithMeasureEngine(md2cv.MeasureMetrics)}
	if r.Config.AssetPath != "" {
		opts = append(opts, md2cv.WithAssetPath(r.Config.AssetPath))
	}
	engine, err := newEngine(opts...)
	if err != nil {
		r.add(section, levelError, "Engine: %v", err)
		return
	}
	defer func() { _ = engine.Close() }()

	r.Render.Templates = engine.TemplateNames()
	r.add(section, levelOK, "Templates: %s", strings.Join(r.Render.Templates, ", "))

	set, err := engine.LoadTemplate(md2cv.DefaultTemplateName)
	if err != nil {
		r.add(section, levelError, "Default template: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), doctorSmokeTimeout)
	defer cancel()
	res, err := engine.Render(ctx, md2cv.Input{Markdown: set.Markdown, CSS: set.CSS})
	if err != nil {
		r.add(section, levelError, "Sample render: %v", err)
		return
	}
	r.Render.Pages = res.PageCount()
	r.Render.Oversize = res.Oversize()
	r.add(section, levelOK, "Sample render: %d %s", r.Render.Pages, plural(r.Render.Pages, "page"))
	if len(r.Render.Oversize) > 0 {
		r.add(section, levelWarn, "Sample render overflows on blocks %v", r.Render.Oversize)
	}
}

// printDoctorResult writes the human-readable report.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2cv doctor")
	fmt.Fprintln(w)

	tags := map[string]string{levelOK: "[OK]", levelWarn: "[WARN]", levelError: "[ERROR]"}
	for _, section := range doctorSections {
		fmt.Fprintln(w, section)
		for _, f := range r.Findings {
			if f.Section == section {
				fmt.Fprintf(w, "  %s %s\n", tags[f.Level], f.Message)
			}
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render and export")
	case "warnings":
		fmt.Fprintf(w, "Status: Ready with %d %s\n", len(r.Warnings), plural(len(r.Warnings), "warning"))
	case "errors":
		fmt.Fprintf(w, "Status: Not ready (%d %s)\n", len(r.Errors), plural(len(r.Errors), "error"))
	}
}
