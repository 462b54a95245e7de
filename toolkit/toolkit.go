package toolkit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/logging"
)

// Command substrings rejected before any shell execution.
var denyList = []string{"rm -rf", "sudo", "passwd", "chmod 777", "dd if=", "mkfs", "shutdown", "reboot"}

// Path prefixes the file editor refuses to touch.
var restrictedPaths = []string{"/etc/", "/usr/", "/bin/", "/sbin/", "/root/", "/boot/", "/proc/", "/sys/"}

// ExecResult is the outcome of a code or shell execution.
type ExecResult struct {
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// FileResult is the outcome of a file edit operation.
type FileResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Path      string `json:"path"`
	Operation string `json:"operation"`
}

// JournalResult is the outcome of a journal operation.
type JournalResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Operation string `json:"operation"`
}

// Options configures a Toolkit.
type Options struct {
	WorkDir     string
	JournalPath string
	Timeout     time.Duration
	PythonBin   string
	Logger      logging.Logger
}

// Toolkit bundles the tool-execution capability providers. It has no mutable
// state beyond the journal file and is safe for concurrent use.
type Toolkit struct {
	workDir     string
	journalPath string
	timeout     time.Duration
	pythonBin   string
	logger      logging.Logger
}

// New constructs a Toolkit rooted at the process working directory unless
// overridden.
func New(optFns ...func(o *Options)) (*Toolkit, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	opts := Options{
		WorkDir:     wd,
		JournalPath: "assistant_journal.txt",
		Timeout:     30 * time.Second,
		PythonBin:   "python3",
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work dir: %w", err)
	}
	journalPath := opts.JournalPath
	if !filepath.IsAbs(journalPath) {
		journalPath = filepath.Join(workDir, journalPath)
	}
	return &Toolkit{
		workDir:     workDir,
		journalPath: journalPath,
		timeout:     opts.Timeout,
		pythonBin:   opts.PythonBin,
		logger:      opts.Logger,
	}, nil
}

// ExecuteCode writes the code to a temporary file and runs it with the
// configured interpreter under the toolkit's wall-clock ceiling.
func (t *Toolkit) ExecuteCode(ctx context.Context, code string) ExecResult {
	tmp, err := os.CreateTemp("", "agentrelay-*.py")
	if err != nil {
		return ExecResult{Success: false, Stderr: "create temp file: " + err.Error(), ExitCode: -1}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.WriteString(code); err != nil {
		_ = tmp.Close()
		return ExecResult{Success: false, Stderr: "write temp file: " + err.Error(), ExitCode: -1}
	}
	if err := tmp.Close(); err != nil {
		return ExecResult{Success: false, Stderr: "close temp file: " + err.Error(), ExitCode: -1}
	}
	return t.run(ctx, t.pythonBin, tmp.Name())
}

// RunShell executes a shell command after the deny-list check.
func (t *Toolkit) RunShell(ctx context.Context, command string) ExecResult {
	lower := strings.ToLower(command)
	for _, blocked := range denyList {
		if strings.Contains(lower, blocked) {
			return ExecResult{Success: false, Stderr: "command blocked for security reasons", ExitCode: -1}
		}
	}
	return t.run(ctx, "sh", "-c", command)
}

func (t *Toolkit) run(ctx context.Context, name string, args ...string) ExecResult {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = t.workDir
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	t.logger.Info("tool execution finished", "cmd", name, "duration", time.Since(start), "success", err == nil)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return ExecResult{
			Success:  false,
			Stdout:   stdout.String(),
			Stderr:   fmt.Sprintf("execution timed out after %s", t.timeout),
			ExitCode: -1,
		}
	}
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return ExecResult{Success: false, Stdout: stdout.String(), Stderr: err.Error(), ExitCode: -1}
		}
	}
	return ExecResult{
		Success:  err == nil,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// EditFile reads, writes or appends a file. The resolved path must stay under
// the toolkit's working directory and outside restricted system directories.
func (t *Toolkit) EditFile(path, content, operation string) FileResult {
	for _, restricted := range restrictedPaths {
		if strings.HasPrefix(path, restricted) {
			return FileResult{Success: false, Error: "access to this file path is restricted", Path: path, Operation: operation}
		}
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(t.workDir, path)
	}
	abs = filepath.Clean(abs)
	if abs != t.workDir && !strings.HasPrefix(abs, t.workDir+string(filepath.Separator)) {
		return FileResult{Success: false, Error: "file path must be within the working directory", Path: path, Operation: operation}
	}

	switch operation {
	case "read":
		data, err := os.ReadFile(abs)
		if err != nil {
			return FileResult{Success: false, Error: "file does not exist or is unreadable", Path: path, Operation: operation}
		}
		return FileResult{Success: true, Content: string(data), Path: path, Operation: operation}

	case "write":
		if dir := filepath.Dir(abs); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return FileResult{Success: false, Error: "create directory: " + err.Error(), Path: path, Operation: operation}
			}
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			return FileResult{Success: false, Error: "write file: " + err.Error(), Path: path, Operation: operation}
		}
		return FileResult{Success: true, Message: fmt.Sprintf("file %q written successfully", path), Path: path, Operation: operation}

	case "append":
		f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return FileResult{Success: false, Error: "open file: " + err.Error(), Path: path, Operation: operation}
		}
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return FileResult{Success: false, Error: "append to file: " + err.Error(), Path: path, Operation: operation}
		}
		return FileResult{Success: true, Message: fmt.Sprintf("content appended to %q successfully", path), Path: path, Operation: operation}

	default:
		return FileResult{Success: false, Error: fmt.Sprintf("unknown operation: %s", operation), Path: path, Operation: operation}
	}
}

// Journal adds to, reads or clears the append-only journal. Entries are
// timestamp-prefixed.
func (t *Toolkit) Journal(entry, operation string) JournalResult {
	switch operation {
	case "add":
		line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), entry)
		f, err := os.OpenFile(t.journalPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return JournalResult{Success: false, Error: "open journal: " + err.Error(), Operation: operation}
		}
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(line); err != nil {
			return JournalResult{Success: false, Error: "write journal: " + err.Error(), Operation: operation}
		}
		return JournalResult{Success: true, Message: "journal entry added successfully", Operation: operation}

	case "read":
		data, err := os.ReadFile(t.journalPath)
		if os.IsNotExist(err) {
			return JournalResult{Success: true, Content: "", Message: "journal is empty", Operation: operation}
		}
		if err != nil {
			return JournalResult{Success: false, Error: "read journal: " + err.Error(), Operation: operation}
		}
		return JournalResult{Success: true, Content: string(data), Operation: operation}

	case "clear":
		if err := os.Remove(t.journalPath); err != nil && !os.IsNotExist(err) {
			return JournalResult{Success: false, Error: "clear journal: " + err.Error(), Operation: operation}
		}
		return JournalResult{Success: true, Message: "journal cleared successfully", Operation: operation}

	default:
		return JournalResult{Success: false, Error: fmt.Sprintf("unknown journal operation: %s", operation), Operation: operation}
	}
}
