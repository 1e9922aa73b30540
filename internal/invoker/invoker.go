package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

// Mode selects the predictor entry point.
type Mode string

const (
	// ModePredecirMascara generates a segmentation mask for an image.
	ModePredecirMascara Mode = "predecir_mascara"
	// ModePredecir scores a segmented wound and prints the categories as JSON.
	ModePredecir Mode = "predecir"
)

// Request describes one predictor run. ImagePath and MaskPath are base
// filenames resolved by the script relative to its own working directory.
type Request struct {
	Mode      Mode
	ImagePath string
	MaskPath  string
	CondaEnv  string
}

// Invoker runs the external predictor and returns its raw stdout. A non-zero
// exit is reported as *apperr.ExternalProcessError with the captured stderr.
type Invoker interface {
	Run(ctx context.Context, req Request) ([]byte, error)
}

type Config struct {
	// CondaBin is the conda executable tried first (CONDA_BIN).
	CondaBin string
	// ForceConda disables every fallback strategy (CATEGORIZADOR_FORCE_CONDA).
	ForceConda bool
	// InterpreterOverride is an explicit python binary tried after conda
	// (CATEGORIZADOR_PYTHON).
	InterpreterOverride string
	// PythonBin is the bare interpreter tried last.
	PythonBin string
	// ScriptPath is the predictor script, relative to WorkDir.
	ScriptPath string
	// WorkDir is the directory the child runs in.
	WorkDir string
	// ExecPath is the PATH value handed to the child.
	ExecPath string
}

func LoadConfigFromEnv(log *logger.Logger) Config {
	return Config{
		CondaBin:            utils.GetEnv("CONDA_BIN", "conda", log),
		ForceConda:          utils.GetEnvAsBool("CATEGORIZADOR_FORCE_CONDA", false, log),
		InterpreterOverride: utils.GetEnv("CATEGORIZADOR_PYTHON", "", log),
		PythonBin:           "python3",
		ScriptPath:          utils.GetEnv("CATEGORIZADOR_SCRIPT", "PWAT.py", log),
		WorkDir:             utils.GetEnv("CATEGORIZADOR_DIR", "categorizador", log),
		ExecPath:            utils.GetEnv("CATEGORIZADOR_PATH", "/usr/local/bin:/usr/bin:/bin", log),
	}
}

type processInvoker struct {
	cfg Config
	log *logger.Logger
}

func New(cfg Config, baseLog *logger.Logger) Invoker {
	return &processInvoker{cfg: cfg, log: baseLog.With("service", "Invoker")}
}

type strategy struct {
	label string
	bin   string
	args  []string
}

func (pi *processInvoker) strategies(req Request) []strategy {
	scriptArgs := []string{"--mode", string(req.Mode), "--image_path", req.ImagePath}
	if req.MaskPath != "" {
		scriptArgs = append(scriptArgs, "--mask_path", req.MaskPath)
	}

	condaArgs := append([]string{"run", "-n", req.CondaEnv, "python", pi.cfg.ScriptPath}, scriptArgs...)
	conda := strategy{label: "conda", bin: pi.cfg.CondaBin, args: condaArgs}
	if pi.cfg.ForceConda {
		return []strategy{conda}
	}

	list := []strategy{conda}
	if pi.cfg.InterpreterOverride != "" {
		list = append(list, strategy{
			label: "interpreter-override",
			bin:   pi.cfg.InterpreterOverride,
			args:  append([]string{pi.cfg.ScriptPath}, scriptArgs...),
		})
	}
	list = append(list, strategy{
		label: "python",
		bin:   pi.cfg.PythonBin,
		args:  append([]string{pi.cfg.ScriptPath}, scriptArgs...),
	})
	return list
}

// Run walks the strategy chain. A strategy whose binary cannot be spawned
// (missing executable) is skipped; once a process actually starts, its result
// is final and no further strategy is tried.
func (pi *processInvoker) Run(ctx context.Context, req Request) ([]byte, error) {
	if req.CondaEnv == "" {
		return nil, fmt.Errorf("conda environment name is required: %w", apperr.ErrValidation)
	}

	var lastSpawnErr error
	for _, strat := range pi.strategies(req) {
		stdout, err := pi.runOne(ctx, strat)
		if err == nil {
			pi.log.Debug("Predictor run succeeded", "strategy", strat.label, "mode", req.Mode)
			return stdout, nil
		}
		if isSpawnFailure(err) {
			pi.log.Debug("Predictor binary unavailable, trying next strategy", "strategy", strat.label, "bin", strat.bin)
			lastSpawnErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("No runnable predictor strategy (set CONDA_BIN or CATEGORIZADOR_PYTHON): %w", lastSpawnErr)
}

func (pi *processInvoker) runOne(ctx context.Context, strat strategy) ([]byte, error) {
	bin, err := pi.resolveBin(strat.bin)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, bin, strat.args...)
	cmd.Dir = pi.cfg.WorkDir
	cmd.Env = pi.cleanEnvironment()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &apperr.ExternalProcessError{
			Strategy: strat.label,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return nil, err
}

// resolveBin locates a bare binary name inside ExecPath. The server's own
// PATH is never consulted, for the child or for the lookup itself, so a
// binary planted outside the whitelist cannot be picked. Names that already
// carry a directory are used as given.
func (pi *processInvoker) resolveBin(bin string) (string, error) {
	if strings.ContainsRune(bin, os.PathSeparator) {
		return bin, nil
	}
	for _, dir := range filepath.SplitList(pi.cfg.ExecPath) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, bin)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%s not found in %s: %w", bin, pi.cfg.ExecPath, exec.ErrNotFound)
}

// cleanEnvironment hands the child a minimal environment so a polluted server
// PATH cannot change what the predictor script itself resolves.
func (pi *processInvoker) cleanEnvironment() []string {
	env := []string{"PATH=" + pi.cfg.ExecPath}
	if home := os.Getenv("HOME"); home != "" {
		env = append(env, "HOME="+home)
	}
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		env = append(env, "TMPDIR="+tmp)
	}
	return env
}

func isSpawnFailure(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
