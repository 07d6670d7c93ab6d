package localgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ScriptRunner invokes external python generators as narrow synchronous RPC
// collaborators: a single JSON request over stdin, a single JSON response on
// stdout, a hard deadline with forced termination. Non-conforming output is
// a soft failure for the caller to fall through, never a crash.
type ScriptRunner struct {
	PythonBin string
}

// NewScriptRunner creates a runner using the given python executable.
func NewScriptRunner(pythonBin string) *ScriptRunner {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	return &ScriptRunner{PythonBin: pythonBin}
}

// ScriptExists reports whether the script is present on disk. Missing
// scripts are skipped silently by the image sweep.
func (sr *ScriptRunner) ScriptExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ImageScriptResult covers the output shapes the local model scripts emit.
type ImageScriptResult struct {
	DataURI      string `json:"dataUri"`
	DataURISnake string `json:"data_uri"`
	Output       string `json:"output"`
	Content      string `json:"content"`
	Image        string `json:"image"`
	Text         string `json:"text"`
}

// Payload returns the first data-URI-shaped field, the bare base64 image
// field, or a bare https URL from the text field; empty when the script
// produced nothing recognizable.
func (r *ImageScriptResult) Payload() (value string, bareBase64 bool) {
	for _, v := range []string{r.DataURI, r.DataURISnake, r.Output, r.Content} {
		if strings.HasPrefix(v, "data:image/") {
			return v, false
		}
	}
	if r.Image != "" {
		return r.Image, true
	}
	if strings.HasPrefix(r.Text, "http://") || strings.HasPrefix(r.Text, "https://") {
		return strings.TrimSpace(r.Text), false
	}
	return "", false
}

// RunImageScript feeds {prompt,width,height} to a local model script and
// decodes its stdout. The context deadline bounds the whole invocation;
// CommandContext kills the process when it expires.
func (sr *ScriptRunner) RunImageScript(ctx context.Context, scriptPath, prompt string, width, height int, timeout time.Duration) (*ImageScriptResult, error) {
	input := map[string]any{"prompt": prompt, "width": width, "height": height}
	out, err := sr.run(ctx, scriptPath, input, timeout, map[string]string{
		"PYTHONUNBUFFERED":     "1",
		"CUDA_VISIBLE_DEVICES": "",
	})
	if err != nil {
		return nil, err
	}

	var result ImageScriptResult
	if err := json.Unmarshal(out, &result); err != nil {
		// Scripts sometimes print a bare URL or diagnostic text instead of JSON.
		result.Text = strings.TrimSpace(string(out))
	}
	return &result, nil
}

// PackagerResult is the contract of the external document packager.
type PackagerResult struct {
	DataURI  string `json:"dataUri"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Error    string `json:"error"`
}

// RunPackager feeds {text,format} to the python packager script and expects
// a JSON result with a content payload within the timeout.
func (sr *ScriptRunner) RunPackager(ctx context.Context, scriptPath, text, format string, timeout time.Duration) (*PackagerResult, error) {
	out, err := sr.run(ctx, scriptPath, map[string]any{"text": text, "format": format}, timeout, nil)
	if err != nil {
		return nil, err
	}

	var result PackagerResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("invalid packager output: %s", firstLine(string(out)))
	}
	if result.Error != "" {
		return nil, fmt.Errorf("packager error: %s", result.Error)
	}
	if result.DataURI == "" {
		return nil, fmt.Errorf("packager returned no data")
	}
	return &result, nil
}

func (sr *ScriptRunner) run(ctx context.Context, scriptPath string, input any, timeout time.Duration, extraEnv map[string]string) ([]byte, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode script input: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, sr.PythonBin, scriptPath)
	cmd.Stdin = bytes.NewReader(payload)

	env := os.Environ()
	for k, v := range extraEnv {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	log.Debug().
		Str("script", scriptPath).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("local script finished")

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("script %s timed out after %s", scriptPath, timeout)
	}
	if err != nil {
		msg := firstLine(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("script %s failed: %s", scriptPath, msg)
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
