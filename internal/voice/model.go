package voice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultModelsDir = "models"

// ResolveModel maps a whisper model name to a ggml file. An existing path is
// returned unchanged; otherwise the name is looked up as ggml-<name>.bin under
// dir.
func ResolveModel(name, dir string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: no whisper model configured", ErrMissingDependency)
	}

	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}

	if dir == "" {
		dir = DefaultModelsDir
	}
	path := filepath.Join(dir, "ggml-"+name+".bin")

	_, err := os.Stat(path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf(
			"%w: whisper model %q not found at %s (download ggml-%s.bin from https://huggingface.co/ggerganov/whisper.cpp)",
			ErrMissingDependency, name, path, name,
		)
	default:
		return "", err
	}
}
