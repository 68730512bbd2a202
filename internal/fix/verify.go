package fix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrInvalidOutput is returned by Verify when fixed source fails to parse.
var ErrInvalidOutput = errors.New("fixed source is not valid TypeScript")

// Verify transforms content with esbuild's TypeScript loader and reports
// the first syntax error. Files ending in .tsx use the TSX loader.
func Verify(path string, content []byte) error {
	loader := api.LoaderTS
	if strings.HasSuffix(strings.ToLower(path), ".tsx") {
		loader = api.LoaderTSX
	}

	result := api.Transform(string(content), api.TransformOptions{
		Loader:     loader,
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	msg := result.Errors[0]
	if loc := msg.Location; loc != nil {
		return fmt.Errorf("%w: %s:%d:%d: %s", ErrInvalidOutput, path, loc.Line, loc.Column, msg.Text)
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidOutput, path, msg.Text)
}
