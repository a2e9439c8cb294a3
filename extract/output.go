package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"stylec/common"
	"stylec/config"
	"stylec/state"
)

type outputKind struct {
	name string
	ext  string
}

var (
	stylesOutput      = outputKind{name: "styles", ext: ".css"}
	descriptionOutput = outputKind{name: "description", ext: ".yaml"}
)

func themeOutput(kind common.ExportKind) outputKind {
	switch kind {
	case common.ExportKindTokens:
		return outputKind{name: "theme", ext: ".yaml"}
	case common.ExportKindJson:
		return outputKind{name: "theme", ext: ".json"}
	}
	return outputKind{name: "theme", ext: ".css"}
}

// splitArgs separates sources from optional destination. Last argument is
// destination when there is more than one and it does not look like source.
func splitArgs(args []string, exts ...string) (srcs []string, dst string) {
	if len(args) < 2 {
		return args, ""
	}
	last := args[len(args)-1]
	if slices.Contains(exts, strings.ToLower(filepath.Ext(last))) {
		return args, ""
	}
	return args[:len(args)-1], last
}

// isDirDestination reports whether output should be placed into directory
// dst rather than written to it.
func isDirDestination(dst string, multi bool) bool {
	if multi || strings.HasSuffix(dst, string(os.PathSeparator)) || strings.HasSuffix(dst, "/") {
		return true
	}
	fi, err := os.Stat(dst)
	return err == nil && fi.IsDir()
}

// buildOutputPath returns file output for src goes to. Empty result means
// standard output.
func buildOutputPath(src, dst string, multi bool, kind outputKind, env *state.LocalEnv) string {
	if dst == "" {
		return ""
	}
	if !isDirDestination(dst, multi) {
		return dst
	}

	values := newValues(config.OutputNameTemplateFieldName, src, kind)
	defaultFile := config.CleanFileName(values.Name) + kind.ext

	if env.Cfg.Extract.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}
	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Extract.OutputNameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return filepath.Join(dst, defaultFile)
	}
	return assemblePathWithSubdirs(dst, filepath.FromSlash(strings.TrimSpace(expanded)), defaultFile)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path cleaning every segment.
func assemblePathWithSubdirs(outDir, expandedName, fallback string) string {
	segments := splitAndCleanPath(expandedName)
	if len(segments) == 0 {
		return filepath.Join(outDir, fallback)
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, s := range segments {
		parts = append(parts, config.CleanFileName(s))
	}
	return filepath.Join(parts...)
}

func splitAndCleanPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, string(os.PathSeparator)) {
		if s = strings.TrimSpace(s); s != "" && s != "." && s != ".." {
			segments = append(segments, s)
		}
	}
	return segments
}

// writeOutput calls fn with writer for path, standard output when path is
// empty. Existing files are only replaced when overwrite is allowed.
func writeOutput(path string, env *state.LocalEnv, fn func(io.Writer) error) (err error) {
	if path == "" {
		w := bufio.NewWriter(os.Stdout)
		if err := fn(w); err != nil {
			return err
		}
		return w.Flush()
	}

	if _, err := os.Stat(path); err == nil && !env.Overwrite {
		return fmt.Errorf("output file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("unable to close output file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	env.Rpt.Store("output/"+strings.TrimLeft(filepath.ToSlash(path), "/"), path)
	return nil
}
