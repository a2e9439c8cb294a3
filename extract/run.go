// Package extract implements command line actions producing stylesheets,
// merged descriptions and theme exports from source files.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	yaml "gopkg.in/yaml.v3"

	"stylec/archive"
	"stylec/common"
	"stylec/css"
	"stylec/glaze"
	"stylec/shorthand"
	"stylec/state"
	"stylec/styles"
	"stylec/utils/debug"
)

var (
	sourceExts = []string{".yaml", ".yml"}
	bundleExts = append([]string{".zip"}, sourceExts...)
)

// CompileOptions controls stylesheet production.
type CompileOptions struct {
	// Class rules are bound to, empty means configured root class for a
	// single source and class derived from file name otherwise.
	Class       string
	Breakpoints []float64
}

// Compile is "compile" subcommand action.
func Compile(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if path := cmd.String("cache"); path != "" {
		env.Cfg.Compiler.Cache.Kind = common.CacheKindSqlite
		env.Cfg.Compiler.Cache.Path = path
	}
	env.Overwrite = cmd.Bool("overwrite")
	if err := env.Setup(); err != nil {
		return err
	}
	forceCodePage(env, cmd.String("force-zip-cp"))

	srcs, dst := splitArgs(cmd.Args().Slice(), bundleExts...)
	if len(srcs) == 0 {
		return errors.New("no input source has been specified")
	}
	opts := CompileOptions{
		Class:       cmd.String("class"),
		Breakpoints: env.Cfg.Compiler.Breakpoints,
	}
	if cmd.IsSet("breakpoints") {
		opts.Breakpoints = cmd.FloatSlice("breakpoints")
	}
	return CompileFiles(ctx, env, srcs, dst, opts)
}

// CompileFiles compiles every source into its own stylesheet.
func CompileFiles(ctx context.Context, env *state.LocalEnv, srcs []string, dst string, opts CompileOptions) error {
	log := env.Log.Named("extract")

	log.Info("Processing starting", zap.Strings("sources", srcs), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	entries, err := collectSources(srcs, env)
	if err != nil {
		return err
	}
	multi := len(entries) > 1
	if multi && opts.Class != "" {
		log.Warn("Class is ignored for multiple sources", zap.String("class", opts.Class))
		opts.Class = ""
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := entry.Name
		desc, err := readDescription(entry, env)
		if err != nil {
			return err
		}
		rules, err := env.Compiler.Compile(desc, opts.Breakpoints)
		if err != nil {
			return fmt.Errorf("unable to compile %s: %w", src, err)
		}

		class := opts.Class
		switch {
		case class != "":
		case multi:
			class = "." + slug.Make(baseName(src))
		default:
			class = env.Cfg.Compiler.RootClass
		}
		sheet := css.NewStylesheet(css.Bind(rules, class))

		out := buildOutputPath(src, dst, multi, stylesOutput, env)
		if err := writeOutput(out, env, func(w io.Writer) error {
			_, err := sheet.WriteTo(w)
			return err
		}); err != nil {
			return err
		}
		log.Debug("Stylesheet produced", zap.String("source", src), zap.String("class", class), zap.Int("rules", len(rules)), zap.String("output", out))
	}
	return nil
}

// Merge is "merge" subcommand action.
func Merge(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")
	if err := env.Setup(); err != nil {
		return err
	}
	forceCodePage(env, cmd.String("force-zip-cp"))

	srcs, dst := splitArgs(cmd.Args().Slice(), bundleExts...)
	if len(srcs) == 0 {
		return errors.New("no input source has been specified")
	}
	return MergeFiles(ctx, env, srcs, dst, cmd.Bool("tree"))
}

// MergeFiles merges all documents of all sources in order as layers and
// writes resulting description as YAML or, when tree is requested, as
// indented diagnostic dump.
func MergeFiles(ctx context.Context, env *state.LocalEnv, srcs []string, dst string, tree bool) error {
	entries, err := collectSources(srcs, env)
	if err != nil {
		return err
	}
	var layers []*styles.Description
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs, err := readDocuments(entry, env)
		if err != nil {
			return err
		}
		layers = append(layers, docs...)
	}
	merged := env.Merger.Merge(layers[0], layers[1:]...)

	out := buildOutputPath(srcs[0], dst, false, descriptionOutput, env)
	return writeOutput(out, env, func(w io.Writer) error {
		if tree {
			_, err := io.WriteString(w, styles.Dump(merged))
			return err
		}
		return styles.Encode(w, merged)
	})
}

// ThemeOptions controls theme export.
type ThemeOptions struct {
	Kind         common.ExportKind
	HighContrast bool
	NoDark       bool
	RGB          bool
	// Format overrides configured color format when set.
	Format *common.ColorFormat
}

// Theme is "theme" subcommand action.
func Theme(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")
	if err := env.Setup(); err != nil {
		return err
	}

	opts := ThemeOptions{
		Kind:         common.ExportKindCss,
		HighContrast: cmd.Bool("high-contrast"),
		NoDark:       cmd.Bool("no-dark"),
		RGB:          cmd.Bool("rgb"),
	}
	var kinds int
	for _, k := range []common.ExportKind{common.ExportKindTokens, common.ExportKindJson, common.ExportKindCss} {
		if cmd.Bool(k.String()) {
			opts.Kind = k
			kinds++
		}
	}
	if kinds > 1 {
		return errors.New("only one of --tokens, --json or --css could be specified")
	}
	if name := cmd.String("format"); name != "" {
		f, err := common.ParseColorFormat(name)
		if err != nil {
			return fmt.Errorf("unknown color format: %w", err)
		}
		opts.Format = &f
	}

	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)
	if src == "" {
		return errors.New("no theme source has been specified")
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return ExportTheme(ctx, env, src, dst, opts)
}

// ExportTheme resolves palette described by theme file and writes it in
// requested form.
func ExportTheme(ctx context.Context, env *state.LocalEnv, src, dst string, opts ThemeOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open theme: %w", err)
	}
	defer f.Close()

	file, err := glaze.ReadFile(f)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	if err := env.Rpt.StoreCopy("sources/"+filepath.Base(src), src); err != nil {
		env.Log.Debug("Unable to store theme in report", zap.Error(err))
	}
	palette := file.Palette(glaze.WithConfig(env.Theme), glaze.WithLogger(env.Log))

	export := glaze.ExportOptions{
		Modes:  env.Theme.Modes,
		States: env.Theme.States,
		Format: env.Theme.Format,
		RGB:    opts.RGB,
	}
	if opts.HighContrast {
		export.Modes.HighContrast = true
	}
	if opts.NoDark {
		export.Modes.Dark = false
	}
	if opts.Format != nil {
		export.Format = *opts.Format
	}

	out := buildOutputPath(src, dst, false, themeOutput(opts.Kind), env)
	switch opts.Kind {
	case common.ExportKindTokens:
		tokens, err := palette.Tokens(&export)
		if err != nil {
			return err
		}
		return writeOutput(out, env, func(w io.Writer) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(tokens); err != nil {
				return err
			}
			return enc.Close()
		})
	case common.ExportKindJson:
		tokens, err := palette.JSON(&export)
		if err != nil {
			return err
		}
		return writeOutput(out, env, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(tokens)
		})
	}
	sheet, err := palette.CSS(&export, env.Styles, env.Cfg.Extract.Selector)
	if err != nil {
		return err
	}
	return writeOutput(out, env, func(w io.Writer) error {
		_, err := sheet.WriteTo(w)
		return err
	})
}

// Check is "check" subcommand action.
func Check(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	src := cmd.Args().Get(0)
	if src == "" {
		return errors.New("no stylesheet has been specified")
	}
	return CheckFile(env, src, os.Stdout)
}

// CheckFile reads stylesheet back and reports what was found there.
func CheckFile(env *state.LocalEnv, src string, w io.Writer) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}
	sheet := css.NewParser(env.Log).Parse(data, src)

	declarations := 0
	for _, r := range sheet.Rules() {
		declarations += len(r.Declarations)
	}
	tw := debug.NewTreeWriter()
	tw.Map(0, filepath.Base(src), map[string]string{
		"rules":        strconv.Itoa(len(sheet.Rules())),
		"declarations": strconv.Itoa(declarations),
		"media blocks": strconv.Itoa(len(sheet.MediaBlocks())),
		"warnings":     strconv.Itoa(len(sheet.Warnings)),
	})
	if widths := zoneWidths(env.Cfg.Compiler.Breakpoints); len(widths) > 0 {
		applied := make(map[string]string, len(widths))
		for _, width := range widths {
			applied[formatWidth(width)] = strconv.Itoa(len(sheet.RulesAt(width)))
		}
		tw.Map(1, "rules at width", applied)
	}
	for _, warn := range sheet.Warnings {
		tw.TextBlock(1, "warning", warn)
	}
	_, err = io.WriteString(w, tw.String())
	return err
}

// zoneWidths returns one viewport width inside every zone of breakpoints:
// the widest one of a bounded zone and the lower bound of the widest zone.
func zoneWidths(breakpoints []float64) []float64 {
	if len(breakpoints) == 0 {
		return nil
	}
	var res []float64
	for _, zone := range styles.Zones(breakpoints) {
		mq := css.ParseMediaQuery(strings.Join(zone.Own, " and "))
		if mq.MaxWidth > 0 {
			res = append(res, mq.MaxWidth)
		} else {
			res = append(res, mq.MinWidth)
		}
	}
	return res
}

func formatWidth(width float64) string {
	return strconv.FormatFloat(width, 'f', -1, 64) + "px"
}

// Parse is "parse" subcommand action.
func Parse(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if err := env.Setup(); err != nil {
		return err
	}
	if cmd.Args().Len() == 0 {
		return errors.New("no value has been specified")
	}
	return ParseValues(env, cmd.Args().Slice(), cmd.Bool("ast"), os.Stdout)
}

// ParseValues renders shorthand values, with their syntax trees when
// requested.
func ParseValues(env *state.LocalEnv, values []string, ast bool, w io.Writer) error {
	for _, value := range values {
		out, err := env.Parser.Parse(value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
			return err
		}
		if !ast {
			continue
		}
		nodes, err := env.Parser.AST(value)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, shorthand.Dump(nodes)); err != nil {
			return err
		}
	}
	return nil
}

// Since zip "standard" does not define file name encoding we may need to
// force archaic code page for old bundles.
func forceCodePage(env *state.LocalEnv, cp string) {
	if len(cp) == 0 {
		return
	}
	enc, err := ianaindex.IANA.Encoding(cp)
	if err != nil || enc == nil {
		env.Log.Warn("Unknown character set name, ignoring", zap.String("charset", cp), zap.Error(err))
		return
	}
	env.CodePage = enc
	n, _ := ianaindex.IANA.Name(enc)
	env.Log.Debug("Forcefully converting all non UTF-8 file names in bundles", zap.String("charset", n))
}

func baseName(src string) string {
	base := filepath.Base(src)
	return base[:len(base)-len(filepath.Ext(base))]
}

// collectSources expands directories and zip bundles into individual
// sources. Bundles are put into debug report once.
func collectSources(srcs []string, env *state.LocalEnv) ([]archive.Entry, error) {
	var (
		res     []archive.Entry
		bundles = make(map[string]bool)
	)
	for _, src := range srcs {
		entries, err := archive.Collect(src, env.CodePage, sourceExts...)
		if err != nil {
			return nil, fmt.Errorf("unable to access source: %w", err)
		}
		for _, e := range entries {
			if e.Archive == "" || bundles[e.Archive] {
				continue
			}
			bundles[e.Archive] = true
			if err := env.Rpt.StoreCopy("sources/"+filepath.Base(e.Archive), e.Archive); err != nil {
				env.Log.Debug("Unable to store bundle in report", zap.Error(err))
			}
		}
		res = append(res, entries...)
	}
	return res, nil
}

func readDocuments(entry archive.Entry, env *state.LocalEnv) ([]*styles.Description, error) {
	r, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open source: %w", err)
	}
	defer r.Close()

	docs, err := styles.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: no style descriptions found", entry.Name)
	}
	if entry.Archive == "" {
		if err := env.Rpt.StoreCopy("sources/"+filepath.Base(entry.Path), entry.Path); err != nil {
			env.Log.Debug("Unable to store source in report", zap.Error(err))
		}
	}
	return docs, nil
}

// readDescription merges all documents of source as layers.
func readDescription(entry archive.Entry, env *state.LocalEnv) (*styles.Description, error) {
	docs, err := readDocuments(entry, env)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return env.Merger.Merge(docs[0], docs[1:]...), nil
}
