package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"provtrack/internal/artifact"
	"provtrack/internal/mapping"
	"provtrack/internal/provenance"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

// Patterns are base-name fragments identifying each artifact file in a
// compile directory. Earlier patterns take precedence.
type Patterns struct {
	PreGraph  []string `yaml:"pre_graph"`
	PostGraph []string `yaml:"post_graph"`
	LanguageA []string `yaml:"language_a"`
	LanguageB []string `yaml:"language_b"`
	Mapping   []string `yaml:"node_mappings"`
}

func DefaultPatterns() Patterns {
	return Patterns{
		PreGraph:  []string{"before_pre_grad_graph", "inductor_pre_grad_graph"},
		PostGraph: []string{"after_post_grad_graph", "inductor_post_grad_graph"},
		LanguageA: []string{"inductor_output_code"},
		LanguageB: []string{"inductor_aot_wrapper_code"},
		Mapping:   []string{"inductor_provenance_tracking_node_mappings"},
	}
}

// All returns every pattern, in artifact order.
func (p Patterns) All() []string {
	var out []string
	for _, list := range [][]string{p.PreGraph, p.PostGraph, p.LanguageA, p.LanguageB, p.Mapping} {
		out = append(out, list...)
	}
	return out
}

// Loader reads a compile directory into provenance inputs.
type Loader struct {
	fs       afs.Service
	patterns Patterns
	prefer   artifact.Variant
	logger   *slog.Logger
}

func New(patterns Patterns, prefer artifact.Variant, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fs:       afs.New(),
		patterns: patterns,
		prefer:   prefer,
		logger:   logger,
	}
}

// Load reads the artifacts of the compile directory at dirURL. Missing files
// are not errors: they leave the corresponding artifact empty.
func (l *Loader) Load(ctx context.Context, dirURL string) (provenance.Inputs, error) {
	objects, err := l.fs.List(ctx, dirURL)
	if err != nil {
		return provenance.Inputs{}, fmt.Errorf("failed to list %s: %w", dirURL, err)
	}
	var files []storage.Object
	for _, o := range objects {
		if !o.IsDir() {
			files = append(files, o)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	read := func(patterns []string) ([]byte, bool, error) {
		obj := find(files, patterns)
		if obj == nil {
			return nil, false, nil
		}
		data, err := l.fs.DownloadWithURL(ctx, obj.URL())
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %s: %w", obj.URL(), err)
		}
		return data, true, nil
	}

	in := provenance.Inputs{Name: path.Base(strings.TrimRight(dirURL, "/"))}
	pre, _, err := read(l.patterns.PreGraph)
	if err != nil {
		return in, err
	}
	post, _, err := read(l.patterns.PostGraph)
	if err != nil {
		return in, err
	}
	codeA, hasA, err := read(l.patterns.LanguageA)
	if err != nil {
		return in, err
	}
	codeB, hasB, err := read(l.patterns.LanguageB)
	if err != nil {
		return in, err
	}
	raw, _, err := read(l.patterns.Mapping)
	if err != nil {
		return in, err
	}

	in.PreGraph = artifact.NewText(string(pre))
	in.PostGraph = artifact.NewText(string(post))
	in.Code = selectVariant(l.prefer,
		candidate{hasA, artifact.NewText(string(codeA))},
		candidate{hasB, artifact.NewText(string(codeB))})
	in.RawMapping = raw

	for _, issue := range mapping.Validate(raw) {
		l.logger.Warn("node mappings shape issue", "dir", in.Name, "issue", issue)
	}
	nm, err := mapping.Decode(raw)
	if err != nil {
		l.logger.Warn("node mappings ignored", "dir", in.Name, "error", err)
	}
	in.Mapping = nm
	return in, nil
}

// find returns the last file, in name order, matching the first pattern that
// matches anything.
func find(files []storage.Object, patterns []string) storage.Object {
	for _, p := range patterns {
		var match storage.Object
		for _, f := range files {
			if strings.Contains(f.Name(), p) {
				match = f
			}
		}
		if match != nil {
			return match
		}
	}
	return nil
}

type candidate struct {
	present bool
	text    artifact.Text
}

// selectVariant decides the single active code variant of a report.
func selectVariant(prefer artifact.Variant, a, b candidate) artifact.Code {
	switch {
	case prefer == artifact.LanguageA && a.present:
		return artifact.NewLanguageA(a.text)
	case prefer == artifact.LanguageB && b.present:
		return artifact.NewLanguageB(b.text)
	case a.present && !a.text.Blank():
		return artifact.NewLanguageA(a.text)
	case b.present && !b.text.Blank():
		return artifact.NewLanguageB(b.text)
	}
	return artifact.NoGeneratedCode()
}
