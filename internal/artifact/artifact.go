package artifact

import (
	"fmt"
	"strings"
)

// Kind identifies one of the panels of a provenance report.
type Kind string

const (
	PreGraph      Kind = "pre_graph"
	PostGraph     Kind = "post_graph"
	GeneratedCode Kind = "generated_code"
)

// Kinds lists every artifact kind in display order.
var Kinds = []Kind{PreGraph, PostGraph, GeneratedCode}

// ParseKind accepts the canonical names plus the short aliases used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pre_graph", "pre", "pregraph":
		return PreGraph, nil
	case "post_graph", "post", "postgraph":
		return PostGraph, nil
	case "generated_code", "code", "generatedcode":
		return GeneratedCode, nil
	}
	return "", fmt.Errorf("unknown artifact kind: %q", s)
}

func (k Kind) Valid() bool {
	return k == PreGraph || k == PostGraph || k == GeneratedCode
}

// Variant is the flavour of generated code present in a report.
type Variant string

const (
	VariantNone Variant = ""
	// LanguageA is organised as named kernel definition blocks.
	LanguageA Variant = "language_a"
	// LanguageB references kernels from call sites.
	LanguageB Variant = "language_b"
)

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "auto":
		return VariantNone, nil
	case "language_a", "a", "py", "python":
		return LanguageA, nil
	case "language_b", "b", "cpp", "aot":
		return LanguageB, nil
	}
	return VariantNone, fmt.Errorf("unknown code variant: %q", s)
}

// Code holds the single active generated-code artifact of a report.
// The zero value means no generated code was found.
type Code struct {
	variant Variant
	text    Text
}

func NewLanguageA(text Text) Code {
	return Code{variant: LanguageA, text: text}
}

func NewLanguageB(text Text) Code {
	return Code{variant: LanguageB, text: text}
}

func NoGeneratedCode() Code {
	return Code{}
}

func (c Code) Variant() Variant { return c.variant }

func (c Code) Text() Text { return c.text }

func (c Code) Present() bool { return c.variant != VariantNone }
