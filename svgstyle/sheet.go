package svgstyle

import (
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/benoitkugler/svgdoc/svgerr"
)

// Declaration is a property: value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule binds declarations to one selector. Selector groups
// such as "a, b" are split into one Rule per selector.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
}

// StyleSheet is an ordered list of rules.
type StyleSheet struct {
	Rules []Rule
}

func convertDeclarations(decls []*css.Declaration) []Declaration {
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, Declaration{
			Property:  strings.ToLower(strings.TrimSpace(d.Property)),
			Value:     strings.TrimSpace(d.Value),
			Important: d.Important,
		})
	}
	return out
}

// ParseStyleSheet parses CSS text. Syntax errors are fatal and reported
// as a *svgerr.ParseError. Rules which can't be used (at-rules,
// unsupported selectors) are skipped and returned as diagnostics.
func ParseStyleSheet(text string) (*StyleSheet, []error, error) {
	pss, err := parser.Parse(text)
	if err != nil {
		return nil, nil, &svgerr.ParseError{Kind: svgerr.Malformed, Msg: "invalid stylesheet", Cause: err}
	}
	var (
		out         StyleSheet
		diagnostics []error
	)
	for _, r := range pss.Rules {
		if r.Kind == css.AtRule {
			diagnostics = append(diagnostics, svgerr.New(svgerr.CodeUnsupportedFeature, "at-rule %s", r.Name))
			continue
		}
		decls := convertDeclarations(r.Declarations)
		for _, sel := range r.Selectors {
			s, err := ParseSelector(sel)
			if err != nil {
				diagnostics = append(diagnostics, err)
				continue
			}
			out.Rules = append(out.Rules, Rule{Selector: s, Declarations: decls})
		}
	}
	return &out, diagnostics, nil
}

// ParseDeclarations parses the content of a style attribute.
func ParseDeclarations(text string) ([]Declaration, error) {
	text = strings.TrimSpace(text)
	// douceur drops the value of an unterminated last declaration
	if text != "" && !strings.HasSuffix(text, ";") {
		text += ";"
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return nil, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "invalid style attribute")
	}
	return convertDeclarations(decls), nil
}

// matched is a declaration selected for an element,
// with its position in the cascade
type matched struct {
	Declaration
	spec        Specificity
	sheet, rule int
}

// Cascade computes the specified values of the element n, as
// a property -> value map. Precedence, from lowest to highest:
//   - normal declarations of the sheets, ordered by specificity,
//     then sheet order, then rule order
//   - presentation attributes
//   - normal declarations of the inline style
//   - !important declarations of the sheets, ordered as above
//   - !important declarations of the inline style
func Cascade(sheets []*StyleSheet, n Node, presentation map[string]string, inline []Declaration) map[string]string {
	var candidates []matched
	for i, sheet := range sheets {
		for j, rule := range sheet.Rules {
			if !rule.Selector.Matches(n) {
				continue
			}
			spec := rule.Selector.Specificity()
			for _, d := range rule.Declarations {
				candidates = append(candidates, matched{Declaration: d, spec: spec, sheet: i, rule: j})
			}
		}
	}
	// declarations order inside a rule is preserved by the stable sort
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.spec != b.spec {
			return a.spec.Less(b.spec)
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule < b.rule
	})

	out := make(map[string]string)
	for _, c := range candidates {
		if !c.Important {
			out[c.Property] = c.Value
		}
	}
	for k, v := range presentation {
		out[k] = v
	}
	for _, d := range inline {
		if !d.Important {
			out[d.Property] = d.Value
		}
	}
	for _, c := range candidates {
		if c.Important {
			out[c.Property] = c.Value
		}
	}
	for _, d := range inline {
		if d.Important {
			out[d.Property] = d.Value
		}
	}
	return out
}
