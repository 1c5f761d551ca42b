package docstring

import (
	"fmt"
	"strings"

	"docgen/internal/types"
)

// maxBlockLines is the sanity bound on a documentation block. Candidates
// over this are rejected by validation and penalized by the critic.
const maxBlockLines = 60

// displayType picks the type name shown for a parameter: declared
// annotation first, then inferred. The unknown marker is shown as-is; it is
// surfaced separately as a warning and must never be dressed up as a real
// type.
func displayType(p types.Parameter) string {
	if p.DeclaredType != "" {
		return p.DeclaredType
	}
	if p.InferredType != "" {
		return p.InferredType
	}
	return types.TypeUnknown
}

func returnType(r *types.ReturnInfo) string {
	if r.DeclaredType != "" {
		return r.DeclaredType
	}
	if r.InferredType != "" {
		return r.InferredType
	}
	return types.TypeUnknown
}

// returnsHeader picks the section label for the returns block.
func returnsHeader(r *types.ReturnInfo) string {
	if r != nil && r.IsGenerator {
		return "Yields"
	}
	return "Returns"
}

// requiredHeaders lists the section headers a block must carry for the
// given style and element, used by validation and the clarity check.
func requiredHeaders(style types.Style, el *types.CodeElement) []string {
	var headers []string
	add := func(google, numpy, rst string) {
		switch style {
		case types.StyleNumpy:
			headers = append(headers, numpy)
		case types.StyleRST:
			headers = append(headers, rst)
		default:
			headers = append(headers, google)
		}
	}
	if len(el.Parameters) > 0 {
		add("Args:", "Parameters", ":param")
	}
	if el.Returns != nil {
		h := returnsHeader(el.Returns)
		add(h+":", h, ":returns:")
	}
	if len(el.Raises) > 0 {
		add("Raises:", "Raises", ":raises")
	}
	return headers
}

// renderFallback deterministically renders a documentation block from the
// element's structured facts alone. This path never fails and never calls
// out to an external capability.
func renderFallback(el *types.CodeElement, style types.Style) string {
	switch style {
	case types.StyleNumpy:
		return renderNumpy(el)
	case types.StyleRST:
		return renderRST(el)
	default:
		return renderGoogle(el)
	}
}

func summaryLine(el *types.CodeElement) string {
	switch el.Kind {
	case types.KindClass:
		return fmt.Sprintf("Summary of class %s.", el.Name)
	case types.KindConstructor:
		return fmt.Sprintf("Initialize a new %s instance.", ownerName(el))
	default:
		return fmt.Sprintf("Summary of %s.", el.Name)
	}
}

func ownerName(el *types.CodeElement) string {
	if i := strings.LastIndex(el.QualifiedName, "."); i > 0 {
		owner := el.QualifiedName[:i]
		if j := strings.LastIndex(owner, "."); j >= 0 {
			owner = owner[j+1:]
		}
		return owner
	}
	return el.Name
}

func renderGoogle(el *types.CodeElement) string {
	lines := []string{`"""` + summaryLine(el)}

	if len(el.Parameters) > 0 {
		lines = append(lines, "", "Args:")
		for _, p := range el.Parameters {
			lines = append(lines, fmt.Sprintf("    %s (%s): Description of %s.", p.Name, displayType(p), p.Name))
		}
	}
	if el.Returns != nil {
		lines = append(lines, "", returnsHeader(el.Returns)+":")
		lines = append(lines, fmt.Sprintf("    %s: Description of return value.", returnType(el.Returns)))
	}
	if len(el.Raises) > 0 {
		lines = append(lines, "", "Raises:")
		for _, exc := range el.Raises {
			lines = append(lines, fmt.Sprintf("    %s: Description of %s.", exc.Kind, exc.Kind))
		}
	}
	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}

func renderNumpy(el *types.CodeElement) string {
	lines := []string{`"""` + summaryLine(el)}

	if len(el.Parameters) > 0 {
		lines = append(lines, "", "Parameters", "----------")
		for _, p := range el.Parameters {
			lines = append(lines, fmt.Sprintf("%s : %s", p.Name, displayType(p)))
			lines = append(lines, fmt.Sprintf("    Description of %s.", p.Name))
		}
	}
	if el.Returns != nil {
		header := returnsHeader(el.Returns)
		lines = append(lines, "", header, strings.Repeat("-", len(header)))
		lines = append(lines, returnType(el.Returns))
		lines = append(lines, "    Description of return value.")
	}
	if len(el.Raises) > 0 {
		lines = append(lines, "", "Raises", "------")
		for _, exc := range el.Raises {
			lines = append(lines, exc.Kind)
			lines = append(lines, fmt.Sprintf("    Description of %s.", exc.Kind))
		}
	}
	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}

func renderRST(el *types.CodeElement) string {
	lines := []string{`"""` + summaryLine(el)}

	if len(el.Parameters) > 0 || el.Returns != nil || len(el.Raises) > 0 {
		lines = append(lines, "")
	}
	for _, p := range el.Parameters {
		lines = append(lines, fmt.Sprintf(":param %s: Description of %s.", p.Name, p.Name))
		lines = append(lines, fmt.Sprintf(":type %s: %s", p.Name, displayType(p)))
	}
	if el.Returns != nil {
		lines = append(lines, ":returns: Description of return value.")
		lines = append(lines, fmt.Sprintf(":rtype: %s", returnType(el.Returns)))
	}
	for _, exc := range el.Raises {
		lines = append(lines, fmt.Sprintf(":raises %s: Description of %s.", exc.Kind, exc.Kind))
	}
	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}
