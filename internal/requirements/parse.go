package requirements

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	ErrMalformedDeclaration = errors.New("malformed declaration")
	ErrUnrecognizedFacet    = fmt.Errorf("%w: facet not recognized", ErrMalformedDeclaration)
	ErrDuplicateFacet       = fmt.Errorf("%w: duplicate facet field", ErrMalformedDeclaration)
)

// DefaultCompositeTools are the tools whose version output reports separate client and server facets.
var DefaultCompositeTools = []string{"KUBECTL"}

type options struct {
	composite []string
}

type Option func(*options)

// WithCompositeTools overrides the set of tools parsed with the composite grammar.
// Names are matched case-insensitively.
func WithCompositeTools(tools ...string) Option {
	return func(opts *options) {
		opts.composite = tools
	}
}

func makeOptions(opts []Option) options {
	result := options{composite: DefaultCompositeTools}
	for _, apply := range opts {
		apply(&result)
	}
	return result
}

func (opts options) isComposite(tool string) bool {
	return slices.ContainsFunc(opts.composite, func(name string) bool {
		return strings.EqualFold(strings.TrimSpace(name), tool)
	})
}

// Parse reads a requirements file. Blank lines and lines starting with # are ignored.
// Lines that cannot be parsed are skipped and reported in the Diagnostics of the result;
// the only error returned is a failure to read from r.
func Parse(r io.Reader, opts ...Option) (Declarations, error) {
	var (
		decls   Declarations
		scanner = bufio.NewScanner(r)
		number  int
	)

	for scanner.Scan() {
		number++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		req, warnings, err := parseLine(number, line, makeOptions(opts))
		decls.Diagnostics = append(decls.Diagnostics, warnings...)
		if err != nil {
			decls.Diagnostics = append(decls.Diagnostics, err)
			continue
		}

		decls.Requirements = append(decls.Requirements, req)
	}

	if err := scanner.Err(); err != nil {
		return decls, fmt.Errorf("failed to read requirements: %w", err)
	}

	return decls, nil
}

// ParseLine parses a single declaration. Warnings are recoverable problems with individual composite tokens,
// which are skipped. A non-nil error means the whole line must be skipped.
func ParseLine(line string, opts ...Option) (Requirement, []error, error) {
	return parseLine(0, strings.TrimSpace(line), makeOptions(opts))
}

func parseLine(number int, line string, opts options) (Requirement, []error, error) {
	locate := func(err error) error {
		if number == 0 {
			return err
		}
		return fmt.Errorf("line %d: %w", number, err)
	}

	name, value, ok := strings.Cut(line, "=")
	if !ok {
		return Requirement{}, nil, locate(fmt.Errorf("%w: missing '=' in %q", ErrMalformedDeclaration, line))
	}

	req := Requirement{
		Tool: strings.ToUpper(strings.TrimSpace(name)),
		Line: number,
	}

	if req.Tool == "" {
		return Requirement{}, nil, locate(fmt.Errorf("%w: missing tool name in %q", ErrMalformedDeclaration, line))
	}

	if !opts.isComposite(req.Tool) {
		req.Kind = Simple
		req.Version = strings.TrimSpace(value)
		if req.Version == "" {
			return Requirement{}, nil, locate(fmt.Errorf("%w: missing version for %s", ErrMalformedDeclaration, req.Tool))
		}
		return req, nil, nil
	}

	req.Kind = Composite

	var (
		warnings []error
		client   []FacetVersion
		server   []FacetVersion
	)

	for token := range strings.SplitSeq(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		fv, err := parseFacetToken(token)
		if err != nil {
			warnings = append(warnings, locate(fmt.Errorf("%s: %w", req.Tool, err)))
			continue
		}

		target := &client
		if fv.Facet == Server {
			target = &server
		}

		if slices.ContainsFunc(*target, func(existing FacetVersion) bool { return existing.Field == fv.Field }) {
			warnings = append(warnings, locate(fmt.Errorf("%s: %w: %s", req.Tool, ErrDuplicateFacet, token)))
			continue
		}

		*target = append(*target, fv)
	}

	req.Facets = append(client, server...)
	if len(req.Facets) == 0 {
		return Requirement{}, warnings, locate(fmt.Errorf("%w: no valid facet versions for %s", ErrMalformedDeclaration, req.Tool))
	}

	return req, warnings, nil
}

// parseFacetToken parses tokens of the form FACET_FIELD:version such as CLIENT_GIT:1.17.1
func parseFacetToken(token string) (FacetVersion, error) {
	head, version, ok := strings.Cut(token, ":")
	if !ok || strings.TrimSpace(version) == "" {
		return FacetVersion{}, fmt.Errorf("%w: expected FACET_FIELD:version but got %q", ErrMalformedDeclaration, token)
	}

	if strings.Count(head, "_") != 1 {
		return FacetVersion{}, fmt.Errorf("%w: expected exactly one '_' in %q", ErrMalformedDeclaration, head)
	}

	rawFacet, field, _ := strings.Cut(head, "_")

	facet, ok := ParseFacet(rawFacet)
	if !ok {
		return FacetVersion{}, fmt.Errorf(`%w: %q (did you misspell "CLIENT" or "SERVER"?)`, ErrUnrecognizedFacet, rawFacet)
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return FacetVersion{}, fmt.Errorf("%w: missing field name in %q", ErrMalformedDeclaration, token)
	}

	return FacetVersion{
		Facet:   facet,
		Field:   Capitalize(field),
		Version: strings.TrimSpace(version),
	}, nil
}
