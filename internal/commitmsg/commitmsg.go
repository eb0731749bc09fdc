// Package commitmsg validates commit messages against a conventional
// header/body/footer grammar:
//
//	<type>[(<scope>)]: <subject>
//	<BLANK LINE>
//	[<body>]
//	<BLANK LINE>
//	[<footer>]
package commitmsg

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTypes are the accepted header types.
var DefaultTypes = []string{"feat", "fix", "docs", "style", "refactor", "test", "chore"}

// DefaultMaxLineLength is the longest line accepted, in characters.
const DefaultMaxLineLength = 100

const revertType = "revert"

var (
	revertFooter = regexp.MustCompile(`This reverts commit [0-9a-fA-F]{40}\.`)
	issueRef     = regexp.MustCompile(`^#\d+$`)
)

// Rules configures a Validator.
type Rules struct {
	Types         []string
	MaxLineLength int
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		Types:         append([]string(nil), DefaultTypes...),
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Header is the parsed first paragraph of a commit message. For a revert,
// Reverted holds the header of the reverted commit.
type Header struct {
	Type     string
	Scopes   []string
	Subject  string
	Reverted *Header
}

// IsRevert reports whether the header reverts another commit.
func (h Header) IsRevert() bool {
	return h.Type == revertType
}

// Validator checks commit messages. It is safe for concurrent use.
type Validator struct {
	rules  Rules
	typeRe *regexp.Regexp
}

// NewValidator creates a Validator. Zero fields of rules take their
// defaults.
func NewValidator(rules Rules) *Validator {
	if len(rules.Types) == 0 {
		rules.Types = DefaultTypes
	}
	if rules.MaxLineLength <= 0 {
		rules.MaxLineLength = DefaultMaxLineLength
	}

	quoted := make([]string, len(rules.Types))
	for i, t := range rules.Types {
		quoted[i] = regexp.QuoteMeta(t)
	}
	typeRe := regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)((?:\([[:alpha:]]+\))*)$`)

	return &Validator{rules: rules, typeRe: typeRe}
}

var defaultValidator = NewValidator(DefaultRules())

// Validate checks text with the default rules.
func Validate(text string) error {
	return defaultValidator.Validate(text)
}

// ValidateFile checks the message stored at path with the default rules.
func ValidateFile(path string) error {
	return defaultValidator.ValidateFile(path)
}

// ValidateFile reads the message at path and validates it. Read errors are
// returned wrapped and are not *Error values.
func (v *Validator) ValidateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading commit message: %w", err)
	}
	return v.Validate(string(content))
}

// Validate returns nil for a valid message or the *Error of the first
// violation.
func (v *Validator) Validate(text string) error {
	lines := stripComments(text)

	for _, line := range lines {
		if utf8.RuneCountInString(line) > v.rules.MaxLineLength {
			return fail(KindLenLimit)
		}
	}

	contents := strings.Join(lines, "\n")
	if len(lines) > 0 {
		contents += "\n"
	}

	headerText, rest, hasRest := strings.Cut(contents, "\n\n")
	if !hasRest {
		if len(lines) != 1 {
			return fail(KindGeneral)
		}
		headerText = lines[0]
	}

	header, err := v.ParseHeader(headerText)
	if err != nil {
		return err
	}

	if header.IsRevert() {
		if !hasRest || !revertFooter.MatchString(rest) {
			return fail(KindRevert)
		}
	}
	if !hasRest {
		return nil
	}

	return checkFooter(footerOf(rest))
}

// ParseHeader parses and checks a header line.
func (v *Validator) ParseHeader(line string) (Header, error) {
	typ, subject, ok := strings.Cut(line, ":")
	if !ok {
		return Header{}, fail(KindHeader)
	}
	subject = strings.TrimLeftFunc(subject, unicode.IsSpace)

	if typ == revertType {
		inner, err := v.ParseHeader(subject)
		if err != nil {
			return Header{}, fail(KindRevert)
		}
		return Header{Type: revertType, Subject: subject, Reverted: &inner}, nil
	}

	m := v.typeRe.FindStringSubmatch(typ)
	if m == nil {
		return Header{}, fail(KindHeader)
	}
	if !validSubject(subject) {
		return Header{}, fail(KindSubject)
	}

	name := strings.TrimSuffix(typ, m[1])
	return Header{Type: name, Scopes: splitScopes(m[1]), Subject: subject}, nil
}

// stripComments drops lines starting with '#' and normalises line endings.
func stripComments(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}

	raw := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func validSubject(subject string) bool {
	if subject == "" || strings.HasSuffix(subject, ".") {
		return false
	}
	first, _ := utf8.DecodeRuneInString(subject)
	return unicode.IsLower(first)
}

// splitScopes turns "(core)(net)" into [core net].
func splitScopes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(strings.TrimPrefix(s, "("), ")"), ")(")
}

// footerOf returns the last blank-line separated paragraph of the body, or
// the whole body if it has a single paragraph.
func footerOf(rest string) string {
	if i := strings.LastIndex(rest, "\n\n"); i >= 0 {
		return rest[i+2:]
	}
	return rest
}

// checkFooter validates every "Closes" line of the footer.
func checkFooter(footer string) error {
	for _, line := range strings.Split(footer, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "Closes" {
			continue
		}

		issues := strings.Split(strings.Join(fields[1:], ""), ",")
		if issues[len(issues)-1] == "" {
			issues = issues[:len(issues)-1]
		}
		for _, issue := range issues {
			if !issueRef.MatchString(issue) {
				return fail(KindCloseIssue)
			}
		}
	}
	return nil
}

// KindOf returns the kind of a validation error and whether err is one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
