package commitmsg

// Kind classifies a commit message grammar violation.
type Kind int

const (
	KindGeneral Kind = iota
	KindHeader
	KindRevert
	KindLenLimit
	KindCloseIssue
	KindSubject
)

// String returns the short name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneral:
		return "general"
	case KindHeader:
		return "header"
	case KindRevert:
		return "revert"
	case KindLenLimit:
		return "length"
	case KindCloseIssue:
		return "close-issue"
	case KindSubject:
		return "subject"
	default:
		return "unknown"
	}
}

// Explanation returns the remediation text shown to the user.
func (k Kind) Explanation() string {
	switch k {
	case KindGeneral:
		return `commit message format:
<type>(<scope>): <subject>
<BLANK LINE>
[<body>]
<BLANK LINE>
[<footer>]`
	case KindHeader:
		return `<header> format: <type>[<scope>]: <subject>
<type> should be one of the follows:
feat (feature)
fix (bug fix)
docs (documentation)
style (formatting, missing semi colons, …)
refactor
test (when adding missing tests)
chore (maintain)`
	case KindRevert:
		return `revert commit format:
revert: <reverted commit header>
<BLANK LINE>
This reverts commit <commit hash>.`
	case KindLenLimit:
		return "Any line of the commit message cannot be longer 100 characters!"
	case KindCloseIssue:
		return `Closes issue format:
Closes #<num> [, #<num>...]`
	case KindSubject:
		return `<subject> must be provided and should satisfy follow requirements:
- use imperative, present tense: "change" not "changed" nor "changes"
- don't capitalize first letter
- no dot (.) at the end`
	default:
		return "invalid commit message"
	}
}

// Error is a commit message grammar violation. Only the first violation
// found is reported.
type Error struct {
	Kind Kind
}

// Sentinel errors for errors.Is.
var (
	ErrGeneral    = &Error{Kind: KindGeneral}
	ErrHeader     = &Error{Kind: KindHeader}
	ErrRevert     = &Error{Kind: KindRevert}
	ErrLenLimit   = &Error{Kind: KindLenLimit}
	ErrCloseIssue = &Error{Kind: KindCloseIssue}
	ErrSubject    = &Error{Kind: KindSubject}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Kind.Explanation()
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func fail(k Kind) error {
	return &Error{Kind: k}
}
