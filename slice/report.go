package slice

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/amp-labs/amp-redux/errors"
)

// Code classifies a construction or selection issue.
type Code string

const (
	CodeInvalidNamespace       Code = "INVALID_NAMESPACE"
	CodeInvalidActionType      Code = "INVALID_ACTION_TYPE"
	CodeMissingNamespacePrefix Code = "MISSING_NAMESPACE_PREFIX"
	CodeDuplicateActionType    Code = "DUPLICATE_ACTION_TYPE"
	CodeDuplicateNamespace     Code = "DUPLICATE_NAMESPACE"
	CodeRootStateMissing       Code = "ROOT_STATE_MISSING"
	CodeSliceStateMissing      Code = "SLICE_STATE_MISSING"
	CodeSliceStateType         Code = "SLICE_STATE_TYPE"
)

var sentinels = map[Code]error{ //nolint:gochecknoglobals
	CodeInvalidNamespace:       errors.ErrInvalidNamespace,
	CodeInvalidActionType:      errors.ErrInvalidActionType,
	CodeMissingNamespacePrefix: errors.ErrMissingNamespacePrefix,
	CodeDuplicateActionType:    errors.ErrDuplicateActionType,
	CodeDuplicateNamespace:     errors.ErrDuplicateNamespace,
	CodeRootStateMissing:       errors.ErrRootStateMissing,
	CodeSliceStateMissing:      errors.ErrSliceStateMissing,
	CodeSliceStateType:         errors.ErrSliceStateType,
}

// Sentinel returns the error from the errors package that matches the code.
func (c Code) Sentinel() error {
	return sentinels[c]
}

// Location identifies where an issue occurred.
type Location struct {
	Namespace string `json:"namespace"        yaml:"namespace"`        // Slice namespace
	Action    string `json:"action,omitempty" yaml:"action,omitempty"` // Creator name inside the slice
	Type      string `json:"type,omitempty"   yaml:"type,omitempty"`   // Action type tag
}

// Issue is a single diagnostic found while assembling or aggregating slices.
type Issue struct {
	Code     Code     `json:"code"     yaml:"code"`     // Issue code like "DUPLICATE_ACTION_TYPE"
	Message  string   `json:"message"  yaml:"message"`  // Human-readable message
	Location Location `json:"location" yaml:"location"` // Where the issue occurred
}

// Err wraps the code's sentinel with the issue message.
func (i Issue) Err() error {
	sentinel := i.Code.Sentinel()
	if sentinel == nil {
		return fmt.Errorf("%s: %s", i.Code, i.Message) //nolint:err113
	}

	return fmt.Errorf("%w: %s", sentinel, i.Message)
}

func (i Issue) log(l *slog.Logger) {
	l.Error(i.Message,
		"error", i.Code.Sentinel(),
		"code", string(i.Code),
		"namespace", i.Location.Namespace,
		"action", i.Location.Action,
		"type", i.Location.Type)
}

// Report collects the issues found while assembling a slice. Issues never
// abort assembly; callers decide what to do with them.
type Report struct {
	Issues []Issue
}

// Valid reports whether no issues were found.
func (r Report) Valid() bool {
	return len(r.Issues) == 0
}

func (r Report) HasIssues() bool {
	return !r.Valid()
}

// Count returns the number of issues with the given code.
func (r Report) Count(code Code) int {
	n := 0

	for _, issue := range r.Issues {
		if issue.Code == code {
			n++
		}
	}

	return n
}

// Err returns every issue as a single error, or nil when the report is valid.
// Each wrapped error matches its code's sentinel with errors.Is.
func (r Report) Err() error {
	var errs errors.Collection

	for _, issue := range r.Issues {
		errs.Add(issue.Err())
	}

	return errs.GetError()
}

// String returns a human-readable summary of the report.
func (r Report) String() string {
	if r.Valid() {
		return "no issues"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%d issue(s):\n", len(r.Issues)))

	for _, issue := range r.Issues {
		sb.WriteString(fmt.Sprintf("  [%s] %s", issue.Code, issue.Message))

		if issue.Location.Namespace != "" {
			sb.WriteString(fmt.Sprintf(" (namespace: %s)", issue.Location.Namespace))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func (r *Report) add(l *slog.Logger, issue Issue) {
	issue.log(l)
	r.Issues = append(r.Issues, issue)
}
