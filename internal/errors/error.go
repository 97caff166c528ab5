package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// mailbox configuration errors
	ErrConfigurationNotFound = errors.New("mailbox configuration not found")
	ErrConfigurationDisabled = errors.New("mailbox configuration is disabled")

	// session errors
	ErrIllegalTransition = errors.New("illegal mailbox session transition")

	// ledger errors
	ErrAlreadyProcessed = errors.New("message already processed")
	ErrClaimHeld        = errors.New("message claimed by another run")

	// folder errors
	ErrNoOrganizationMember = errors.New("organization has no member to own the default folder")
)

// Kind classifies a pipeline failure by the stage that produced it.
type Kind string

const (
	KindCredential   Kind = "credential"
	KindConnection   Kind = "connection"
	KindAuth         Kind = "auth"
	KindSelect       Kind = "select"
	KindSearch       Kind = "search"
	KindFetch        Kind = "fetch"
	KindFolder       Kind = "folder"
	KindParse        Kind = "parse"
	KindUpload       Kind = "upload"
	KindRegistration Kind = "registration"
	KindTimeout      Kind = "timeout"
	KindUnknown      Kind = "unknown"
)

func (k Kind) String() string {
	return string(k)
}

// PipelineError carries the failing stage, the operation subject (a host, a
// filename, a message id) and the underlying cause.
type PipelineError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error (%s): %v", e.Kind, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) error {
	if err == nil {
		err = errors.New(string(kind) + " failed")
	}
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

func Credential(err error) error { return New(KindCredential, "", err) }
func Connection(addr string, err error) error { return New(KindConnection, addr, err) }
func Auth(user string, err error) error { return New(KindAuth, user, err) }
func Select(mailbox string, err error) error { return New(KindSelect, mailbox, err) }
func Search(err error) error { return New(KindSearch, "", err) }
func Fetch(messageID string, err error) error { return New(KindFetch, messageID, err) }
func Folder(organizationID string, err error) error { return New(KindFolder, organizationID, err) }
func Parse(messageID string, err error) error { return New(KindParse, messageID, err) }
func Upload(filename string, err error) error { return New(KindUpload, filename, err) }
func Registration(filename string, err error) error { return New(KindRegistration, filename, err) }
func Timeout(err error) error { return New(KindTimeout, "", err) }

// KindOf returns the kind of the outermost PipelineError in the chain.
func KindOf(err error) Kind {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsFatal reports whether err ends the run for a mailbox configuration.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindCredential, KindConnection, KindAuth, KindSelect, KindSearch, KindFetch, KindFolder, KindTimeout:
		return true
	default:
		return false
	}
}
