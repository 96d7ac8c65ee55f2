package services

// Kind classifies a use-case failure for the transport layer.
type Kind int

const (
	// KindInvalidInput means the caller supplied malformed or missing data.
	KindInvalidInput Kind = iota + 1
	// KindInvalidCredentials means authentication failed. The message is
	// deliberately generic.
	KindInvalidCredentials
	// KindNotFound means the referenced identity does not exist.
	KindNotFound
)

// Error is a typed use-case failure. Anything else coming out of a
// use case is an unexpected infrastructure error and maps to a server
// error at the transport boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func invalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}
