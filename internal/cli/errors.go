package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type emptyError struct {
	what string
}

func (e emptyError) Error() string {
	return e.what + " is empty"
}

func errEmpty(what string) error {
	return emptyError{what: what}
}

type ambiguousError struct {
	kind    string
	id      string
	matches []string
}

func (e ambiguousError) Error() string {
	return fmt.Sprintf("%s id %q is ambiguous: matches %v", e.kind, e.id, e.matches)
}

func errAmbiguous(kind, id string, matches []string) error {
	return ambiguousError{kind: kind, id: id, matches: matches}
}
