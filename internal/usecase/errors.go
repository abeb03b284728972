package usecase

import (
	"errors"
	"fmt"
)

// usecase層のエラーはHTTPステータスと一緒に持ち回る。
// handler側はwriteErrorで変換するだけ。
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
