package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives. These are the error
// vocabulary used at every trust boundary, so the invariants "wrapped domain
// errors preserve their original code" and "errors.Is matches by code" must hold.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "consent record not found"}
		s.Equal("consent record not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeStoreUnavailable}
		s.Equal("store_unavailable", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeStoreUnavailable, Message: "store unreachable", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeInternal, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeMissingRequiredConsent, Message: "missing: data_processing"}
		err2 := &Error{Code: CodeMissingRequiredConsent, Message: "missing: marketing"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeStoreUnavailable}
		err2 := &Error{Code: CodePersistenceFailed}
		s.False(err1.Is(err2))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	s.Run("wrapping a domain error keeps the inner code", func() {
		inner := New(CodeStoreUnavailable, "timeout reading consent")
		wrapped := Wrap(inner, CodeInternal, "evaluate failed")
		s.True(HasCode(wrapped, CodeStoreUnavailable))
		s.False(HasCode(wrapped, CodeInternal))
	})

	s.Run("wrapping a plain error applies the given code", func() {
		wrapped := Wrap(errors.New("boom"), CodePersistenceFailed, "write failed")
		s.True(HasCode(wrapped, CodePersistenceFailed))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("false for nil", func() {
		s.False(HasCode(nil, CodeNotFound))
	})

	s.Run("false for non-domain errors", func() {
		s.False(HasCode(errors.New("plain"), CodeNotFound))
	})
}
