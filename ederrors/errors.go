// Package ederrors re-exports github.com/cockroachdb/errors under names
// the rest of the module imports, so call sites never import the
// upstream package directly.
package ederrors

import (
	crdb "github.com/cockroachdb/errors"
)

var (
	New              = crdb.New
	Newf             = crdb.Newf
	Wrap             = crdb.Wrap
	Wrapf            = crdb.Wrapf
	Is               = crdb.Is
	As               = crdb.As
	WithHint         = crdb.WithHint
	WithHintf        = crdb.WithHintf
	AssertionFailedf = crdb.AssertionFailedf
	GetStack         = crdb.GetReportableStackTrace
)

// HasType reports whether err or any error it wraps matches the type of
// target, without modifying target (unlike As).
func HasType(err error, target error) bool {
	return crdb.HasType(err, target)
}
