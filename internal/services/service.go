package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// Storage is the part of *store.Store the services use.
type Storage interface {
	Repos() (*store.Repositories, error)
	InTx(ctx context.Context, fn func(ctx context.Context, r *store.Repositories) error) error
}

// ValidationError lists the required fields that were missing or invalid.
// It matches common.ErrValidationFailed.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("%s: %s", common.ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrValidationFailed
}

// fields collects missing field names.
type fields []string

func (f *fields) require(ok bool, name string) {
	if !ok {
		*f = append(*f, name)
	}
}

func (f fields) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Missing: f}
}

// checkStamps returns a ValidationError naming every non-nil value that is
// not in the timex.Layout format.
func checkStamps(stamps map[string]*string) error {
	var invalid []string
	for name, v := range stamps {
		if v == nil || blank(*v) {
			continue
		}
		if _, err := timex.ParseStamp(strings.TrimSpace(*v)); err != nil {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return &ValidationError{Invalid: invalid}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func blankPtr(p *string) bool {
	return p == nil || blank(*p)
}

// optional maps "" to nil.
func optional(s string) *string {
	if blank(s) {
		return nil
	}
	v := strings.TrimSpace(s)
	return &v
}
