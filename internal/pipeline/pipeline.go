package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"syllabus-content-service/internal/store"
)

var (
	// ErrNotFound is shared with the store so callers can test either.
	ErrNotFound        = store.ErrNotFound
	ErrValidation      = errors.New("validation failed")
	ErrInvalidState    = errors.New("export not completed")
	ErrExpired         = errors.New("artifact expired")
	ErrArtifactMissing = errors.New("artifact missing")
)

// Job kinds registered on the worker pool.
const (
	KindGeneration = "generation"
	KindExport     = "export"
)

// Option configures a pipeline.
type Option func(*options)

type options struct {
	now func() time.Time
	log *zap.Logger
}

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, log: zap.L()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

var validate = validator.New()

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrValidation, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
