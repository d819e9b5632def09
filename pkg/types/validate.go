package types

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var branchNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{2,}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator with the branchname tag
// registered.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// RegisterValidation only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("branchname", func(fl validator.FieldLevel) bool {
			return branchNamePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateBranchName returns ErrInvalidBranchName unless name is at least
// two characters drawn from latin letters, digits, dash and underscore.
func ValidateBranchName(name string) error {
	if err := validatorInstance().Var(name, "branchname"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	return nil
}

// Validate checks that the remote has a name and a well-formed URL.
func (r Remote) Validate() error {
	if err := validatorInstance().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRemote, err)
	}
	return nil
}
