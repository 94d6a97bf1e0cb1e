package service

import (
	"fmt"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// requireAdmin guards every catalog and identity mutation and every admin read.
func requireAdmin(actor domain.Actor) error {
	if !domain.IsAdmin(actor) {
		return fmt.Errorf("%w: %s is not an administrator", domain.ErrForbidden, actor.Username)
	}
	return nil
}

// canAccessLoan reports whether actor may read or return loan.
func canAccessLoan(actor domain.Actor, loan *domain.Loan) bool {
	return domain.IsAdmin(actor) || loan.UserID == actor.ID
}
