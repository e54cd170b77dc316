package ledger

import (
	"fmt"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	RecordID    string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.RecordID, e.Description)
}

// ValidateBatch enforces 5 invariants on a batch before it is written.
func ValidateBatch(b Batch) []ValidationError {
	var errs []ValidationError

	check := func(id, familyID, userID, desc string) {
		// Invariant 1: every record belongs to a family.
		if familyID == "" {
			errs = append(errs, ValidationError{Invariant: 1, RecordID: id, Description: "missing family id"})
		}
		// Invariant 2: every record belongs to a user.
		if userID == "" {
			errs = append(errs, ValidationError{Invariant: 2, RecordID: id, Description: "missing user id"})
		}
		// Invariant 3: non-empty description.
		if desc == "" {
			errs = append(errs, ValidationError{Invariant: 3, RecordID: id, Description: "empty description"})
		}
	}

	for _, d := range b.Debts {
		check(d.ID, d.FamilyID, d.UserID, d.Description)
		// Invariant 4: a debt has at least one installment left.
		if d.RemainingInstallments < 1 {
			errs = append(errs, ValidationError{
				Invariant:   4,
				RecordID:    d.ID,
				Description: fmt.Sprintf("remaining installments %d < 1", d.RemainingInstallments),
			})
		}
	}

	for _, r := range b.Recurring {
		check(r.ID, r.FamilyID, r.UserID, r.Description)
		// Invariant 5: due day is a day of month.
		if r.DueDay < 1 || r.DueDay > 31 {
			errs = append(errs, ValidationError{
				Invariant:   5,
				RecordID:    r.ID,
				Description: fmt.Sprintf("due day %d not in 1..31", r.DueDay),
			})
		}
	}

	for _, t := range b.Transactions {
		check(t.ID, t.FamilyID, t.UserID, t.Description)
	}

	return errs
}
