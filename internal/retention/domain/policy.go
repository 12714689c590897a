// Package domain defines record retention policies and the subject deletion
// lifecycle. Retention windows follow UK statutory practice for employment
// and financial records; the deletion lifecycle implements soft deletion with
// a restore grace period and terminal anonymization.
package domain

import (
	"time"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// Action is what happens to a record once its retention window has passed.
type Action string

const (
	// ActionArchive retires the document from active listings while keeping
	// it in storage for statutory retention.
	ActionArchive Action = "archive"
	// ActionDelete removes the document outright.
	ActionDelete Action = "delete"
	// ActionAnonymize scrubs the collection's identifying paths and keeps
	// the legally retained remainder.
	ActionAnonymize Action = "anonymize"
)

// year approximates a statutory year. Windows are whole years, so leap-day
// drift is immaterial at this scale.
const year = 365 * 24 * time.Hour

// Policy is one domain's retention rule: how long since its last write a
// record stays active, and what happens to it afterwards.
type Policy struct {
	// Domain is the key scope the rule applies to.
	Domain fieldcryptDomain.RecordDomain
	// Window is measured against a record's last write.
	Window time.Duration
	// Action is applied once the window has passed.
	Action Action
}

// policies is the compiled-in retention table. Payroll and finance records
// stay available for HMRC inspection and are archived rather than removed;
// hr records are anonymized once the employment-claims window closes; banking
// and personal records are deleted outright once no statutory basis remains.
var policies = []*Policy{
	{Domain: fieldcryptDomain.DomainPayroll, Window: 6 * year, Action: ActionArchive},
	{Domain: fieldcryptDomain.DomainHR, Window: 6 * year, Action: ActionAnonymize},
	{Domain: fieldcryptDomain.DomainFinance, Window: 7 * year, Action: ActionArchive},
	{Domain: fieldcryptDomain.DomainPersonal, Window: 2 * year, Action: ActionDelete},
	{Domain: fieldcryptDomain.DomainBanking, Window: 7 * year, Action: ActionDelete},
}

// Policies returns the retention table in sweep order.
func Policies() []*Policy {
	return policies
}

// PolicyFor resolves the retention policy for a record domain.
func PolicyFor(domain fieldcryptDomain.RecordDomain) (*Policy, error) {
	for _, policy := range policies {
		if policy.Domain == domain {
			return policy, nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrConfiguration, "no retention policy for domain %q", domain)
}
