package domain

import (
	"strings"
)

// RecordDomain is an encryption key scope. Every collection belongs to
// exactly one domain and every domain has its own secret; records from one
// domain can never be opened with another domain's key.
type RecordDomain string

const (
	// DomainHR scopes employee master data.
	DomainHR RecordDomain = "hr"
	// DomainBanking scopes employee bank accounts.
	DomainBanking RecordDomain = "banking"
	// DomainPayroll scopes payroll entries.
	DomainPayroll RecordDomain = "payroll"
	// DomainPersonal scopes user-managed personal settings.
	DomainPersonal RecordDomain = "personal"
	// DomainFinance scopes company financial figures.
	DomainFinance RecordDomain = "finance"
)

// FieldPolicy declares how one collection's records are protected.
//
// SensitivePaths are encrypted at rest. SafeKeys are the only fields a list
// projection may carry. IdentifyingPaths are scrubbed when a record is
// anonymized; everything else survives anonymization so legally retained
// figures stay intact.
type FieldPolicy struct {
	// Domain is the encryption key scope for the collection.
	Domain RecordDomain
	// Collection is the URL segment and store collection name.
	Collection string
	// SensitivePaths lists dot-notation paths encrypted at rest.
	SensitivePaths []string
	// SafeKeys lists dot-notation paths allowed in list projections.
	SafeKeys []string
	// IdentifyingPaths lists dot-notation paths removed by anonymization.
	IdentifyingPaths []string
}

// Validate rejects policies whose safe keys overlap sensitive paths in either
// direction: an exact match, a safe key above a sensitive path (the projected
// subtree would carry it) or a safe key below one.
func (p *FieldPolicy) Validate() error {
	for _, safe := range p.SafeKeys {
		for _, sensitive := range p.SensitivePaths {
			if pathsOverlap(safe, sensitive) {
				return ErrPolicyInvalid
			}
		}
	}
	return nil
}

// pathsOverlap reports whether one dot path equals or contains the other.
func pathsOverlap(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+".") || strings.HasPrefix(a, b+".")
}

// policies is the compiled-in registry for the five back-office collections.
var policies = []*FieldPolicy{
	{
		Domain:     DomainHR,
		Collection: "employees",
		SensitivePaths: []string{
			"nationalInsuranceNumber",
			"dateOfBirth",
			"homeAddress.line1",
			"homeAddress.postcode",
			"emergencyContact.phone",
			"salary.annualAmount",
		},
		SafeKeys: []string{
			"id",
			"displayName",
			"department",
			"jobTitle",
			"startDate",
			"status",
		},
		IdentifyingPaths: []string{
			"displayName",
			"email",
			"nationalInsuranceNumber",
			"dateOfBirth",
			"homeAddress.line1",
			"homeAddress.city",
			"homeAddress.postcode",
			"emergencyContact.name",
			"emergencyContact.phone",
		},
	},
	{
		Domain:     DomainBanking,
		Collection: "bank-accounts",
		SensitivePaths: []string{
			"accountHolder",
			"sortCode",
			"accountNumber",
			"iban",
		},
		SafeKeys: []string{
			"id",
			"employeeId",
			"bankName",
			"status",
		},
		IdentifyingPaths: []string{
			"accountHolder",
			"sortCode",
			"accountNumber",
			"iban",
		},
	},
	{
		Domain:     DomainPayroll,
		Collection: "payroll-entries",
		SensitivePaths: []string{
			"grossPay",
			"netPay",
			"taxCode",
			"deductions.tax",
			"deductions.nationalInsurance",
			"deductions.pension",
		},
		SafeKeys: []string{
			"id",
			"employeeId",
			"period",
			"status",
		},
		IdentifyingPaths: []string{
			"taxCode",
		},
	},
	{
		Domain:     DomainPersonal,
		Collection: "personal-settings",
		SensitivePaths: []string{
			"contactEmail",
			"phoneNumber",
			"bankDetails.sortCode",
			"bankDetails.accountNumber",
		},
		SafeKeys: []string{
			"id",
			"displayName",
			"payslipDelivery",
			"language",
		},
		IdentifyingPaths: []string{
			"displayName",
			"contactEmail",
			"phoneNumber",
			"bankDetails.sortCode",
			"bankDetails.accountNumber",
		},
	},
	{
		Domain:     DomainFinance,
		Collection: "company-financials",
		SensitivePaths: []string{
			"revenue",
			"operatingCosts",
			"marginPct",
			"averageDailyRate",
			"revPerAvailableRoom",
		},
		SafeKeys: []string{
			"id",
			"period",
			"occupancyRate",
			"status",
		},
		IdentifyingPaths: nil,
	},
}

// Policies returns the registered field policies.
func Policies() []*FieldPolicy {
	return policies
}

// Domains returns every key scope referenced by a registered policy.
func Domains() []RecordDomain {
	seen := make(map[RecordDomain]bool)
	domains := make([]RecordDomain, 0, len(policies))
	for _, policy := range policies {
		if !seen[policy.Domain] {
			seen[policy.Domain] = true
			domains = append(domains, policy.Domain)
		}
	}
	return domains
}

// ValidDomain reports whether a domain is referenced by a registered policy.
func ValidDomain(domain RecordDomain) bool {
	for _, policy := range policies {
		if policy.Domain == domain {
			return true
		}
	}
	return false
}

// PoliciesForDomain returns the policies of every collection in a domain.
func PoliciesForDomain(domain RecordDomain) []*FieldPolicy {
	matched := make([]*FieldPolicy, 0)
	for _, policy := range policies {
		if policy.Domain == domain {
			matched = append(matched, policy)
		}
	}
	return matched
}

// PolicyForCollection resolves the field policy for a collection name.
func PolicyForCollection(collection string) (*FieldPolicy, error) {
	for _, policy := range policies {
		if policy.Collection == collection {
			return policy, nil
		}
	}
	return nil, ErrUnknownCollection
}

// ValidatePolicies checks every registered policy. Called once at startup so
// a safe-key/sensitive-path overlap can never reach a projection.
func ValidatePolicies() error {
	for _, policy := range policies {
		if err := policy.Validate(); err != nil {
			return err
		}
	}
	return nil
}
