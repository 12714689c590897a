package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	policy, err := PolicyForCollection("bank-accounts")
	require.NoError(t, err)

	rec := Record{
		"id":            "ba-001",
		"employeeId":    "emp-042",
		"bankName":      "Coastal Building Society",
		"status":        "verified",
		"accountHolder": "ENC:aaaa",
		"sortCode":      "ENC:bbbb",
		"accountNumber": "ENC:cccc",
		"iban":          "ENC:dddd",
	}

	projection := Project(rec, policy)

	t.Run("safe keys present", func(t *testing.T) {
		assert.Equal(t, "ba-001", projection["id"])
		assert.Equal(t, "emp-042", projection["employeeId"])
		assert.Equal(t, "Coastal Building Society", projection["bankName"])
		assert.Equal(t, "verified", projection["status"])
	})

	t.Run("sensitive keys structurally absent", func(t *testing.T) {
		for _, path := range policy.SensitivePaths {
			_, ok := projection.Get(path)
			assert.False(t, ok, "sensitive path %q must not exist", path)
		}
		assert.Len(t, projection, len(policy.SafeKeys))
	})
}

func TestProject_NestedSafeKeys(t *testing.T) {
	policy := &FieldPolicy{
		SensitivePaths: []string{"salary.annualAmount"},
		SafeKeys:       []string{"id", "salary.currency"},
	}
	require.NoError(t, policy.Validate())

	rec := Record{
		"id": "emp-042",
		"salary": map[string]any{
			"currency":     "GBP",
			"annualAmount": "ENC:xxxx",
		},
	}

	projection := Project(rec, policy)

	currency, ok := projection.Get("salary.currency")
	require.True(t, ok)
	assert.Equal(t, "GBP", currency)

	_, ok = projection.Get("salary.annualAmount")
	assert.False(t, ok)
}

func TestProject_MissingSafeKeysOmitted(t *testing.T) {
	policy := &FieldPolicy{SafeKeys: []string{"id", "status"}}

	projection := Project(Record{"id": "x"}, policy)

	assert.Equal(t, Record{"id": "x"}, projection)
	_, ok := projection["status"]
	assert.False(t, ok)
}

func TestProject_SkipsOverlappingSafeKeys(t *testing.T) {
	// Defense in depth: even an invalid policy cannot leak through projection.
	policy := &FieldPolicy{
		SensitivePaths: []string{"bankDetails.accountNumber"},
		SafeKeys:       []string{"id", "bankDetails"},
	}

	rec := Record{
		"id": "ps-1",
		"bankDetails": map[string]any{
			"accountNumber": "12345678",
		},
	}

	projection := Project(rec, policy)

	_, ok := projection["bankDetails"]
	assert.False(t, ok)
}

func TestProject_CopiesValues(t *testing.T) {
	policy := &FieldPolicy{SafeKeys: []string{"labels"}}
	rec := Record{"labels": map[string]any{"team": "front-desk"}}

	projection := Project(rec, policy)
	require.NoError(t, projection.Set("labels.team", "changed"))

	value, ok := rec.Get("labels.team")
	require.True(t, ok)
	assert.Equal(t, "front-desk", value)
}
