package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), p)
}

func TestLoadOverridesSelectedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := `
payroll:
  afpRate: 0.03
  isrBrackets:
    - {from: 500000, rate: 0.2}
    - {from: 0, rate: 0}
heladito:
  minReinvestment: 60000
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.03, p.Payroll.AFPRate)
	require.Equal(t, 0.0304, p.Payroll.SFSRate)
	require.Equal(t, 60000.0, p.Heladito.MinReinvestment)
	require.Len(t, p.Payroll.ISRBrackets, 2)
	require.Equal(t, 0.0, p.Payroll.ISRBrackets[0].From)
}

func TestLoadRejectsBrokenShares(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := `
monthlyReport:
  parties:
    - {name: A, share: 0.5}
    - {name: B, share: 0.3}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "party shares")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
