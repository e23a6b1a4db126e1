package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/contact-verifier/internal/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot() (*cobra.Command, *bytes.Buffer) {
	root := &cobra.Command{Use: "validate", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("hostname", "", "")
	root.AddCommand(runCmd(), singleCmd())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	return root, out
}

func TestRun_EmptyStorePrintsReport(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("EMAIL_VERIFIER_ENDPOINT", "")
	root, out := newRoot()
	root.SetArgs([]string{"run", "email", "--hostname", "crm.example.com"})

	require.NoError(t, root.Execute())

	var report domain.RunReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, domain.ChannelEmail, report.Channel)
	assert.Equal(t, "crm.example.com", report.Hostname)
	assert.Zero(t, report.Selected)
	assert.False(t, report.VerifierSent)
}

func TestRun_RejectsUnknownChannel(t *testing.T) {
	root, _ := newRoot()
	root.SetArgs([]string{"run", "fax"})
	assert.Error(t, root.Execute())
}

func TestSingle_RequiresIdentifier(t *testing.T) {
	root, _ := newRoot()
	root.SetArgs([]string{"single"})
	assert.ErrorContains(t, root.Execute(), "--email or --phone")
}

func TestSingle_VerifierNotConfigured(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("EMAIL_VERIFIER_ENDPOINT", "")
	root, _ := newRoot()
	root.SetArgs([]string{"single", "--email", "a@x.com"})

	assert.ErrorIs(t, root.Execute(), domain.ErrVerifierNotConfigured)
}
