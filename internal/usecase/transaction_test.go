package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransactionRollback - passo que falha desfaz os anteriores em ordem reversa
func TestTransactionRollback(t *testing.T) {
	var trail []string
	record := func(s string) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, s)
			return nil
		}
	}
	boom := errors.New("boom")

	txn := NewTransaction()
	txn.Step("a", record("do a"), record("undo a"))
	txn.Step("b", record("do b"), nil)
	txn.Step("c", record("do c"), record("undo c"))
	txn.Step("d", func(context.Context) error { return boom }, record("undo d"))

	err := txn.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "d", stepErr.Step)
	assert.Equal(t, 2, stepErr.RolledBack)
	assert.Equal(t, []string{"do a", "do b", "do c", "undo c", "undo a"}, trail)
}

// TestTransactionSuccess - sem falha nada é desfeito
func TestTransactionSuccess(t *testing.T) {
	undone := false
	txn := NewTransaction()
	txn.Step("a", func(context.Context) error { return nil }, func(context.Context) error {
		undone = true
		return nil
	})

	require.NoError(t, txn.Execute(context.Background()))
	assert.False(t, undone)
}
