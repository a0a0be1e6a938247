package usecase

import (
	"context"
	"fmt"
	"log"
)

// Transaction roda passos em sequência; se um falhar, desfaz os que já
// terminaram, do último para o primeiro. Undo é opcional.
type Transaction struct {
	steps []step
}

type step struct {
	name string
	do   func(context.Context) error
	undo func(context.Context) error
}

// StepError identifica qual passo quebrou a transação.
type StepError struct {
	Step       string
	RolledBack int
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("passo '%s' falhou: %v (%d desfeitos)", e.Step, e.Err, e.RolledBack)
}

func (e *StepError) Unwrap() error { return e.Err }

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (t *Transaction) Step(name string, do, undo func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, do: do, undo: undo})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.do(ctx); err != nil {
			return &StepError{Step: s.name, RolledBack: t.rollback(ctx, i), Err: err}
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failed int) int {
	undone := 0
	for i := failed - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.undo == nil {
			continue
		}
		if err := s.undo(ctx); err != nil {
			log.Printf("⚠️ [TX] Desfazer '%s' falhou: %v (risco de inconsistência!)", s.name, err)
			continue
		}
		undone++
	}
	return undone
}
