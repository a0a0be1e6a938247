package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/rede-consultoras/internal/entity"
)

func TestLeadApprove(t *testing.T) {
	lead := entity.NewLead("cons-1")
	now := time.Now()

	entry, err := lead.Approve("user-1", "prom-1", "documentação ok", now)

	require.NoError(t, err)
	assert.Equal(t, entity.LeadAprovado, lead.Status)
	require.NotNil(t, lead.PromoterID)
	assert.Equal(t, "prom-1", *lead.PromoterID)
	assert.Equal(t, "documentação ok", lead.Notes)
	assert.Equal(t, now, *lead.ForwardedAt)

	assert.Equal(t, lead.ID, entry.LeadID)
	assert.Equal(t, entity.LeadEmAnalise, entry.FromStatus)
	assert.Equal(t, entity.LeadAprovado, entry.ToStatus)
	assert.Equal(t, "documentação ok", entry.Reason)
	assert.Equal(t, "user-1", entry.ActorUserID)
}

func TestLeadReject(t *testing.T) {
	lead := entity.NewLead("cons-1")
	consult := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	entry, err := lead.Reject("user-1", entity.Rejection{
		Reason:           "restrição no CPF",
		DebtAmount:       1520.75,
		ConsultationDate: &consult,
		Notes:            "consulta SPC",
	}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, entity.LeadReprovado, lead.Status)
	assert.Nil(t, lead.PromoterID)
	assert.Equal(t, "restrição no CPF", lead.RejectionReason)
	assert.Equal(t, 1520.75, lead.DebtAmount)
	assert.Equal(t, consult, *lead.ConsultationDate)
	assert.Equal(t, entity.LeadReprovado, entry.ToStatus)
	assert.Equal(t, "restrição no CPF", entry.Reason)
}

func TestLeadTerminalStatesNeverReopen(t *testing.T) {
	t.Run("aprovado não pode ser aprovado de novo", func(t *testing.T) {
		lead := entity.NewLead("cons-1")
		_, err := lead.Approve("u", "p", "", time.Now())
		require.NoError(t, err)

		_, err = lead.Approve("u", "p2", "", time.Now())
		assert.ErrorIs(t, err, entity.ErrLeadAlreadyDecided)
		assert.Equal(t, "p", *lead.PromoterID)
	})

	t.Run("reprovado não pode ser aprovado", func(t *testing.T) {
		lead := entity.NewLead("cons-1")
		_, err := lead.Reject("u", entity.Rejection{Reason: "dívida"}, time.Now())
		require.NoError(t, err)

		_, err = lead.Approve("u", "p", "", time.Now())
		assert.ErrorIs(t, err, entity.ErrLeadAlreadyDecided)
		assert.Equal(t, entity.LeadReprovado, lead.Status)
	})
}

func TestReplayStatus(t *testing.T) {
	lead := entity.NewLead("cons-1")
	entry, err := lead.Approve("u", "p", "ok", time.Now())
	require.NoError(t, err)

	status, err := entity.ReplayStatus([]entity.LeadHistory{*entry})
	require.NoError(t, err)
	assert.Equal(t, lead.Status, status)

	status, err = entity.ReplayStatus(nil)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadEmAnalise, status)

	_, err = entity.ReplayStatus([]entity.LeadHistory{
		{FromStatus: entity.LeadAprovado, ToStatus: entity.LeadReprovado},
	})
	assert.Error(t, err)
}
