package service

import (
	"alcyxob/coach-hub/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSummarizeRecipients(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"zero", nil, "Nenhum destinatário"},
		{"one", []string{"Ana"}, "Ana"},
		{"two", []string{"Ana", "Bruno"}, "Ana, Bruno"},
		{"three", []string{"Ana", "Bruno", "Clara"}, "Ana, Bruno…"},
		{"many", []string{"Ana", "Bruno", "Clara", "Davi"}, "Ana, Bruno…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeRecipients(tt.names))
		})
	}
}

func TestResolveRecipients_BestEffort(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ana := env.seedUser("Ana", domain.RoleTrainee)
	bruno := env.seedUser("Bruno", domain.RoleTrainee)

	// Unknown ids are dropped; survivors keep input order.
	names, err := env.docs.ResolveRecipients(ctx, []primitive.ObjectID{bruno.UserID, primitive.NewObjectID(), ana.UserID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bruno", "Ana"}, names)

	names, err = env.docs.ResolveRecipients(ctx, []primitive.ObjectID{primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreateDocument(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)

	upload, err := env.docs.CreateDocument(ctx, coach, "Plano alimentar", "plano-alimentar", "PDF mensal", "application/pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, upload.UploadURL)
	assert.Contains(t, upload.Document.StoragePath, "documents/"+coach.UserID.Hex()+"/")
	assert.Empty(t, upload.Document.RecipientIDs)

	// Slug collision.
	_, err = env.docs.CreateDocument(ctx, coach, "Outro", "plano-alimentar", "", "application/pdf")
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestDistribute(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)
	ana := env.seedUser("Ana", domain.RoleTrainee)
	bruno := env.seedUser("Bruno", domain.RoleTrainee)

	upload, err := env.docs.CreateDocument(ctx, coach, "Plano alimentar", "plano-alimentar", "", "application/pdf")
	require.NoError(t, err)
	docID := upload.Document.ID

	doc, err := env.docs.Distribute(ctx, coach, docID, []primitive.ObjectID{ana.UserID, primitive.NewObjectID(), bruno.UserID})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{ana.UserID, bruno.UserID}, doc.RecipientIDs)

	// One audit entry per distribution event, carrying the summary.
	entries := env.audit.byAction(domain.AuditDocumentDistributed)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Detail, "Ana, Bruno")

	// Trainee sees it; a non-recipient does not.
	mine, err := env.docs.MyDocuments(ctx, ana)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, docID, mine[0].ID)

	clara := env.seedUser("Clara", domain.RoleTrainee)
	none, err := env.docs.MyDocuments(ctx, clara)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDistribute_AllRecipientsUnknown(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)

	upload, err := env.docs.CreateDocument(ctx, coach, "Plano", "plano", "", "application/pdf")
	require.NoError(t, err)

	_, err = env.docs.Distribute(ctx, coach, upload.Document.ID, []primitive.ObjectID{primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrEmptyRecipients)
	_, err = env.docs.Distribute(ctx, coach, upload.Document.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyRecipients)
	assert.Empty(t, env.audit.byAction(domain.AuditDocumentDistributed))
}

func TestDistribute_OwnershipEnforced(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := env.seedUser("Owner", domain.RoleCoach)
	other := env.seedUser("Other", domain.RoleCoach)
	ana := env.seedUser("Ana", domain.RoleTrainee)

	upload, err := env.docs.CreateDocument(ctx, owner, "Plano", "plano", "", "application/pdf")
	require.NoError(t, err)

	_, err = env.docs.Distribute(ctx, other, upload.Document.ID, []primitive.ObjectID{ana.UserID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDownloadURL_AccessRules(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)
	ana := env.seedUser("Ana", domain.RoleTrainee)
	bruno := env.seedUser("Bruno", domain.RoleTrainee)

	upload, err := env.docs.CreateDocument(ctx, coach, "Plano", "plano", "", "application/pdf")
	require.NoError(t, err)
	docID := upload.Document.ID
	_, err = env.docs.Distribute(ctx, coach, docID, []primitive.ObjectID{ana.UserID})
	require.NoError(t, err)

	// Owner and recipient may download.
	url, err := env.docs.DownloadURL(ctx, coach, docID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	_, err = env.docs.DownloadURL(ctx, ana, docID)
	require.NoError(t, err)

	// Non-recipient may not.
	_, err = env.docs.DownloadURL(ctx, bruno, docID)
	assert.ErrorIs(t, err, ErrForbidden)

	// A blocked recipient loses access until unblocked.
	require.NoError(t, env.coach.SetBlockStatus(ctx, coach, ana.UserID, domain.BlockManual))
	var blocked *AccountBlockedError
	_, err = env.docs.DownloadURL(ctx, ana, docID)
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, domain.BlockManual, blocked.Reason)

	_, err = env.docs.MyDocuments(ctx, ana)
	assert.ErrorAs(t, err, &blocked)
}
