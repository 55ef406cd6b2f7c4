package service

import (
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/repository"
	"alcyxob/coach-hub/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrSlugTaken         = errors.New("a document with this slug already exists")
	ErrUploadURLError    = errors.New("failed to generate upload URL")
	ErrDownloadURLError  = errors.New("failed to generate download URL")
)

// NoRecipients is the fixed summary shown when a document resolves to an
// empty recipient list.
const NoRecipients = "Nenhum destinatário"

// DocumentUpload carries the presigned PUT URL plus the storage path the
// created document was registered under.
type DocumentUpload struct {
	Document  *domain.Document `json:"document"`
	UploadURL string           `json:"uploadUrl"`
}

// DocumentService owns document metadata, recipient resolution, and
// distribution. File bytes live in object storage; only storagePath is
// tracked here.
type DocumentService interface {
	// CreateDocument registers metadata and returns a presigned URL for
	// uploading the PDF bytes. Coach-only.
	CreateDocument(ctx context.Context, identity domain.Identity, title, slug, description, contentType string) (*DocumentUpload, error)
	// Distribute resolves the recipient set and records one audit entry
	// per distribution event (not per recipient). Coach-only.
	Distribute(ctx context.Context, identity domain.Identity, documentID primitive.ObjectID, recipientIDs []primitive.ObjectID) (*domain.Document, error)
	// ResolveRecipients maps user ids to display names, preserving input
	// order and silently dropping ids that resolve to no user. Documented
	// best-effort contract: one bad id never fails the whole call.
	ResolveRecipients(ctx context.Context, userIDs []primitive.ObjectID) ([]string, error)
	ListDocuments(ctx context.Context, identity domain.Identity) ([]domain.Document, error)
	// MyDocuments lists documents distributed to the calling trainee,
	// gated by block state.
	MyDocuments(ctx context.Context, identity domain.Identity) ([]domain.Document, error)
	// DownloadURL returns a presigned GET URL for a document the caller
	// may see (its coach, or a recipient with an unblocked account).
	DownloadURL(ctx context.Context, identity domain.Identity, documentID primitive.ObjectID) (string, error)
}

// SummarizeRecipients produces the fixed-format recipient summary:
// zero names → the no-recipients sentinel; one → the name verbatim;
// two → joined with a comma; three or more → the first two plus an
// ellipsis, never listing a third name.
func SummarizeRecipients(names []string) string {
	switch len(names) {
	case 0:
		return NoRecipients
	case 1:
		return names[0]
	case 2:
		return names[0] + ", " + names[1]
	default:
		return names[0] + ", " + names[1] + "…"
	}
}

// documentService implements the DocumentService interface.
type documentService struct {
	userRepo     repository.UserRepository
	documentRepo repository.DocumentRepository
	auditRepo    repository.AuditRepository
	fileStorage  storage.FileStorage
}

// NewDocumentService creates a new instance of documentService.
func NewDocumentService(
	userRepo repository.UserRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	fileStorage storage.FileStorage,
) DocumentService {
	return &documentService{
		userRepo:     userRepo,
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		fileStorage:  fileStorage,
	}
}

// CreateDocument registers the metadata and hands back an upload URL.
func (s *documentService) CreateDocument(ctx context.Context, identity domain.Identity, title, slug, description, contentType string) (*DocumentUpload, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	if title == "" || slug == "" {
		return nil, errors.New("document title and slug are required")
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	ext := ".pdf"
	if !strings.HasPrefix(contentType, "application/pdf") {
		ext = ""
	}
	objectKey := path.Join("documents", identity.UserID.Hex(), uuid.NewString()+ext)

	doc := &domain.Document{
		CoachID:     identity.UserID,
		Title:       title,
		Slug:        slug,
		Description: description,
		StoragePath: objectKey,
	}
	docID, err := s.documentRepo.Create(ctx, doc)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	doc.ID = docID

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &DocumentUpload{Document: doc, UploadURL: uploadURL}, nil
}

// Distribute resolves and stores the recipient set. The ids that survive
// resolution must be non-empty; unresolvable ids are dropped per the
// best-effort contract, and only an all-invalid set fails.
func (s *documentService) Distribute(ctx context.Context, identity domain.Identity, documentID primitive.ObjectID, recipientIDs []primitive.ObjectID) (*domain.Document, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.CoachID != identity.UserID {
		return nil, ErrForbidden
	}

	users, err := s.userRepo.GetByIDs(ctx, recipientIDs)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrEmptyRecipients
	}

	resolved := make([]primitive.ObjectID, 0, len(users))
	names := make([]string, 0, len(users))
	for _, u := range users {
		resolved = append(resolved, u.ID)
		names = append(names, u.Name)
	}

	if err := s.documentRepo.SetRecipients(ctx, documentID, resolved); err != nil {
		return nil, err
	}
	doc.RecipientIDs = resolved
	doc.UpdatedAt = time.Now().UTC()

	// One audit entry per distribution event, not per recipient.
	actor := identity.UserID
	_, err = s.auditRepo.Create(ctx, &domain.AuditEntry{
		ActorID: &actor,
		Action:  domain.AuditDocumentDistributed,
		Detail:  fmt.Sprintf("document %q distributed to %s", doc.Title, SummarizeRecipients(names)),
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ResolveRecipients maps ids to display names, best-effort.
func (s *documentService) ResolveRecipients(ctx context.Context, userIDs []primitive.ObjectID) ([]string, error) {
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names, nil
}

// ListDocuments retrieves the coach's documents, newest first.
func (s *documentService) ListDocuments(ctx context.Context, identity domain.Identity) ([]domain.Document, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	return s.documentRepo.GetByCoachID(ctx, identity.UserID)
}

// MyDocuments lists documents distributed to the calling trainee.
func (s *documentService) MyDocuments(ctx context.Context, identity domain.Identity) ([]domain.Document, error) {
	if err := assertTrainee(identity); err != nil {
		return nil, err
	}
	if err := requireUnblocked(ctx, s.userRepo, identity); err != nil {
		return nil, err
	}
	return s.documentRepo.GetByRecipientID(ctx, identity.UserID)
}

// DownloadURL returns a presigned GET URL for the document's bytes.
func (s *documentService) DownloadURL(ctx context.Context, identity domain.Identity, documentID primitive.ObjectID) (string, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrDocumentNotFound
		}
		return "", err
	}

	if identity.IsCoach() {
		if doc.CoachID != identity.UserID {
			return "", ErrForbidden
		}
	} else {
		recipient := false
		for _, id := range doc.RecipientIDs {
			if id == identity.UserID {
				recipient = true
				break
			}
		}
		if !recipient {
			return "", ErrForbidden
		}
		if err := requireUnblocked(ctx, s.userRepo, identity); err != nil {
			return "", err
		}
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, doc.StoragePath, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return url, nil
}
