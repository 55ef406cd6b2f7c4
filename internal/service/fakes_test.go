package service

import (
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They mirror the mongo
// implementations' observable behavior, including the conditional
// mark-done update and order guarantees.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	if user.BlockReason == "" {
		user.BlockReason = domain.BlockNone
	}
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) SetBlockReason(ctx context.Context, id primitive.ObjectID, reason domain.BlockReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.BlockReason = reason
	return nil
}

func (r *fakeUserRepo) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string, mustChange bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.MustChangePassword = mustChange
	return nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]*domain.WorkoutTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[primitive.ObjectID]*domain.WorkoutTemplate)}
}

func (r *fakeTemplateRepo) Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	tpl.CreatedAt = time.Now().UTC()
	cp := *tpl
	r.templates[tpl.ID] = &cp
	return tpl.ID, nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutTemplate
	for _, t := range r.templates {
		if t.CoachID == coachID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTemplateRepo) Update(ctx context.Context, tpl *domain.WorkoutTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[tpl.ID]
	if !ok {
		return repository.ErrNotFound
	}
	t.Title = tpl.Title
	t.Content = tpl.Content
	t.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeCompletionRepo struct {
	mu   sync.Mutex
	rows []*domain.WorkoutCompletion
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{}
}

func (r *fakeCompletionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCompletionRepo) GetByAssignmentAndTrainee(ctx context.Context, assignmentID, traineeID primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.AssignmentID == assignmentID && c.TraineeID == traineeID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCompletionRepo) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutCompletion
	for _, c := range r.rows {
		if c.AssignmentID == assignmentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCompletionRepo) GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutCompletion
	for _, c := range r.rows {
		if c.TraineeID == traineeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCompletionRepo) MarkDone(ctx context.Context, assignmentID, traineeID primitive.ObjectID, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.AssignmentID == assignmentID && c.TraineeID == traineeID {
			if c.CompletedAt != nil {
				return repository.ErrAlreadyDone
			}
			at := completedAt.UTC()
			c.CompletedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*domain.WorkoutAssignment
	completions *fakeCompletionRepo
}

func newFakeAssignmentRepo(completions *fakeCompletionRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: make(map[primitive.ObjectID]*domain.WorkoutAssignment),
		completions: completions,
	}
}

func (r *fakeAssignmentRepo) CreateWithCompletions(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	cp := *assignment
	r.assignments[assignment.ID] = &cp
	for _, traineeID := range assignment.TraineeIDs {
		r.completions.rows = append(r.completions.rows, &domain.WorkoutCompletion{
			ID:           primitive.NewObjectID(),
			AssignmentID: assignment.ID,
			TraineeID:    traineeID,
			CreatedAt:    now,
		})
	}
	return assignment.ID, nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAssignmentRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutAssignment
	for _, a := range r.assignments {
		if a.CoachID == coachID {
			out = append(out, *a)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (r *fakeAssignmentRepo) GetByTraineeAndDateRange(ctx context.Context, traineeID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutAssignment
	for _, a := range r.assignments {
		if !targetsTrainee(a, traineeID) {
			continue
		}
		if a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		out = append(out, *a)
	}
	sortByDateDesc(out)
	return out, nil
}

func (r *fakeAssignmentRepo) GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutAssignment
	for _, a := range r.assignments {
		if targetsTrainee(a, traineeID) {
			out = append(out, *a)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func targetsTrainee(a *domain.WorkoutAssignment, traineeID primitive.ObjectID) bool {
	for _, id := range a.TraineeIDs {
		if id == traineeID {
			return true
		}
	}
	return false
}

func sortByDateDesc(assignments []domain.WorkoutAssignment) {
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Date.After(assignments[j].Date)
	})
}

type fakeFeedbackRepo struct {
	mu      sync.Mutex
	entries []*domain.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{}
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb.ID = primitive.NewObjectID()
	cp := *fb
	r.entries = append(r.entries, &cp)
	return fb.ID, nil
}

func (r *fakeFeedbackRepo) List(ctx context.Context, traineeID, assignmentID *primitive.ObjectID) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Feedback
	for _, fb := range r.entries {
		if traineeID != nil && fb.TraineeID != *traineeID {
			continue
		}
		if assignmentID != nil && fb.AssignmentID != *assignmentID {
			continue
		}
		out = append(out, *fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*domain.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[primitive.ObjectID]*domain.Document)}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *domain.Document) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.Slug == doc.Slug {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	if doc.RecipientIDs == nil {
		doc.RecipientIDs = []primitive.ObjectID{}
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return doc.ID, nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocumentRepo) GetBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.Slug == slug {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDocumentRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, d := range r.docs {
		if d.CoachID == coachID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDocumentRepo) GetByRecipientID(ctx context.Context, userID primitive.ObjectID) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, d := range r.docs {
		for _, id := range d.RecipientIDs {
			if id == userID {
				out = append(out, *d)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDocumentRepo) SetRecipients(ctx context.Context, id primitive.ObjectID, recipientIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.RecipientIDs = recipientIDs
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.entries = append(r.entries, *entry)
	return entry.ID, nil
}

func (r *fakeAuditRepo) List(ctx context.Context, limit int64) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEntry, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// byAction returns the entries recorded with the given action.
func (r *fakeAuditRepo) byAction(action domain.AuditAction) []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires every service over the in-memory fakes, sharing the same
// stores so cross-service effects (assignment fan-out, audit) are visible.
type testEnv struct {
	users       *fakeUserRepo
	templates   *fakeTemplateRepo
	assignments *fakeAssignmentRepo
	completions *fakeCompletionRepo
	feedback    *fakeFeedbackRepo
	documents   *fakeDocumentRepo
	audit       *fakeAuditRepo

	coach     CoachService
	trainee   TraineeService
	docs        DocumentService

	loc *time.Location
}

func newTestEnv() *testEnv {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	users := newFakeUserRepo()
	templates := newFakeTemplateRepo()
	completions := newFakeCompletionRepo()
	assignments := newFakeAssignmentRepo(completions)
	feedback := newFakeFeedbackRepo()
	documents := newFakeDocumentRepo()
	audit := newFakeAuditRepo()

	return &testEnv{
		users:       users,
		templates:   templates,
		assignments: assignments,
		completions: completions,
		feedback:    feedback,
		documents:   documents,
		audit:       audit,
		coach:       NewCoachService(users, templates, assignments, completions, feedback, audit, loc),
		trainee:     NewTraineeService(users, assignments, completions, feedback, audit, loc),
		docs:        NewDocumentService(users, documents, audit, fakeFileStorage{}),
		loc:         loc,
	}
}

// seedUser inserts a user directly into the fake store and returns its
// identity for service calls.
func (e *testEnv) seedUser(name string, role domain.Role) domain.Identity {
	u := &domain.User{
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	}
	id, err := e.users.Create(context.Background(), u)
	if err != nil {
		panic(err)
	}
	return domain.Identity{UserID: id, Role: role}
}

type fakeFileStorage struct{}

func (fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}
