package imports

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
	"gorm.io/gorm"
)

type stubImportsRepo struct {
	jobs           map[int64]*models.ImportJob
	items          map[string]*models.Item
	customFields   []models.CustomField
	createItemErrs map[string]error
	nextID         int64
}

func newStubImportsRepo() *stubImportsRepo {
	return &stubImportsRepo{
		jobs:  map[int64]*models.ImportJob{},
		items: map[string]*models.Item{},
	}
}

func (s *stubImportsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubImportsRepo) CreateJob(ctx context.Context, job *models.ImportJob) error {
	s.nextID++
	job.ID = s.nextID
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *stubImportsRepo) FindJob(ctx context.Context, jobID int64) (*models.ImportJob, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *stubImportsRepo) UpdateJob(ctx context.Context, jobID int64, updates map[string]any) error {
	job, ok := s.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			job.Status = value.(enums.ImportJobStatus)
		case "total_rows":
			job.TotalRows = value.(int)
		case "processed_rows":
			job.ProcessedRows = value.(int)
		case "success_count":
			job.SuccessCount = value.(int)
		case "error_count":
			job.ErrorCount = value.(int)
		case "error_details":
			job.ErrorDetails = value.(types.StringList)
		case "started_at":
			job.StartedAt = value.(*time.Time)
		case "completed_at":
			job.CompletedAt = value.(*time.Time)
		}
	}
	return nil
}

func (s *stubImportsRepo) ListJobs(ctx context.Context, input ListJobsInput) ([]models.ImportJob, int64, error) {
	jobs := make([]models.ImportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	return jobs, int64(len(jobs)), nil
}

func (s *stubImportsRepo) FindItemBySKU(ctx context.Context, sku string) (*models.Item, error) {
	item, ok := s.items[sku]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubImportsRepo) CreateItem(ctx context.Context, item *models.Item) error {
	if err := s.createItemErrs[item.SKU]; err != nil {
		return err
	}
	s.nextID++
	item.ID = s.nextID
	copied := *item
	s.items[item.SKU] = &copied
	return nil
}

func (s *stubImportsRepo) SaveItem(ctx context.Context, item *models.Item) error {
	copied := *item
	s.items[item.SKU] = &copied
	return nil
}

func (s *stubImportsRepo) ListItems(ctx context.Context) ([]models.Item, error) {
	items := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	return items, nil
}

func (s *stubImportsRepo) ListCustomFieldKeys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.customFields))
	for _, field := range s.customFields {
		keys = append(keys, field.FieldKey)
	}
	return keys, nil
}

func (s *stubImportsRepo) ListCustomFields(ctx context.Context) ([]models.CustomField, error) {
	return s.customFields, nil
}

func (s *stubImportsRepo) MaxCustomFieldDisplayOrder(ctx context.Context) (int, error) {
	max := 0
	for _, field := range s.customFields {
		if field.DisplayOrder > max {
			max = field.DisplayOrder
		}
	}
	return max, nil
}

func (s *stubImportsRepo) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	s.nextID++
	field.ID = s.nextID
	s.customFields = append(s.customFields, *field)
	return nil
}

type stubAuditRecorder struct {
	entries []audit.Entry
}

func (s *stubAuditRecorder) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubQueue struct {
	messages []*pubsub.Message
	err      error
}

func (s *stubQueue) Enqueue(ctx context.Context, msg *pubsub.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.messages = append(s.messages, msg)
	return fmt.Sprintf("m-%d", len(s.messages)), nil
}

type stubNotifier struct {
	finished []models.ImportJob
}

func (s *stubNotifier) ImportFinished(ctx context.Context, job models.ImportJob) {
	s.finished = append(s.finished, job)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type importFixture struct {
	svc      Service
	repo     *stubImportsRepo
	queue    *stubQueue
	notifier *stubNotifier
	audits   *stubAuditRecorder
}

func newImportFixture(t *testing.T, threshold int64) *importFixture {
	t.Helper()
	repo := newStubImportsRepo()
	queue := &stubQueue{}
	notifier := &stubNotifier{}
	audits := &stubAuditRecorder{}
	cfg := config.ImportConfig{
		AsyncThresholdBytes: threshold,
		UploadDir:           t.TempDir(),
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, audits, queue, notifier, nil, logg, cfg)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return &importFixture{svc: svc, repo: repo, queue: queue, notifier: notifier, audits: audits}
}

func uploadCSV(t *testing.T, f *importFixture, content string) (*UploadResult, error) {
	t.Helper()
	return f.svc.Upload(context.Background(), UploadInput{
		Filename:  "catalog.csv",
		Content:   strings.NewReader(content),
		ActorID:   7,
		ActorRole: enums.UserRoleManager,
	})
}

func TestUploadSmallFileProcessesInline(t *testing.T) {
	f := newImportFixture(t, 1<<20)

	result, err := uploadCSV(t, f, "sku,name,unit_price\nA-1,Widget,9.99\nA-2,Gadget,12.50\n")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.Status != enums.ImportJobStatusCompleted || result.Result == nil {
		t.Fatalf("expected inline completion, got %+v", result)
	}
	if result.Result.SuccessCount != 2 || result.Result.ErrorCount != 0 {
		t.Fatalf("unexpected counters: %+v", result.Result)
	}
	if len(f.repo.items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(f.repo.items))
	}
	job := f.repo.jobs[result.JobID]
	if job.Status != enums.ImportJobStatusCompleted || job.CompletedAt == nil {
		t.Fatalf("job not finalized: %+v", job)
	}
	if len(f.notifier.finished) != 1 {
		t.Fatalf("expected one finished notification, got %d", len(f.notifier.finished))
	}
	if len(f.audits.entries) != 1 || f.audits.entries[0].Action != enums.AuditActionImport {
		t.Fatalf("expected IMPORT audit entry, got %+v", f.audits.entries)
	}
}

func TestUploadLargeFileIsQueued(t *testing.T) {
	f := newImportFixture(t, 1)

	result, err := uploadCSV(t, f, "sku,name,unit_price\nA-1,Widget,9.99\n")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.Status != enums.ImportJobStatusProcessing || result.Result != nil {
		t.Fatalf("expected queued response, got %+v", result)
	}
	if len(f.queue.messages) != 1 {
		t.Fatalf("expected one queued message, got %d", len(f.queue.messages))
	}
	msg := f.queue.messages[0]
	if msg.Attributes["event_type"] != EventTypeJobQueued || msg.Attributes["event_id"] == "" {
		t.Fatalf("unexpected message attributes: %v", msg.Attributes)
	}
	if len(f.repo.items) != 0 {
		t.Fatal("queued upload must not touch the catalog")
	}
}

func TestUploadThresholdBoundaryRouting(t *testing.T) {
	content := "sku,name,unit_price\nA-1,Widget,9.99\n"
	size := int64(len(content))

	// exactly at the threshold goes to the queue
	f := newImportFixture(t, size)
	result, err := uploadCSV(t, f, content)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.Status != enums.ImportJobStatusProcessing || len(f.queue.messages) != 1 {
		t.Fatalf("file at the threshold must queue, got %+v (%d messages)", result, len(f.queue.messages))
	}

	// one byte under processes inline
	f = newImportFixture(t, size+1)
	result, err = uploadCSV(t, f, content)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.Status != enums.ImportJobStatusCompleted || result.Result == nil {
		t.Fatalf("file under the threshold must process inline, got %+v", result)
	}
	if len(f.queue.messages) != 0 {
		t.Fatalf("inline upload must not queue, got %d messages", len(f.queue.messages))
	}
}

func TestUploadQueueFailureMarksJobFailed(t *testing.T) {
	f := newImportFixture(t, 1)
	f.queue.err = fmt.Errorf("broker down")

	_, err := uploadCSV(t, f, "sku,name,unit_price\nA-1,Widget,9.99\n")
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	var job *models.ImportJob
	for _, candidate := range f.repo.jobs {
		job = candidate
	}
	if job == nil || job.Status != enums.ImportJobStatusFailed {
		t.Fatalf("job should be marked failed: %+v", job)
	}
}

func TestUploadRejectsViewer(t *testing.T) {
	f := newImportFixture(t, 1<<20)

	_, err := f.svc.Upload(context.Background(), UploadInput{
		Filename:  "catalog.csv",
		Content:   strings.NewReader("sku,name,unit_price\n"),
		ActorID:   7,
		ActorRole: enums.UserRoleViewer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	f := newImportFixture(t, 1<<20)

	_, err := f.svc.Upload(context.Background(), UploadInput{
		Filename:  "catalog.pdf",
		Content:   strings.NewReader("x"),
		ActorID:   7,
		ActorRole: enums.UserRoleAdmin,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestProcessRecordsRowErrors(t *testing.T) {
	f := newImportFixture(t, 1<<20)

	result, err := uploadCSV(t, f, "sku,name,unit_price\nA-1,Widget,9.99\n,NoSKU,1.00\nA-3,Bad,abc\n")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.Result.SuccessCount != 1 || result.Result.ErrorCount != 2 {
		t.Fatalf("unexpected counters: %+v", result.Result)
	}
	if result.Result.Errors[0] != "Row 3: Missing required fields" {
		t.Fatalf("unexpected row error: %q", result.Result.Errors[0])
	}
	if !strings.HasPrefix(result.Result.Errors[1], "Row 4: invalid unit_price") {
		t.Fatalf("unexpected row error: %q", result.Result.Errors[1])
	}
	job := f.repo.jobs[result.JobID]
	if job.ErrorCount != 2 || len(job.ErrorDetails) != 2 {
		t.Fatalf("errors not persisted on job: %+v", job)
	}
	if job.SuccessCount != 1 || job.ProcessedRows != 3 {
		t.Fatalf("row counters not persisted on job: %+v", job)
	}
}

func TestProcessSurvivesRowPersistenceFailure(t *testing.T) {
	f := newImportFixture(t, 1<<20)
	f.repo.createItemErrs = map[string]error{
		"A-2": fmt.Errorf("FOREIGN KEY constraint failed"),
	}

	result, err := uploadCSV(t, f, "sku,name,unit_price\nA-1,Widget,9.99\nA-2,Gadget,12.50\nA-3,Gizmo,3.25\n")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.Result.SuccessCount != 2 || result.Result.ErrorCount != 1 {
		t.Fatalf("unexpected counters: %+v", result.Result)
	}
	if !strings.HasPrefix(result.Result.Errors[0], "Row 3: ") ||
		!strings.Contains(result.Result.Errors[0], "FOREIGN KEY constraint failed") {
		t.Fatalf("unexpected row error: %q", result.Result.Errors[0])
	}
	if len(f.repo.items) != 2 {
		t.Fatalf("surviving rows must still land, got %d items", len(f.repo.items))
	}
	job := f.repo.jobs[result.JobID]
	if job.Status != enums.ImportJobStatusCompleted || job.SuccessCount != 2 || job.ErrorCount != 1 {
		t.Fatalf("job must complete despite the bad row: %+v", job)
	}
}

func TestProcessRegistersUnknownColumnsOnce(t *testing.T) {
	f := newImportFixture(t, 1<<20)
	f.repo.customFields = []models.CustomField{
		{ID: 1, FieldKey: "color", Label: "Color", DisplayOrder: 3},
	}

	_, err := uploadCSV(t, f, "sku,name,unit_price,color,warranty_months\nA-1,Widget,9.99,red,24\n")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if len(f.repo.customFields) != 2 {
		t.Fatalf("expected exactly one new custom field, got %+v", f.repo.customFields)
	}
	created := f.repo.customFields[1]
	if created.FieldKey != "warranty_months" || created.Label != "Warranty Months" {
		t.Fatalf("unexpected custom field: %+v", created)
	}
	if created.GroupName != importedFieldsGroup || created.ShowInForm || created.ShowInTable {
		t.Fatalf("imported field must be hidden in %q group: %+v", importedFieldsGroup, created)
	}
	if created.DisplayOrder != 4 {
		t.Fatalf("imported field must sort after existing fields, got order %d", created.DisplayOrder)
	}
}

func TestProcessMergesCustomDataAdditively(t *testing.T) {
	f := newImportFixture(t, 1<<20)
	f.repo.items["A-1"] = &models.Item{
		ID:         1,
		SKU:        "A-1",
		Name:       "Old name",
		CustomData: map[string]any{"color": "red"},
	}

	_, err := uploadCSV(t, f, "sku,name,unit_price,warranty_months\nA-1,New name,5.00,24\n")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	item := f.repo.items["A-1"]
	if item.Name != "New name" {
		t.Fatalf("core fields must be overwritten: %+v", item)
	}
	if item.CustomData["color"] != "red" || item.CustomData["warranty_months"] != "24" {
		t.Fatalf("custom data must merge additively: %v", item.CustomData)
	}
}

func TestProcessTerminalJobIsStateConflict(t *testing.T) {
	f := newImportFixture(t, 1<<20)
	f.repo.jobs[42] = &models.ImportJob{ID: 42, Status: enums.ImportJobStatusCompleted}

	_, err := f.svc.Process(context.Background(), 42, ModeAsync)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestProcessUnknownJobIsNotFound(t *testing.T) {
	f := newImportFixture(t, 1<<20)

	_, err := f.svc.Process(context.Background(), 99, ModeAsync)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
