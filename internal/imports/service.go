package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	entityTypeImportJob = "import_job"

	// EventTypeJobQueued tags queue messages carrying a spooled import job.
	EventTypeJobQueued = "import.job.queued"

	// ModeSync and ModeAsync label the two processing paths for metrics.
	ModeSync  = "sync"
	ModeAsync = "async"

	importedFieldsGroup = "Imported Fields"

	// Row numbers in error messages are 1-based and count the header row,
	// matching what a user sees in a spreadsheet.
	headerRowOffset = 2
)

// coreColumns are the item attributes the importer maps directly. Every other
// column becomes a custom field.
var coreColumns = map[string]bool{
	"sku":           true,
	"name":          true,
	"description":   true,
	"unit_price":    true,
	"reorder_level": true,
	"category_id":   true,
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// QueuedJobPayload is the queue message body for an async import.
type QueuedJobPayload struct {
	JobID int64 `json:"job_id"`
}

// Service defines the bulk catalog import pipeline.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Process(ctx context.Context, jobID int64, mode string) (*ProcessResult, error)
	GetJob(ctx context.Context, jobID int64) (*models.ImportJob, error)
	ListJobs(ctx context.Context, input ListJobsInput) (*JobList, error)
	ExportItems(ctx context.Context) ([]byte, string, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	audits   audit.Recorder
	queue    Queue
	notifier Notifier
	metrics  *metrics.ImportMetrics
	logg     *logger.Logger
	cfg      config.ImportConfig
	now      func() time.Time
}

// NewService builds the import service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	audits audit.Recorder,
	queue Queue,
	notifier Notifier,
	importMetrics *metrics.ImportMetrics,
	logg *logger.Logger,
	cfg config.ImportConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("imports repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if audits == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if queue == nil {
		return nil, fmt.Errorf("job queue required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("import notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		audits:   audits,
		queue:    queue,
		notifier: notifier,
		metrics:  importMetrics,
		logg:     logg,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func requireImporter(actorID int64, role enums.UserRole) error {
	if actorID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if role != enums.UserRoleAdmin && role != enums.UserRoleManager {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not import catalog data")
	}
	return nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(input.Filename) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filename required")
	}
	if !SupportedExtension(input.Filename) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only csv and excel files are accepted")
	}
	if input.Content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content required")
	}
	if err := requireImporter(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	filename := filepath.Base(input.Filename)
	path, size, err := s.spool(filename, input.Content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "spool upload")
	}

	job := models.ImportJob{
		Filename:      filename,
		FilePath:      path,
		FileSizeBytes: size,
		Status:        enums.ImportJobStatusPending,
		CreatedByID:   input.ActorID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateJob(ctx, &job); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create import job")
		}
		return s.audits.Record(ctx, tx, audit.Entry{
			ActorID:    input.ActorID,
			Action:     enums.AuditActionImport,
			EntityType: entityTypeImportJob,
			EntityID:   job.ID,
			Details:    fmt.Sprintf("uploaded %s (%d bytes)", filename, size),
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithJobID(ctx, job.ID)
	if size < s.cfg.AsyncThresholdBytes {
		result, err := s.Process(ctx, job.ID, ModeSync)
		if err != nil {
			return nil, err
		}
		return &UploadResult{
			JobID:  job.ID,
			Status: enums.ImportJobStatusCompleted,
			Result: result,
		}, nil
	}

	if err := s.enqueue(ctx, job.ID); err != nil {
		s.markFailed(ctx, job.ID, ModeAsync, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue import job")
	}
	s.logg.Info(logCtx, "import job queued for background processing")
	return &UploadResult{
		JobID:  job.ID,
		Status: enums.ImportJobStatusProcessing,
	}, nil
}

func (s *service) spool(filename string, content io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s-%s", uuid.NewString(), filename))
	dest, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create spool file: %w", err)
	}
	defer dest.Close()

	size, err := io.Copy(dest, content)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write spool file: %w", err)
	}
	return path, size, nil
}

func (s *service) enqueue(ctx context.Context, jobID int64) error {
	payload, err := json.Marshal(QueuedJobPayload{JobID: jobID})
	if err != nil {
		return fmt.Errorf("encode queue payload: %w", err)
	}
	_, err = s.queue.Enqueue(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": EventTypeJobQueued,
			"event_id":   uuid.NewString(),
		},
	})
	if err != nil {
		return fmt.Errorf("publish queue message: %w", err)
	}
	return nil
}

// Process runs one import job end to end. Both the inline and the worker path
// land here; mode only labels metrics and logs.
func (s *service) Process(ctx context.Context, jobID int64, mode string) (*ProcessResult, error) {
	started := s.now()
	logCtx := s.logg.WithFields(ctx, map[string]any{"job_id": jobID, "mode": mode})

	job, err := s.repo.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "import job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load import job")
	}
	if job.Status.IsTerminal() {
		return nil, pkgerrors.
			New(pkgerrors.CodeStateConflict, "import job already finished").
			WithDetails(map[string]any{"status": job.Status})
	}

	parsed, err := ParseFile(job.FilePath)
	if err != nil {
		s.markFailed(ctx, jobID, mode, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse import file")
	}

	now := s.now()
	err = s.repo.UpdateJob(ctx, jobID, map[string]any{
		"status":     enums.ImportJobStatusProcessing,
		"total_rows": len(parsed.Rows),
		"started_at": &now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark job processing")
	}

	if err := s.registerCustomFields(ctx, parsed.Headers); err != nil {
		s.markFailed(ctx, jobID, mode, err)
		return nil, err
	}

	result, err := s.processRows(ctx, parsed)
	if err != nil {
		s.markFailed(ctx, jobID, mode, err)
		return nil, err
	}

	finalized, err := s.finalize(ctx, jobID, result)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDuration(mode, s.now().Sub(started))
	s.metrics.AddRows(mode, result.SuccessCount)
	s.metrics.AddRowErrors(mode, result.ErrorCount)
	s.metrics.IncJob(mode, enums.ImportJobStatusCompleted.String())

	s.logg.Info(logCtx, fmt.Sprintf("import finished: %d ok, %d failed of %d rows",
		result.SuccessCount, result.ErrorCount, result.TotalRows))
	s.notifier.ImportFinished(ctx, *finalized)
	return result, nil
}

// registerCustomFields creates a custom field for every unknown column,
// hidden by default and sorted after the existing fields.
func (s *service) registerCustomFields(ctx context.Context, headers []string) error {
	unknown := make([]string, 0)
	seen := make(map[string]bool)
	for _, header := range headers {
		if header == "" || coreColumns[header] || seen[header] {
			continue
		}
		seen[header] = true
		unknown = append(unknown, header)
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListCustomFieldKeys(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list custom field keys")
		}
		known := make(map[string]bool, len(existing))
		for _, key := range existing {
			known[key] = true
		}

		order, err := repo.MaxCustomFieldDisplayOrder(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve display order")
		}

		for _, key := range unknown {
			if known[key] {
				continue
			}
			order++
			field := models.CustomField{
				FieldKey:     key,
				Label:        fieldLabel(key),
				FieldType:    enums.CustomFieldTypeText,
				GroupName:    importedFieldsGroup,
				ShowInForm:   false,
				ShowInTable:  false,
				DisplayOrder: order,
			}
			if err := repo.CreateCustomField(ctx, &field); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create custom field")
			}
		}
		return nil
	})
}

func (s *service) processRows(ctx context.Context, parsed *ParsedFile) (*ProcessResult, error) {
	result := &ProcessResult{
		TotalRows: len(parsed.Rows),
		Errors:    []string{},
	}

	// Each row runs in its own transaction so one bad row cannot poison or
	// roll back the rest of the batch.
	for idx, row := range parsed.Rows {
		if err := ctx.Err(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import interrupted")
		}
		rowNumber := idx + headerRowOffset
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.upsertRow(ctx, s.repo.WithTx(tx), row)
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNumber, rowErrorMessage(err)))
			continue
		}
		result.SuccessCount++
	}

	result.ErrorCount = len(result.Errors)
	return result, nil
}

// rowErrorMessage keeps validation messages as written and appends the cause
// to persistence failures so the row error stays diagnosable.
func rowErrorMessage(err error) string {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		return err.Error()
	}
	if appErr.Code() != pkgerrors.CodeValidation {
		if cause := errors.Unwrap(appErr); cause != nil {
			return fmt.Sprintf("%s: %s", appErr.Message(), cause.Error())
		}
	}
	return appErr.Message()
}

func (s *service) upsertRow(ctx context.Context, repo Repository, row map[string]string) error {
	sku := row["sku"]
	name := row["name"]
	price := row["unit_price"]
	if sku == "" || name == "" || price == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	}

	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit_price %q", price))
	}

	reorderLevel := 10
	if raw := row["reorder_level"]; raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid reorder_level %q", raw))
		}
		reorderLevel = parsed
	}

	var categoryID *int64
	if raw := row["category_id"]; raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category_id %q", raw))
		}
		categoryID = &parsed
	}

	var description *string
	if raw := row["description"]; raw != "" {
		description = &raw
	}

	customData := make(types.JSONMap)
	for key, value := range row {
		if coreColumns[key] || value == "" {
			continue
		}
		customData[key] = value
	}

	item, err := repo.FindItemBySKU(ctx, sku)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := models.Item{
			SKU:          sku,
			Name:         name,
			Description:  description,
			UnitPrice:    unitPrice,
			ReorderLevel: reorderLevel,
			CategoryID:   categoryID,
			CustomData:   customData.Merge(nil),
		}
		if err := repo.CreateItem(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find item by sku")
	default:
		item.Name = name
		item.Description = description
		item.UnitPrice = unitPrice
		item.ReorderLevel = reorderLevel
		if categoryID != nil {
			item.CategoryID = categoryID
		}
		// Unknown columns merge additively so a partial re-import never
		// wipes attributes an earlier import established.
		item.CustomData = item.CustomData.Merge(customData)
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}
	}
	return nil
}

func (s *service) finalize(ctx context.Context, jobID int64, result *ProcessResult) (*models.ImportJob, error) {
	now := s.now()
	updates := map[string]any{
		"status":         enums.ImportJobStatusCompleted,
		"processed_rows": result.TotalRows,
		"success_count":  result.SuccessCount,
		"error_count":    result.ErrorCount,
		"completed_at":   &now,
	}
	if len(result.Errors) > 0 {
		updates["error_details"] = types.StringList(result.Errors)
	}
	if err := s.repo.UpdateJob(ctx, jobID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize import job")
	}

	job, err := s.repo.FindJob(ctx, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload import job")
	}
	return job, nil
}

// markFailed records a fatal error on the job. The update error, if any, is
// combined with the cause so neither is lost.
func (s *service) markFailed(ctx context.Context, jobID int64, mode string, cause error) {
	now := s.now()
	err := s.repo.UpdateJob(ctx, jobID, map[string]any{
		"status":        enums.ImportJobStatusFailed,
		"error_details": types.StringList{cause.Error()},
		"completed_at":  &now,
	})
	if err != nil {
		s.logg.Error(ctx, "failed to mark import job failed", multierr.Append(cause, err))
	}
	s.metrics.IncJob(mode, enums.ImportJobStatusFailed.String())

	if job, err := s.repo.FindJob(ctx, jobID); err == nil {
		s.notifier.ImportFinished(ctx, *job)
	}
}

func (s *service) GetJob(ctx context.Context, jobID int64) (*models.ImportJob, error) {
	job, err := s.repo.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "import job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load import job")
	}
	return job, nil
}

func (s *service) ListJobs(ctx context.Context, input ListJobsInput) (*JobList, error) {
	input.normalize()

	jobs, total, err := s.repo.ListJobs(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list import jobs")
	}
	return &JobList{
		Jobs:   jobs,
		Total:  total,
		Limit:  input.Limit,
		Offset: input.Offset,
	}, nil
}

// fieldLabel turns a column key like "warranty_months" into "Warranty Months".
func fieldLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
