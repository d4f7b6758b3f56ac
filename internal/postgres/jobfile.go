package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// JobFileService implements domain.JobFileService using PostgreSQL.
type JobFileService struct {
	db DB
}

var _ domain.JobFileService = (*JobFileService)(nil)

// NewJobFileService creates a new JobFileService instance.
func NewJobFileService(db DB) *JobFileService {
	return &JobFileService{db: db}
}

const jobFileColumns = `id, user_id, client_id, title, description, status, attachment_url, created_at, updated_at`

func scanJobFile(row interface{ Scan(...any) error }) (*domain.JobFile, error) {
	var j domain.JobFile
	err := row.Scan(&j.ID, &j.UserID, &j.ClientID, &j.Title, &j.Description,
		&j.Status, &j.AttachmentURL, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func jobFileStatus(status, op string) (string, error) {
	if status == "" {
		return domain.JobFileStatusOpen, nil
	}
	switch status {
	case domain.JobFileStatusOpen, domain.JobFileStatusInProgress,
		domain.JobFileStatusDone, domain.JobFileStatusArchived:
		return status, nil
	}
	return "", domain.Errorf(domain.EINVALID, op, "invalid job file status: %s", status)
}

// CreateJobFile creates a job file for a user.
func (s *JobFileService) CreateJobFile(ctx context.Context, userID string, params domain.JobFileParams) (*domain.JobFile, error) {
	if params.Title == "" {
		return nil, domain.Errorf(domain.EINVALID, "jobfile.create", "title is required")
	}
	status, err := jobFileStatus(params.Status, "jobfile.create")
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO job_files (user_id, client_id, title, description, status, attachment_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+jobFileColumns,
		userID, params.ClientID, params.Title, params.Description, status, params.AttachmentURL)

	jf, err := scanJobFile(row)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "jobfile.create", "failed to create job file")
	}
	return jf, nil
}

// GetJobFile retrieves a job file owned by the user.
func (s *JobFileService) GetJobFile(ctx context.Context, userID string, id uuid.UUID) (*domain.JobFile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+jobFileColumns+` FROM job_files
		WHERE id = $1 AND user_id = $2`,
		id, userID)

	jf, err := scanJobFile(row)
	if err != nil {
		return nil, notFound(err, domain.ErrJobFileNotFound, "jobfile.get")
	}
	return jf, nil
}

// ListJobFiles lists a user's job files, optionally filtered by status.
func (s *JobFileService) ListJobFiles(ctx context.Context, userID string, status string) ([]domain.JobFile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+jobFileColumns+` FROM job_files
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC`,
		userID, status)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "jobfile.list", "failed to list job files")
	}
	defer rows.Close()

	var files []domain.JobFile
	for rows.Next() {
		jf, err := scanJobFile(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "jobfile.list", "failed to scan job file")
		}
		files = append(files, *jf)
	}
	return files, rows.Err()
}

// UpdateJobFile updates a job file's writable fields.
func (s *JobFileService) UpdateJobFile(ctx context.Context, userID string, id uuid.UUID, params domain.JobFileParams) (*domain.JobFile, error) {
	status, err := jobFileStatus(params.Status, "jobfile.update")
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx, `
		UPDATE job_files SET
			client_id = $3, title = $4, description = $5, status = $6,
			attachment_url = $7, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+jobFileColumns,
		id, userID, params.ClientID, params.Title, params.Description, status, params.AttachmentURL)

	jf, err := scanJobFile(row)
	if err != nil {
		return nil, notFound(err, domain.ErrJobFileNotFound, "jobfile.update")
	}
	return jf, nil
}

// DeleteJobFile removes a job file.
func (s *JobFileService) DeleteJobFile(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM job_files WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "jobfile.delete", "failed to delete job file")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobFileNotFound
	}
	return nil
}
