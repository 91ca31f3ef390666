package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type StudentService interface {
	// Register creates a student. Registering an email that already exists
	// returns the existing student instead of a duplicate.
	Register(ctx context.Context, name, email string) (*types.Student, error)

	Get(ctx context.Context, studentID uuid.UUID) (*types.Student, error)
	List(ctx context.Context) ([]*types.Student, error)
}

type studentService struct {
	students repos.StudentRepo
	log      *logger.Logger
}

func NewStudentService(students repos.StudentRepo, baseLog *logger.Logger) StudentService {
	return &studentService{students: students, log: baseLog.With("service", "students")}
}

func (s *studentService) Register(ctx context.Context, name, email string) (*types.Student, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("name and a valid email are required: %w", errors.ErrInvalidConfiguration)
	}

	existing, err := s.students.GetByEmail(ctx, email)
	if err == nil {
		s.log.Debug("Registration matched existing student", "student_id", existing.ID)
		return existing, nil
	}
	if !goerrors.Is(err, errors.ErrStudentNotFound) {
		return nil, err
	}

	student := &types.Student{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	s.log.Info("Student registered", "student_id", student.ID)
	return student, nil
}

func (s *studentService) Get(ctx context.Context, studentID uuid.UUID) (*types.Student, error) {
	return s.students.GetByID(ctx, studentID)
}

func (s *studentService) List(ctx context.Context) ([]*types.Student, error) {
	return s.students.List(ctx)
}
