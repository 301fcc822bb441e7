package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// AnnouncementService defines announcement operations
type AnnouncementService interface {
	// CreateAnnouncement stores the announcement with actor as its author
	CreateAnnouncement(ctx context.Context, announcement *models.Announcement, actor *int64) error
	GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, announcement *models.Announcement) error
	DeleteAnnouncement(ctx context.Context, id int64) error
	// Active returns up to limit live announcements by priority then recency
	Active(ctx context.Context, limit int) ([]models.Announcement, error)
}

type announcementServiceImpl struct {
	announcementRepo repositories.IAnnouncementRepository
	departmentRepo   repositories.IDepartmentRepository
	clock            Clock
}

// NewAnnouncementService creates a new announcement service instance
func NewAnnouncementService(announcementRepo repositories.IAnnouncementRepository, departmentRepo repositories.IDepartmentRepository, clock Clock) AnnouncementService {
	return &announcementServiceImpl{
		announcementRepo: announcementRepo,
		departmentRepo:   departmentRepo,
		clock:            clock,
	}
}

func (s *announcementServiceImpl) validate(ctx context.Context, a *models.Announcement) error {
	if a == nil {
		return fmt.Errorf("%w: announcement is nil", apperrors.ErrValidationFailed)
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if a.DepartmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *a.DepartmentID); err != nil {
			return err
		}
	}
	return nil
}

// CreateAnnouncement creates a new announcement
func (s *announcementServiceImpl) CreateAnnouncement(ctx context.Context, announcement *models.Announcement, actor *int64) error {
	if err := s.validate(ctx, announcement); err != nil {
		return err
	}
	announcement.CreatedBy = actor
	return s.announcementRepo.Create(ctx, announcement)
}

// GetAnnouncement retrieves an announcement by ID
func (s *announcementServiceImpl) GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error) {
	if err := validateID(id, "announcement"); err != nil {
		return nil, err
	}
	return s.announcementRepo.GetByID(ctx, id)
}

// ListAnnouncements lists every announcement, live or not
func (s *announcementServiceImpl) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return s.announcementRepo.List(ctx, nil, 0)
}

// UpdateAnnouncement updates an existing announcement. The author is kept.
func (s *announcementServiceImpl) UpdateAnnouncement(ctx context.Context, announcement *models.Announcement) error {
	if announcement == nil {
		return fmt.Errorf("%w: announcement is nil", apperrors.ErrValidationFailed)
	}
	if err := validateID(announcement.ID, "announcement"); err != nil {
		return err
	}
	if err := s.validate(ctx, announcement); err != nil {
		return err
	}
	return s.announcementRepo.Update(ctx, announcement)
}

// DeleteAnnouncement deletes an announcement by ID
func (s *announcementServiceImpl) DeleteAnnouncement(ctx context.Context, id int64) error {
	if err := validateID(id, "announcement"); err != nil {
		return err
	}
	return s.announcementRepo.Delete(ctx, id)
}

// Active lists live announcements
func (s *announcementServiceImpl) Active(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit < 0 {
		limit = 0
	}
	now := s.clock.now()
	return s.announcementRepo.List(ctx, &now, uint64(limit))
}
