package postgres

import (
	"errors"

	"github.com/frahmantamala/agency-portal/internal/project"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(p *project.Project) error {
	return r.db.Create(p).Error
}

func (r *Repository) GetByID(id int64) (*project.Project, error) {
	var p project.Project
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(filter project.ListFilter) ([]project.Project, error) {
	query := r.db.Model(&project.Project{})

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var projects []project.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *Repository) ListByClient(clientID int64) ([]project.Project, error) {
	var projects []project.Project
	err := r.db.Where("client_id = ?", clientID).Order("created_at ASC").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *Repository) Update(p *project.Project) error {
	return r.db.Save(p).Error
}

func (r *Repository) Delete(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&project.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// FindActiveManager prefers an active ADMIN and falls back to an active
// EDITOR. Returns nil without error when neither exists.
func (r *Repository) FindActiveManager() (*project.ManagerRef, error) {
	for _, role := range []string{"ADMIN", "EDITOR"} {
		var row struct {
			ID   int64
			Name string
		}
		err := r.db.Table("users").
			Select("id, name").
			Where("role = ? AND is_active = ?", role, true).
			Order("id ASC").
			Limit(1).
			Scan(&row).Error
		if err != nil {
			return nil, err
		}
		if row.ID != 0 {
			return &project.ManagerRef{ID: row.ID, Name: row.Name}, nil
		}
	}
	return nil, nil
}

func (r *Repository) CreateMilestone(m *project.Milestone) error {
	return r.db.Create(m).Error
}

func (r *Repository) GetMilestone(id int64) (*project.Milestone, error) {
	var m project.Milestone
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project.ErrMilestoneNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ListMilestones(projectID int64) ([]project.Milestone, error) {
	var milestones []project.Milestone
	err := r.db.Where("project_id = ?", projectID).
		Order("due_date ASC NULLS LAST, id ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *Repository) UpdateMilestone(m *project.Milestone) error {
	return r.db.Save(m).Error
}

func (r *Repository) DeleteMilestone(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&project.Milestone{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return project.ErrMilestoneNotFound
	}
	return nil
}

func (r *Repository) CreateChangeRequest(cr *project.ChangeRequest) error {
	return r.db.Create(cr).Error
}

func (r *Repository) GetChangeRequest(id int64) (*project.ChangeRequest, error) {
	var cr project.ChangeRequest
	err := r.db.Where("id = ?", id).First(&cr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project.ErrChangeRequestNotFound
		}
		return nil, err
	}
	return &cr, nil
}

func (r *Repository) ListChangeRequests(projectID int64) ([]project.ChangeRequest, error) {
	var requests []project.ChangeRequest
	err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *Repository) UpdateChangeRequest(cr *project.ChangeRequest) error {
	return r.db.Save(cr).Error
}
