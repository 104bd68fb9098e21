package postgres

import (
	"testing"
	"time"

	"github.com/frahmantamala/agency-portal/internal/project"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProjectRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ProjectRepository Suite")
}

type SQLiteUser struct {
	ID       int64  `gorm:"primaryKey"`
	Email    string `gorm:"uniqueIndex;not null"`
	Name     string
	Role     string `gorm:"not null"`
	IsActive bool   `gorm:"column:is_active"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteProject struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Scope       string
	Status      string `gorm:"default:'planning'"`
	Progress    int
	ClientID    int64 `gorm:"column:client_id;not null"`
	ManagerID   int64 `gorm:"column:manager_id;not null"`
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SQLiteProject) TableName() string {
	return "projects"
}

type SQLiteMilestone struct {
	ID          int64 `gorm:"primaryKey"`
	ProjectID   int64 `gorm:"column:project_id;not null"`
	Title       string
	Description string
	DueDate     *time.Time
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SQLiteMilestone) TableName() string {
	return "milestones"
}

type SQLiteChangeRequest struct {
	ID          int64 `gorm:"primaryKey"`
	ProjectID   int64 `gorm:"column:project_id;not null"`
	RequesterID int64 `gorm:"column:requester_id;not null"`
	Title       string
	Description string
	Status      string `gorm:"default:'pending'"`
	DecidedBy   *int64
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SQLiteChangeRequest) TableName() string {
	return "change_requests"
}

var _ = Describe("ProjectRepository", func() {
	var (
		db   *gorm.DB
		repo project.RepositoryAPI
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteProject{}, &SQLiteMilestone{}, &SQLiteChangeRequest{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and GetByID", func() {
		It("persists and reads back a project", func() {
			p := &project.Project{
				Name:      "Website Revamp",
				Status:    project.StatusPlanning,
				ClientID:  10,
				ManagerID: 1,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			Expect(repo.Create(p)).To(Succeed())
			Expect(p.ID).NotTo(BeZero())

			got, err := repo.GetByID(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Website Revamp"))
			Expect(got.ClientID).To(Equal(int64(10)))
		})

		It("returns not found for missing ids", func() {
			_, err := repo.GetByID(999)
			Expect(err).To(MatchError(project.ErrProjectNotFound))
		})
	})

	Describe("ListByClient", func() {
		It("returns only the client's projects", func() {
			Expect(repo.Create(&project.Project{Name: "A", ClientID: 10, ManagerID: 1, Status: project.StatusActive})).To(Succeed())
			Expect(repo.Create(&project.Project{Name: "B", ClientID: 20, ManagerID: 1, Status: project.StatusActive})).To(Succeed())

			projects, err := repo.ListByClient(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(1))
			Expect(projects[0].Name).To(Equal("A"))
		})
	})

	Describe("FindActiveManager", func() {
		It("prefers an active admin", func() {
			Expect(db.Create(&SQLiteUser{ID: 1, Email: "editor@agency.test", Name: "Editor", Role: "EDITOR", IsActive: true}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 2, Email: "admin@agency.test", Name: "Admin", Role: "ADMIN", IsActive: true}).Error).To(Succeed())

			mgr, err := repo.FindActiveManager()
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).NotTo(BeNil())
			Expect(mgr.ID).To(Equal(int64(2)))
		})

		It("falls back to an active editor when no admin is active", func() {
			Expect(db.Create(&SQLiteUser{ID: 1, Email: "admin@agency.test", Name: "Admin", Role: "ADMIN", IsActive: false}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 2, Email: "editor@agency.test", Name: "Editor", Role: "EDITOR", IsActive: true}).Error).To(Succeed())

			mgr, err := repo.FindActiveManager()
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).NotTo(BeNil())
			Expect(mgr.ID).To(Equal(int64(2)))
		})

		It("returns nil when neither admin nor editor is active", func() {
			Expect(db.Create(&SQLiteUser{ID: 1, Email: "viewer@agency.test", Name: "Viewer", Role: "VIEWER", IsActive: true}).Error).To(Succeed())

			mgr, err := repo.FindActiveManager()
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).To(BeNil())
		})
	})

	Describe("Milestones", func() {
		It("creates, lists and deletes milestones for a project", func() {
			p := &project.Project{Name: "P", ClientID: 10, ManagerID: 1, Status: project.StatusActive}
			Expect(repo.Create(p)).To(Succeed())

			m := &project.Milestone{ProjectID: p.ID, Title: "Design handoff"}
			Expect(repo.CreateMilestone(m)).To(Succeed())

			milestones, err := repo.ListMilestones(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(milestones).To(HaveLen(1))

			Expect(repo.DeleteMilestone(m.ID)).To(Succeed())
			milestones, err = repo.ListMilestones(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(milestones).To(BeEmpty())
		})
	})
})
