package project_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/agency-portal/internal/auth"
	"github.com/frahmantamala/agency-portal/internal/project"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestProjectService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Project Service Suite")
}

type mockProjectRepo struct {
	projects       map[int64]*project.Project
	milestones     map[int64]*project.Milestone
	changeRequests map[int64]*project.ChangeRequest
	manager        *project.ManagerRef
	nextID         int64
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{
		projects:       map[int64]*project.Project{},
		milestones:     map[int64]*project.Milestone{},
		changeRequests: map[int64]*project.ChangeRequest{},
		nextID:         1,
	}
}

func (m *mockProjectRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockProjectRepo) Create(p *project.Project) error {
	p.ID = m.id()
	copied := *p
	m.projects[p.ID] = &copied
	return nil
}

func (m *mockProjectRepo) GetByID(id int64) (*project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProjectRepo) List(filter project.ListFilter) ([]project.Project, error) {
	var out []project.Project
	for _, p := range m.projects {
		if filter.ClientID > 0 && p.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProjectRepo) ListByClient(clientID int64) ([]project.Project, error) {
	var out []project.Project
	for _, p := range m.projects {
		if p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProjectRepo) Update(p *project.Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return project.ErrProjectNotFound
	}
	copied := *p
	m.projects[p.ID] = &copied
	return nil
}

func (m *mockProjectRepo) Delete(id int64) error {
	if _, ok := m.projects[id]; !ok {
		return project.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) FindActiveManager() (*project.ManagerRef, error) {
	return m.manager, nil
}

func (m *mockProjectRepo) CreateMilestone(ms *project.Milestone) error {
	ms.ID = m.id()
	copied := *ms
	m.milestones[ms.ID] = &copied
	return nil
}

func (m *mockProjectRepo) GetMilestone(id int64) (*project.Milestone, error) {
	ms, ok := m.milestones[id]
	if !ok {
		return nil, project.ErrMilestoneNotFound
	}
	copied := *ms
	return &copied, nil
}

func (m *mockProjectRepo) ListMilestones(projectID int64) ([]project.Milestone, error) {
	var out []project.Milestone
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			out = append(out, *ms)
		}
	}
	return out, nil
}

func (m *mockProjectRepo) UpdateMilestone(ms *project.Milestone) error {
	if _, ok := m.milestones[ms.ID]; !ok {
		return project.ErrMilestoneNotFound
	}
	copied := *ms
	m.milestones[ms.ID] = &copied
	return nil
}

func (m *mockProjectRepo) DeleteMilestone(id int64) error {
	delete(m.milestones, id)
	return nil
}

func (m *mockProjectRepo) CreateChangeRequest(cr *project.ChangeRequest) error {
	cr.ID = m.id()
	copied := *cr
	m.changeRequests[cr.ID] = &copied
	return nil
}

func (m *mockProjectRepo) GetChangeRequest(id int64) (*project.ChangeRequest, error) {
	cr, ok := m.changeRequests[id]
	if !ok {
		return nil, project.ErrChangeRequestNotFound
	}
	copied := *cr
	return &copied, nil
}

func (m *mockProjectRepo) ListChangeRequests(projectID int64) ([]project.ChangeRequest, error) {
	var out []project.ChangeRequest
	for _, cr := range m.changeRequests {
		if cr.ProjectID == projectID {
			out = append(out, *cr)
		}
	}
	return out, nil
}

func (m *mockProjectRepo) UpdateChangeRequest(cr *project.ChangeRequest) error {
	if _, ok := m.changeRequests[cr.ID]; !ok {
		return project.ErrChangeRequestNotFound
	}
	copied := *cr
	m.changeRequests[cr.ID] = &copied
	return nil
}

var _ = Describe("Project Service", func() {
	var (
		repo   *mockProjectRepo
		svc    *project.Service
		admin  *auth.Session
		viewer *auth.Session
		client *auth.Session
	)

	BeforeEach(func() {
		repo = newMockProjectRepo()
		testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = project.NewService(repo, testLogger)

		admin = &auth.Session{UserID: 1, Role: auth.RoleAdmin}
		viewer = &auth.Session{UserID: 2, Role: auth.RoleViewer}
		client = &auth.Session{UserID: 10, Role: auth.RoleClient}
	})

	Describe("Create", func() {
		It("allows managers", func() {
			p, err := svc.Create(admin, project.CreateProjectDTO{
				Name:      "Website Revamp",
				ClientID:  10,
				ManagerID: 1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(project.StatusPlanning))
		})

		It("rejects viewers and clients", func() {
			_, err := svc.Create(viewer, project.CreateProjectDTO{Name: "X", ClientID: 10, ManagerID: 1})
			Expect(err).To(MatchError(project.ErrForbidden))

			_, err = svc.Create(client, project.CreateProjectDTO{Name: "X", ClientID: 10, ManagerID: 1})
			Expect(err).To(MatchError(project.ErrForbidden))
		})
	})

	Describe("Get", func() {
		It("hides other clients' projects behind not found", func() {
			p, err := svc.Create(admin, project.CreateProjectDTO{Name: "X", ClientID: 99, ManagerID: 1})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Get(client, p.ID)
			Expect(err).To(MatchError(project.ErrProjectNotFound))

			got, err := svc.Get(viewer, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(p.ID))
		})
	})

	Describe("List", func() {
		It("forces the client filter for client sessions", func() {
			_, err := svc.Create(admin, project.CreateProjectDTO{Name: "Mine", ClientID: 10, ManagerID: 1})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Create(admin, project.CreateProjectDTO{Name: "Theirs", ClientID: 99, ManagerID: 1})
			Expect(err).NotTo(HaveOccurred())

			projects, err := svc.List(client, project.ListFilter{ClientID: 99})
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(1))
			Expect(projects[0].Name).To(Equal("Mine"))
		})
	})

	Describe("EnsureClientHasProject", func() {
		It("provisions a support project when the client has none", func() {
			repo.manager = &project.ManagerRef{ID: 1, Name: "Admin"}

			projects, err := svc.EnsureClientHasProject(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(1))
			Expect(projects[0].Name).To(Equal(project.GeneralSupportName))
			Expect(projects[0].ManagerID).To(Equal(int64(1)))
			Expect(projects[0].ClientID).To(Equal(int64(10)))
		})

		It("does not provision twice", func() {
			repo.manager = &project.ManagerRef{ID: 1, Name: "Admin"}

			_, err := svc.EnsureClientHasProject(10)
			Expect(err).NotTo(HaveOccurred())
			projects, err := svc.EnsureClientHasProject(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(1))
		})

		It("returns an empty list without error when no manager exists", func() {
			repo.manager = nil

			projects, err := svc.EnsureClientHasProject(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(BeEmpty())
		})
	})

	Describe("DecideChangeRequest", func() {
		var projectID int64

		BeforeEach(func() {
			p, err := svc.Create(admin, project.CreateProjectDTO{Name: "X", ClientID: 10, ManagerID: 1})
			Expect(err).NotTo(HaveOccurred())
			projectID = p.ID
		})

		It("lets a client file and a manager approve", func() {
			cr, err := svc.CreateChangeRequest(client, projectID, project.CreateChangeRequestDTO{Title: "Add dark mode"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cr.Status).To(Equal(project.ChangeRequestPending))

			decided, err := svc.DecideChangeRequest(admin, projectID, cr.ID, project.DecideChangeRequestDTO{Approve: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(project.ChangeRequestApproved))
			Expect(decided.DecidedBy).NotTo(BeNil())
		})

		It("rejects a second decision", func() {
			cr, err := svc.CreateChangeRequest(client, projectID, project.CreateChangeRequestDTO{Title: "Add dark mode"})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.DecideChangeRequest(admin, projectID, cr.ID, project.DecideChangeRequestDTO{Approve: false})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.DecideChangeRequest(admin, projectID, cr.ID, project.DecideChangeRequestDTO{Approve: true})
			Expect(err).To(MatchError(project.ErrChangeRequestDecided))
		})

		It("refuses viewer decisions", func() {
			cr, err := svc.CreateChangeRequest(client, projectID, project.CreateChangeRequestDTO{Title: "Add dark mode"})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.DecideChangeRequest(viewer, projectID, cr.ID, project.DecideChangeRequestDTO{Approve: true})
			Expect(err).To(MatchError(project.ErrForbidden))
		})
	})
})
