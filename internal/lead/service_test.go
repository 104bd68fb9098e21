package lead

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockLeadRepo struct {
	leads  map[int64]*Lead
	nextID int64
}

func newMockLeadRepo() *mockLeadRepo {
	return &mockLeadRepo{leads: map[int64]*Lead{}, nextID: 1}
}

func (m *mockLeadRepo) Create(l *Lead) error {
	l.ID = m.nextID
	m.nextID++
	copied := *l
	m.leads[l.ID] = &copied
	return nil
}

func (m *mockLeadRepo) GetByID(id int64) (*Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *l
	return &copied, nil
}

func (m *mockLeadRepo) List(limit, offset int) ([]Lead, error) {
	var out []Lead
	for _, l := range m.leads {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockLeadRepo) UpdateStatus(id int64, status Status, at time.Time) error {
	l, ok := m.leads[id]
	if !ok {
		return ErrLeadNotFound
	}
	l.Status = status
	l.UpdatedAt = at
	return nil
}

type capturingPublisher struct {
	payloads []interface{}
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, payload interface{}) {
	p.payloads = append(p.payloads, payload)
}

var _ = Describe("Lead Service", func() {
	var (
		repo      *mockLeadRepo
		publisher *capturingPublisher
		svc       *Service
	)

	valid := func() CreateLeadDTO {
		return CreateLeadDTO{
			Name:    "Jane Prospect",
			Email:   "jane@company.test",
			Company: "Company Co",
			Message: "We need a portal.",
			Source:  "contact-page",
		}
	}

	BeforeEach(func() {
		repo = newMockLeadRepo()
		publisher = &capturingPublisher{}
		testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = NewService(repo, 3, time.Minute, publisher, testLogger)
	})

	Describe("Submit", func() {
		It("stores the lead and publishes lead.created", func() {
			l, err := svc.Submit(context.Background(), "1.2.3.4", valid())
			Expect(err).NotTo(HaveOccurred())
			Expect(l.ID).NotTo(BeZero())
			Expect(l.Status).To(Equal(StatusNew))
			Expect(publisher.payloads).To(HaveLen(1))

			payload, ok := publisher.payloads[0].(LeadCreatedPayload)
			Expect(ok).To(BeTrue())
			Expect(payload.Email).To(Equal("jane@company.test"))
		})

		It("swallows honeypot submissions without storing or publishing", func() {
			dto := valid()
			dto.Website = "http://spam.example"

			l, err := svc.Submit(context.Background(), "1.2.3.4", dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.ID).To(BeZero())
			Expect(repo.leads).To(BeEmpty())
			Expect(publisher.payloads).To(BeEmpty())
		})

		It("rate limits repeated submissions from one IP", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.Submit(context.Background(), "1.2.3.4", valid())
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := svc.Submit(context.Background(), "1.2.3.4", valid())
			Expect(err).To(MatchError(ErrRateLimited))

			// A different visitor is unaffected.
			_, err = svc.Submit(context.Background(), "5.6.7.8", valid())
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects invalid submissions before touching the limiter", func() {
			dto := valid()
			dto.Email = "not-an-email"

			for i := 0; i < 10; i++ {
				_, err := svc.Submit(context.Background(), "1.2.3.4", dto)
				Expect(err).To(HaveOccurred())
			}

			_, err := svc.Submit(context.Background(), "1.2.3.4", valid())
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("UpdateStatus", func() {
		It("moves a lead through the pipeline", func() {
			l, err := svc.Submit(context.Background(), "1.2.3.4", valid())
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.UpdateStatus(l.ID, UpdateLeadStatusDTO{Status: "contacted"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(StatusContacted))
		})

		It("rejects unknown statuses", func() {
			l, err := svc.Submit(context.Background(), "1.2.3.4", valid())
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.UpdateStatus(l.ID, UpdateLeadStatusDTO{Status: "frozen"})
			Expect(err).To(MatchError(ErrInvalidStatus))
		})
	})
})
