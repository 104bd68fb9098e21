package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents the portal surface", func() {
		for _, path := range []string{
			"/auth/login",
			"/auth/access-code",
			"/auth/refresh",
			"/conversations",
			"/conversations/{id}/messages",
			"/messages/unread-count",
			"/projects",
			"/projects/{id}/change-requests",
			"/users/staff",
			"/users/clients",
			"/leads",
			"/analytics/events",
			"/analytics/summary",
			"/health",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("keeps the message length limit in sync with the API contract", func() {
		post := doc.Paths.Find("/conversations/{id}/messages").Post
		Expect(post).NotTo(BeNil())
		schema := post.RequestBody.Value.Content.Get("application/json").Schema.Value
		content := schema.Properties["content"].Value
		Expect(content.MaxLength).NotTo(BeNil())
		Expect(*content.MaxLength).To(Equal(uint64(5000)))
	})
})
