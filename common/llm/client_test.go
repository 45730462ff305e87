package llm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/beverage/language-quiz-service/common/llm"
)

var _ = Describe("Clean", func() {
	DescribeTable("extracts the first top-level JSON object",
		func(input, want string) {
			got, err := llm.Clean(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(MatchJSON(want))
		},
		Entry("plain object", `{"sentence":"Je parle.","translation":"I speak.","explanation":""}`,
			`{"sentence":"Je parle.","translation":"I speak.","explanation":""}`),
		Entry("fenced in markdown", "```json\n{\"sentence\":\"Je parle.\"}\n```",
			`{"sentence":"Je parle."}`),
		Entry("leading/trailing whitespace", "  \n{\"a\":1}\n  ",
			`{"a":1}`),
	)

	It("rejects text with no JSON object", func() {
		_, err := llm.Clean("not json at all")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unterminated object", func() {
		_, err := llm.Clean(`{"a":1`)
		Expect(err).To(HaveOccurred())
	})
})
