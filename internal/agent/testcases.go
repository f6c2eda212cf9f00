package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/models"
)

// DefaultTestCaseCount is used when a request does not specify how many test
// cases to generate.
const DefaultTestCaseCount = 5

// TestCaseAgent generates grounded test cases from retrieved context.
type TestCaseAgent struct {
	generator Generator
	logger    *zap.Logger
}

// NewTestCaseAgent creates a test-case agent over the given generator.
func NewTestCaseAgent(generator Generator, logger *zap.Logger) *TestCaseAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestCaseAgent{generator: generator, logger: logger}
}

// Generate produces test cases for featureQuery grounded in the retrieved
// context block. Unparseable individual entries are skipped, not fatal.
func (a *TestCaseAgent) Generate(ctx context.Context, featureQuery, retrievedContext string, count int) ([]models.TestCase, error) {
	if count <= 0 {
		count = DefaultTestCaseCount
	}

	prompt := buildTestCasePrompt(featureQuery, retrievedContext, count)
	response, err := a.generator.Generate(ctx, prompt, 0)
	if err != nil {
		return nil, err
	}

	cases, err := a.parse(response)
	if err != nil {
		return nil, err
	}
	a.logger.Info("generated test cases",
		zap.String("feature_query", featureQuery),
		zap.Int("requested", count),
		zap.Int("parsed", len(cases)))
	return cases, nil
}

func buildTestCasePrompt(featureQuery, retrievedContext string, count int) string {
	var b strings.Builder
	b.WriteString(`You are an expert QA test case generator. Your role is to create comprehensive, grounded test cases based strictly on provided documentation.

CRITICAL GROUNDING RULES:
1. Use ONLY information from the RETRIEVED CONTEXT below
2. Every test case MUST include "grounded_in" field with source document names
3. If information is missing, respond: "Not specified in documents"
4. Do NOT use general knowledge or assumptions
5. Generate both POSITIVE and NEGATIVE test scenarios
6. Each test case must be realistic and executable

`)
	b.WriteString(retrievedContext)
	b.WriteString("\n\nFEATURE QUERY: ")
	b.WriteString(featureQuery)
	b.WriteString(`

OUTPUT FORMAT:
Generate a JSON array of test cases. Each test case must follow this exact schema:

{
  "test_id": "TC_XXX",
  "feature": "Feature name",
  "test_scenario": "Clear description of what is being tested",
  "preconditions": "Required setup or initial state",
  "steps": ["Step 1", "Step 2", "Step 3"],
  "expected_result": "What should happen when test passes",
  "grounded_in": ["source_file1.md", "source_file2.html"],
  "test_type": "positive" or "negative"
}

REQUIREMENTS:
`)
	fmt.Fprintf(&b, "- Generate %d test cases\n", count)
	b.WriteString(`- Include at least 60% positive and 40% negative scenarios
- Each test case must reference specific elements/features from the context
- Steps must be clear, actionable, and sequential
- Expected results must be specific and verifiable
- grounded_in field must list actual source documents from the context

Generate the test cases now as a JSON array:`)
	return b.String()
}

// parse decodes the completion into test cases, filling in defaults for
// missing test_id, grounded_in, and test_type fields.
func (a *TestCaseAgent) parse(response string) ([]models.TestCase, error) {
	jsonText := ExtractJSON(response)

	var cases []models.TestCase
	if err := json.Unmarshal([]byte(jsonText), &cases); err != nil {
		// A single object instead of an array is still acceptable.
		var single models.TestCase
		if err2 := json.Unmarshal([]byte(jsonText), &single); err2 != nil {
			return nil, fmt.Errorf("failed to parse test cases: %w", err)
		}
		cases = []models.TestCase{single}
	}

	for i := range cases {
		if cases[i].TestID == "" {
			cases[i].TestID = fmt.Sprintf("TC_%03d", i+1)
		}
		if len(cases[i].GroundedIn) == 0 {
			cases[i].GroundedIn = []string{"Not specified"}
		}
		if cases[i].TestType == "" {
			cases[i].TestType = "positive"
		}
	}
	return cases, nil
}

// Validate reports whether the test case cites at least one source present in
// contextSources. Cases grounded in nothing (or the "Not specified" filler)
// fail validation.
func (a *TestCaseAgent) Validate(tc models.TestCase, contextSources []string) bool {
	if len(tc.GroundedIn) == 0 {
		return false
	}
	if len(tc.GroundedIn) == 1 && tc.GroundedIn[0] == "Not specified" {
		return false
	}
	for _, source := range tc.GroundedIn {
		for _, ctxSource := range contextSources {
			if strings.Contains(strings.ToLower(ctxSource), strings.ToLower(source)) {
				return true
			}
		}
	}
	return false
}
