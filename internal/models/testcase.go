package models

// TestCase is a generated test case grounded in retrieved documentation.
// GroundedIn lists the source document names the case relies on.
type TestCase struct {
	TestID         string   `json:"test_id"`
	Feature        string   `json:"feature"`
	TestScenario   string   `json:"test_scenario"`
	Preconditions  string   `json:"preconditions,omitempty"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expected_result"`
	GroundedIn     []string `json:"grounded_in"`
	TestType       string   `json:"test_type"`
}
