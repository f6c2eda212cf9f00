package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/models"
)

// scriptMaxTokens is raised above the default because complete automation
// scripts run long.
const scriptMaxTokens = 8192

// ScriptAgent generates Selenium automation scripts from a test case and the
// reconstructed page selectors.
type ScriptAgent struct {
	generator Generator
	logger    *zap.Logger
}

// NewScriptAgent creates a script agent over the given generator.
func NewScriptAgent(generator Generator, logger *zap.Logger) *ScriptAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptAgent{generator: generator, logger: logger}
}

// Generate produces an executable pytest/Selenium script for the test case.
// selectors maps element keys to the structural elements available on the page.
func (a *ScriptAgent) Generate(ctx context.Context, tc models.TestCase, selectors map[string]models.StructuralElement, retrievedContext string) (string, error) {
	prompt, err := buildScriptPrompt(tc, selectors, retrievedContext)
	if err != nil {
		return "", err
	}

	response, err := a.generator.Generate(ctx, prompt, scriptMaxTokens)
	if err != nil {
		return "", err
	}

	script := ExtractCode(response)
	a.logger.Info("generated automation script",
		zap.String("test_id", tc.TestID),
		zap.Int("script_length", len(script)))
	return script, nil
}

func buildScriptPrompt(tc models.TestCase, selectors map[string]models.StructuralElement, retrievedContext string) (string, error) {
	testCaseJSON, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode test case: %w", err)
	}
	selectorsJSON, err := json.MarshalIndent(selectors, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode selectors: %w", err)
	}

	var b strings.Builder
	b.WriteString("Generate a complete Python Selenium pytest script following this EXACT template structure.\n\n")
	b.WriteString("TEST CASE:\n")
	b.Write(testCaseJSON)
	b.WriteString("\n\nHTML SELECTORS:\n")
	b.Write(selectorsJSON)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(retrievedContext)
	b.WriteString(`

` + "```python" + `
# STEP 1: Imports (ALWAYS include these)
import pytest
import time
from selenium import webdriver
from selenium.webdriver.common.by import By
from selenium.webdriver.support.ui import WebDriverWait
from selenium.webdriver.support import expected_conditions as EC

BASE_URL = "http://localhost:8000/page.html"

# STEP 2: Driver fixture (ALWAYS same)
@pytest.fixture(scope="module")
def driver():
    driver = webdriver.Chrome()
    driver.maximize_window()
    driver.implicitly_wait(5)
    yield driver
    driver.quit()

# STEP 3: Test function (adapt name and steps to test case)
def test_example(driver):
    wait = WebDriverWait(driver, 10)
    try:
        driver.get(BASE_URL)
        elem = wait.until(EC.presence_of_element_located((By.ID, "example")))
        elem.send_keys("value")
        time.sleep(0.5)
        assert "expected" in elem.text.lower()
    except Exception:
        driver.save_screenshot(f"failure_{time.time()}.png")
        raise

# STEP 4: Main block (ALWAYS same)
if __name__ == "__main__":
    pytest.main([__file__, "-v", "-s"])
` + "```" + `

CRITICAL RULES:
1. Use ONLY the selectors listed in HTML SELECTORS above
2. Selenium syntax: (By.ID, "value") is a TUPLE - use parentheses and comma
3. Prefer flexible assertions: assert "success" in elem.text.lower() - NEVER check exact text
4. Add time.sleep(0.5) after clicks
5. Include 'import time' at top
6. COMPLETE script - imports, BASE_URL, fixture, test function, exception handling, if __name__ block
7. End with: if __name__ == "__main__": pytest.main([__file__, "-v", "-s"])

OUTPUT: Raw Python code only, no markdown fences, no explanations.

Generate the COMPLETE executable script now:`)
	return b.String(), nil
}

// Filename derives a safe script filename from the test case identity.
func (a *ScriptAgent) Filename(tc models.TestCase) string {
	sanitize := func(s string) string {
		s = strings.ReplaceAll(s, " ", "_")
		return strings.ReplaceAll(s, "/", "_")
	}
	feature := sanitize(tc.Feature)
	if len(feature) > 30 {
		feature = feature[:30]
	}
	return fmt.Sprintf("test_%s_%s.py", sanitize(tc.TestID), feature)
}
