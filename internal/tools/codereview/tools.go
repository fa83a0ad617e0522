// Package codereview implements the heuristic code-analysis tools used by
// the reference code review workflow. Each tool reads the Python-like source
// under "code" and writes its findings back into the state.
package codereview

import (
	"strings"
	"unicode/utf8"

	"github.com/awmpietro/workflow-graph-engine/internal/tools"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

const (
	ExtractFunctions      = "extract_functions"
	CheckComplexity       = "check_complexity"
	DetectIssues          = "detect_issues"
	SuggestImprovements   = "suggest_improvements"
	CalculateQualityScore = "calculate_quality_score"
)

const maxLineLength = 100

// Register adds every code review tool to reg.
func Register(reg *tools.Registry) error {
	for name, tool := range map[string]tools.Tool{
		ExtractFunctions:      extractFunctions,
		CheckComplexity:       checkComplexity,
		DetectIssues:          detectIssues,
		SuggestImprovements:   suggestImprovements,
		CalculateQualityScore: calculateQualityScore,
	} {
		if err := reg.Register(name, tool); err != nil {
			return err
		}
	}
	return nil
}

// extractFunctions writes "functions" ([]{name,line}) and "function_count".
func extractFunctions(state workflow.State) (workflow.State, error) {
	functions := []any{}
	for i, line := range sourceLines(state) {
		_, rest, ok := strings.Cut(line, "def ")
		if !ok {
			continue
		}
		rest, _, _ = strings.Cut(rest, "def ")
		name, _, _ := strings.Cut(rest, "(")
		functions = append(functions, map[string]any{
			"name": strings.TrimSpace(name),
			"line": i + 1,
		})
	}

	state["functions"] = functions
	state["function_count"] = len(functions)
	return state, nil
}

// checkComplexity counts lines mentioning a control-flow keyword and writes
// "complexity_score" and "complexity_level" (low, medium, high).
func checkComplexity(state workflow.State) (workflow.State, error) {
	score := 0
	for _, line := range sourceLines(state) {
		for _, kw := range []string{"if", "for", "while", "elif"} {
			if strings.Contains(line, kw) {
				score++
				break
			}
		}
	}

	level := "low"
	switch {
	case score > 10:
		level = "high"
	case score > 5:
		level = "medium"
	}

	state["complexity_score"] = score
	state["complexity_level"] = level
	return state, nil
}

// detectIssues flags long lines and functions without a docstring, writing
// "issues" ([]{line,type,message}) and "issue_count".
func detectIssues(state workflow.State) (workflow.State, error) {
	issues := []any{}
	lines := sourceLines(state)
	for i, line := range lines {
		if utf8.RuneCountInString(line) > maxLineLength {
			issues = append(issues, issue(i+1, "long_line", "Line exceeds 100 characters"))
		}

		if strings.Contains(line, "def ") && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if !strings.HasPrefix(next, `"""`) && !strings.HasPrefix(next, `'''`) {
				issues = append(issues, issue(i+1, "missing_docstring", "Function missing docstring"))
			}
		}
	}

	state["issues"] = issues
	state["issue_count"] = len(issues)
	return state, nil
}

func issue(line int, kind, message string) map[string]any {
	return map[string]any{"line": line, "type": kind, "message": message}
}

// suggestImprovements writes "suggestions" from the earlier findings.
func suggestImprovements(state workflow.State) (workflow.State, error) {
	suggestions := []any{}

	if level, _ := state["complexity_level"].(string); level == "high" {
		suggestions = append(suggestions, "Consider breaking down complex functions into smaller ones")
	}
	if intValue(state, "issue_count") > 5 {
		suggestions = append(suggestions, "Address code style issues for better readability")
	}
	if intValue(state, "function_count") > 10 {
		suggestions = append(suggestions, "Consider organizing code into multiple modules")
	}

	state["suggestions"] = suggestions
	return state, nil
}

// calculateQualityScore writes "quality_score" in [0, 100] and increments
// "iteration".
func calculateQualityScore(state workflow.State) (workflow.State, error) {
	score := 100 - intValue(state, "issue_count")*5

	complexity := intValue(state, "complexity_score")
	switch {
	case complexity > 15:
		score -= 20
	case complexity > 10:
		score -= 10
	}

	state["quality_score"] = max(0, min(100, score))
	state["iteration"] = intValue(state, "iteration") + 1
	return state, nil
}

func sourceLines(state workflow.State) []string {
	code, _ := state["code"].(string)
	return strings.Split(code, "\n")
}

// intValue reads a numeric key written either by a tool (int) or by JSON
// decoding (float64). Missing or non-numeric values read as 0.
func intValue(state workflow.State, key string) int {
	switch v := state[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
