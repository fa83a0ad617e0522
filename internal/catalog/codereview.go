// Package catalog ships ready-made workflows used for demos and tests.
package catalog

import (
	"github.com/awmpietro/workflow-graph-engine/internal/tools/codereview"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

const (
	CodeReviewName        = "code_review_example"
	CodeReviewDescription = "A code review workflow that extracts functions, checks complexity, detects issues, and loops until quality score >= 70"
	CodeReviewLoopNode    = "quality_check"
	CodeReviewExpression  = "quality_score >= 70 or iteration >= 3"
)

// CodeReviewSample is the demo input: two functions, no docstrings.
const CodeReviewSample = `def calculate_total(items):
    total = 0
    for item in items:
        if item['price'] > 0:
            if item['quantity'] > 0:
                total += item['price'] * item['quantity']
    return total

def process_order(order):
    if order:
        if order['status'] == 'pending':
            if order['payment_method']:
                print('Processing order')
`

// CodeReview runs extract -> complexity -> issues -> suggestions and then
// repeats quality_check until the score reaches 70 or three passes ran.
func CodeReview() *workflow.GraphDefinition {
	return &workflow.GraphDefinition{
		Nodes: []workflow.Node{
			{Name: "extract", Type: workflow.NodeSimple, Tool: codereview.ExtractFunctions},
			{Name: "complexity", Type: workflow.NodeSimple, Tool: codereview.CheckComplexity},
			{Name: "issues", Type: workflow.NodeSimple, Tool: codereview.DetectIssues},
			{Name: "suggestions", Type: workflow.NodeSimple, Tool: codereview.SuggestImprovements},
			{
				Name:      CodeReviewLoopNode,
				Type:      workflow.NodeLoop,
				Tool:      codereview.CalculateQualityScore,
				Condition: &workflow.NodeCondition{Expression: CodeReviewExpression},
			},
			// Never executed; it only marks the terminal.
			{Name: "end", Type: workflow.NodeSimple, Tool: codereview.ExtractFunctions},
		},
		Edges: []workflow.Edge{
			{From: "extract", To: "complexity"},
			{From: "complexity", To: "issues"},
			{From: "issues", To: "suggestions"},
			{From: "suggestions", To: CodeReviewLoopNode},
			{From: CodeReviewLoopNode, To: "issues"},
			{From: CodeReviewLoopNode, To: "end", Condition: "exit"},
		},
		StartNode: "extract",
		EndNodes:  []string{"end"},
	}
}

func CodeReviewInitialState() workflow.State {
	return workflow.State{"code": CodeReviewSample}
}
