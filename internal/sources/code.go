package sources

import (
	"context"
	"fmt"
	"strings"
)

const longLine = 100

// CodeAnalysis produces a quick static report the model can use as a starting
// point before its own review.
type CodeAnalysis struct{}

func (CodeAnalysis) Name() string { return "code_analysis" }

func (CodeAnalysis) Description() string {
	return "Analyze code for bugs, performance issues, and suggest improvements. Also explain what code does."
}

func (CodeAnalysis) Run(_ context.Context, code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	lines := strings.Split(code, "\n")
	lower := strings.ToLower(code)

	report := []string{
		"Code Analysis Report:",
		fmt.Sprintf("Lines of code: %d", len(lines)),
		fmt.Sprintf("Characters: %d", len(code)),
		"Detected language: " + DetectLanguage(code),
	}

	var issues []string

	var todos []string
	for _, l := range lines {
		up := strings.ToUpper(l)
		if strings.Contains(up, "TODO") || strings.Contains(up, "FIXME") {
			todos = append(todos, strings.TrimSpace(l))
		}
	}
	if len(todos) > 0 {
		issues = append(issues, fmt.Sprintf("TODOs/FIXMEs found: %d", len(todos)))
		for i, todo := range todos {
			if i == 3 {
				break
			}
			issues = append(issues, "  - "+todo)
		}
	}

	long := 0
	for _, l := range lines {
		if len(l) > longLine {
			long++
		}
	}
	if long > 0 {
		issues = append(issues, fmt.Sprintf("Long lines (>%d chars): %d lines", longLine, long))
	}

	if strings.Contains(code, "print(") && !strings.Contains(lower, "logging") {
		issues = append(issues, "Consider using logging instead of print statements")
	}
	if strings.Contains(code, "except:") {
		issues = append(issues, "Consider specifying exception types instead of bare except")
	}
	if strings.Contains(code, "eval(") || strings.Contains(code, "exec(") {
		issues = append(issues, "WARNING: eval/exec usage detected - security risk")
	}

	if len(issues) > 0 {
		report = append(report, "\nPotential Issues:")
		for _, i := range issues {
			report = append(report, "• "+i)
		}
	} else {
		report = append(report, "\nNo obvious issues detected.")
	}

	var suggestions []string
	if len(lines) > 50 {
		suggestions = append(suggestions, "Consider breaking into smaller functions")
	}
	if strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
		suggestions = append(suggestions, "Ensure sensitive data is properly secured")
	}
	if strings.Contains(code, "http://") {
		suggestions = append(suggestions, "Consider using HTTPS for security")
	}
	if len(suggestions) > 0 {
		report = append(report, "\nSuggestions:")
		for _, s := range suggestions {
			report = append(report, "• "+s)
		}
	}

	return strings.Join(report, "\n")
}

// DetectLanguage is a keyword heuristic, good enough to label a snippet.
func DetectLanguage(code string) string {
	switch {
	case strings.Contains(code, "package ") && strings.Contains(code, "func "):
		return "Go"
	case strings.Contains(code, "def ") && strings.Contains(code, "class "):
		return "Python"
	case strings.Contains(code, "function ") && strings.Contains(code, "{"):
		return "JavaScript"
	case strings.Contains(code, "#include"):
		return "C/C++"
	default:
		return "Unknown"
	}
}
