package service

import "strings"

// Course detection and title normalization live here and nowhere else, so the
// generation path and the listing/grouping path cannot drift apart.
// Precedence: domain-specific DevOps indicators are checked before Python
// ones (they are the more specific signal), then module-context
// disambiguation, then the Python default.

var devopsIndicators = []string{
	"devops", "docker", "kubernetes", "k8s", "jenkins",
	"sonarqube", "linux", "git", "ci/cd", "terraform",
	"ansible", "aws", "azure", "gcp", "networking", "cloud",
	"container", "orchestration", "deployment", "infrastructure",
}

var pythonIndicators = []string{
	"python", "datatypes", "loops", "functions", "classes",
	"list", "dict", "tuple", "set", "comprehension", "decorator",
	"generator", "iterator", "exception", "import", "package",
}

// DetectCourseName classifies a source/assessment title into a course name.
func DetectCourseName(title string) string {
	search := strings.ToLower(strings.TrimSpace(title))
	if search == "" {
		return "Python"
	}

	for _, indicator := range devopsIndicators {
		if strings.Contains(search, indicator) {
			return "DevOps"
		}
	}
	for _, indicator := range pythonIndicators {
		if strings.Contains(search, indicator) {
			return "Python"
		}
	}

	// "Module N" titles carry no course of their own; without a DevOps hit
	// above they default to Python, matching the historical corpus.
	return "Python"
}

// NormalizeDomain turns a raw skill domain or file title into a display
// course name: "python_101.pdf" -> "Python 101".
func NormalizeDomain(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimSuffix(name, ".pdf")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "General"
	}
	return titleCase(name)
}

// NormalizeTitle canonicalizes an assessment title for display and
// deduplication: strips ".pdf" anywhere, folds underscores/hyphens and
// standalone "pdf" words, collapses whitespace, title-cases.
func NormalizeTitle(raw string) string {
	title := strings.ToLower(strings.TrimSpace(raw))
	title = strings.ReplaceAll(title, ".pdf", "")
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")

	words := strings.Fields(title)
	kept := words[:0]
	for _, word := range words {
		if word != "pdf" {
			kept = append(kept, word)
		}
	}
	if len(kept) == 0 {
		return "Untitled Assessment"
	}
	return titleCase(strings.Join(kept, " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
