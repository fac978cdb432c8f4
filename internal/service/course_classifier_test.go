package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCourseName(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Docker Fundamentals", "DevOps"},
		{"kubernetes_networking.pdf", "DevOps"},
		{"CI/CD with Jenkins", "DevOps"},
		{"Python Datatypes", "Python"},
		{"loops_and_functions", "Python"},
		{"Module 3", "Python"},
		{"", "Python"},
		// DevOps indicators win over Python ones when both appear.
		{"Python on AWS", "DevOps"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectCourseName(tc.title), "title %q", tc.title)
	}
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "Python 101", NormalizeDomain("python_101.pdf"))
	assert.Equal(t, "Python Datatypes", NormalizeDomain("  python datatypes "))
	assert.Equal(t, "General", NormalizeDomain(""))
	assert.Equal(t, "General", NormalizeDomain(".pdf"))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Html Assessment", NormalizeTitle("html pdf assessment"))
	assert.Equal(t, "Python Basics", NormalizeTitle("python_basics.pdf"))
	assert.Equal(t, "Docker Deep Dive", NormalizeTitle("Docker - Deep_Dive"))
	assert.Equal(t, "Untitled Assessment", NormalizeTitle(""))
	assert.Equal(t, "Untitled Assessment", NormalizeTitle("pdf"))
}
