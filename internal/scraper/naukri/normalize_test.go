package naukri

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobharvest/pkg/models"
)

func TestNormalizeExperience(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", models.NotSpecified},
		{"fresher", "Fresher", "0-1 years"},
		{"freshers plural", "Freshers can apply", "0-1 years"},
		{"year range", "2-5 Yrs", "2-5 years"},
		{"year range spaced", "3 - 7 years", "3-7 years"},
		{"single years", "5+ years", "5 years"},
		{"months whole", "24 months", "2 years"},
		{"months fractional", "30 months", "2.5 years"},
		{"months rounding", "7 months", "0.6 years"},
		{"unrecognized passes through", "Senior level", "Senior level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeExperience(tt.input))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a \n\t b   c  "))
	assert.Equal(t, "", cleanText("   \n\t  "))
}

func TestNormalizeRecordFillsSentinels(t *testing.T) {
	rec := models.JobRecord{
		URL:   "https://www.naukri.com/job-listings-go-dev-acme-230196",
		Title: "  Go   Developer ",
	}
	NormalizeRecord(&rec)

	assert.Equal(t, "Go Developer", rec.Title)
	assert.Equal(t, models.NotSpecified, rec.Company)
	assert.Equal(t, models.NotSpecified, rec.Location)
	assert.Equal(t, models.NotSpecified, rec.Salary)
	assert.Equal(t, models.NotSpecified, rec.Experience)
	assert.Equal(t, models.NotSpecified, rec.JobType)
	assert.Equal(t, models.NotSpecified, rec.PostedDate)
	assert.Equal(t, "230196", rec.JobID)
}

func TestNormalizeRecordExperienceFromDescription(t *testing.T) {
	rec := models.JobRecord{
		Title:           "Go Developer",
		DescriptionText: "We are looking for someone with 3-6 years of backend work.",
	}
	NormalizeRecord(&rec)
	assert.Equal(t, "3-6 years", rec.Experience)
}

func TestExperienceFromText(t *testing.T) {
	assert.Equal(t, "3-6 years", experienceFromText("needs 3-6 years of Go"))
	assert.Equal(t, "5 years", experienceFromText("at least 5+ years required"))
	assert.Equal(t, "0-1 years", experienceFromText("freshers welcome"))
	assert.Equal(t, "", experienceFromText("no requirement stated"))
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "230196", extractJobID("https://www.naukri.com/job-listings-go-dev-acme-230196"))
	assert.Equal(t, "99", extractJobID("https://www.naukri.com/job-listings-x?jobId=99"))
	assert.Equal(t, "", extractJobID("https://www.naukri.com/job-listings-go-dev-acme"))
}

func TestResolveURL(t *testing.T) {
	base := "https://www.naukri.com"
	assert.Equal(t, "https://www.naukri.com/job-listings-x-1", resolveURL(base, "/job-listings-x-1"))
	assert.Equal(t, "https://other.example/j", resolveURL(base, "https://other.example/j"))
	assert.Equal(t, "", resolveURL(base, "  "))
}
