package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTagPrompt_Deterministic(t *testing.T) {
	for _, dir := range []Direction{EnglishToTelugu, TeluguToEnglish} {
		first := BuildTagPrompt("Title", "Body text", dir)
		second := BuildTagPrompt("Title", "Body text", dir)
		assert.Equal(t, first, second)
	}
}

func TestBuildTagPrompt_Keys(t *testing.T) {
	en := BuildTagPrompt("Rains lash Hyderabad", "", EnglishToTelugu)
	assert.Contains(t, en, `"englishTags"`)
	assert.Contains(t, en, "Title: Rains lash Hyderabad")
	assert.Contains(t, en, "Content: Not provided")
	assert.Contains(t, en, "hyphenated")

	te := BuildTagPrompt("హైదరాబాద్‌లో వర్షాలు", "వివరాలు", TeluguToEnglish)
	assert.Contains(t, te, `"teluguTags"`)
	assert.NotContains(t, te, `"englishTags"`)
	assert.Contains(t, te, "హైదరాబాద్‌లో వర్షాలు")
}

func TestBuildTranslatePrompt_Deterministic(t *testing.T) {
	tags := []string{"politics", "policy"}
	first := BuildTranslatePrompt("PM announces policy", "Body", tags, EnglishToTelugu)
	second := BuildTranslatePrompt("PM announces policy", "Body", tags, EnglishToTelugu)
	assert.Equal(t, first, second)
}

func TestBuildTranslatePrompt_Schema(t *testing.T) {
	p := BuildTranslatePrompt("PM announces policy", "Body", []string{"politics"}, EnglishToTelugu)
	assert.Contains(t, p, `"teluguTitle"`)
	assert.Contains(t, p, `"teluguContent"`)
	assert.Contains(t, p, `"englishTags"`)
	assert.Contains(t, p, `"teluguTags"`)
	assert.Contains(t, p, "Existing tags: politics")
	assert.Contains(t, p, "literal word-for-word")

	r := BuildTranslatePrompt("శీర్షిక", "విషయం", nil, TeluguToEnglish)
	assert.Contains(t, r, `"englishTitle"`)
	assert.Contains(t, r, `"englishContent"`)
	assert.Contains(t, r, "Translate this Telugu news article to English")
	assert.NotContains(t, r, "Existing tags")
}

func TestBuildTranslatePrompt_DiffersByInput(t *testing.T) {
	a := BuildTranslatePrompt("A", "Body", nil, EnglishToTelugu)
	b := BuildTranslatePrompt("B", "Body", nil, EnglishToTelugu)
	assert.NotEqual(t, a, b)
}
