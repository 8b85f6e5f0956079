package news

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArticle() Article {
	return Article{
		EnglishTitle:   "PM announces policy",
		EnglishContent: "The prime minister announced a new policy.",
		TeluguTitle:    "ప్రధాని విధానం ప్రకటించారు",
		TeluguContent:  "ప్రధానమంత్రి కొత్త విధానాన్ని ప్రకటించారు.",
	}
}

func TestArticle_NormalizeDefaults(t *testing.T) {
	a := validArticle()
	a.EnglishTitle = "  PM announces policy  "
	a.EnglishTags = []string{" policy ", "", "policy", "pm"}
	a.Normalize()

	assert.Equal(t, "PM announces policy", a.EnglishTitle)
	assert.Equal(t, []string{"policy", "pm"}, a.EnglishTags)
	assert.Equal(t, []string{}, a.TeluguTags)
	assert.Equal(t, CategoryGeneral, a.Category)
	assert.Equal(t, LanguageEnglish, a.SourceLanguage)
	require.NoError(t, a.Validate())
}

func TestArticle_ValidateListsMissingFields(t *testing.T) {
	a := Article{EnglishTitle: "Title", Category: "weather", SourceLanguage: "hindi"}
	err := a.Validate()
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"englishContent", "teluguTitle", "teluguContent", "category", "sourceLanguage"}, vErr.Fields)
	assert.Contains(t, err.Error(), "englishContent")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Sports ")
	require.NoError(t, err)
	assert.Equal(t, CategorySports, c)

	c, err = ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryGeneral, c)

	_, err = ParseCategory("weather")
	assert.Error(t, err)
}
