package translator

import (
	"fmt"
	"strings"
)

const notProvided = "Not provided"

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// BuildTagPrompt asks for 5-7 tags describing the article in its own
// language. The reply must be a single JSON object keyed "<source>Tags".
func BuildTagPrompt(title, content string, direction Direction) string {
	lang := languageName(direction.Source())
	key := direction.SourceKey() + "Tags"

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Generate 5-7 highly relevant and specific %s tags for this news content. Focus on the main topics, entities, and themes.\n\n", lang))

	prompt.WriteString("CONTENT:\n")
	prompt.WriteString(fmt.Sprintf("Title: %s\n", orNotProvided(title)))
	prompt.WriteString(fmt.Sprintf("Content: %s\n\n", orNotProvided(content)))

	prompt.WriteString("REQUIREMENTS:\n")
	prompt.WriteString("- Generate 5-7 relevant tags\n")
	prompt.WriteString("- Tags should be specific and meaningful\n")
	prompt.WriteString("- Include entity names, topics, locations if mentioned\n")
	if direction == EnglishToTelugu {
		prompt.WriteString("- Use lowercase, hyphenated format for multi-word tags\n")
		prompt.WriteString("- Make tags SEO-friendly and descriptive\n")
	} else {
		prompt.WriteString("- Write every tag in Telugu script, joining multi-word tags with hyphens\n")
	}
	prompt.WriteString("- Avoid generic tags unless necessary\n\n")

	prompt.WriteString("OUTPUT FORMAT (JSON only):\n")
	prompt.WriteString(fmt.Sprintf("{\"%s\": [\"tag1\", \"tag2\", \"tag3\", \"tag4\", \"tag5\"]}\n", key))
	return prompt.String()
}

// BuildTranslatePrompt asks for a translated title and content plus tags
// in both languages. existingTags are shown to the model so it can keep them.
func BuildTranslatePrompt(title, content string, existingTags []string, direction Direction) string {
	src := languageName(direction.Source())
	dst := languageName(direction.Target())
	srcKey := direction.SourceKey()
	dstKey := direction.TargetKey()

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("You are an expert %s news editor. Translate this %s news article to %s while maintaining journalistic standards.\n\n", dst, src, dst))

	prompt.WriteString(fmt.Sprintf("ORIGINAL %s NEWS:\n", strings.ToUpper(src)))
	prompt.WriteString(fmt.Sprintf("Title: %s\n", title))
	prompt.WriteString(fmt.Sprintf("Content: %s\n", content))
	if len(existingTags) > 0 {
		prompt.WriteString(fmt.Sprintf("Existing tags: %s\n", strings.Join(existingTags, ", ")))
	}

	prompt.WriteString("\nTRANSLATION REQUIREMENTS:\n")
	prompt.WriteString(fmt.Sprintf("1. Translate title and content to natural, fluent %s\n", dst))
	prompt.WriteString("2. Maintain journalistic tone and style\n")
	prompt.WriteString(fmt.Sprintf("3. Adapt cultural references appropriately for %s readers\n", dst))
	prompt.WriteString("4. Ensure grammatical accuracy and proper spelling\n")
	prompt.WriteString(fmt.Sprintf("5. Generate 3-5 relevant tags in %s\n", src))
	prompt.WriteString(fmt.Sprintf("6. Generate 3-5 relevant tags in %s that match the %s tags\n\n", dst, src))

	prompt.WriteString("IMPORTANT:\n")
	prompt.WriteString(fmt.Sprintf("- Make the %s translation sound like original %s journalism\n", dst, dst))
	prompt.WriteString("- Don't do literal word-for-word translation, adapt for cultural context\n")
	prompt.WriteString("- Keep the essence and facts intact\n")
	prompt.WriteString("- Do not leave placeholders such as ??? or bracketed notes in the output\n\n")

	prompt.WriteString("OUTPUT FORMAT (JSON only):\n")
	prompt.WriteString("{\n")
	prompt.WriteString(fmt.Sprintf("  \"%sTitle\": \"translated title\",\n", dstKey))
	prompt.WriteString(fmt.Sprintf("  \"%sContent\": \"translated content\",\n", dstKey))
	prompt.WriteString(fmt.Sprintf("  \"%sTags\": [\"tag1\", \"tag2\", \"tag3\"],\n", srcKey))
	prompt.WriteString(fmt.Sprintf("  \"%sTags\": [\"tag1\", \"tag2\", \"tag3\"]\n", dstKey))
	prompt.WriteString("}\n")
	prompt.WriteString(fmt.Sprintf("The \"%sTags\" field is optional.\n\n", srcKey))

	prompt.WriteString("Example:\n")
	prompt.WriteString(translateExample(direction))
	return prompt.String()
}

func translateExample(direction Direction) string {
	if direction == TeluguToEnglish {
		return `Input: "పీఎం మోదీ ఢిల్లీలో కొత్త విద్యా విధానాన్ని ప్రారంభించారు"
Output: {
  "englishTitle": "PM Modi launches new education policy in Delhi",
  "englishContent": "Prime Minister Narendra Modi launched the new education policy in Delhi...",
  "teluguTags": ["విద్యా-విధానం", "పీఎం-మోదీ", "ఢిల్లీ", "ప్రభుత్వం"],
  "englishTags": ["education-policy", "pm-modi", "delhi", "government"]
}
`
	}
	return `Input: "PM Modi launches new education policy in Delhi"
Output: {
  "teluguTitle": "పీఎం మోదీ ఢిల్లీలో కొత్త విద్యా విధానాన్ని ప్రారంభించారు",
  "teluguContent": "ప్రధానమంత్రి నరేంద్ర మోదీ ఢిల్లీలో నూతన విద్యా విధానాన్ని ప్రారంభించారు...",
  "englishTags": ["education-policy", "pm-modi", "delhi", "government"],
  "teluguTags": ["విద్యా-విధానం", "పీఎం-మోదీ", "ఢిల్లీ", "ప్రభుత్వం"]
}
`
}
