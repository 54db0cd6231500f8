package ai

import (
	"fmt"
	"strings"

	"brandai/backend/internal/catalog"
	"brandai/backend/internal/vision"
)

func buildPrompt(brand catalog.BrandRecord, analysis vision.Analysis) string {
	name := strings.TrimSpace(brand.BrandName)
	if name == "" {
		name = "Unknown"
	}
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "You are a Creative Director and Brand Compliance Officer for '%s'.\n", name)
	builder.WriteString("Analyze the attached advertisement image against the brand guidelines and the image pre-analysis below.\n\n")

	builder.WriteString("Brand guidelines:\n")
	fmt.Fprintf(builder, "- Brand Name: %s\n", name)
	fmt.Fprintf(builder, "- Official Color Palette (HEX): %s\n", strings.Join(brand.ColorPaletteHex, ", "))
	fmt.Fprintf(builder, "- Tone of Voice Keywords: %s\n", strings.Join(brand.ToneOfVoiceKeywords, ", "))
	fmt.Fprintf(builder, "- Official Taglines: %s\n", strings.Join(brand.Taglines, ", "))
	fmt.Fprintf(builder, "- Safety Rules: %s\n\n", strings.Join(brand.SafetyRules, " "))

	builder.WriteString("Image pre-analysis:\n")
	fmt.Fprintf(builder, "- Detected Logo: %s\n", describeLogo(analysis.DetectedLogo))
	fmt.Fprintf(builder, "- Dominant Colors Found: [%s]\n", strings.Join(analysis.ColorHexes(), ", "))
	fmt.Fprintf(builder, "- Safety Analysis: %s\n\n", describeSafety(analysis.SafetyRatings))

	builder.WriteString("Evaluate the ad across four dimensions: Brand Alignment, Visual Quality, Message Clarity, and Safety & Ethics.\n")
	builder.WriteString("Then write a new, detailed prompt for an image generation model that would produce a better version of this ad and fixes the weaknesses you found.\n\n")

	builder.WriteString("Reply with a single JSON object and nothing outside it, using exactly this structure:\n")
	builder.WriteString(`{
  "scorecard": {
    "brand_alignment": {"score": <0-1>, "feedback": "<feedback on logo, color, and tone>"},
    "visual_quality": {"score": <0-1>, "feedback": "<feedback on composition, clarity, and professionalism>"},
    "message_clarity": {"score": <0-1>, "feedback": "<feedback on the message and call-to-action>"},
    "safety_ethics": {"score": <0-1>, "feedback": "<feedback based on the safety analysis and brand rules>"},
    "overall_score": <0-1>,
    "strengths": ["<2-3 strengths>"],
    "what_to_improve": ["<3-5 specific, actionable improvements>"]
  },
  "refinement_plan": "<the improved prompt for the image generation model>"
}
`)
	return builder.String()
}

func describeLogo(logo *vision.DetectedLogo) string {
	if logo == nil {
		return "None"
	}
	return fmt.Sprintf("%s (confidence %.2f)", logo.Description, logo.Confidence)
}

func describeSafety(ratings map[string]string) string {
	if len(ratings) == 0 {
		return "none reported"
	}
	pairs := make([]string, 0, len(ratings))
	for _, category := range vision.SafetyCategories {
		if likelihood, ok := ratings[category]; ok {
			pairs = append(pairs, category+"="+likelihood)
		}
	}
	return strings.Join(pairs, ", ")
}
