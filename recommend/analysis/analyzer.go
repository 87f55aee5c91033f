// Package analysis asks a vision-language model to describe inspiration images
// in the sectioned format the profile parser reads.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"stylematch/recommend/config"
	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

// Request 分析请求
type Request struct {
	Images      []models.ImageInput
	Hint        string
	Interests   *models.StyleInterests
	Constraints models.Constraints
}

// Analyzer returns raw analysis text. An empty string means the model had
// nothing usable to say.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (string, error)
}

type ArkAnalyzer struct {
	model model.BaseChatModel
}

func NewArkAnalyzer(ctx context.Context, cfg config.AnalysisConfig) (*ArkAnalyzer, error) {
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}
	return NewWithModel(cm), nil
}

// NewWithModel wraps any eino chat model.
func NewWithModel(m model.BaseChatModel) *ArkAnalyzer {
	return &ArkAnalyzer{model: m}
}

func (a *ArkAnalyzer) Analyze(ctx context.Context, req Request) (string, error) {
	parts := []schema.ChatMessagePart{
		{Type: schema.ChatMessagePartTypeText, Text: BuildPrompt(req)},
	}
	for _, img := range req.Images {
		if img.Data == "" {
			continue
		}
		parts = append(parts, schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: dataURL(img)},
		})
	}

	msg, err := a.model.Generate(ctx, []*schema.Message{
		{Role: schema.User, MultiContent: parts},
	})
	if err != nil {
		return "", fmt.Errorf("failed to analyze images: %w", err)
	}
	if msg == nil {
		return "", nil
	}

	slog.Info("Image analysis complete", slog.Any("images", len(parts)-1), slog.Any("chars", len(msg.Content)))
	return strings.TrimSpace(msg.Content), nil
}

func dataURL(img models.ImageInput) string {
	if strings.HasPrefix(img.Data, "data:") || strings.HasPrefix(img.Data, "http") {
		return img.Data
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, img.Data)
}

// BuildPrompt renders the analysis instructions with the user's preferences.
func BuildPrompt(req Request) string {
	c := req.Constraints

	occasion := vocab.OccasionLabels[c.Occasion]
	if c.CustomOccasion != "" {
		occasion = c.CustomOccasion
	}
	if occasion == "" {
		occasion = "Any"
	}

	var b strings.Builder
	b.WriteString("Analyze this fashion image and provide recommendations considering these preferences:\n")
	fmt.Fprintf(&b, "- Occasion: %s\n", occasion)
	fmt.Fprintf(&b, "- Budget range: $%.0f-$%.0f\n", c.BudgetMin, c.BudgetMax)
	fmt.Fprintf(&b, "- Preferred colors: %s\n", orAny(c.PreferredColors))
	fmt.Fprintf(&b, "- Preferred brands: %s\n", orAny(c.PreferredBrands))
	if c.Notes != "" {
		fmt.Fprintf(&b, "- Special requirements: %s\n", c.Notes)
	} else {
		b.WriteString("- Special requirements: None\n")
	}
	if hint := strings.TrimSpace(req.Hint); hint != "" {
		fmt.Fprintf(&b, "- User note: %s\n", hint)
	}
	b.WriteString(sections)
	writeInterests(&b, req.Interests)
	return b.String()
}

// maxRecentPosts caps how many posts are quoted into the prompt.
const maxRecentPosts = 3

func writeInterests(b *strings.Builder, in *models.StyleInterests) {
	if in == nil {
		return
	}
	var notes []string
	if len(in.Styles) > 0 {
		notes = append(notes, fmt.Sprintf("User is interested in these fashion styles: %s.", strings.Join(in.Styles, ", ")))
	}
	if len(in.Colors) > 0 {
		notes = append(notes, fmt.Sprintf("User tends to prefer these colors: %s.", strings.Join(in.Colors, ", ")))
	}
	if posts := in.RecentPosts; len(posts) > 0 {
		if len(posts) > maxRecentPosts {
			posts = posts[:maxRecentPosts]
		}
		notes = append(notes, "Recently the user has mentioned: "+strings.Join(posts, " | "))
	}
	if len(notes) == 0 {
		return
	}
	fmt.Fprintf(b, "\nConsider the user's personal style preferences: %s\n", strings.Join(notes, " "))
}

func orAny(values []string) string {
	if len(values) == 0 {
		return "Any"
	}
	return strings.Join(values, ", ")
}

const sections = `
Please provide a detailed analysis in the following format:

DESCRIPTION: [Detailed outfit description]

STYLE_CATEGORY: [Formal/Casual/Business/etc.]

SUITABLE_OCCASIONS: [Comma-separated list]

IDENTIFIED_ITEMS: [Comma-separated list of specific items]

COLOR_PALETTE: [Main colors used]

DETAILED_RECOMMENDATIONS:
1. Outerwear (Budget: $[range]):
- Specific type (e.g., blazer, jacket)
- Recommended colors and materials

2. Top/Shirt (Budget: $[range]):
- Specific type (e.g., button-down, blouse)
- Recommended colors and materials

3. Bottom (Budget: $[range]):
- Specific type (e.g., trousers, skirt)
- Recommended colors and materials

4. Shoes (Budget: $[range]):
- Specific type (e.g., heels, flats)
- Recommended colors and materials

ADDITIONAL_RECOMMENDATIONS:
- Accessories suggestions
- Styling tips

Format each section clearly and keep every recommendation within the budget.
`
