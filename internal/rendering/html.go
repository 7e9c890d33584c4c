package rendering

import (
	"context"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"

	"github.com/jonathan/favor-advisor/internal/images"
	"github.com/jonathan/favor-advisor/internal/types"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// DefaultTitle is the document title of the report.
const DefaultTitle = "プレゼント分析"

// ReportOptions configures HTML rendering.
type ReportOptions struct {
	Title string
	// URLs builds image URLs; nil uses the default image host.
	URLs *images.URLBuilder
	// Images, when set, inlines cached image bytes as data URIs so the
	// report renders without network access. Missing images keep their URL.
	Images *images.Cache
}

type giftCell struct {
	ID          string
	Name        string
	RarityClass string
	IconURL     template.URL
	Multiplier  int
	BadgeURL    template.URL
}

type charCell struct {
	ID      string
	Name    string
	IconURL template.URL
}

type exclusiveRow struct {
	Character charCell
	Gifts     []giftCell
}

type sharedRow struct {
	Gift       giftCell
	Characters []charCell
}

type reportData struct {
	Title       string
	Empty       bool
	Exclusive   []exclusiveRow
	Shared      []sharedRow
	LesserJunk  []giftCell
	GreaterJunk []giftCell
}

// RenderHTML renders result as a standalone HTML document whose
// .results-grid element holds the sections. A nil result renders the empty state.
func RenderHTML(ctx context.Context, result *types.AnalysisResult, opts *ReportOptions) (string, error) {
	if opts == nil {
		opts = &ReportOptions{}
	}
	b := &reportBuilder{ctx: ctx, opts: opts, urls: opts.URLs}
	if b.urls == nil {
		b.urls = images.NewURLBuilder("")
	}

	data := b.build(result)

	var out strings.Builder
	if err := reportTemplate.Execute(&out, data); err != nil {
		return "", &Error{
			Stage:   StageTemplate,
			Message: "failed to execute report template",
			Cause:   err,
		}
	}
	return out.String(), nil
}

type reportBuilder struct {
	ctx  context.Context
	opts *ReportOptions
	urls *images.URLBuilder
}

func (b *reportBuilder) build(result *types.AnalysisResult) *reportData {
	data := &reportData{Title: b.opts.Title}
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if result == nil || result.IsEmpty() {
		data.Empty = true
		return data
	}

	for _, group := range result.Exclusive {
		row := exclusiveRow{Character: b.character(&group.Character)}
		for _, sg := range group.Gifts {
			row.Gifts = append(row.Gifts, b.gift(&sg.Gift, sg.Multiplier))
		}
		data.Exclusive = append(data.Exclusive, row)
	}

	for _, sg := range result.Shared {
		row := sharedRow{Gift: b.gift(&sg.Gift, sg.Multiplier)}
		for i := range sg.Characters {
			row.Characters = append(row.Characters, b.character(&sg.Characters[i]))
		}
		data.Shared = append(data.Shared, row)
	}

	for i := range result.LesserJunk {
		data.LesserJunk = append(data.LesserJunk, b.gift(&result.LesserJunk[i], 1))
	}
	for i := range result.GreaterJunk {
		data.GreaterJunk = append(data.GreaterJunk, b.gift(&result.GreaterJunk[i], 1))
	}
	return data
}

func (b *reportBuilder) gift(g *types.Gift, multiplier int) giftCell {
	cell := giftCell{
		ID:          g.ID,
		Name:        g.Name,
		RarityClass: "rarity-" + strings.ToLower(g.Rarity.String()),
		IconURL:     b.src(b.urls.Gift(g.Icon)),
		Multiplier:  multiplier,
	}
	if badge, ok := b.urls.MultiplierBadge(multiplier); ok {
		cell.BadgeURL = b.src(badge)
	}
	return cell
}

func (b *reportBuilder) character(c *types.Character) charCell {
	return charCell{
		ID:      c.ID,
		Name:    c.Name,
		IconURL: b.src(b.urls.Character(c.ID)),
	}
}

// src returns a data URI for cached image bytes, or the URL itself.
func (b *reportBuilder) src(u string) template.URL {
	if b.opts.Images != nil {
		if data := b.opts.Images.Get(b.ctx, u); data != nil {
			return template.URL("data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data))
		}
	}
	return template.URL(u)
}
