package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonathan/favor-advisor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow caps listing output when a limit is requested
	maxItemsToShow = 20
)

var rarityColors = map[types.Rarity]lipgloss.Color{
	types.RarityN:   lipgloss.Color("#9E9E9E"),
	types.RarityR:   lipgloss.Color("#2196F3"),
	types.RaritySR:  lipgloss.Color("#FFC107"),
	types.RaritySSR: lipgloss.Color("#CE93D8"),
}

// Printer handles formatted terminal output
type Printer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	box      lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer.
// Colors are used only when the writer is a color-capable terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:      out,
		renderer: r,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a3850")).
			Padding(0, 1).
			Width(boxWidth),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#8b949e")),
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := p.title.Render(title) + "\n" + strings.TrimRight(content, "\n")
	fmt.Fprintln(p.out, p.box.Render(body))
}

func (p *Printer) gift(g *types.Gift) string {
	style := p.renderer.NewStyle().Foreground(rarityColors[g.Rarity])
	return fmt.Sprintf("%s %s", style.Render("["+g.Rarity.String()+"]"), g.Name)
}

func characterNames(characters []types.Character) string {
	names := make([]string, len(characters))
	for i := range characters {
		names[i] = characters[i].Name
	}
	return strings.Join(names, ", ")
}

// PrintAnalysis outputs the exclusive, shared and junk sections of a result.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil || result.IsEmpty() {
		fmt.Fprintln(p.out, p.muted.Render("No gifts to recommend."))
		return
	}

	if len(result.Exclusive) > 0 {
		var sb strings.Builder
		for _, group := range result.Exclusive {
			sb.WriteString(group.Character.Name + "\n")
			for i := range group.Gifts {
				sg := &group.Gifts[i]
				sb.WriteString(fmt.Sprintf("  x%d  %s\n", sg.Multiplier, p.gift(&sg.Gift)))
			}
		}
		p.printBox("専用品", sb.String())
	}

	if len(result.Shared) > 0 {
		var sb strings.Builder
		for i := range result.Shared {
			sg := &result.Shared[i]
			sb.WriteString(fmt.Sprintf("x%d  %s\n", sg.Multiplier, p.gift(&sg.Gift)))
			sb.WriteString(p.muted.Render("     "+characterNames(sg.Characters)) + "\n")
		}
		p.printBox("共通品", sb.String())
	}

	if len(result.LesserJunk) > 0 || len(result.GreaterJunk) > 0 {
		var sb strings.Builder
		for i := range result.LesserJunk {
			sb.WriteString(p.gift(&result.LesserJunk[i]) + "\n")
		}
		if len(result.LesserJunk) > 0 && len(result.GreaterJunk) > 0 {
			sb.WriteString(p.muted.Render(strings.Repeat("─", 20)) + "\n")
		}
		for i := range result.GreaterJunk {
			sb.WriteString(p.gift(&result.GreaterJunk[i]) + "\n")
		}
		p.printBox("不用品", sb.String())
	}
}

// PrintCharacters lists characters with their preferred tags.
// A limit of 0 shows the default number of entries; a negative limit shows all.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCharacters(characters []types.Character, limit int) {
	count, more := listBounds(len(characters), limit)
	for i := 0; i < count; i++ {
		c := &characters[i]
		tags := strings.Join(c.PreferredTags, " ")
		if len(c.UniquePreferredTags) > 0 {
			tags += " | " + strings.Join(c.UniquePreferredTags, " ")
		}
		fmt.Fprintf(p.out, "%-8s %s  %s\n", c.ID, c.Name, p.muted.Render(tags))
	}
	if more > 0 {
		fmt.Fprintf(p.out, "... and %d more\n", more)
	}
}

// PrintGifts lists gifts with rarity and tags.
// A limit of 0 shows the default number of entries; a negative limit shows all.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintGifts(gifts []types.Gift, limit int) {
	count, more := listBounds(len(gifts), limit)
	for i := 0; i < count; i++ {
		g := &gifts[i]
		fmt.Fprintf(p.out, "%-8s %s  %s\n", g.ID, p.gift(g), p.muted.Render(strings.Join(g.Tags, " ")))
	}
	if more > 0 {
		fmt.Fprintf(p.out, "... and %d more\n", more)
	}
}

// PrintCatalogSummary outputs catalog record counts.
func (p *Printer) PrintCatalogSummary(source string, characters, gifts int) {
	p.printBox("CATALOG", fmt.Sprintf("Source:     %s\nCharacters: %d\nGifts:      %d", source, characters, gifts))
}

func listBounds(n, limit int) (count, more int) {
	if limit == 0 {
		limit = maxItemsToShow
	}
	if limit < 0 || limit >= n {
		return n, 0
	}
	return limit, n - limit
}
