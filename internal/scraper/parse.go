package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
)

var descriptionCleaner = strings.NewReplacer(
	"<strong>", "<b>",
	"</strong>", "</b>",
	"blank:#", "",
	"&#34;", `"`,
	"&#39;", "'",
)

// Parse extracts alerts grouped by line name, keeping page order. Each line is
// announced by a <summary> and owns the div.alert blocks that follow it up to the
// next non-empty paragraph or line header.
func Parse(r io.Reader) (map[string][]alert.Raw, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]alert.Raw)
	doc.Find("summary").Each(func(_ int, summary *goquery.Selection) {
		name := strings.TrimSpace(summary.Text())
		if name == "" {
			return
		}
		anchor := sectionAnchor(summary)
		for sib := anchor.Next(); sib.Length() > 0; sib = sib.Next() {
			if endsSection(sib) {
				break
			}
			if sib.Is("div.alert") {
				if a, ok := buildAlert(sib); ok {
					out[name] = append(out[name], a)
				}
			}
		}
	})
	return out, nil
}

// sectionAnchor returns the element whose siblings hold the line's alerts.
func sectionAnchor(summary *goquery.Selection) *goquery.Selection {
	if p := summary.Closest("p"); p.Length() > 0 {
		return p
	}
	if d := summary.Closest("details"); d.Length() > 0 {
		return d
	}
	return summary
}

func endsSection(s *goquery.Selection) bool {
	if s.Is("summary, details") || s.Find("summary").Length() > 0 {
		return true
	}
	if s.Is("p") {
		return s.Children().Length() > 0 || strings.TrimSpace(s.Text()) != ""
	}
	return false
}

func buildAlert(div *goquery.Selection) (alert.Raw, bool) {
	body := div.Find("div.media-body").First()
	if body.Length() == 0 {
		return alert.Raw{}, false
	}

	title := strings.TrimSpace(body.Find("h5.h5").First().Text())

	var description string
	if p := body.Find("p.margin-0").First(); p.Length() > 0 {
		inner, err := p.Html()
		if err == nil {
			description = strings.TrimSpace(descriptionCleaner.Replace(inner))
		}
	}

	return alert.NewRaw(typeFromClasses(div), title, description), true
}

func typeFromClasses(div *goquery.Selection) string {
	class, _ := div.Attr("class")
	for _, c := range strings.Fields(class) {
		suffix, ok := strings.CutPrefix(c, "alert-")
		if !ok {
			continue
		}
		if t := alert.ParseType(suffix); string(t) == suffix {
			return suffix
		}
	}
	return string(alert.TypeInfo)
}
