package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pesio-ai/be-tbc-triage/internal/dashboard"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
)

const maxBarWidth = 40

// RenderResult draws the result card of a terminal step
func RenderResult(v *service.StepView) string {
	if v == nil || v.Step == nil || v.Result == nil {
		return ""
	}
	res := v.Result

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s %s", res.Icon, v.Step.Title)))
	b.WriteString("\n")
	var parts []string
	if res.Content.Medical != "" {
		parts = append(parts, labelStyle.Render("Indicaciones médicas")+"\n"+res.Content.Medical)
	}
	if res.Content.Logistics != "" {
		parts = append(parts, labelStyle.Render("Logística")+"\n"+res.Content.Logistics)
	}
	b.WriteString(strings.Join(parts, "\n\n"))

	if lab := res.Laboratory; lab != nil {
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Laboratorio de referencia"))
		b.WriteString("\n")
		b.WriteString(lab.Name)
		for _, line := range []string{lab.Address, lab.Phone, lab.Horario} {
			if line != "" {
				b.WriteString("\n")
				b.WriteString(line)
			}
		}
		if lab.HasLocation() {
			b.WriteString("\n")
			b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%.5f, %.5f", *lab.Latitude, *lab.Longitude)))
		}
	}

	return CardStyle(res.Tone).Render(b.String())
}

// RenderBars draws a horizontal bar chart scaled to the largest value
func RenderBars(title string, bars []dashboard.Bar) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n")
	if len(bars) == 0 {
		b.WriteString(SubtitleStyle.Render("Sin datos"))
		return b.String()
	}

	peak, labelWidth := 0, 0
	for _, bar := range bars {
		peak = max(peak, bar.Value)
		labelWidth = max(labelWidth, lipgloss.Width(bar.Label))
	}
	for _, bar := range bars {
		width := 0
		if peak > 0 {
			width = bar.Value * maxBarWidth / peak
		}
		if bar.Value > 0 && width == 0 {
			width = 1
		}
		label := bar.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(bar.Label))
		fmt.Fprintf(&b, "%s %s %d\n", label, barStyle.Render(strings.Repeat("█", width)), bar.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderDashboard draws the aggregates for the given filters
func RenderDashboard(f dashboard.Filters, st *dashboard.Stats) string {
	scope := "Nacional"
	if !f.National() {
		scope = f.Province
	}
	period := "todas las fechas"
	switch {
	case f.From != "" && f.To != "":
		period = f.From + " a " + f.To
	case f.From != "":
		period = "desde " + f.From
	case f.To != "":
		period = "hasta " + f.To
	}

	sections := []string{
		TitleStyle.Render("Estadísticas de consultas"),
		SubtitleStyle.Render(fmt.Sprintf("%s · %s · %d consultas", scope, period, st.Total())),
	}
	if f.National() {
		sections = append(sections, RenderBars("Por provincia", st.BarSeries(f)))
	} else {
		sections = append(sections, RenderBars("Por ciudad", st.BarSeries(f)))
	}
	sections = append(sections,
		RenderBars("Por severidad", namedBars(st.BySeverity)),
		RenderBars("Por diagnóstico", namedBars(st.ByDiagnosis)),
		RenderBars("Grupo de riesgo", namedBars(st.ByRisk)),
		RenderBars("Por peso", namedBars(st.ByWeight)),
	)
	if f.National() {
		for _, g := range st.CityGroups() {
			bars := make([]dashboard.Bar, 0, len(g.Cities))
			for _, c := range g.Cities {
				bars = append(bars, dashboard.Bar{Label: c.City, Value: c.Value})
			}
			sections = append(sections, RenderBars(fmt.Sprintf("%s (%d)", g.Province, g.Total), bars))
		}
	}
	return strings.Join(sections, "\n\n")
}

func namedBars(rows []dashboard.NamedCount) []dashboard.Bar {
	out := make([]dashboard.Bar, 0, len(rows))
	for _, r := range rows {
		out = append(out, dashboard.Bar{Label: r.Name, Value: r.Value})
	}
	return out
}
