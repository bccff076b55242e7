// Package render builds the HTML chat messages sent to subscribers.
package render

import (
	"html"
	"strings"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
)

// Icon returns the marker shown before an alert description.
func Icon(t alert.Type) string {
	switch t {
	case alert.TypeDanger:
		return "❌"
	case alert.TypeWarning:
		return "⚠️"
	case alert.TypeSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// LineAlerts renders one message for a line. Descriptions are already HTML and are
// passed through, titles and the line name are escaped.
func LineAlerts(lineName string, alerts []alert.Raw) string {
	var b strings.Builder
	b.WriteString("🚆 <b>")
	b.WriteString(html.EscapeString(lineName))
	b.WriteString("</b>\n")
	for _, a := range alerts {
		if a.Title != "" {
			b.WriteString("\n🛤️ <b>")
			b.WriteString(html.EscapeString(a.Title))
			b.WriteString("</b>\n")
		} else {
			b.WriteString("\n")
		}
		if a.Description != "" {
			b.WriteString(Icon(a.Type))
			b.WriteString(" ")
			b.WriteString(a.Description)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// LineList renders the user's subscribed lines.
func LineList(names []string) string {
	if len(names) == 0 {
		return "No tenés líneas seleccionadas."
	}
	var b strings.Builder
	b.WriteString("Tus líneas de trenes seleccionadas son:\n")
	for i, n := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("🚆 <b>")
		b.WriteString(html.EscapeString(n))
		b.WriteString("</b>")
	}
	return b.String()
}

const ProjectURL = "https://github.com/segusantos/trenes-arg-bot"

func Welcome(firstName string) string {
	return "<b>¡Hola " + html.EscapeString(firstName) + "! " +
		"Soy <a href='" + ProjectURL + "'>TrenesArgBot</a>, " +
		"tu asistente para alertas de trenes en Argentina.</b> 🚆🇦🇷\n\n" +
		"Usá /lines para listar las líneas que tenés seleccionadas y /alerts para ver tus alertas actuales. " +
		"Podés agregar y eliminar líneas con /add y /remove.\n\n" +
		"<b>Cada vez que haya una novedad, te enviaré un mensaje. ¡Buen viaje! 🛤️😊</b>"
}

func LineAdded(name string) string {
	return "➕ <b>¡" + html.EscapeString(name) + " agregada!</b>\n\nUsá /lines para ver todas tus líneas seleccionadas."
}

func LineRemoved(name string) string {
	return "➖ <b>¡" + html.EscapeString(name) + " eliminada!</b>\n\nUsá /lines para ver todas tus líneas seleccionadas."
}

const (
	PickLineToAdd    = "➕ <b>Selecciona una línea para agregar:</b>"
	PickLineToRemove = "➖ <b>Selecciona una línea para eliminar:</b>"
	NoLinesToAdd     = "No hay líneas disponibles para agregar."
	NoLinesToRemove  = "No tenés líneas seleccionadas para eliminar."
	NoAlerts         = "No hay alertas para tus líneas. ¡Buen viaje! 🛤️"
	NotRegistered    = "Primero usá /start para registrarte."
	LineGone         = "Esa línea ya no está disponible. Usá /add para ver las líneas actuales."
)
