package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
)

func TestLineAlerts(t *testing.T) {
	got := LineAlerts("Mitre", []alert.Raw{
		{Type: alert.TypeWarning, Title: "Demoras", Description: "Servicio con <b>demoras</b>"},
		{Type: alert.TypeSuccess, Description: "Normalizado"},
		{Type: alert.TypeDanger, Title: "Sin detalle"},
	})
	want := "🚆 <b>Mitre</b>\n" +
		"\n🛤️ <b>Demoras</b>\n⚠️ Servicio con <b>demoras</b>\n" +
		"\n✅ Normalizado\n" +
		"\n🛤️ <b>Sin detalle</b>\n"
	assert.Equal(t, want, got)
}

func TestLineAlerts_EscapesNames(t *testing.T) {
	got := LineAlerts("A & B", []alert.Raw{{Type: alert.TypeInfo, Title: "<x>", Description: "d"}})
	assert.Equal(t, "🚆 <b>A &amp; B</b>\n\n🛤️ <b>&lt;x&gt;</b>\nℹ️ d\n", got)
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "❌", Icon(alert.TypeDanger))
	assert.Equal(t, "⚠️", Icon(alert.TypeWarning))
	assert.Equal(t, "ℹ️", Icon(alert.TypeInfo))
	assert.Equal(t, "✅", Icon(alert.TypeSuccess))
	assert.Equal(t, "ℹ️", Icon("other"))
}

func TestLineList(t *testing.T) {
	assert.Equal(t, "No tenés líneas seleccionadas.", LineList(nil))
	assert.Equal(t, "Tus líneas de trenes seleccionadas son:\n🚆 <b>Mitre</b>\n🚆 <b>Roca</b>", LineList([]string{"Mitre", "Roca"}))
}

func TestWelcome(t *testing.T) {
	got := Welcome("Ana <3")
	assert.True(t, strings.HasPrefix(got, "<b>¡Hola Ana &lt;3! Soy <a href='"+ProjectURL+"'>TrenesArgBot</a>, "))
	assert.Contains(t, got, "/lines")
	assert.Contains(t, got, "/alerts")
}

func TestPickLinePrompts(t *testing.T) {
	assert.Equal(t, "➕ <b>Selecciona una línea para agregar:</b>", PickLineToAdd)
	assert.Equal(t, "➖ <b>Selecciona una línea para eliminar:</b>", PickLineToRemove)
}
