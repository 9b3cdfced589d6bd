package service

import (
	"fmt"
	"strings"

	"dantechat/internal/model"
)

const maxPromptResults = 8

// PromptInput carries everything the composer needs for one exchange.
// Results is only meaningful when SearchPerformed is true: a search that ran
// and found nothing is a different case from no search at all.
type PromptInput struct {
	UserText        string
	SearchPerformed bool
	Results         []model.Property
	Filters         *model.Filters
	Channel         string
	Context         string // style hint, available values, recent history
	Detail          *model.Property
}

// PromptComposer renders the natural-language instruction sent upstream.
type PromptComposer struct{}

// BuildContext assembles the style/context header: response tone, the values
// present in the listing store, and the channel's recent history.
func (PromptComposer) BuildContext(channel string, neighborhoods, tipos, operaciones, history []string) string {
	var b strings.Builder

	if channel == "whatsapp" {
		b.WriteString("Respondé de forma breve, directa y cálida como si fuera un mensaje de WhatsApp.")
	} else {
		b.WriteString("Respondé de forma explicativa, profesional y cálida como si fuera una consulta web.")
	}

	b.WriteString("\nBarrios disponibles: " + strings.Join(neighborhoods, ", ") + ".")
	b.WriteString("\nTipos de propiedad: " + strings.Join(tipos, ", ") + ".")
	b.WriteString("\nOperaciones disponibles: " + strings.Join(operaciones, ", ") + ".")

	if len(history) > 0 {
		b.WriteString("\nHistorial reciente:")
		for _, m := range history {
			b.WriteString("\n- " + m)
		}
	}

	return b.String()
}

// Compose builds the full prompt for one exchange. It never returns an empty
// string: every case falls through to a concrete template.
func (c PromptComposer) Compose(in PromptInput) string {
	whatsappTone := in.Channel == "whatsapp"

	var body string
	switch {
	case in.Detail != nil:
		body = c.detailBody(in.Detail)
	case in.SearchPerformed && len(in.Results) > 0:
		body = c.resultsBody(in.Results, in.Filters)
	case in.SearchPerformed:
		body = "El usuario busca propiedades pero no hay resultados con esos filtros. " +
			"Redactá una respuesta amable que sugiera alternativas cercanas, pida más detalles " +
			"y ofrezca continuar la conversación por WhatsApp. Cerrá con un agradecimiento."
	default:
		body = "Actuá como asistente inmobiliario para Dante Propiedades. " +
			"Respondé la siguiente consulta de forma cálida, profesional y breve. " +
			"Si es posible, ofrecé continuar por WhatsApp y agradecé el contacto." +
			"\nConsulta: " + in.UserText
	}

	prompt := in.Context + "\n\n" + body
	if whatsappTone {
		prompt += "\nUsá emojis si el canal es WhatsApp."
	}
	return prompt
}

func (PromptComposer) resultsBody(results []model.Property, filters *model.Filters) string {
	operacion := "consultar"
	neighborhood := "varios barrios"
	if filters != nil {
		if filters.Operacion != nil {
			operacion = *filters.Operacion
		}
		if filters.Neighborhood != nil {
			neighborhood = *filters.Neighborhood
		}
	}

	if len(results) > maxPromptResults {
		results = results[:maxPromptResults]
	}
	bullets := make([]string, 0, len(results))
	for _, r := range results {
		bullets = append(bullets, fmt.Sprintf("%s — %s — $%s — %d amb — %g m2",
			r.Title, r.Neighborhood, formatPrice(r.Price), r.Rooms, r.Sqm))
	}

	return fmt.Sprintf("El usuario está buscando propiedades para %s en %s. Aquí hay resultados relevantes:\n",
		operacion, neighborhood) +
		strings.Join(bullets, "\n") +
		"\n\nRedactá una respuesta cálida y profesional que resuma los resultados, " +
		"ofrezca ayuda personalizada y sugiera continuar la conversación por WhatsApp. " +
		"Cerrá con un agradecimiento y tono amable."
}

func (PromptComposer) detailBody(p *model.Property) string {
	var b strings.Builder
	b.WriteString("El usuario pide más detalles sobre una propiedad. Ficha completa:\n")
	fmt.Fprintf(&b, "Título: %s\nBarrio: %s\nPrecio: $%s\nAmbientes: %d\nSuperficie: %g m2\nOperación: %s\nTipo: %s\n",
		p.Title, p.Neighborhood, formatPrice(p.Price), p.Rooms, p.Sqm, p.Operacion, p.Tipo)
	if p.Address != nil {
		fmt.Fprintf(&b, "Dirección: %s\n", *p.Address)
	}
	if p.AgeYears != nil {
		fmt.Fprintf(&b, "Antigüedad: %d años\n", *p.AgeYears)
	}
	if p.Condition != nil {
		fmt.Fprintf(&b, "Estado: %s\n", *p.Condition)
	}
	if len(p.Amenities) > 0 {
		fmt.Fprintf(&b, "Comodidades: %s\n", strings.Join(p.Amenities, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Descripción: %s\n", p.Description)
	}
	b.WriteString("\nRedactá una respuesta cálida y profesional que presente estos detalles, " +
		"ofrezca coordinar una visita y sugiera continuar la conversación por WhatsApp. " +
		"Cerrá con un agradecimiento.")
	return b.String()
}

// formatPrice renders a price with "." thousands separators, no decimals.
func formatPrice(price float64) string {
	raw := fmt.Sprintf("%.0f", price)
	neg := strings.HasPrefix(raw, "-")
	if neg {
		raw = raw[1:]
	}
	var parts []string
	for len(raw) > 3 {
		parts = append([]string{raw[len(raw)-3:]}, parts...)
		raw = raw[:len(raw)-3]
	}
	parts = append([]string{raw}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out
}
