// Package content serves the clinic's institutional content. The data is embedded at build
// time and never changes while the process runs.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed catalog.json
var catalogJSON []byte

type Clinic struct {
	Nombre    string `json:"nombre"`
	NIT       string `json:"nit"`
	Direccion string `json:"direccion"`
	Ciudad    string `json:"ciudad"`
	Telefono  string `json:"telefono"`
	WhatsApp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Horario   string `json:"horario"`
}

type Service struct {
	Slug        string `json:"slug"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Icono       string `json:"icono,omitempty"`
}

type Specialty struct {
	Slug        string `json:"slug"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

type Article struct {
	Slug      string `json:"slug"`
	Titulo    string `json:"titulo"`
	Fecha     string `json:"fecha"`
	Resumen   string `json:"resumen"`
	Contenido string `json:"contenido,omitempty"`
}

type LegalPage struct {
	Titulo      string `json:"titulo"`
	Actualizado string `json:"actualizado"`
	Contenido   string `json:"contenido"`
}

// Catalog is read-only after Load
type Catalog struct {
	Clinic      Clinic               `json:"clinica"`
	Services    []Service            `json:"servicios"`
	Specialties []Specialty          `json:"especialidades"`
	News        []Article            `json:"noticias"`
	Legal       map[string]LegalPage `json:"legal"`
}

// Load parses the embedded catalog and orders news newest first
func Load() (*Catalog, error) {
	return Parse(catalogJSON)
}

// Parse builds a catalog from raw JSON
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse content catalog: %w", err)
	}

	// ISO dates sort lexically
	sort.SliceStable(c.News, func(i, j int) bool {
		return c.News[i].Fecha > c.News[j].Fecha
	})
	return &c, nil
}

// NewsSummaries returns the articles without their body
func (c *Catalog) NewsSummaries() []Article {
	out := make([]Article, len(c.News))
	for i, a := range c.News {
		a.Contenido = ""
		out[i] = a
	}
	return out
}

func (c *Catalog) Article(slug string) (Article, bool) {
	for _, a := range c.News {
		if a.Slug == slug {
			return a, true
		}
	}
	return Article{}, false
}

func (c *Catalog) LegalPage(name string) (LegalPage, bool) {
	p, ok := c.Legal[name]
	return p, ok
}

// SpecialtyNames lists specialty display names, the values the appointment form accepts
func (c *Catalog) SpecialtyNames() []string {
	names := make([]string, len(c.Specialties))
	for i, s := range c.Specialties {
		names[i] = s.Nombre
	}
	return names
}
