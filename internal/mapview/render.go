package mapview

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed map.html.tmpl
var pageTemplate string

var page = template.Must(template.New("map").Parse(pageTemplate))

type tileSource struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

var tileSources = map[string]tileSource{
	TilesCartoPositron: {
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
	},
}

// Render writes m as a standalone HTML page. Map data is embedded as JSON in
// a script block; popup text is inserted as text nodes, never as markup.
func Render(w io.Writer, title string, m *Map) error {
	if m == nil {
		return fmt.Errorf("render map: nil map")
	}
	data := struct {
		Title string
		View  *Map
		Tiles map[string]tileSource
	}{Title: title, View: m, Tiles: tileSources}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}
