package api

import (
	"net/http"
	"sync"

	"github.com/swaggo/swag"
)

var registerOnce sync.Once

type swaggerDoc struct {
	spec *Spec
}

func (d swaggerDoc) ReadDoc() string {
	b, err := d.spec.JSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// RegisterDocsRoutes publishes the document through the swag registry and
// serves it at /docs/openapi.json.
func RegisterDocsRoutes(mux *http.ServeMux, spec *Spec) {
	registerOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc{spec: spec})
	})

	mux.HandleFunc("GET /docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "documentation unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})
}
