package models

// FieldType тип поля формы
type FieldType string

const (
	FieldTypeText           FieldType = "text"
	FieldTypeNumber         FieldType = "number"
	FieldTypeMultipleChoice FieldType = "multiple_choice"
	FieldTypeDate           FieldType = "date"
	FieldTypePhoto          FieldType = "photo"
)

// Field описывает один вопрос формы наблюдения.
type Field struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Options  []Option  `json:"options,omitempty"` // Options варианты ответа для multiple_choice
	Required bool      `json:"required"`
}

// Option is one choice of a multiple choice field.
type Option struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Form is the set of fields an observation of a layer is collected with.
type Form struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// Field returns the form field with the given id.
func (f Form) Field(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Layer группирует features одного типа (например, "деревья", "колодцы").
type Layer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Forms []Form `json:"forms"`
}

// Form returns the layer form with the given id.
func (l Layer) Form(id string) (Form, bool) {
	for _, form := range l.Forms {
		if form.ID == id {
			return form, true
		}
	}
	return Form{}, false
}

// BasemapSource points at a GeoJSON index of downloadable tile archives.
type BasemapSource struct {
	URL string `json:"url"`
}

// Project is the top-level container of layers, forms and basemap sources.
type Project struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Layers         []Layer         `json:"layers"`
	BasemapSources []BasemapSource `json:"basemap_sources"`
}

// Layer returns the project layer with the given id.
func (p Project) Layer(id string) (Layer, bool) {
	for _, layer := range p.Layers {
		if layer.ID == id {
			return layer, true
		}
	}
	return Layer{}, false
}

// Clone создает глубокую копию проекта
func (p *Project) Clone() *Project {
	clone := *p

	clone.Layers = make([]Layer, len(p.Layers))
	for i, layer := range p.Layers {
		forms := make([]Form, len(layer.Forms))
		for j, form := range layer.Forms {
			fields := make([]Field, len(form.Fields))
			for k, field := range form.Fields {
				field.Options = append([]Option(nil), field.Options...)
				fields[k] = field
			}
			forms[j] = Form{ID: form.ID, Fields: fields}
		}
		layer.Forms = forms
		clone.Layers[i] = layer
	}

	clone.BasemapSources = append([]BasemapSource(nil), p.BasemapSources...)
	return &clone
}

// User представляет пользователя, от имени которого выполняются изменения.
type User struct {
	ID          string `json:"id"`           // ID идентификатор пользователя
	DisplayName string `json:"display_name"` // DisplayName отображаемое имя
	Email       string `json:"email"`        // Email адрес пользователя
}
