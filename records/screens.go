package records

import "shopfloor/config"

// ColumnKind selects how a column value is rendered.
type ColumnKind string

const (
	KindText     ColumnKind = "text"
	KindDate     ColumnKind = "date"
	KindMonth    ColumnKind = "month"
	KindQuantity ColumnKind = "quantity"
)

// Column is one display column of a screen.
type Column struct {
	Label string     `json:"label"`
	Field string     `json:"field"`
	Kind  ColumnKind `json:"kind"`
}

// Screen describes one order-list screen: where its records come from
// and which fields the search controls operate on.
type Screen struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Service       string   `json:"service"`
	EntitySet     string   `json:"entity_set"`
	PlantField    string   `json:"plant_field"`
	DocumentField string   `json:"document_field"`
	SearchFields  []string `json:"search_fields"`
	MonthField    string   `json:"month_field,omitempty"`
	StartField    string   `json:"start_field"`
	EndField      string   `json:"end_field"`
	CreatedField  string   `json:"created_field,omitempty"`
	QuantityField string   `json:"quantity_field,omitempty"`
	UnitField     string   `json:"unit_field,omitempty"`
	Columns       []Column `json:"columns"`
}

// DateFields lists the legacy epoch date fields of the screen.
func (s *Screen) DateFields() []string {
	var out []string
	for _, f := range []string{s.StartField, s.EndField, s.CreatedField} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

const (
	productionService = "Z48_PP_PORTAL2_SRV"
	plannedService    = "Z48_PP_PORTAL_SRV"
)

// DefaultScreens returns the built-in order-list screens.
func DefaultScreens() []*Screen {
	return []*Screen{
		{
			ID:            "production-orders",
			Title:         "Production Orders",
			Service:       productionService,
			EntitySet:     "PPPRODUCTIONORDERSet",
			PlantField:    "Werks",
			DocumentField: "Aufnr",
			SearchFields:  []string{"Aufnr", "Matnr", "Arbpl"},
			StartField:    "Gstrp",
			EndField:      "Gltrp",
			CreatedField:  "Erdat",
			QuantityField: "Gamng",
			UnitField:     "Gmein",
			Columns: []Column{
				{"Order", "Aufnr", KindText},
				{"Material", "Matnr", KindText},
				{"Work Center", "Arbpl", KindText},
				{"Quantity", "Gamng", KindQuantity},
				{"Start", "Gstrp", KindDate},
				{"Finish", "Gltrp", KindDate},
				{"Created", "Erdat", KindDate},
			},
		},
		{
			ID:            "production-orders-month",
			Title:         "Production Orders by Month",
			Service:       productionService,
			EntitySet:     "pp_production_monthSet",
			PlantField:    "Werks",
			DocumentField: "Aufnr",
			SearchFields:  []string{"Aufnr", "Ktext", "Ernam"},
			MonthField:    "Monthyr",
			StartField:    "Gstrp",
			EndField:      "Gltrp",
			CreatedField:  "Erdat",
			QuantityField: "Gamng",
			UnitField:     "Gmein",
			Columns: []Column{
				{"Month", "Monthyr", KindMonth},
				{"Order", "Aufnr", KindText},
				{"Description", "Ktext", KindText},
				{"Created By", "Ernam", KindText},
				{"Quantity", "Gamng", KindQuantity},
				{"Start", "Gstrp", KindDate},
				{"Finish", "Gltrp", KindDate},
			},
		},
		{
			ID:            "planned-orders",
			Title:         "Planned Orders",
			Service:       plannedService,
			EntitySet:     "pp_planorderSet",
			PlantField:    "Plwrk",
			DocumentField: "Plnum",
			SearchFields:  []string{"Plnum", "Matnr", "Dispo"},
			StartField:    "Psttr",
			EndField:      "Pedtr",
			CreatedField:  "Pertr",
			QuantityField: "Gsmng",
			UnitField:     "Meins",
			Columns: []Column{
				{"Planned Order", "Plnum", KindText},
				{"Material", "Matnr", KindText},
				{"MRP Controller", "Dispo", KindText},
				{"Quantity", "Gsmng", KindQuantity},
				{"Start", "Psttr", KindDate},
				{"Finish", "Pedtr", KindDate},
				{"Opening", "Pertr", KindDate},
			},
		},
		{
			ID:            "planned-orders-month",
			Title:         "Planned Orders by Month",
			Service:       plannedService,
			EntitySet:     "pp_planorder_month1Set",
			PlantField:    "Plwrk",
			DocumentField: "Plnum",
			SearchFields:  []string{"Plnum", "Matnr", "Dispo"},
			MonthField:    "Monthyr",
			StartField:    "Psttr",
			EndField:      "Pedtr",
			CreatedField:  "Pertr",
			QuantityField: "Gsmng",
			UnitField:     "Meins",
			Columns: []Column{
				{"Month", "Monthyr", KindMonth},
				{"Planned Order", "Plnum", KindText},
				{"Material", "Matnr", KindText},
				{"MRP Controller", "Dispo", KindText},
				{"Quantity", "Gsmng", KindQuantity},
				{"Start", "Psttr", KindDate},
				{"Finish", "Pedtr", KindDate},
			},
		},
	}
}

// Catalog is the ordered set of screens the portal serves.
type Catalog struct {
	screens []*Screen
	byID    map[string]*Screen
}

// NewCatalog builds the built-in screens and applies overrides from
// config. An override with an unknown ID adds a new screen.
func NewCatalog(overrides []config.ScreenConfig) *Catalog {
	c := &Catalog{byID: make(map[string]*Screen)}
	for _, s := range DefaultScreens() {
		c.add(s)
	}
	for _, o := range overrides {
		if o.ID == "" {
			continue
		}
		s, ok := c.byID[o.ID]
		if !ok {
			s = &Screen{ID: o.ID, Title: o.ID}
			c.add(s)
		}
		applyOverride(s, o)
	}
	return c
}

func (c *Catalog) add(s *Screen) {
	c.screens = append(c.screens, s)
	c.byID[s.ID] = s
}

// Screens returns the screens in display order.
func (c *Catalog) Screens() []*Screen { return c.screens }

// Screen looks a screen up by ID.
func (c *Catalog) Screen(id string) (*Screen, bool) {
	s, ok := c.byID[id]
	return s, ok
}

func applyOverride(s *Screen, o config.ScreenConfig) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&s.Title, o.Title)
	set(&s.Service, o.Service)
	set(&s.EntitySet, o.EntitySet)
	set(&s.PlantField, o.PlantField)
	set(&s.DocumentField, o.DocumentField)
	set(&s.MonthField, o.MonthField)
	set(&s.StartField, o.StartField)
	set(&s.EndField, o.EndField)
	set(&s.CreatedField, o.CreatedField)
	set(&s.QuantityField, o.QuantityField)
	set(&s.UnitField, o.UnitField)
	if len(o.SearchFields) > 0 {
		s.SearchFields = append([]string(nil), o.SearchFields...)
	}
	if len(s.Columns) == 0 {
		s.Columns = defaultColumns(s)
	}
}

// defaultColumns derives a column list for screens added from config.
func defaultColumns(s *Screen) []Column {
	var cols []Column
	if s.MonthField != "" {
		cols = append(cols, Column{"Month", s.MonthField, KindMonth})
	}
	seen := map[string]bool{}
	for _, f := range append([]string{s.DocumentField}, s.SearchFields...) {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		cols = append(cols, Column{f, f, KindText})
	}
	if s.QuantityField != "" {
		cols = append(cols, Column{"Quantity", s.QuantityField, KindQuantity})
	}
	for _, f := range s.DateFields() {
		cols = append(cols, Column{f, f, KindDate})
	}
	return cols
}
