package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"ginutri/internal/nutrition"
)

//go:embed catalog.yaml
var defaultDocument []byte

// Day identifica un dia del cardapio semanal.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Week es el orden de los dias en el cardapio.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Slot es la categoria de una comida dentro del dia.
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Snack     Slot = "snack"
	Dinner    Slot = "dinner"
	Supper    Slot = "supper"
)

// MenuSlots son las comidas que el cardapio define por dia.
var MenuSlots = []Slot{Breakfast, Lunch, Snack, Dinner}

func (s Slot) Valid() bool {
	switch s {
	case Breakfast, Lunch, Snack, Dinner, Supper:
		return true
	}
	return false
}

var (
	ErrUnknownDay    = errors.New("unknown day")
	ErrInvalidSource = errors.New("invalid catalog")
)

// Catalog es el contenido estatico de la app: cardapio, semillas y tablas de presentacion.
type Catalog struct {
	Water        WaterSettings                 `yaml:"water"`
	Icons        map[Slot]string               `yaml:"icons"`
	Placeholders map[string]Placeholder        `yaml:"placeholders"`
	DiarySeed    []SeedMeal                    `yaml:"diary_seed"`
	Shopping     []ShoppingTemplate            `yaml:"shopping"`
	Menu         map[Day]map[Slot]MenuVariants `yaml:"menu"`
}

type WaterSettings struct {
	GoalMl     int   `yaml:"goal_ml" json:"goal_ml"`
	QuickAddMl []int `yaml:"quick_add_ml" json:"quick_add_ml"`
}

type Placeholder struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

type SeedMeal struct {
	Name     string           `yaml:"name"`
	Category Slot             `yaml:"category"`
	Time     string           `yaml:"time"`
	Items    string           `yaml:"items"`
	Macros   nutrition.Macros `yaml:"macros"`
}

type ShoppingTemplate struct {
	Aisle    string `yaml:"aisle" json:"aisle"`
	Name     string `yaml:"name" json:"name"`
	Quantity string `yaml:"quantity" json:"quantity"`
}

// MenuVariants guarda la version accesible y, opcionalmente, la premium de un plato.
type MenuVariants struct {
	Accessible string `yaml:"accessible"`
	Premium    string `yaml:"premium,omitempty"`
}

// MenuMeal es un plato ya resuelto para un plan.
type MenuMeal struct {
	Slot        Slot   `json:"slot"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Load parsea el catalogo embebido.
func Load() (*Catalog, error) {
	return Parse(defaultDocument)
}

// MustLoad es Load para inicializacion y tests; el documento embebido siempre es valido.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodifica un documento YAML y valida su contenido.
func Parse(doc []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate exige un cardapio completo y semillas coherentes.
func (c *Catalog) Validate() error {
	if c.Water.GoalMl <= 0 {
		return fmt.Errorf("%w: water goal must be positive", ErrInvalidSource)
	}
	for _, day := range Week {
		slots, ok := c.Menu[day]
		if !ok {
			return fmt.Errorf("%w: menu missing %s", ErrInvalidSource, day)
		}
		for _, slot := range MenuSlots {
			if strings.TrimSpace(slots[slot].Accessible) == "" {
				return fmt.Errorf("%w: menu %s/%s has no accessible dish", ErrInvalidSource, day, slot)
			}
		}
	}
	for _, m := range c.DiarySeed {
		if !m.Category.Valid() {
			return fmt.Errorf("%w: diary seed %q has category %q", ErrInvalidSource, m.Name, m.Category)
		}
	}
	for _, item := range c.Shopping {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: shopping item without name", ErrInvalidSource)
		}
	}
	return nil
}

// ParseDay acepta el identificador en ingles o el nombre del dia en portugues.
func ParseDay(s string) (Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "segunda":
		return Monday, nil
	case "tuesday", "terça", "terca":
		return Tuesday, nil
	case "wednesday", "quarta":
		return Wednesday, nil
	case "thursday", "quinta":
		return Thursday, nil
	case "friday", "sexta":
		return Friday, nil
	case "saturday", "sábado", "sabado":
		return Saturday, nil
	case "sunday", "domingo":
		return Sunday, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDay, s)
}

// MenuFor resuelve el cardapio de un dia; premium usa la variante premium cuando existe.
func (c *Catalog) MenuFor(day Day, premium bool) ([]MenuMeal, error) {
	slots, ok := c.Menu[day]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	meals := make([]MenuMeal, 0, len(MenuSlots))
	for _, slot := range MenuSlots {
		v := slots[slot]
		desc := v.Accessible
		if premium && v.Premium != "" {
			desc = v.Premium
		}
		meals = append(meals, MenuMeal{Slot: slot, Description: desc, Icon: c.IconFor(slot)})
	}
	return meals, nil
}

// IconFor mapea una categoria de comida a su icono.
func (c *Catalog) IconFor(slot Slot) string {
	if icon, ok := c.Icons[slot]; ok {
		return icon
	}
	return c.Icons["default"]
}

func (c *Catalog) Placeholder(screen string) (Placeholder, bool) {
	p, ok := c.Placeholders[screen]
	return p, ok
}
