package items

import (
	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/locale"
)

// Item is the client representation of one item.
type Item struct {
	ID                int               `json:"id"`
	Level             int               `json:"level"`
	BaseParameters    BaseParameters    `json:"baseParameters"`
	GraphicParameters GraphicParameters `json:"graphicParameters"`
	EquipEffects      []EquipEffect     `json:"equipEffects"`
	Title             *string           `json:"title"`
	Description       *string           `json:"description"`
}

type BaseParameters struct {
	ItemTypeID int `json:"itemTypeId"`
	ItemSetID  int `json:"itemSetId"`
}

type GraphicParameters struct {
	GfxID       int `json:"gfxId"`
	FemaleGfxID int `json:"femaleGfxId"`
}

// EquipEffect is an effect applied while the item is worn.
type EquipEffect struct {
	Effect struct {
		Definition EffectDefinition `json:"definition"`
	} `json:"effect"`
}

type EffectDefinition struct {
	ID        int       `json:"id"`
	ActionID  int       `json:"actionId"`
	AreaShape int       `json:"areaShape"`
	AreaSize  []int     `json:"areaSize"`
	Params    []float64 `json:"params"`
}

// record is the projected shape of a stored item.
type record struct {
	Definition struct {
		Item struct {
			ID                int               `json:"id"`
			Level             int               `json:"level"`
			BaseParameters    BaseParameters    `json:"baseParameters"`
			GraphicParameters GraphicParameters `json:"graphicParameters"`
		} `json:"item"`
		EquipEffects []EquipEffect `json:"equipEffects"`
	} `json:"definition"`
	Title       locale.Localized `json:"title"`
	Description locale.Localized `json:"description"`
}

// Map converts a stored item into an Item for locale l.
func (Resource) Map(doc docstore.Document, l locale.Locale) (Item, error) {
	var rec record
	if err := doc.Decode(&rec); err != nil {
		return Item{}, err
	}

	effects := rec.Definition.EquipEffects
	if effects == nil {
		effects = []EquipEffect{}
	}
	for i := range effects {
		d := &effects[i].Effect.Definition
		if d.AreaSize == nil {
			d.AreaSize = []int{}
		}
		if d.Params == nil {
			d.Params = []float64{}
		}
	}

	it := rec.Definition.Item
	return Item{
		ID:                it.ID,
		Level:             it.Level,
		BaseParameters:    it.BaseParameters,
		GraphicParameters: it.GraphicParameters,
		EquipEffects:      effects,
		Title:             rec.Title.Get(l),
		Description:       rec.Description.Get(l),
	}, nil
}
