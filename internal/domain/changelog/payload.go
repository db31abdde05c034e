package changelog

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

// Payload is the body stored with a Change. Only the fields an action touches are set.
type Payload struct {
	Names       catalog.Names       `json:"names,omitempty"`
	Parent      *hierarchy.NodeRef  `json:"parent,omitempty"`
	Location    *catalog.Location   `json:"location,omitempty"`
	Link        *LinkPayload        `json:"link,omitempty"`
	Description *DescriptionPayload `json:"description,omitempty"`
}

type LinkPayload struct {
	Kind  string `json:"kind"`
	Left  int64  `json:"left"`
	Right int64  `json:"right"`
}

type DescriptionPayload struct {
	Type  string  `json:"type"`
	Value *string `json:"value,omitempty"`
}

func (p Payload) JSON() datatypes.JSON {
	raw, err := json.Marshal(p)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

// DecodePayload reads a stored payload. Empty input yields the zero Payload.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if len(raw) == 0 {
		return p, nil
	}
	err := json.Unmarshal(raw, &p)
	return p, err
}
