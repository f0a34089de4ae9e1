package domain

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// JSONB column codecs for the embedded document lists. Decode surfaces
// corrupt column data as an error; Encode never fails for these types.

func EncodePlannedStories(stories []PlannedStory) datatypes.JSON {
	if stories == nil {
		stories = []PlannedStory{}
	}
	return mustEncode(stories)
}

func DecodePlannedStories(raw datatypes.JSON) ([]PlannedStory, error) {
	var out []PlannedStory
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func EncodeUserPoints(rows []UserPoints) datatypes.JSON {
	if rows == nil {
		rows = []UserPoints{}
	}
	return mustEncode(rows)
}

func DecodeUserPoints(raw datatypes.JSON) ([]UserPoints, error) {
	var out []UserPoints
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func EncodeRegistryStories(stories []RegistryStory) datatypes.JSON {
	if stories == nil {
		stories = []RegistryStory{}
	}
	return mustEncode(stories)
}

func DecodeRegistryStories(raw datatypes.JSON) ([]RegistryStory, error) {
	var out []RegistryStory
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func EncodeCompletedStories(stories []CompletedStory) datatypes.JSON {
	if stories == nil {
		stories = []CompletedStory{}
	}
	return mustEncode(stories)
}

func DecodeCompletedStories(raw datatypes.JSON) ([]CompletedStory, error) {
	var out []CompletedStory
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mustEncode(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

func decode(raw datatypes.JSON, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}
