package item_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
)

func TestFromMap(t *testing.T) {
	m := map[string]any{
		"name":         "Venomfang",
		"description":  "A wicked dagger dripping with poison.",
		"itemType":     "weapon",
		"weaponType":   "simpleM",
		"magicalBonus": float64(1),
		"properties":   []any{"finesse", "light", "thrown"},
		"uses":         map[string]any{"value": float64(3), "per": "day"},
		"damage": map[string]any{
			"parts": []any{
				[]any{"1d4 + @mod", "piercing"},
				[]any{"2d10", "poison"},
			},
		},
		"save": map[string]any{"ability": "con", "dc": float64(15)},
	}

	it, err := item.FromMap(m)
	require.NoError(t, err)

	assert.Equal(t, "Venomfang", it.Name)
	assert.Equal(t, item.TypeWeapon, it.ItemType)
	assert.Equal(t, item.WeaponSimpleMelee, it.WeaponType)
	assert.Equal(t, 1, it.MagicalBonus)
	assert.Equal(t, 1, it.Quantity)
	assert.True(t, it.Uses.HasUses())
	assert.True(t, it.Save.IsComplete())
	require.Len(t, it.Damage.Parts, 2)
	assert.Equal(t, item.DamagePart{Formula: "2d10", Type: "poison"}, it.Damage.Parts[1])
}

func TestFromMapRequiresName(t *testing.T) {
	_, err := item.FromMap(map[string]any{"description": "nameless"})
	assert.Error(t, err)

	_, err = item.FromMap(nil)
	assert.Error(t, err)
}

func TestDamagePartJSON(t *testing.T) {
	var parts []item.DamagePart
	require.NoError(t, json.Unmarshal([]byte(`[["1d8","slashing"],{"formula":"1d6","type":"fire"}]`), &parts))
	assert.Equal(t, []item.DamagePart{
		{Formula: "1d8", Type: "slashing"},
		{Formula: "1d6", Type: "fire"},
	}, parts)

	data, err := json.Marshal(parts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `["1d8","slashing"]`, string(data))
}

func TestToMapRoundTripsName(t *testing.T) {
	it := &item.Item{Name: "Longsword", Description: "A blade.", ItemType: item.TypeWeapon}
	m, err := it.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "Longsword", m["name"])
	assert.Equal(t, "weapon", m["itemType"])
}

func TestRarityAboveCommon(t *testing.T) {
	assert.False(t, item.RarityCommon.AboveCommon())
	assert.False(t, item.Rarity("").AboveCommon())
	assert.True(t, item.RarityUncommon.AboveCommon())
	assert.True(t, item.RarityArtifact.AboveCommon())
}
