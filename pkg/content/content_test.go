package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jit-rpg/engine/pkg/dialog"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/item"
	"github.com/jit-rpg/engine/pkg/quest"
	"github.com/jit-rpg/engine/pkg/world"
)

func TestLoad(t *testing.T) {
	b, err := Load()
	require.NoError(t, err, "embedded content must load and validate")

	pistol, ok := b.Item("pistol_10mm")
	require.True(t, ok)
	assert.Equal(t, "pistol_10mm", pistol.ID)
	assert.Equal(t, item.CategoryWeapon, pistol.Category)
	assert.True(t, pistol.IsRanged())
	assert.Equal(t, 8, pistol.Range)

	stimpak, ok := b.Item("stimpak")
	require.True(t, ok)
	require.Len(t, stimpak.Effects, 1)
	assert.Equal(t, item.UseHeal, stimpak.Effects[0].Kind)
	assert.Equal(t, 30, stimpak.Effects[0].Amount)
	assert.True(t, stimpak.IsStackable())

	keycard, ok := b.Item("vault_keycard")
	require.True(t, ok)
	assert.False(t, keycard.IsStackable())

	bot, ok := b.Entity("security_bot")
	require.True(t, ok)
	assert.Equal(t, world.KindEnemy, bot.Kind)
	assert.True(t, bot.Hostile)
	assert.Equal(t, 30, bot.MaxHP)
	assert.NotEmpty(t, bot.CombatQuip)

	terminal, ok := b.Entity("chronos_terminal")
	require.True(t, ok)
	assert.Equal(t, "chronos_intro", terminal.DialogID)

	wake, ok := b.Quest("wake_up_call")
	require.True(t, ok)
	assert.Equal(t, "find_terminal", wake.StartStage)
	assert.Len(t, wake.Stages, 3)
	assert.Equal(t, 100, wake.Rewards.XP)

	intro, ok := b.Dialog("chronos_intro")
	require.True(t, ok)
	_, ok = intro.Nodes[intro.StartNode]
	assert.True(t, ok, "start node resolves")

	_, ok = b.Item("minigun")
	assert.False(t, ok)
}

func TestLoadMaps(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	vault, ok := b.Map("vault42")
	require.True(t, ok)
	assert.Equal(t, 20, vault.Width)
	assert.Equal(t, 12, vault.Height)

	// Corner wall, open floor, spawn tile.
	assert.False(t, vault.IsWalkable(grid.Point{X: 0, Y: 0}))
	assert.True(t, vault.IsWalkable(grid.Point{X: 3, Y: 2}))
	assert.True(t, vault.IsWalkable(vault.Spawn("start")))
	assert.True(t, vault.IsWalkable(vault.Spawn("entrance")))

	// Exit tiles are walkable and target a live spawn.
	for _, exit := range vault.Exits {
		assert.True(t, vault.IsWalkable(exit.Position), "exit at %v", exit.Position)
		target, ok := b.Map(exit.TargetMap)
		require.True(t, ok)
		_, ok = target.Spawns[exit.TargetSpawn]
		assert.True(t, ok, "spawn %s on %s", exit.TargetSpawn, exit.TargetMap)
	}

	// Water blocks movement but not sight.
	wastes, ok := b.Map("wastes")
	require.True(t, ok)
	assert.False(t, wastes.IsWalkable(grid.Point{X: 7, Y: 4}))
	assert.True(t, wastes.Transparent[4][7])
}

func TestValidate_ReportsBrokenReferences(t *testing.T) {
	b := &Bundle{
		items:    map[string]*item.Definition{},
		entities: map[string]*world.Definition{},
		quests: map[string]*quest.Definition{
			"broken": {
				ID:         "broken",
				StartStage: "missing",
				Stages: map[string]*quest.Stage{
					"only": {
						Objectives: []quest.Objective{
							{Kind: quest.ObjectiveFetch, Target: "no_such_item", Count: 1},
						},
						NextStage: "nowhere",
					},
				},
				Rewards: &quest.Rewards{Items: []string{"no_such_reward"}},
			},
		},
		dialogs: map[string]*dialog.Definition{
			"dangling": {
				ID:        "dangling",
				StartNode: "greeting",
				Nodes: map[string]*dialog.Node{
					"greeting": {
						Text: "hi",
						Responses: []dialog.Response{
							{Text: "bye", NextNode: "gone"},
						},
					},
				},
			},
		},
		maps: map[string]*world.MapData{},
	}

	err := b.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "start stage")
	assert.ErrorContains(t, err, "no_such_item")
	assert.ErrorContains(t, err, "no_such_reward")
	assert.ErrorContains(t, err, "nowhere")
	assert.ErrorContains(t, err, "gone")
}

func TestContentDrivesQuestChain(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	// The exit_vault stage chains into fresh_air, which chains into the
	// Dustbowl quests; every link must resolve.
	wake, _ := b.Quest("wake_up_call")
	final := wake.Stages["exit_vault"]
	require.NotNil(t, final)
	for _, e := range final.OnComplete {
		if e.Quest != "" {
			_, ok := b.Quest(e.Quest)
			assert.True(t, ok, "chained quest %s", e.Quest)
		}
	}
}
