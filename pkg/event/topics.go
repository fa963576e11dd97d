package event

// Topic is a named event channel on the bus.
type Topic string

const (
	// Game lifecycle
	GameStart   Topic = "game:start"
	GameOver    Topic = "game:over"
	GameSave    Topic = "game:save"
	GameLoad    Topic = "game:load"
	StateChange Topic = "game:stateChange"

	// Player
	PlayerMove    Topic = "player:move"
	PlayerDamage  Topic = "player:damage"
	PlayerHeal    Topic = "player:heal"
	PlayerDeath   Topic = "player:death"
	PlayerLevelUp Topic = "player:levelUp"

	// Map
	MapChange Topic = "map:change"
	MapLoaded Topic = "map:loaded"

	// Entities
	EntitySpawn    Topic = "entity:spawn"
	EntityDestroy  Topic = "entity:destroy"
	EntityInteract Topic = "entity:interact"

	// Combat
	CombatStart  Topic = "combat:start"
	CombatEnd    Topic = "combat:end"
	CombatTurn   Topic = "combat:turn"
	CombatAction Topic = "combat:action"
	CombatHit    Topic = "combat:hit"
	CombatMiss   Topic = "combat:miss"

	// Dialog
	DialogStart   Topic = "dialog:start"
	DialogEnd     Topic = "dialog:end"
	DialogAdvance Topic = "dialog:advance"
	DialogChoice  Topic = "dialog:choice"

	// Quests
	QuestStart    Topic = "quest:start"
	QuestUpdate   Topic = "quest:update"
	QuestComplete Topic = "quest:complete"
	QuestFail     Topic = "quest:fail"

	// Inventory
	ItemAdd    Topic = "item:add"
	ItemRemove Topic = "item:remove"
	ItemUse    Topic = "item:use"
	ItemEquip  Topic = "item:equip"

	// UI
	UIMessage Topic = "ui:message"
	UIUpdate  Topic = "ui:update"

	// Story flags
	FlagSet Topic = "flag:set"
)

// Category tags a UI message so the presentation layer can style it.
type Category string

const (
	MsgSystem  Category = "system"
	MsgAction  Category = "action"
	MsgCombat  Category = "combat"
	MsgDialog  Category = "dialog"
	MsgQuest   Category = "quest"
	MsgLoot    Category = "loot"
	MsgWarning Category = "warning"
	MsgHumor   Category = "humor"
)
